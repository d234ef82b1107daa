package pathfind

import "container/heap"

// priorityQueue is a binary min-heap ordered by less
type priorityQueue[E any] struct {
	items []E
	less  func(a, b E) bool
}

func newPriorityQueue[E any](less func(a, b E) bool) *priorityQueue[E] {
	return &priorityQueue[E]{less: less}
}

func (q *priorityQueue[E]) Len() int           { return len(q.items) }
func (q *priorityQueue[E]) Less(i, j int) bool { return q.less(q.items[i], q.items[j]) }
func (q *priorityQueue[E]) Swap(i, j int)      { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *priorityQueue[E]) Push(x any)         { q.items = append(q.items, x.(E)) }
func (q *priorityQueue[E]) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	var zero E
	old[n-1] = zero
	q.items = old[:n-1]
	return item
}

func (q *priorityQueue[E]) push(e E) { heap.Push(q, e) }
func (q *priorityQueue[E]) pop() E   { return heap.Pop(q).(E) }
