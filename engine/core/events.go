package core

// Event is something the simulation reports after a tick
type Event struct {
	Type    EventType
	Tick    uint64
	Payload any
}

type EventType uint16

const (
	// EvtAgentSpawned carries the *systems.Agent
	EvtAgentSpawned EventType = iota
	// EvtMoveOrdered carries the MoveOrdered record
	EvtMoveOrdered
	// EvtAgentArrived carries the *systems.Agent
	EvtAgentArrived
	// EvtTerrainReplaced has no payload
	EvtTerrainReplaced
	// EvtPathOrdered carries the PathOrdered record
	EvtPathOrdered
)

func (t EventType) String() string {
	switch t {
	case EvtAgentSpawned:
		return "agent-spawned"
	case EvtMoveOrdered:
		return "move-ordered"
	case EvtAgentArrived:
		return "agent-arrived"
	case EvtTerrainReplaced:
		return "terrain-replaced"
	case EvtPathOrdered:
		return "path-ordered"
	}
	return "unknown"
}

// EventBus queues events and hands them to listeners on Dispatch
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Dispatch processes all queued events in emit order. Events emitted by
// handlers are appended and handled in the same call.
func (eb *EventBus) Dispatch() {
	for i := 0; i < len(eb.queue); i++ {
		e := eb.queue[i]
		for _, h := range eb.listeners[e.Type] {
			h(e)
		}
	}
	clear(eb.queue)
	eb.queue = eb.queue[:0]
}

// Pending reports how many events wait for Dispatch
func (eb *EventBus) Pending() int {
	return len(eb.queue)
}
