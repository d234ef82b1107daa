package maplib

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a map file must stay quiet before it is reloaded
const DefaultSettle = 100 * time.Millisecond

// Reload is one attempt to re-read a watched map file
type Reload struct {
	Terrain *Terrain
	Name    string
	Err     error
}

// Watcher reloads a map file whenever it changes on disk
type Watcher struct {
	Reloads chan Reload

	path    string
	settle  time.Duration
	watcher *fsnotify.Watcher
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path. The file's directory is watched so that
// editors replacing the file by rename are seen too.
func Watch(path string, settle time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	w := &Watcher{
		Reloads: make(chan Reload, 1),
		path:    abs,
		settle:  settle,
		watcher: fw,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops watching; Reloads is closed once the watcher has exited
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Reloads)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			pending = time.After(w.settle)
		case <-pending:
			pending = nil
			t, name, err := Load(w.path)
			if !w.send(Reload{Terrain: t, Name: name, Err: err}) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if !w.send(Reload{Err: err}) {
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) send(r Reload) bool {
	select {
	case w.Reloads <- r:
		return true
	case <-w.closeCh:
		return false
	}
}
