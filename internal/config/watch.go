package config

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-reads and validates the whole tetrad.toml file after it is
// written or created (debounced 150ms). A valid result replaces Current(),
// advances Generation() and is passed to onReload; an invalid one is
// ignored. The Watcher applies nothing to components already built from
// the previous Config.
//
// Grounded on the teacher's internal/behavioral filewatcher debounced
// fsnotify loop, repurposed from transcript ingestion to config reload.
type Watcher struct {
	path       string
	mu         sync.RWMutex
	current    *Config
	generation int32
	watcher    *fsnotify.Watcher
	onReload   func(*Config)
	stopCh     chan struct{}
}

// NewWatcher constructs a Watcher already holding initial. Call Start to
// begin watching.
func NewWatcher(path string, initial *Config, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     path,
		current:  initial,
		watcher:  fw,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}
	return w, nil
}

// Start begins the watch loop in a background goroutine.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.path); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop terminates the watch loop and releases the underlying fsnotify
// watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Generation returns the number of successful reloads so far.
func (w *Watcher) Generation() int32 {
	return atomic.LoadInt32(&w.generation)
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, w.reload)
		case <-w.watcher.Errors:
			continue
		}
	}
}

func (w *Watcher) reload() {
	next, err := LoadConfig(w.path)
	if err != nil {
		return
	}
	if err := next.Validate(); err != nil {
		return
	}
	w.mu.Lock()
	w.current = next
	w.mu.Unlock()
	atomic.AddInt32(&w.generation, 1)
	if w.onReload != nil {
		w.onReload(next)
	}
}
