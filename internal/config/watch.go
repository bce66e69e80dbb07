package config

import (
	"os"
	"time"
)

// Watcher polls preset files for modification-time changes and invokes a
// callback, typically Loader.Invalidate plus a log line.
type Watcher struct {
	paths    []string
	interval time.Duration
	onChange func(string)
	stopCh   chan struct{}
	lastMod  map[string]time.Time
}

func NewWatcher(paths []string, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		paths:    paths,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		lastMod:  make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *Watcher) Start() {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		w.scan(true) // prime the mtime cache
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() { close(w.stopCh) }

func (w *Watcher) scan(prime bool) {
	for _, p := range w.paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue // missing file: keep polling, it may appear
		}
		mt := fi.ModTime()
		last, seen := w.lastMod[p]
		w.lastMod[p] = mt
		if seen && mt.After(last) && !prime && w.onChange != nil {
			w.onChange(p)
		}
	}
}
