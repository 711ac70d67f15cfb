package watcher

import (
	"strings"
	"sync"
	"time"
)

// debouncer schedules one cancellable timer per file path. A second event
// for a path already pending resets its timer instead of enqueuing a
// duplicate job, and folder teardown cancels every pending timer under
// that folder without touching unrelated state.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// schedule arms (or re-arms) the timer for path. fire runs on the timer
// goroutine after the quiet period.
func (d *debouncer) schedule(path string, fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		fire()
	})
}

// cancelPrefix stops every pending timer whose path lives under dir.
// Jobs whose timer already fired run to completion.
func (d *debouncer) cancelPrefix(dir string) {
	prefix := strings.TrimRight(dir, "/\\")

	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		// A sibling folder sharing the name prefix is not under dir.
		if len(path) > len(prefix) {
			if c := path[len(prefix)]; c != '/' && c != '\\' {
				continue
			}
		}
		t.Stop()
		delete(d.timers, path)
	}
}

// pending returns the number of armed timers.
func (d *debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
