// Package watcher owns the filesystem watch sessions: one recursive
// subscription per enabled folder, per-file debouncing, and dispatch
// into the processing pipeline.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdfwatch/pdfwatch/internal/model"
)

// DebounceDelay is the quiet period between a creation event and the
// pipeline run, letting the writer finish before the file is read.
const DebounceDelay = 2 * time.Second

// JobFunc processes one debounced file. It runs on the debounce timer's
// goroutine, so separate files proceed concurrently.
type JobFunc func(job model.PendingJob)

// sessionState tracks the per-folder lifecycle.
type sessionState int

const (
	stateDisabled sessionState = iota
	stateStarting
	stateActive
	stateStopping
)

// session is one live filesystem subscription.
type session struct {
	folder  model.FolderConfig
	watcher *fsnotify.Watcher
	state   sessionState
	done    chan struct{}
}

// Coordinator owns the session table. All mutation goes through its
// lock-guarded methods; pipeline workers only ever see config snapshots.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*session
	debounce *debouncer
	run      JobFunc
	logger   *slog.Logger
	running  bool
}

// New creates a Coordinator dispatching debounced files to run.
func New(run JobFunc, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		sessions: make(map[string]*session),
		debounce: newDebouncer(DebounceDelay),
		run:      run,
		logger:   logger,
	}
}

// Start opens a watch session for every enabled folder whose path
// exists. The global state flips to running even if some folders fail;
// per-folder errors are logged, not fatal.
func (c *Coordinator) Start(folders []model.FolderConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("watcher already running")
	}

	started := 0
	for _, f := range folders {
		if !f.Enabled {
			continue
		}
		if err := c.startSessionLocked(f); err != nil {
			c.logger.Warn("failed to watch folder", "path", f.Path, "error", err)
			continue
		}
		started++
	}
	if started == 0 {
		return fmt.Errorf("no watchable folders")
	}

	c.running = true
	c.logger.Info("watching started", "folders", started)
	return nil
}

// Stop tears down every session and cancels all pending debounce timers.
// Jobs already past the debounce stage run to completion.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.sessions {
		c.stopSessionLocked(path)
	}
	c.running = false
	c.logger.Info("watching stopped")
}

// Running reports the global watch state.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// AddFolder opens a session for a newly added or newly enabled folder
// while watching is running.
func (c *Coordinator) AddFolder(folder model.FolderConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || !folder.Enabled {
		return nil
	}
	return c.startSessionLocked(folder)
}

// RemoveFolder tears down the session for a removed or disabled folder,
// cancelling its pending debounce timers.
func (c *Coordinator) RemoveFolder(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSessionLocked(path)
}

// UpdateFolder applies a config change atomically: the old session is
// fully torn down before the replacement starts, so the same file is
// never double-processed under both configs.
func (c *Coordinator) UpdateFolder(folder model.FolderConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSessionLocked(folder.Path)
	if !c.running || !folder.Enabled {
		return nil
	}
	return c.startSessionLocked(folder)
}

// Reconcile applies an edited folder list to the live session table:
// new enabled folders start watching, removed or disabled ones stop, and
// changed configs are swapped via teardown-before-restart. No-op while
// the coordinator is stopped.
func (c *Coordinator) Reconcile(folders []model.FolderConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}

	desired := make(map[string]model.FolderConfig, len(folders))
	for _, f := range folders {
		if f.Enabled {
			desired[f.Path] = f
		}
	}

	for path, s := range c.sessions {
		f, keep := desired[path]
		if keep && s.folder == f {
			continue
		}
		c.stopSessionLocked(path)
		if !keep {
			continue
		}
		if err := c.startSessionLocked(f); err != nil {
			c.logger.Warn("failed to restart folder watch", "path", path, "error", err)
		}
	}

	for path, f := range desired {
		if _, exists := c.sessions[path]; exists {
			continue
		}
		if err := c.startSessionLocked(f); err != nil {
			c.logger.Warn("failed to watch folder", "path", path, "error", err)
		}
	}
}

// startSessionLocked transitions a folder Disabled → Starting → Active.
func (c *Coordinator) startSessionLocked(folder model.FolderConfig) error {
	if _, exists := c.sessions[folder.Path]; exists {
		return fmt.Errorf("folder already watched: %s", folder.Path)
	}
	info, err := os.Stat(folder.Path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("folder not found: %s", folder.Path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s := &session{
		folder:  folder,
		watcher: w,
		state:   stateStarting,
		done:    make(chan struct{}),
	}

	// Recursive subscription: register the root and every subdirectory.
	err = filepath.WalkDir(folder.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to register folder tree: %w", err)
	}

	s.state = stateActive
	c.sessions[folder.Path] = s
	go c.eventLoop(s)

	c.logger.Info("folder watch started", "path", folder.Path)
	return nil
}

// stopSessionLocked transitions Active → Stopping → Disabled.
func (c *Coordinator) stopSessionLocked(path string) {
	s, ok := c.sessions[path]
	if !ok {
		return
	}
	s.state = stateStopping
	_ = s.watcher.Close()
	<-s.done
	c.debounce.cancelPrefix(path)
	delete(c.sessions, path)
	c.logger.Info("folder watch stopped", "path", path)
}

// eventLoop services one session's filesystem events until its watcher
// closes.
func (c *Coordinator) eventLoop(s *session) {
	defer close(s.done)

	// Snapshot once; jobs must not observe later config edits.
	folder := s.folder.Snapshot()

	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}

			// New subdirectories join the recursive subscription.
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				_ = s.watcher.Add(ev.Name)
				continue
			}

			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}

			path := ev.Name
			c.logger.Info("new PDF detected", "file", filepath.Base(path), "folder", folder.Path)
			c.debounce.schedule(path, func() {
				c.run(model.PendingJob{Path: path, Folder: folder})
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("watch error", "path", folder.Path, "error", err)
		}
	}
}
