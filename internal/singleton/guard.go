// Package singleton enforces the one-instance rule with three
// cooperating layers: an exclusive lock file, a loopback TCP port, and
// on Windows a named mutex. A second launch signals the first instance
// over the port instead of starting.
package singleton

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pdfwatch/pdfwatch/internal/common"
)

const (
	// Port is the fixed loopback endpoint for instance signalling.
	Port = 57321

	// showCommand asks the running instance to surface itself.
	showCommand = "SHOW"

	probeTimeout = 400 * time.Millisecond
	lockFileName = "pdfwatch.lock"
)

// Guard holds the acquired singleton resources for the process lifetime.
type Guard struct {
	lockPath string
	listener net.Listener
	mutex    *namedMutex
	logger   *slog.Logger

	mu       sync.Mutex
	released bool
}

// Acquire claims the singleton. On conflict with a live instance it
// sends SHOW to that instance and returns common.ErrSingletonConflict.
// A stale lock left by a crashed process is reclaimed after the
// liveness probe fails.
func Acquire(stateDir string, logger *slog.Logger) (*Guard, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	lockPath := filepath.Join(stateDir, lockFileName)

	g := &Guard{lockPath: lockPath, logger: logger}

	if err := g.claimLockFile(); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", Port))
	if err != nil {
		// The port being taken means another instance won the race
		// between our probe and our bind.
		g.removeLock()
		SignalExisting()
		return nil, fmt.Errorf("%w: port %d in use", common.ErrSingletonConflict, Port)
	}
	g.listener = ln

	mtx, err := acquireNamedMutex()
	if err != nil {
		_ = g.listener.Close()
		g.removeLock()
		return nil, fmt.Errorf("%w: %v", common.ErrSingletonConflict, err)
	}
	g.mutex = mtx

	return g, nil
}

// claimLockFile creates the lock exclusively, reclaiming a stale one
// when no live instance answers the port probe.
func (g *Guard) claimLockFile() error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(g.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			return f.Close()
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		if probeAlive() {
			// A live instance holds the lock; hand it the foreground.
			SignalExisting()
			return fmt.Errorf("%w: another instance is running", common.ErrSingletonConflict)
		}

		g.logger.Warn("reclaiming stale lock file", "path", g.lockPath)
		if err := os.Remove(g.lockPath); err != nil {
			return fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}
	return fmt.Errorf("%w: lock file contention", common.ErrSingletonConflict)
}

// Serve runs the signalling accept loop until Release closes the
// listener. activate is called whenever a later launch sends SHOW.
func (g *Guard) Serve(activate func()) {
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			return
		}
		go g.handle(conn, activate)
	}
}

func (g *Guard) handle(conn net.Conn, activate func()) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(probeTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	if strings.TrimSpace(line) == showCommand {
		g.logger.Info("activation requested by second instance")
		if activate != nil {
			activate()
		}
	}
}

// Release frees all three layers. Safe to call more than once.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.released = true

	if g.listener != nil {
		_ = g.listener.Close()
	}
	if g.mutex != nil {
		g.mutex.release()
	}
	g.removeLock()
}

func (g *Guard) removeLock() {
	if err := os.Remove(g.lockPath); err != nil && !os.IsNotExist(err) {
		g.logger.Warn("failed to remove lock file", "path", g.lockPath, "error", err)
	}
}

// probeAlive reports whether a live instance is listening on the port.
func probeAlive() bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", Port), probeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SignalExisting asks a running instance to show itself. It is best
// effort; a dead instance simply refuses the connection.
func SignalExisting() bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", Port), probeTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(probeTimeout))
	_, err = fmt.Fprintf(conn, "%s\n", showCommand)
	return err == nil
}
