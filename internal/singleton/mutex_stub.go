//go:build !windows

package singleton

// namedMutex is a no-op outside Windows; the lock file and the TCP port
// cover those platforms.
type namedMutex struct{}

func acquireNamedMutex() (*namedMutex, error) {
	return &namedMutex{}, nil
}

func (m *namedMutex) release() {}
