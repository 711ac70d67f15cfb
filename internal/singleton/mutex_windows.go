//go:build windows

package singleton

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const mutexName = `Global\pdfwatch-single-instance`

// namedMutex wraps the Windows kernel object backing the third
// singleton layer. The handle is held for the process lifetime.
type namedMutex struct {
	handle windows.Handle
}

func acquireNamedMutex() (*namedMutex, error) {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, name)
	if err != nil && err != windows.ERROR_ALREADY_EXISTS {
		return nil, fmt.Errorf("failed to create mutex: %w", err)
	}
	if err == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("named mutex held by another instance")
	}
	return &namedMutex{handle: h}, nil
}

func (m *namedMutex) release() {
	if m.handle != 0 {
		windows.CloseHandle(m.handle)
		m.handle = 0
	}
}
