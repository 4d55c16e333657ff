//go:build !windows

package util

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsProcessAlive reports whether a process with the given pid exists.
// Processes that exited but were not reaped yet count as alive.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}

	// the process exists, but belongs to another user
	return errors.Is(err, unix.EPERM)
}
