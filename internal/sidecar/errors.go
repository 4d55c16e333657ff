package sidecar

import (
	"errors"
	"fmt"
)

var (
	ErrNoExecutable = errors.New("no sidecar executable configured")
)

// LaunchError is returned by Start when the sidecar executable could not
// be resolved or spawned.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch sidecar %q: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func IsLaunchError(err error) bool {
	if err == nil {
		return false
	}

	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}
