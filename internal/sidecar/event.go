package sidecar

import "fmt"

// EventKind tags the variants of Event.
type EventKind int

const (
	// EventStdout carries a chunk read from the standard output of the process.
	EventStdout EventKind = iota + 1

	// EventStderr carries a chunk read from the standard error of the process.
	EventStderr

	// EventError reports a failure reading one of the output streams.
	EventError

	// EventTerminated reports that the process exited. Output of descendants
	// still holding the streams may follow it until the channel is closed.
	EventTerminated
)

func (k EventKind) String() string {
	switch k {
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventError:
		return "error"
	case EventTerminated:
		return "terminated"
	}

	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single message on the channel returned by Process.Events.
// Only the fields matching Kind are set.
type Event struct {
	Kind EventKind

	// Data is the raw chunk for EventStdout and EventStderr
	Data []byte

	// Err is the read error for EventError
	Err error

	// Exit is the exit status for EventTerminated
	Exit ExitStatus
}

type ExitStatus struct {
	// Code is the exit code of the process
	Code *int

	// Signal is the signal that caused the process to exit
	Signal *int
}

func (s ExitStatus) String() string {
	switch {
	case s.Signal != nil:
		return fmt.Sprintf("signal %d", *s.Signal)
	case s.Code != nil:
		return fmt.Sprintf("exit code %d", *s.Code)
	}

	return "unknown"
}

// Names of the events emitted to the presentation layer.
const (
	StdoutEvent = "sidecar-stdout"
	StderrEvent = "sidecar-stderr"
)
