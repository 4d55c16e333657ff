package sidecar

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// relay forwards the output chunks of a process to the sink, in the order
// they arrive, until the event channel is closed. exited, if set, is called
// when the process reports its exit.
func relay(events <-chan Event, sink Sink, exited func(), log *zap.Logger) {
	for evt := range events {
		switch evt.Kind {
		case EventStdout:
			msg := decode(evt.Data)
			log.Debug("stdout", zap.String("data", msg))
			emit(sink, StdoutEvent, msg, log)
		case EventStderr:
			msg := decode(evt.Data)
			log.Warn("stderr", zap.String("data", msg))
			emit(sink, StderrEvent, msg, log)
		case EventError:
			// not forwarded
			log.Debug("stream read failed", zap.Error(evt.Err))
		case EventTerminated:
			// not forwarded
			log.Info("process exited", zap.Stringer("status", evt.Exit))
			if exited != nil {
				exited()
			}
		default:
			log.Warn("ignoring event", zap.Stringer("kind", evt.Kind))
		}
	}
}

func emit(sink Sink, event string, payload string, log *zap.Logger) {
	if sink == nil {
		return
	}

	if err := sink.Emit(event, payload); err != nil {
		log.Debug("emit failed", zap.String("event", event), zap.Error(err))
	}
}

// decode converts a chunk to text, replacing invalid UTF-8
// sequences with U+FFFD.
func decode(data []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}

	return string(text)
}
