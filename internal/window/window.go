package window

import (
	"sync"

	"go.uber.org/zap"
)

// FullscreenEvent is emitted with the new fullscreen state as payload.
const FullscreenEvent = "window-fullscreen"

type Window interface {
	IsFullscreen() (bool, error)
	SetFullscreen(fullscreen bool) error
}

type Emitter interface {
	Emit(event string, payload any) error
}

// State is a window whose fullscreen flag is owned by the shell and
// applied by the presentation layer, which receives every change as
// a FullscreenEvent.
type State struct {
	mu         sync.Mutex
	fullscreen bool

	emitter Emitter
	log     *zap.Logger
}

var _ Window = (*State)(nil)

func NewState(emitter Emitter, log *zap.Logger) *State {
	return &State{
		emitter: emitter,
		log:     log.Named("window"),
	}
}

func (s *State) IsFullscreen() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fullscreen, nil
}

func (s *State) SetFullscreen(fullscreen bool) error {
	s.mu.Lock()
	s.fullscreen = fullscreen
	s.mu.Unlock()

	s.log.Debug("fullscreen changed", zap.Bool("fullscreen", fullscreen))

	return s.emitter.Emit(FullscreenEvent, fullscreen)
}

// Toggle flips the fullscreen state of w. Failures are ignored.
func Toggle(w Window) {
	fullscreen, err := w.IsFullscreen()
	if err != nil {
		return
	}

	_ = w.SetFullscreen(!fullscreen)
}
