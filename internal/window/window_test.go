package window_test

import (
	"errors"
	"testing"

	"github.com/lambda-feedback/deskshell/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(event string, payload any) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

type mockWindow struct {
	mock.Mock
}

func (m *mockWindow) IsFullscreen() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockWindow) SetFullscreen(fullscreen bool) error {
	args := m.Called(fullscreen)
	return args.Error(0)
}

func TestState_Toggle_EmitsNewState(t *testing.T) {
	emitter := new(mockEmitter)
	emitter.On("Emit", window.FullscreenEvent, true).Return(nil).Once()
	emitter.On("Emit", window.FullscreenEvent, false).Return(nil).Once()

	s := window.NewState(emitter, zap.NewNop())

	window.Toggle(s)

	fullscreen, err := s.IsFullscreen()
	require.NoError(t, err)
	assert.True(t, fullscreen)

	window.Toggle(s)

	fullscreen, err = s.IsFullscreen()
	require.NoError(t, err)
	assert.False(t, fullscreen)

	emitter.AssertExpectations(t)
}

func TestState_SetFullscreen_ReturnsEmitError(t *testing.T) {
	emitter := new(mockEmitter)
	emitter.On("Emit", window.FullscreenEvent, true).Return(assert.AnError)

	s := window.NewState(emitter, zap.NewNop())

	err := s.SetFullscreen(true)
	assert.ErrorIs(t, err, assert.AnError)

	// the state is still applied
	fullscreen, _ := s.IsFullscreen()
	assert.True(t, fullscreen)
}

func TestToggle_IgnoresReadError(t *testing.T) {
	w := new(mockWindow)
	w.On("IsFullscreen").Return(false, errors.New("no window"))

	assert.NotPanics(t, func() {
		window.Toggle(w)
	})

	w.AssertNotCalled(t, "SetFullscreen", mock.Anything)
}

func TestToggle_IgnoresWriteError(t *testing.T) {
	w := new(mockWindow)
	w.On("IsFullscreen").Return(true, nil)
	w.On("SetFullscreen", false).Return(assert.AnError)

	assert.NotPanics(t, func() {
		window.Toggle(w)
	})

	w.AssertExpectations(t)
}
