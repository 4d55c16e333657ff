package bridge_test

import (
	"testing"

	"github.com/lambda-feedback/deskshell/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createHub(buffer int) *bridge.Hub {
	return bridge.NewHub(bridge.HubParams{
		Config: bridge.Config{Buffer: buffer},
		Log:    zap.NewNop(),
	})
}

func TestHub_Emit_NoListeners(t *testing.T) {
	hub := createHub(0)

	err := hub.Emit("sidecar-stdout", "hello")
	assert.ErrorIs(t, err, bridge.ErrNoListeners)
}

func TestHub_Emit_DeliversToAllSubscribers(t *testing.T) {
	hub := createHub(0)

	a := hub.Subscribe()
	defer a.Close()

	b := hub.Subscribe()
	defer b.Close()

	require.NoError(t, hub.Emit("sidecar-stdout", "hello\n"))

	for _, sub := range []*bridge.Subscription{a, b} {
		msg := <-sub.Messages()
		assert.Equal(t, "sidecar-stdout", msg.Event)
		assert.Equal(t, "hello\n", msg.Payload)
	}
}

func TestHub_Emit_PreservesOrder(t *testing.T) {
	hub := createHub(0)

	sub := hub.Subscribe()
	defer sub.Close()

	for _, payload := range []string{"1", "2", "3"} {
		require.NoError(t, hub.Emit("sidecar-stdout", payload))
	}

	for _, want := range []string{"1", "2", "3"} {
		msg := <-sub.Messages()
		assert.Equal(t, want, msg.Payload)
	}
}

func TestHub_Emit_DropsWhenSubscriberBehind(t *testing.T) {
	hub := createHub(1)

	sub := hub.Subscribe()
	defer sub.Close()

	require.NoError(t, hub.Emit("sidecar-stdout", "first"))

	err := hub.Emit("sidecar-stdout", "second")
	assert.ErrorIs(t, err, bridge.ErrSubscriberBehind)

	msg := <-sub.Messages()
	assert.Equal(t, "first", msg.Payload)
}

func TestSubscription_Close(t *testing.T) {
	hub := createHub(0)

	sub := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.Subscribers())

	_, ok := <-sub.Messages()
	assert.False(t, ok)

	assert.ErrorIs(t, hub.Emit("sidecar-stdout", "hello"), bridge.ErrNoListeners)
}
