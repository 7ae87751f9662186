package services

import (
	"context"
	"testing"
	"time"

	"diskwatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWebSocketHubBroadcastsCycles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewWebSocketHub(quietLog())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error)
	go func() { stopped <- hub.Run(ctx) }()

	client := NewClientConnection("viewer-1", nil)
	require.True(t, hub.Register(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.ObserveCycle(models.CycleResult{Triggered: true})

	select {
	case msg := <-client.Send:
		assert.Equal(t, "cycle", msg.Type)
		result, ok := msg.Data.(models.CycleResult)
		require.True(t, ok)
		assert.True(t, result.Triggered)
	case <-time.After(time.Second):
		t.Fatal("no message broadcast")
	}

	cancel()
	require.NoError(t, <-stopped)

	_, open := <-client.Send
	assert.False(t, open)
	assert.False(t, hub.Register(NewClientConnection("late", nil)))
}

func TestWebSocketHubUnregister(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewWebSocketHub(quietLog())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error)
	go func() { stopped <- hub.Run(ctx) }()

	client := NewClientConnection("viewer-1", nil)
	require.True(t, hub.Register(client))
	hub.Unregister(client.ID)

	_, open := <-client.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())

	cancel()
	require.NoError(t, <-stopped)
}
