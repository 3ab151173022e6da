package websocket_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/testutil"
	"github.com/dom/mama-respira/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	client := testutil.NewTestRedis(t)
	broker := websocket.NewRedisBroker(client, "test:realtime", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan websocket.Envelope, 1)
	go func() {
		_ = broker.Subscribe(ctx, func(env websocket.Envelope) {
			received <- env
		})
	}()

	frame := json.RawMessage(`{"type":"DIRECT_MESSAGE","timestamp":1}`)
	// publish until the subscription is live; earlier messages are lost
	require.Eventually(t, func() bool {
		if err := broker.Publish(ctx, websocket.Envelope{UserID: "user_a", Frame: frame}); err != nil {
			return false
		}
		select {
		case env := <-received:
			assert.Equal(t, "user_a", env.UserID)
			assert.JSONEq(t, string(frame), string(env.Frame))
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 50*time.Millisecond)
}
