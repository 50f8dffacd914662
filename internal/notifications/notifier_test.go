package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishRoomEvent(context.Background(), 1, "payload"))
	assert.NoError(t, n.StartRoomSubscriber(context.Background(), func(string, string) {
		t.Fatal("subscriber should never fire without redis")
	}))
}

func TestRoomChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "chat:room:5", RoomChannel(5))
	assert.Equal(t, "chat:room:120", RoomChannel(120))
}

func TestNotifier_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartRoomSubscriber(ctx, func(_ string, payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishRoomEvent(context.Background(), 7, "hello"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-payloads:
	default:
	}

	require.NoError(t, n.PublishRoomEvent(context.Background(), 7, "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestRoomHub_WiringSkipsOwnOrigin(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewRoomHub()
	require.NoError(t, hub.StartWiring(ctx, n))

	listener := newTestClient(1, "Anon-aaaa")
	require.NoError(t, hub.RegisterClient(listener))
	hub.JoinRoom(listener, 3)
	drainEvents(listener.Send)

	// Event from another instance reaches local clients.
	remote, err := json.Marshal(RoomEvent{Type: "message", RoomID: 3, Payload: "from afar", Origin: "other-instance"})
	require.NoError(t, err)
	require.NoError(t, n.PublishRoomEvent(context.Background(), 3, string(remote)))

	assert.Eventually(t, func() bool {
		select {
		case raw := <-listener.Send:
			var event RoomEvent
			if json.Unmarshal(raw, &event) != nil {
				return false
			}
			return event.Type == "message" && event.Origin == ""
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// An event carrying this hub's own origin tag is not delivered again.
	own, err := json.Marshal(RoomEvent{Type: "message", RoomID: 3, Payload: "echo", Origin: hub.instanceID})
	require.NoError(t, err)
	require.NoError(t, n.PublishRoomEvent(context.Background(), 3, string(own)))

	assert.Never(t, func() bool {
		select {
		case <-listener.Send:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}
