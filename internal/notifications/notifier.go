package notifications

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"campuswall/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes room events into Redis channels so every running
// instance can fan them out to its own clients. A nil Redis client makes
// every method a no-op, single-instance deployments work without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRoomEvent sends a serialized room event to the room's channel.
func (n *Notifier) PublishRoomEvent(ctx context.Context, roomID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, RoomChannel(roomID), payload).Err()
}

// StartRoomSubscriber subscribes to the chat:room:* pattern and calls
// onMessage for each incoming message until ctx is cancelled.
func (n *Notifier) StartRoomSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:room:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in room subscriber",
								"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// RoomChannel derives the Redis channel name for a chat room.
func RoomChannel(roomID uint) string {
	return "chat:room:" + strconv.FormatUint(uint64(roomID), 10)
}
