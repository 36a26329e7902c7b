package live

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tritonsoft/leadboard/internal/models"
)

// redisTransport subscribes to the notification server's pub/sub channels,
// one per event kind. The message payload is the record JSON.
type redisTransport struct {
	opts *redis.Options
}

func newRedisTransport(rawURL string) (*redisTransport, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}
	return &redisTransport{opts: opts}, nil
}

func (t *redisTransport) run(ctx context.Context, sink eventSink) error {
	client := redis.NewClient(t.opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging redis: %w", err)
	}

	sub := client.Subscribe(ctx, models.EventKinds...)
	defer sub.Close()

	// Wait for the subscription confirmation before reporting connected.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	sink.setConnected(true)
	defer sink.setConnected(false)

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return errors.New("subscription closed")
			}
			sink.handleEvent(msg.Channel, []byte(msg.Payload))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
