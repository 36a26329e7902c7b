package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tritonsoft/leadboard/internal/models"
)

const handshakeTimeout = 10 * time.Second

// websocketTransport reads JSON event envelopes from a websocket endpoint.
type websocketTransport struct {
	url string
}

func (t *websocketTransport) run(ctx context.Context, sink eventSink) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", t.url, err)
	}
	defer conn.Close()

	sink.setConnected(true)
	defer sink.setConnected(false)

	// Unblock ReadMessage when ctx ends.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read message: %w", err)
		}
		var env models.EventEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frames are dropped; subscribers never see channel errors.
			continue
		}
		sink.handleEvent(env.Event, env.Data)
	}
}
