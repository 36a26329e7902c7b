package live

import (
	"context"
	"fmt"
	"net/url"
)

// transport maintains one connection to the notification server. run blocks
// until the connection drops or ctx ends; the channel's reconnect loop calls
// it again after a backoff.
type transport interface {
	run(ctx context.Context, sink eventSink) error
}

// eventSink receives decoded transport activity. Implemented by Channel.
type eventSink interface {
	handleEvent(kind string, payload []byte)
	setConnected(connected bool)
}

// newTransport selects a transport from the endpoint scheme. http(s) origins
// are accepted for compatibility with configurations that point at the
// notification server's web origin; they are dialed as websockets.
func newTransport(endpoint string) (transport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid events URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return &websocketTransport{url: endpoint}, nil
	case "http", "https":
		if u.Scheme == "http" {
			u.Scheme = "ws"
		} else {
			u.Scheme = "wss"
		}
		if u.Path == "" || u.Path == "/" {
			u.Path = "/events"
		}
		return &websocketTransport{url: u.String()}, nil
	case "redis", "rediss":
		return newRedisTransport(endpoint)
	default:
		return nil, fmt.Errorf("unsupported events URL scheme %q", u.Scheme)
	}
}
