package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/embedfarm/wifid/internal/server"
)

const dialTimeout = 10 * time.Second

// Watch subscribes to the daemon's event stream and calls fn for each
// connectivity change until ctx is canceled or the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(server.EventMessage)) error {
	wsURL, err := c.eventsURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return classifyNetworkError("failed to connect to event stream", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop when the context is canceled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var msg server.EventMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return classifyNetworkError("event stream closed", err)
		}
		fn(msg)
	}
}

// eventsURL derives the ws:// endpoint from the HTTP base URL.
func (c *Client) eventsURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", newParseError("invalid base URL", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/events"
	return u.String(), nil
}
