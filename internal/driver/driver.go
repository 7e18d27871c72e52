/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package driver implements the subscription driver for the aggregated
// mempool feed: it owns one websocket connection per subscription, sends the
// subscribe request, classifies every inbound frame, and forwards decoded
// pending transactions to a Stream.
package driver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/eden-network/mempool-stream/internal/jsonrpc"
)

const (
	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 45 * time.Second
	// writeWait bounds the subscribe request and control-frame writes.
	writeWait = 10 * time.Second
)

// defaultTopics subscribes to the full pending-transaction feed.
var defaultTopics = []string{"newTxs"}

// Client subscribes to an aggregated mempool feed endpoint.
type Client struct {
	endpoint string
	topics   []string
	dialer   *websocket.Dialer
	logger   zerolog.Logger
	metrics  *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the driver loop. The default discards
// everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTopics overrides the feed topics named in the subscribe request.
func WithTopics(topics ...string) Option {
	return func(c *Client) { c.topics = topics }
}

// WithDialer replaces the websocket dialer, e.g. to supply TLS settings.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = dialer }
}

// WithMetrics registers driver metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(reg) }
}

// New creates a client for the given wss:// endpoint.
func New(endpoint string, options ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		topics:   defaultTopics,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Subscribe connects to the endpoint, sends the subscribe request, and
// starts the goroutine that owns the connection for the life of the stream.
// Dial and send failures are returned synchronously; after that, every
// failure ends the stream and is reported through Stream.Err. The context
// only bounds the connection setup.
func (c *Client) Subscribe(ctx context.Context) (*Stream, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", c.endpoint)
	}

	payload, err := json.Marshal(jsonrpc.NewSubscribeRequest(c.topics))
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to marshal subscribe request")
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to arm write deadline")
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to send subscribe request")
	}
	if err := conn.SetWriteDeadline(time.Time{}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to clear write deadline")
	}

	c.logger.Debug().
		Str("endpoint", c.endpoint).
		Strs("topics", c.topics).
		Msg("subscribed to pending-transaction feed")

	stream := newStream()
	go c.listen(conn, stream)
	return stream, nil
}
