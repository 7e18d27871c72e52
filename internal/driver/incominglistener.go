/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package driver

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/eden-network/mempool-stream/internal/jsonrpc"
	"github.com/eden-network/mempool-stream/internal/models"
)

// ErrStreamClosed reports that the server closed the subscription stream.
var ErrStreamClosed = errors.New("stream has been closed")

// listen is the single goroutine owning conn. It answers keep-alive control
// frames, classifies every text frame, and forwards notification payloads to
// the stream until the connection or the consumer goes away.
func (c *Client) listen(conn *websocket.Conn, stream *Stream) {
	defer conn.Close()
	if c.metrics != nil {
		c.metrics.streamActive.Inc()
		defer c.metrics.streamActive.Dec()
	}

	conn.SetPingHandler(func(data string) error {
		c.logger.Debug().Msg("received ping")
		if c.metrics != nil {
			c.metrics.framesReceived.WithLabelValues("ping").Inc()
			c.metrics.keepalivesEchoed.WithLabelValues("pong").Inc()
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	// The feed's keep-alive is symmetric: a pong is answered with a ping
	// carrying the same payload.
	conn.SetPongHandler(func(data string) error {
		c.logger.Debug().Msg("received pong")
		if c.metrics != nil {
			c.metrics.framesReceived.WithLabelValues("pong").Inc()
			c.metrics.keepalivesEchoed.WithLabelValues("ping").Inc()
		}
		return conn.WriteControl(websocket.PingMessage, []byte(data), time.Now().Add(writeWait))
	})

	stream.finish(c.readLoop(conn, stream))
}

// readLoop dispatches inbound frames until a terminal condition. It returns
// nil only when the consumer closed the stream; any other return ends the
// subscription with a reason.
func (c *Client) readLoop(conn *websocket.Conn, stream *Stream) error {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				if c.metrics != nil {
					c.metrics.framesReceived.WithLabelValues("close").Inc()
				}
				if closeErr.Text != "" {
					c.logger.Error().
						Int("code", closeErr.Code).
						Str("reason", closeErr.Text).
						Msg("received close frame with data")
				} else {
					c.logger.Error().Msg("feed server has gone away")
				}
				return ErrStreamClosed
			}
			c.logger.Error().Err(err).Msg("error in transaction stream")
			return errors.Wrap(err, "transport receive failed")
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if c.metrics != nil {
			c.metrics.framesReceived.WithLabelValues("text").Inc()
		}

		msg, err := jsonrpc.DecodeMessage(payload)
		if err != nil {
			if c.metrics != nil {
				c.metrics.decodeErrors.Inc()
			}
			c.logger.Error().Err(err).Msg("failed to decode inbound message")
			return errors.Wrap(err, "failed to decode inbound message")
		}

		switch m := msg.(type) {
		case *jsonrpc.Response:
			if m.IsError() {
				if c.metrics != nil {
					c.metrics.responseErrors.Inc()
				}
				c.logger.Error().
					Str("id", m.Id.String()).
					Str("error", m.Error.String()).
					Msg("error in response")
			} else {
				c.logger.Debug().Str("id", m.Id.String()).Msg("response received")
			}
		case *jsonrpc.Notification:
			var tx models.PendingTx
			if err := json.Unmarshal(m.Result, &tx); err != nil {
				if c.metrics != nil {
					c.metrics.decodeErrors.Inc()
				}
				c.logger.Error().
					Err(err).
					Uint64("subscription", m.Subscription).
					Msg("failed to decode pending transaction")
				return errors.Wrap(err, "failed to decode pending transaction")
			}
			if !stream.push(&tx) {
				// Consumer is gone; normal shutdown.
				return nil
			}
			if c.metrics != nil {
				c.metrics.notifications.Inc()
			}
		}
	}
}
