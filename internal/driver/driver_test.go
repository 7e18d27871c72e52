/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package driver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notificationFrame = `{
	"jsonrpc": "2.0",
	"method": "subscription",
	"params": {
		"subscription": 4815270595554998,
		"result": {
			"type": "0x2",
			"hash": "0xd2bd5a7fa523f13e7f955c0753cd2f1de0635b6c165c2494aae44d8bbdd9a9c6",
			"from": "0x19450678803d6a7bb6897ca1e793a071a100cba7",
			"nonce": "0x2",
			"gasLimit": "0x7a120",
			"to": "0x19c10fff96b80208f454034c046ccc4445cd20ba",
			"data": "0x886f9ece",
			"v": "0x26",
			"r": "0xe6e52e08bf9735e38c1808285269afef6b82d500cd5a90966479b5f8fa70e623",
			"s": "0x21490c9a52a60b2c3a5a6045d687dbe8a5e710274aa3071b813a1bf24271eb45",
			"value": "0x83019dfc17b0000",
			"chainId": "0x1",
			"accessList": [],
			"maxPriorityFeePerGas": "0x2faf080",
			"maxFeePerGas": "0xc570bd200"
		}
	}
}`

// newFeedServer starts a websocket server whose handler runs after the
// subscribe request was read off the connection. It returns the ws:// url.
func newFeedServer(t *testing.T, handler func(conn *websocket.Conn, subscribe []byte)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()
		_, subscribe, err := conn.ReadMessage()
		if err != nil {
			t.Error(err)
			return
		}
		handler(conn, subscribe)
	}))
	t.Cleanup(server.CloseClientConnections)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func controlDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func TestSubscribe_SendsSubscribeRequest(t *testing.T) {
	requests := make(chan []byte, 1)
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		requests <- subscribe
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	select {
	case subscribe := <-requests:
		assert.JSONEq(t,
			`{"jsonrpc":"2.0","id":1,"method":"subscribe","params":["newTxs"]}`,
			string(subscribe))
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the subscribe request")
	}
}

func TestSubscribe_CustomTopics(t *testing.T) {
	requests := make(chan []byte, 1)
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		requests <- subscribe
	})

	stream, err := New(url, WithTopics("newTxs", "newBlocks")).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	subscribe := <-requests
	assert.JSONEq(t,
		`{"jsonrpc":"2.0","id":1,"method":"subscribe","params":["newTxs","newBlocks"]}`,
		string(subscribe))
}

func TestSubscribe_DialFailure(t *testing.T) {
	_, err := New("ws://127.0.0.1:1").Subscribe(context.Background())
	assert.Error(t, err)
}

func TestSubscribe_DeliversNotifications(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notificationFrame)))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	tx, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(2), uint64(tx.Nonce))
	assert.Equal(t, uint64(500000), uint64(tx.GasLimit))
}

func TestSubscribe_ErrorResponseKeepsStreamAlive(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		response := `{"jsonrpc":"2.0","error":{"code":-32000,"message":"subscription limit reached"},"id":1}`
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(response)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notificationFrame)))
		conn.ReadMessage()
	})

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	stream, err := New(url, WithLogger(logger)).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	_, ok := stream.Next()
	require.True(t, ok, "stream should survive an error response")
	assert.Contains(t, logs.String(), "error in response")
	assert.Contains(t, logs.String(), "subscription limit reached")
}

func TestSubscribe_ServerCloseEndsStream(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		require.NoError(t, conn.WriteControl(websocket.CloseMessage, message, controlDeadline()))
		conn.ReadMessage()
	})

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	stream, err := New(url, WithLogger(logger)).Subscribe(context.Background())
	require.NoError(t, err)

	_, ok := stream.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, stream.Err(), ErrStreamClosed)
	assert.Contains(t, logs.String(), "feed server has gone away")
}

func TestSubscribe_ServerCloseWithReason(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many subscriptions")
		require.NoError(t, conn.WriteControl(websocket.CloseMessage, message, controlDeadline()))
		conn.ReadMessage()
	})

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	stream, err := New(url, WithLogger(logger)).Subscribe(context.Background())
	require.NoError(t, err)

	_, ok := stream.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, stream.Err(), ErrStreamClosed)
	assert.Contains(t, logs.String(), "received close frame with data")
	assert.Contains(t, logs.String(), "too many subscriptions")
}

func TestSubscribe_PingEchoedAsPong(t *testing.T) {
	pongs := make(chan string, 1)
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		conn.SetPongHandler(func(data string) error {
			pongs <- data
			return errors.New("done")
		})
		require.NoError(t, conn.WriteControl(websocket.PingMessage, []byte("keepalive-1"), controlDeadline()))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	select {
	case payload := <-pongs:
		assert.Equal(t, "keepalive-1", payload, "pong must carry the ping payload")
	case <-time.After(5 * time.Second):
		t.Fatal("server never received a pong")
	}
}

func TestSubscribe_PongEchoedAsPing(t *testing.T) {
	pings := make(chan string, 1)
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		conn.SetPingHandler(func(data string) error {
			pings <- data
			return errors.New("done")
		})
		require.NoError(t, conn.WriteControl(websocket.PongMessage, []byte("keepalive-2"), controlDeadline()))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	select {
	case payload := <-pings:
		assert.Equal(t, "keepalive-2", payload, "ping must carry the pong payload")
	case <-time.After(5 * time.Second):
		t.Fatal("server never received a ping")
	}
}

func TestSubscribe_MalformedFrameEndsStream(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)

	_, ok := stream.Next()
	assert.False(t, ok)
	assert.Error(t, stream.Err())
}

func TestSubscribe_BadTransactionPayloadEndsStream(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		frame := `{"jsonrpc":"2.0","method":"subscription","params":{"subscription":1,"result":5}}`
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)

	_, ok := stream.Next()
	assert.False(t, ok)
	assert.Error(t, stream.Err())
}

func TestSubscribe_BinaryFramesIgnored(t *testing.T) {
	url := newFeedServer(t, func(conn *websocket.Conn, subscribe []byte) {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(notificationFrame)))
		conn.ReadMessage()
	})

	stream, err := New(url).Subscribe(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	_, ok := stream.Next()
	assert.True(t, ok, "binary frames must not disturb the stream")
}
