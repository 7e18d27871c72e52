/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package bridge republishes pending transactions from a subscription stream
// onto an MQTT broker, one JSON-RPC request per transaction.
package bridge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/eden-network/mempool-stream/internal/driver"
	"github.com/eden-network/mempool-stream/internal/jsonrpc"
	"github.com/eden-network/mempool-stream/internal/models"
)

// PublishMethod names the JSON-RPC method carried by republished
// transactions.
const PublishMethod = "pending_tx"

// Config holds the broker connection and publish settings.
type Config struct {
	Scheme    string
	Host      string
	Port      int
	User      string
	Password  string
	ClientId  string
	Topic     string
	Qos       byte
	KeepAlive int
}

// Bridge owns one MQTT connection and pushes every transaction it is handed
// to the configured topic.
type Bridge struct {
	client MQTT.Client
	config Config
	logger zerolog.Logger
}

// New connects to the broker described by config.
func New(config Config, logger zerolog.Logger) (*Bridge, error) {
	if config.ClientId == "" {
		config.ClientId = uuid.NewString()
	}
	uri := &url.URL{
		Scheme: strings.ToLower(config.Scheme),
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		User:   url.UserPassword(config.User, config.Password),
	}
	client, err := createClient(config.ClientId, uri, config.KeepAlive, logger)
	if err != nil {
		return nil, err
	}
	return &Bridge{client: client, config: config, logger: logger}, nil
}

// Run consumes the stream until it ends, publishing each transaction. It
// returns the stream's termination reason.
func (b *Bridge) Run(stream *driver.Stream) error {
	for {
		tx, ok := stream.Next()
		if !ok {
			return stream.Err()
		}
		payload, err := buildPayload(tx)
		if err != nil {
			b.logger.Error().Err(err).Msg("failed to build publish payload")
			continue
		}
		token := b.client.Publish(b.config.Topic, b.config.Qos, false, payload)
		if token.Wait() && token.Error() != nil {
			b.logger.Error().
				Err(token.Error()).
				Str("topic", b.config.Topic).
				Msg("failed to publish pending transaction")
			continue
		}
		b.logger.Debug().
			Str("hash", tx.Hash.Hex()).
			Str("topic", b.config.Topic).
			Msg("published pending transaction")
	}
}

// Close disconnects from the broker, letting in-flight work finish.
func (b *Bridge) Close() {
	b.client.Disconnect(5000)
}

// buildPayload wraps one pending transaction in a JSON-RPC request.
func buildPayload(tx *models.PendingTx) ([]byte, error) {
	request := jsonrpc.NewRequest(PublishMethod)
	if err := request.SetParams(tx); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal publish payload")
	}
	return payload, nil
}

// Create a MQTT client
func createClient(clientId string, uri *url.URL, keepAlive int, logger zerolog.Logger) (MQTT.Client, error) {
	logger.Info().
		Str("uri", uri.Redacted()).
		Str("clientId", clientId).
		Msg("creating MQTT client and connection")

	opts := MQTT.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s", uri.Scheme, uri.Host))
	opts.SetClientID(clientId)
	opts.SetUsername(uri.User.Username())
	password, _ := uri.User.Password()
	opts.SetPassword(password)
	opts.SetKeepAlive(time.Second * time.Duration(keepAlive))
	opts.SetConnectionLostHandler(func(client MQTT.Client, e error) {
		logger.Warn().Err(e).Msg("broker connection lost")
		token := client.Connect()
		if token.Wait() && token.Error() != nil {
			logger.Warn().Err(token.Error()).Msg("reconnection failed")
		} else {
			logger.Warn().Msg("reconnection successful")
		}
	})

	client := MQTT.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return client, errors.Wrap(token.Error(), "failed to connect to broker")
	}
	return client, nil
}
