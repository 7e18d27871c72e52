/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	mempoolstream "github.com/eden-network/mempool-stream"
	"github.com/eden-network/mempool-stream/internal/bridge"
	"github.com/eden-network/mempool-stream/internal/driver"
)

const serviceName = "mempool-stream"

func main() {
	configPath := flag.String("config", "cmd/res/configuration.toml", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	logger.Info().Str("version", mempoolstream.Version).Msg("starting")

	config, err := driver.LoadConfigFromFile(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := driver.New(config.FeedEndpoint,
		driver.WithTopics(config.FeedTopics...),
		driver.WithLogger(logger),
		driver.WithMetrics(prometheus.DefaultRegisterer))

	stream, err := client.Subscribe(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to subscribe to feed")
	}

	republisher, err := bridge.New(bridge.Config{
		Scheme:    config.BridgeScheme,
		Host:      config.BridgeHost,
		Port:      config.BridgePort,
		User:      config.BridgeUser,
		Password:  config.BridgePassword,
		ClientId:  config.BridgeClientId,
		Topic:     config.BridgeTopic,
		Qos:       config.BridgeQos,
		KeepAlive: config.BridgeKeepAlive,
	}, logger)
	if err != nil {
		stream.Close()
		logger.Fatal().Err(err).Msg("failed to connect to broker")
	}
	defer republisher.Close()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		stream.Close()
	}()

	if err := republisher.Run(stream); err != nil {
		logger.Fatal().Err(err).Msg("feed subscription ended")
	}
	logger.Info().Msg("stopped")
}
