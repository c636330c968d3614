package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"safetrack/common/logger"
	mqttcommon "safetrack/common/mqtt"
	rediscommon "safetrack/common/redis"
	"safetrack/internal/bridge"
	"safetrack/internal/config"
	"safetrack/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "safetrack-bridge")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	lg.Info("Starting safetrack-bridge",
		zap.String("mqtt_broker", cfg.MQTT.Broker),
		zap.String("topic_prefix", cfg.MQTT.TopicPrefix),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	defer rediscommon.Close(redisClient)
	if err := rediscommon.Ping(ctx, redisClient); err != nil {
		lg.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT.MQTTConfig, lg)
	if err != nil {
		lg.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	consumer := bridge.NewConsumer(
		mqttClient,
		store.NewRedisTelemetryStore(redisClient, cfg.Telemetry.HistoryMaxLen),
		cfg.MQTT.TopicPrefix,
		cfg.Telemetry.Root,
		cfg.MQTT.QoS,
		lg,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		lg.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			lg.Error("Bridge stopped", zap.Error(err))
		}
	}
	cancel()
	consumer.Stop()
	lg.Info("Service stopped")
}
