package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqttcommon "safetrack/common/mqtt"
	"safetrack/internal/telemetry"

	"go.uber.org/zap"
)

// Store the telemetry read/write surface the bridge needs.
type Store interface {
	ReadLastValue(ctx context.Context, path string) (telemetry.Document, error)
	WriteLastValue(ctx context.Context, path string, doc telemetry.Document) error
	Append(ctx context.Context, path string, doc telemetry.Document) (string, error)
}

// Subscriber the part of the MQTT client the consumer uses.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Consumer copies tracker messages from MQTT into the telemetry store.
//
//	<prefix>/status     -> current-status
//	<prefix>/health     -> latest-health, appended to heartbeat
//	<prefix>/gps        -> appended to gps, fix merged into current-status
//	<prefix>/heartbeat  -> appended to heartbeat
type Consumer struct {
	sub     Subscriber
	store   Store
	prefix  string
	qos     byte
	paths   telemetry.Paths
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewConsumer(sub Subscriber, st Store, topicPrefix, storeRoot string, qos byte, logger *zap.Logger) *Consumer {
	return &Consumer{
		sub:     sub,
		store:   st,
		prefix:  strings.Trim(topicPrefix, "/"),
		qos:     qos,
		paths:   telemetry.PathsFor(storeRoot),
		timeout: 5 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Consumer) topics() []string {
	return []string{
		c.prefix + "/status",
		c.prefix + "/health",
		c.prefix + "/gps",
		c.prefix + "/heartbeat",
	}
}

// Start subscribes to every tracker topic and blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	for _, topic := range c.topics() {
		if err := c.sub.Subscribe(topic, c.qos, c.handleMessage); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}
	c.logger.Info("MQTT bridge started", zap.Strings("topics", c.topics()))

	<-ctx.Done()
	return nil
}

func (c *Consumer) Stop() {
	if err := c.sub.Unsubscribe(c.topics()...); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("MQTT bridge stopped")
}

func (c *Consumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	var doc telemetry.Document
	if err := json.Unmarshal(payload, &doc); err != nil || doc == nil {
		return fmt.Errorf("payload on %s is not a JSON object", topic)
	}
	if _, ok := doc["timestamp"]; !ok {
		doc["timestamp"] = float64(c.now().UnixMilli())
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	kind := strings.TrimPrefix(topic, c.prefix+"/")
	var err error
	switch kind {
	case "status":
		err = c.store.WriteLastValue(ctx, c.paths.CurrentStatus, doc)
	case "health":
		if err = c.store.WriteLastValue(ctx, c.paths.LatestHealth, doc); err == nil {
			_, err = c.store.Append(ctx, c.paths.Heartbeat, doc)
		}
	case "gps":
		if _, err = c.store.Append(ctx, c.paths.GPS, doc); err == nil {
			err = c.mergeFix(ctx, doc)
		}
	case "heartbeat":
		_, err = c.store.Append(ctx, c.paths.Heartbeat, doc)
	default:
		return fmt.Errorf("unexpected topic %s", topic)
	}
	if err != nil {
		return fmt.Errorf("store %s message: %w", kind, err)
	}

	c.logger.Debug("Stored tracker message", zap.String("kind", kind))
	return nil
}

// mergeFix copies the position fields of a gps message into current-status.
func (c *Consumer) mergeFix(ctx context.Context, fix telemetry.Document) error {
	status, err := c.store.ReadLastValue(ctx, c.paths.CurrentStatus)
	if err != nil {
		return err
	}
	if status == nil {
		status = telemetry.Document{}
	}
	for _, k := range []string{"latitude", "longitude", "gps_valid"} {
		if v, ok := fix[k]; ok {
			status[k] = v
		}
	}
	status["timestamp"] = fix["timestamp"]
	return c.store.WriteLastValue(ctx, c.paths.CurrentStatus, status)
}
