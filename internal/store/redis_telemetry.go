package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"safetrack/internal/telemetry"

	rediscommon "safetrack/common/redis"

	"github.com/go-redis/redis/v8"
)

// RedisTelemetryStore keeps last values as JSON strings (GET/SET) and
// append logs as Redis Streams whose "data" field carries the JSON document.
type RedisTelemetryStore struct {
	c      *redis.Client
	maxLen int64
}

func NewRedisTelemetryStore(c *redis.Client, maxLen int64) *RedisTelemetryStore {
	return &RedisTelemetryStore{c: c, maxLen: maxLen}
}

var (
	_ TelemetryStore  = (*RedisTelemetryStore)(nil)
	_ TelemetryWriter = (*RedisTelemetryStore)(nil)
)

func (r *RedisTelemetryStore) Name() string { return "redis" }

func (r *RedisTelemetryStore) Ping(ctx context.Context) error {
	return rediscommon.Ping(ctx, r.c)
}

func (r *RedisTelemetryStore) get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisTelemetryStore) ReadLastValue(ctx context.Context, path string) (telemetry.Document, error) {
	raw, err := r.get(ctx, path)
	if err != nil {
		if err == ErrMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeDocument(raw)
}

func (r *RedisTelemetryStore) ReadLastN(ctx context.Context, path string, n int) ([]telemetry.Entry, error) {
	msgs, err := rediscommon.ReadLatestFromStream(ctx, r.c, path, int64(n))
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}

	entries := make([]telemetry.Entry, 0, len(msgs))
	for _, m := range msgs {
		raw, _ := m.Values["data"].(string)
		doc, err := decodeDocument(raw)
		if err != nil || doc == nil {
			continue
		}
		entries = append(entries, telemetry.Entry{Key: m.ID, Doc: doc})
	}
	return entries, nil
}

func (r *RedisTelemetryStore) Paths(ctx context.Context, root string) ([]string, error) {
	prefix := strings.TrimSuffix(root, "/") + "/"
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	seen := map[string]bool{}
	paths := []string{}
	for _, k := range keys {
		child := strings.SplitN(strings.TrimPrefix(k, prefix), "/", 2)[0]
		if child != "" && !seen[child] {
			seen[child] = true
			paths = append(paths, child)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (r *RedisTelemetryStore) WriteLastValue(ctx context.Context, path string, doc telemetry.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return r.c.Set(ctx, path, string(b), 0).Err()
}

func (r *RedisTelemetryStore) Append(ctx context.Context, path string, doc telemetry.Document) (string, error) {
	id, err := rediscommon.PublishJSONToStream(ctx, r.c, path, doc, r.maxLen)
	if err != nil {
		return "", fmt.Errorf("append %s: %w", path, err)
	}
	return id, nil
}

// decodeDocument treats empty input and JSON null as "no value".
func decodeDocument(raw string) (telemetry.Document, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var doc telemetry.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode telemetry document: %w", err)
	}
	return doc, nil
}
