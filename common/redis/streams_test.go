package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestReadLatestFromStream_OldestFirst(t *testing.T) {
	ctx := context.Background()
	client := setupMiniRedis(t)

	for _, bpm := range []int{70, 71, 72, 73} {
		_, err := PublishJSONToStream(ctx, client, "health-tracker/heartbeat", map[string]int{"bpm": bpm}, 0)
		require.NoError(t, err)
	}

	msgs, err := ReadLatestFromStream(ctx, client, "health-tracker/heartbeat", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, `{"bpm":72}`, msgs[0].Values["data"])
	assert.Equal(t, `{"bpm":73}`, msgs[1].Values["data"])
	assert.Less(t, msgs[0].ID, msgs[1].ID)
}

func TestReadLatestFromStream_MissingStream(t *testing.T) {
	client := setupMiniRedis(t)

	msgs, err := ReadLatestFromStream(context.Background(), client, "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
