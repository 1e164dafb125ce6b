package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Success(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb, err := NewRedisClient(context.Background(), Config{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer func() { _ = rdb.Close() }()

	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
	}{
		{"not configured", ""},
		{"invalid url", "http://not-redis"},
		{"unreachable", "redis://127.0.0.1:1/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rdb, err := NewRedisClient(context.Background(), Config{URL: tt.url})
			assert.Error(t, err)
			assert.Nil(t, rdb)
		})
	}
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewRedisClient(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	assert.Equal(t, "redis://localhost:6379/1", LoadConfig().URL)
}
