package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/config"
)

func TestWaitForPing_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	err := waitForPing(context.Background(), ping, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForPing_GivesUp(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0
	err := waitForPing(context.Background(), func(context.Context) error {
		calls++
		return refused
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, refused)
	assert.Equal(t, 3, calls)
}

func TestWaitForPing_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForPing(ctx, func(context.Context) error {
		return errors.New("connection refused")
	}, 10, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")

	_, err = NewRedis(context.Background(), config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}
