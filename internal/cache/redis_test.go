package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockRedis(t *testing.T, ttl time.Duration) (*Redis, *mock.Client) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	return NewRedis(client, "do-it-with-ease", ttl), client
}

func TestRedis_SetWritesEntryAndIndex(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	gomock.InOrder(
		client.EXPECT().
			Do(ctx, mock.Match("SET", "do-it-with-ease:user-1:all", "payload", "EX", "60")).
			Return(mock.Result(mock.RedisString("OK"))),
		client.EXPECT().
			Do(ctx, mock.Match("SADD", "do-it-with-ease:user-1:keys", "do-it-with-ease:user-1:all")).
			Return(mock.Result(mock.RedisInt64(1))),
	)

	require.NoError(t, r.Set(ctx, "user-1", "all", []byte("payload")))
}

func TestRedis_SetWithoutTTL(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, 0)

	client.EXPECT().
		Do(ctx, mock.Match("SET", "do-it-with-ease:user-1:all", "payload")).
		Return(mock.Result(mock.RedisString("OK")))
	client.EXPECT().
		Do(ctx, mock.Match("SADD", "do-it-with-ease:user-1:keys", "do-it-with-ease:user-1:all")).
		Return(mock.Result(mock.RedisInt64(1)))

	require.NoError(t, r.Set(ctx, "user-1", "all", []byte("payload")))
}

func TestRedis_SetFailureSkipsIndex(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	client.EXPECT().
		Do(ctx, mock.Match("SET", "do-it-with-ease:user-1:all", "payload", "EX", "60")).
		Return(mock.ErrorResult(errors.New("connection refused")))

	err := r.Set(ctx, "user-1", "all", []byte("payload"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}

func TestRedis_GetHitAndMiss(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	client.EXPECT().
		Do(ctx, mock.Match("GET", "do-it-with-ease:user-1:all")).
		Return(mock.Result(mock.RedisString("payload")))
	client.EXPECT().
		Do(ctx, mock.Match("GET", "do-it-with-ease:user-1:missing")).
		Return(mock.Result(mock.RedisNil()))

	got, ok, err := r.Get(ctx, "user-1", "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	got, ok, err = r.Get(ctx, "user-1", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedis_GetError(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	client.EXPECT().
		Do(ctx, mock.Match("GET", "do-it-with-ease:user-1:all")).
		Return(mock.ErrorResult(errors.New("timeout")))

	_, ok, err := r.Get(ctx, "user-1", "all")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRedis_InvalidateDropsIndexedKeys(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	gomock.InOrder(
		client.EXPECT().
			Do(ctx, mock.Match("SMEMBERS", "do-it-with-ease:user-1:keys")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisString("do-it-with-ease:user-1:all"),
				mock.RedisString("do-it-with-ease:user-1:search=docs"),
			))),
		client.EXPECT().
			Do(ctx, mock.Match("DEL",
				"do-it-with-ease:user-1:all",
				"do-it-with-ease:user-1:search=docs",
				"do-it-with-ease:user-1:keys",
			)).
			Return(mock.Result(mock.RedisInt64(3))),
	)

	require.NoError(t, r.Invalidate(ctx, "user-1"))
}

func TestRedis_InvalidateEmptyScope(t *testing.T) {
	ctx := context.Background()
	r, client := newMockRedis(t, time.Minute)

	client.EXPECT().
		Do(ctx, mock.Match("SMEMBERS", "do-it-with-ease:user-2:keys")).
		Return(mock.Result(mock.RedisNil()))
	client.EXPECT().
		Do(ctx, mock.Match("DEL", "do-it-with-ease:user-2:keys")).
		Return(mock.Result(mock.RedisInt64(0)))

	require.NoError(t, r.Invalidate(ctx, "user-2"))
}

func TestNewRedis_KeepsExistingSeparator(t *testing.T) {
	r := NewRedis(nil, "app:", time.Minute)
	assert.Equal(t, "app:user-1:all", r.entryKey("user-1", "all"))
	assert.Equal(t, "app:user-1:keys", r.indexKey("user-1"))
}
