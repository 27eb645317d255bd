package lib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRevocationStore(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	store := NewRedisRevocationStore(rdb, time.Hour)
	key := blacklistKey("tok")

	mock.ExpectSet(key, "1", time.Hour).SetVal("OK")
	require.NoError(t, store.Add(ctx, "tok"))

	mock.ExpectExists(key).SetVal(1)
	revoked, err := store.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectExists(blacklistKey("other")).SetVal(0)
	revoked, err = store.Contains(ctx, "other")
	require.NoError(t, err)
	assert.False(t, revoked)

	mock.ExpectExists(key).SetErr(errors.New("connection refused"))
	_, err = store.Contains(ctx, "tok")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistKeyHidesToken(t *testing.T) {
	key := blacklistKey("eyJhbGciOi.secret.part")
	assert.NotContains(t, key, "secret")
	assert.Equal(t, blacklistPrefix, key[:len(blacklistPrefix)])
	assert.Len(t, key, len(blacklistPrefix)+64)
}
