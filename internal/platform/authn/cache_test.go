package authn_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/authn"
)

func TestCachedSessionStore_FindByTokenHash_PopulatesCacheOnMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := newFakeSessionStore()
	store := authn.NewCachedSessionStore(inner, rdb)

	session := &authn.Session{TokenHash: "hash-1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, inner.Create(context.Background(), session))

	mock.ExpectGet("session:hash-1").RedisNil()
	mock.Regexp().ExpectSet("session:hash-1", `.*`, 5*time.Minute).SetVal("OK")
	mock.Regexp().ExpectSet("session:byid:"+session.ID, "hash-1", 5*time.Minute).SetVal("OK")
	mock.ExpectSAdd("session:byuser:u1", "hash-1").SetVal(1)
	mock.ExpectExpire("session:byuser:u1", 5*time.Minute).SetVal(true)

	got, err := store.FindByTokenHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSessionStore_Revoke_InvalidatesCachedEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := newFakeSessionStore()
	store := authn.NewCachedSessionStore(inner, rdb)

	mock.ExpectGet("session:byid:a1").SetVal("hash-1")
	mock.ExpectDel("session:hash-1", "session:byid:a1").SetVal(2)

	require.NoError(t, store.Revoke(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSessionStore_Revoke_NoCachedEntryStillDelegates(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := newFakeSessionStore()
	store := authn.NewCachedSessionStore(inner, rdb)

	mock.ExpectGet("session:byid:unknown").RedisNil()

	require.NoError(t, store.Revoke(context.Background(), "unknown"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSessionStore_RevokeAll_InvalidatesEveryCachedSessionForUser(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	inner := newFakeSessionStore()
	store := authn.NewCachedSessionStore(inner, rdb)

	mock.ExpectSMembers("session:byuser:u1").SetVal([]string{"hash-1", "hash-2"})
	mock.ExpectDel("session:hash-1").SetVal(1)
	mock.ExpectDel("session:hash-2").SetVal(1)
	mock.ExpectDel("session:byuser:u1").SetVal(1)

	require.NoError(t, store.RevokeAll(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
