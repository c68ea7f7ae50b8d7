package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTTL = 10 * time.Minute

func setupRedisSeatHold() (SeatHoldStore, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewRedisSeatHoldStore(db, zap.NewNop()), mock
}

func TestRedisSeatHold_HoldFreeSeats(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID := uuid.New(), uuid.New()
	seatA, seatB := uuid.New(), uuid.New()

	mock.ExpectSetNX(holdKey(showID, seatA), userID.String(), testTTL).SetVal(true)
	mock.ExpectSetNX(holdKey(showID, seatB), userID.String(), testTTL).SetVal(true)

	err := store.Hold(context.Background(), showID, []uuid.UUID{seatA, seatB}, userID, testTTL)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatHold_RefreshOwnHold(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID, seatID := uuid.New(), uuid.New(), uuid.New()
	key := holdKey(showID, seatID)

	mock.ExpectSetNX(key, userID.String(), testTTL).SetVal(false)
	mock.ExpectGet(key).SetVal(userID.String())
	mock.ExpectExpire(key, testTTL).SetVal(true)

	err := store.Hold(context.Background(), showID, []uuid.UUID{seatID}, userID, testTTL)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatHold_HeldByOtherRollsBack(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID, otherID := uuid.New(), uuid.New(), uuid.New()
	seatA, seatB := uuid.New(), uuid.New()

	mock.ExpectSetNX(holdKey(showID, seatA), userID.String(), testTTL).SetVal(true)
	mock.ExpectSetNX(holdKey(showID, seatB), userID.String(), testTTL).SetVal(false)
	mock.ExpectGet(holdKey(showID, seatB)).SetVal(otherID.String())
	mock.ExpectDel(holdKey(showID, seatA)).SetVal(1)

	err := store.Hold(context.Background(), showID, []uuid.UUID{seatA, seatB}, userID, testTTL)

	assert.ErrorIs(t, err, ErrSeatHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatHold_ExpiredBetweenCallsRetries(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID, seatID := uuid.New(), uuid.New(), uuid.New()
	key := holdKey(showID, seatID)

	mock.ExpectSetNX(key, userID.String(), testTTL).SetVal(false)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetNX(key, userID.String(), testTTL).SetVal(true)

	err := store.Hold(context.Background(), showID, []uuid.UUID{seatID}, userID, testTTL)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatHold_Holders(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID := uuid.New(), uuid.New()
	seatA, seatB := uuid.New(), uuid.New()

	mock.ExpectMGet(holdKey(showID, seatA), holdKey(showID, seatB)).
		SetVal([]interface{}{userID.String(), nil})

	holders, err := store.Holders(context.Background(), showID, []uuid.UUID{seatA, seatB})

	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]uuid.UUID{seatA: userID}, holders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSeatHold_ReleaseOnlyOwn(t *testing.T) {
	store, mock := setupRedisSeatHold()
	showID, userID, otherID := uuid.New(), uuid.New(), uuid.New()
	seatA, seatB, seatC := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectGet(holdKey(showID, seatA)).SetVal(userID.String())
	mock.ExpectGet(holdKey(showID, seatB)).SetVal(otherID.String())
	mock.ExpectGet(holdKey(showID, seatC)).RedisNil()
	mock.ExpectDel(holdKey(showID, seatA)).SetVal(1)

	err := store.Release(context.Background(), showID, []uuid.UUID{seatA, seatB, seatC}, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySeatHold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	store := NewMemorySeatHoldStore()
	store.now = func() time.Time { return now }

	showID, alice, bob := uuid.New(), uuid.New(), uuid.New()
	seatA, seatB := uuid.New(), uuid.New()

	require.NoError(t, store.Hold(ctx, showID, []uuid.UUID{seatA}, alice, testTTL))

	t.Run("other user is rejected and nothing is held", func(t *testing.T) {
		err := store.Hold(ctx, showID, []uuid.UUID{seatB, seatA}, bob, testTTL)
		assert.ErrorIs(t, err, ErrSeatHeld)

		holders, err := store.Holders(ctx, showID, []uuid.UUID{seatA, seatB})
		require.NoError(t, err)
		assert.Equal(t, map[uuid.UUID]uuid.UUID{seatA: alice}, holders)
	})

	t.Run("release by non-owner is a no-op", func(t *testing.T) {
		require.NoError(t, store.Release(ctx, showID, []uuid.UUID{seatA}, bob))
		holders, _ := store.Holders(ctx, showID, []uuid.UUID{seatA})
		assert.Equal(t, alice, holders[seatA])
	})

	t.Run("expired hold can be taken and swept", func(t *testing.T) {
		now = now.Add(testTTL + time.Second)

		holders, _ := store.Holders(ctx, showID, []uuid.UUID{seatA})
		assert.Empty(t, holders)
		assert.Equal(t, 1, store.Sweep())

		require.NoError(t, store.Hold(ctx, showID, []uuid.UUID{seatA}, bob, testTTL))
	})
}
