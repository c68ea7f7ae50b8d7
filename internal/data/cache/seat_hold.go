package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSeatHeld kursi sedang di-hold user lain
var ErrSeatHeld = errors.New("seat is held by another user")

// SeatHoldStore soft hold kursi dengan TTL. Hold kedaluwarsa sendiri, tidak ada release otomatis.
type SeatHoldStore interface {
	// Hold all-or-nothing: kalau satu kursi dipegang user lain, hold baru di panggilan ini dibatalkan
	Hold(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID, ttl time.Duration) error
	// Holders seatID -> userID untuk kursi yang sedang di-hold
	Holders(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
	// Release hanya melepas hold milik userID
	Release(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID) error
}

func holdKey(showID, seatID uuid.UUID) string {
	return fmt.Sprintf("hold:%s:%s", showID, seatID)
}

// ==================== REDIS ====================

type redisSeatHold struct {
	client redis.Cmdable
	log    *zap.Logger
}

func NewRedisSeatHoldStore(client redis.Cmdable, log *zap.Logger) SeatHoldStore {
	return &redisSeatHold{
		client: client,
		log:    log.With(zap.String("store", "seat_hold_redis")),
	}
}

func (s *redisSeatHold) Hold(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID, ttl time.Duration) error {
	owner := userID.String()
	var acquired []string

	for _, seatID := range seatIDs {
		key := holdKey(showID, seatID)

		ok, err := s.client.SetNX(ctx, key, owner, ttl).Result()
		if err != nil {
			s.rollback(ctx, acquired)
			return fmt.Errorf("hold seat %s: %w", seatID, err)
		}
		if ok {
			acquired = append(acquired, key)
			continue
		}

		holder, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// hold lama baru saja expired, coba sekali lagi
			if ok, err = s.client.SetNX(ctx, key, owner, ttl).Result(); err == nil && ok {
				acquired = append(acquired, key)
				continue
			}
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.rollback(ctx, acquired)
			return fmt.Errorf("read hold of seat %s: %w", seatID, err)
		}

		if holder != owner {
			s.rollback(ctx, acquired)
			return fmt.Errorf("seat %s: %w", seatID, ErrSeatHeld)
		}

		// hold milik sendiri, perpanjang TTL
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			s.rollback(ctx, acquired)
			return fmt.Errorf("refresh hold of seat %s: %w", seatID, err)
		}
	}

	return nil
}

func (s *redisSeatHold) rollback(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("Failed to roll back partial seat hold", zap.Error(err), zap.Strings("keys", keys))
	}
}

func (s *redisSeatHold) Holders(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	holders := make(map[uuid.UUID]uuid.UUID)
	if len(seatIDs) == 0 {
		return holders, nil
	}

	keys := make([]string, len(seatIDs))
	for i, seatID := range seatIDs {
		keys[i] = holdKey(showID, seatID)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read seat holds for show %s: %w", showID, err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(str)
		if err != nil {
			s.log.Warn("Ignoring malformed seat hold", zap.String("key", keys[i]), zap.String("value", str))
			continue
		}
		holders[seatIDs[i]] = userID
	}

	return holders, nil
}

func (s *redisSeatHold) Release(ctx context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID) error {
	owner := userID.String()
	var mine []string

	for _, seatID := range seatIDs {
		key := holdKey(showID, seatID)
		holder, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read hold of seat %s: %w", seatID, err)
		}
		if holder == owner {
			mine = append(mine, key)
		}
	}

	if len(mine) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, mine...).Err(); err != nil {
		return fmt.Errorf("release seat holds: %w", err)
	}

	return nil
}

// ==================== IN-MEMORY ====================

type memoryHold struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemorySeatHoldStore dipakai kalau Redis tidak dikonfigurasi, satu proses saja
type MemorySeatHoldStore struct {
	mu    sync.Mutex
	holds map[string]memoryHold
	now   func() time.Time
}

func NewMemorySeatHoldStore() *MemorySeatHoldStore {
	return &MemorySeatHoldStore{
		holds: make(map[string]memoryHold),
		now:   time.Now,
	}
}

func (m *MemorySeatHoldStore) Hold(_ context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, seatID := range seatIDs {
		h, ok := m.holds[holdKey(showID, seatID)]
		if ok && h.expiresAt.After(now) && h.userID != userID {
			return fmt.Errorf("seat %s: %w", seatID, ErrSeatHeld)
		}
	}

	for _, seatID := range seatIDs {
		m.holds[holdKey(showID, seatID)] = memoryHold{userID: userID, expiresAt: now.Add(ttl)}
	}

	return nil
}

func (m *MemorySeatHoldStore) Holders(_ context.Context, showID uuid.UUID, seatIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	holders := make(map[uuid.UUID]uuid.UUID)
	for _, seatID := range seatIDs {
		if h, ok := m.holds[holdKey(showID, seatID)]; ok && h.expiresAt.After(now) {
			holders[seatID] = h.userID
		}
	}

	return holders, nil
}

func (m *MemorySeatHoldStore) Release(_ context.Context, showID uuid.UUID, seatIDs []uuid.UUID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, seatID := range seatIDs {
		key := holdKey(showID, seatID)
		if h, ok := m.holds[key]; ok && h.userID == userID {
			delete(m.holds, key)
		}
	}

	return nil
}

// Sweep buang hold yang sudah expired, dipanggil scheduler
func (m *MemorySeatHoldStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, h := range m.holds {
		if !h.expiresAt.After(now) {
			delete(m.holds, key)
			removed++
		}
	}

	return removed
}
