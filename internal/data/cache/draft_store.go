package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DraftStore keeps each user's reservation in progress. Get returns nil, nil
// when the user has no draft.
type DraftStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*entity.Draft, error)
	Save(ctx context.Context, draft *entity.Draft) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ==================== IN-PROCESS ====================

type memoryDraft struct {
	draft     entity.Draft
	expiresAt time.Time
}

type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[uuid.UUID]memoryDraft
	now    func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		ttl:    ttl,
		drafts: make(map[uuid.UUID]memoryDraft),
		now:    time.Now,
	}
}

func (s *MemoryDraftStore) Get(ctx context.Context, userID uuid.UUID) (*entity.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && s.now().After(d.expiresAt) {
		delete(s.drafts, userID)
		return nil, nil
	}
	out := d.draft
	return &out, nil
}

func (s *MemoryDraftStore) Save(ctx context.Context, draft *entity.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.UserID] = memoryDraft{draft: *draft, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, userID)
	return nil
}

// ==================== REDIS ====================

type RedisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb, ttl: ttl}
}

func (s *RedisDraftStore) Get(ctx context.Context, userID uuid.UUID) (*entity.Draft, error) {
	raw, err := s.rdb.Get(ctx, fmt.Sprintf(KeyDraft, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft for user %s: %w", userID, err)
	}

	var draft entity.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft for user %s: %w", userID, err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *entity.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft for user %s: %w", draft.UserID, err)
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(KeyDraft, draft.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft for user %s: %w", draft.UserID, err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(KeyDraft, userID)).Err(); err != nil {
		return fmt.Errorf("delete draft for user %s: %w", userID, err)
	}
	return nil
}
