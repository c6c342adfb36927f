package repository

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
)

// MemoryHintStore keeps hints in process memory. Used in tests and as a
// fallback when hint persistence is disabled.
type MemoryHintStore struct {
	mu    sync.Mutex
	hints map[snowflake.ID]domain.SelectionHint
}

func NewMemoryHintStore() *MemoryHintStore {
	return &MemoryHintStore{hints: make(map[snowflake.ID]domain.SelectionHint)}
}

func (s *MemoryHintStore) Get(_ context.Context, userID snowflake.ID) (domain.SelectionHint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hint, ok := s.hints[userID]
	if !ok {
		return domain.SelectionHint{UserID: userID}, nil
	}
	return hint, nil
}

func (s *MemoryHintStore) SetStore(_ context.Context, userID snowflake.ID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hint := s.hints[userID]
	hint.UserID = userID
	hint.StoreID = value
	s.hints[userID] = hint
	return nil
}

func (s *MemoryHintStore) SetDepartment(_ context.Context, userID snowflake.ID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hint := s.hints[userID]
	hint.UserID = userID
	hint.DepartmentID = value
	s.hints[userID] = hint
	return nil
}

func (s *MemoryHintStore) ClearStore(ctx context.Context, userID snowflake.ID) error {
	return s.SetStore(ctx, userID, "")
}

func (s *MemoryHintStore) ClearDepartment(ctx context.Context, userID snowflake.ID) error {
	return s.SetDepartment(ctx, userID, "")
}
