package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/miniinbox/inbox/internal/editor"
)

type memoryEntry struct {
	snapshot  editor.Snapshot
	expiresAt time.Time
}

// MemoryDraftStore keeps drafts in process memory. Expired drafts are dropped
// on access and by Sweep.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[DraftKey]memoryEntry
	saving map[DraftKey]struct{}
}

// NewMemoryDraftStore creates a store whose drafts live for ttl after their
// last write.
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		ttl:    ttl,
		now:    time.Now,
		drafts: make(map[DraftKey]memoryEntry),
		saving: make(map[DraftKey]struct{}),
	}
}

func (s *MemoryDraftStore) Load(_ context.Context, key DraftKey) (editor.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[key]
	if !ok {
		return editor.Snapshot{}, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.drafts, key)
		return editor.Snapshot{}, false, nil
	}
	return entry.snapshot, true, nil
}

func (s *MemoryDraftStore) Store(_ context.Context, key DraftKey, snapshot editor.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = memoryEntry{snapshot: snapshot, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, key DraftKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func (s *MemoryDraftStore) AcquireSave(_ context.Context, key DraftKey) (func(), bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.saving[key]; busy {
		return nil, false, nil
	}
	s.saving[key] = struct{}{}
	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.saving, key)
			s.mu.Unlock()
		})
	}
	return release, true, nil
}

func (s *MemoryDraftStore) Ping(context.Context) error { return nil }

// Sweep drops expired drafts and returns how many were removed.
func (s *MemoryDraftStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, entry := range s.drafts {
		if !now.Before(entry.expiresAt) {
			delete(s.drafts, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored drafts, expired or not.
func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
