// ABOUTME: In-memory Store implementation, the default backend.
// ABOUTME: Mirrors the reference bot's process-lifetime state model.
package storage

import (
	"sort"
	"sync"

	"github.com/avolkov/aquacal/internal/models"
)

// MemoryStore keeps all records in process memory. State is lost on
// restart, which matches the reference behavior; use the badger
// backend for durability.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]models.UserRecord
	days  map[int64][]*models.DayRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]models.UserRecord),
		days:  make(map[int64][]*models.DayRecord),
	}
}

// LoadUser retrieves a user record by ID.
func (s *MemoryStore) LoadUser(userID int64) (*models.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := rec
	return &cp, nil
}

// SaveUser stores a user record, replacing any existing one.
func (s *MemoryStore) SaveUser(userID int64, rec *models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = *rec
	return nil
}

// DeleteUser removes a user record and its day archive.
func (s *MemoryStore) DeleteUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	delete(s.days, userID)
	return nil
}

// AppendDay archives a finished day.
func (s *MemoryStore) AppendDay(rec *models.DayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.days[rec.UserID] = append(s.days[rec.UserID], &cp)
	return nil
}

// ListDays returns archived days for a user, most recent first.
func (s *MemoryStore) ListDays(userID int64, limit int) ([]*models.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*models.DayRecord, 0, len(s.days[userID]))
	for _, r := range s.days[userID] {
		cp := *r
		recs = append(recs, &cp)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Date.After(recs[j].Date)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
