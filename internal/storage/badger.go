// ABOUTME: Badger-backed Store implementation with type-prefixed keys.
// ABOUTME: JSON values under user: and day: prefixes, day keys sort by date.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/avolkov/aquacal/internal/models"
)

const (
	userPrefix = "user:"
	dayPrefix  = "day:"
)

// BadgerStore persists records in a local badger database. Keys are
// type-prefixed strings with JSON values.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates a badger database at the given directory.
func OpenBadger(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dir, "aquacal")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func userKey(userID int64) []byte {
	return []byte(fmt.Sprintf("%s%d", userPrefix, userID))
}

// dayKey embeds the RFC3339 date so a prefix scan yields chronological
// order, plus the record ID for uniqueness.
func dayKey(rec *models.DayRecord) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:%s",
		dayPrefix, rec.UserID, rec.Date.UTC().Format(time.RFC3339), rec.ID))
}

// LoadUser retrieves a user record by ID.
func (s *BadgerStore) LoadUser(userID int64) (*models.UserRecord, error) {
	var rec models.UserRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &rec, nil
}

// SaveUser stores a user record, replacing any existing one.
func (s *BadgerStore) SaveUser(userID int64, rec *models.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(userID), data)
	})
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// DeleteUser removes a user record and its day archive.
func (s *BadgerStore) DeleteUser(userID int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(userKey(userID)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}

		prefix := []byte(fmt.Sprintf("%s%d:", dayPrefix, userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AppendDay archives a finished day.
func (s *BadgerStore) AppendDay(rec *models.DayRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal day: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dayKey(rec), data)
	})
	if err != nil {
		return fmt.Errorf("append day: %w", err)
	}
	return nil
}

// ListDays returns archived days for a user, most recent first.
func (s *BadgerStore) ListDays(userID int64, limit int) ([]*models.DayRecord, error) {
	var recs []*models.DayRecord
	prefix := []byte(fmt.Sprintf("%s%d:", dayPrefix, userID))

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec models.DayRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				continue // Skip invalid entries
			}
			recs = append(recs, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Date.After(recs[j].Date)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close closes the underlying badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
