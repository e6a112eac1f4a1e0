// ABOUTME: Store interface for user records and archived days.
// ABOUTME: Defines the key-value contract both backends implement.
package storage

import (
	"errors"

	"github.com/avolkov/aquacal/internal/models"
)

// ErrNotFound is returned when a user record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the storage contract for user records and day archives.
// This interface allows swapping implementations (memory for the
// reference in-process mode, badger for durability, fakes for tests).
type Store interface {
	// User record operations
	LoadUser(userID int64) (*models.UserRecord, error)
	SaveUser(userID int64, rec *models.UserRecord) error
	DeleteUser(userID int64) error

	// Day archive operations
	AppendDay(rec *models.DayRecord) error
	// ListDays returns archived days for a user, most recent first.
	ListDays(userID int64, limit int) ([]*models.DayRecord, error)

	// Lifecycle
	Close() error
}
