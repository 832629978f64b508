package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/taskpad/internal/models"
)

// ErrStorageUnavailable wraps every driver failure. A missing row is reported
// as gorm.ErrRecordNotFound and a unique violation as gorm.ErrDuplicatedKey.
var ErrStorageUnavailable = errors.New("storage unavailable")

// UserRepository is the durable user table, keyed by username.
type UserRepository interface {
	// Create stores a new account
	Create(ctx context.Context, account *models.Account) error

	// FindByUsername finds an account by exact, case-sensitive username
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// FindByEmail finds an account by email
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// Update saves every field of an existing account
	Update(ctx context.Context, account *models.Account) error
}

// SnapshotRepository holds one serialized task snapshot per account id.
type SnapshotRepository interface {
	// Find returns the snapshot row of an account
	Find(ctx context.Context, accountID string) (*models.TaskSnapshot, error)

	// Save creates or replaces the snapshot row of an account
	Save(ctx context.Context, snapshot *models.TaskSnapshot) error
}

// SessionRepository holds the single durable session pointer.
type SessionRepository interface {
	// Get returns the active session row
	Get(ctx context.Context) (*models.ActiveSession, error)

	// Put creates or replaces the active session row
	Put(ctx context.Context, session *models.ActiveSession) error

	// Clear removes the active session row; clearing an empty slot is not an error
	Clear(ctx context.Context) error
}

// wrapStorageError passes gorm.ErrRecordNotFound and gorm.ErrDuplicatedKey
// through untouched and marks everything else as a storage failure.
func wrapStorageError(op string, err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
