package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/taskpad/internal/models"
)

// GormSessionRepository is a GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Get returns the active session row
func (r *GormSessionRepository) Get(ctx context.Context) (*models.ActiveSession, error) {
	var session models.ActiveSession
	if err := r.db.WithContext(ctx).First(&session, models.ActiveSessionSlot).Error; err != nil {
		return nil, wrapStorageError("find session", err)
	}
	return &session, nil
}

// Put upserts the active session row. The slot is forced so at most one row exists.
func (r *GormSessionRepository) Put(ctx context.Context, session *models.ActiveSession) error {
	session.Slot = models.ActiveSessionSlot
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_id", "payload", "updated_at"}),
		}).
		Create(session).Error
	return wrapStorageError("save session", err)
}

// Clear removes the active session row
func (r *GormSessionRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).Where("slot = ?", models.ActiveSessionSlot).Delete(&models.ActiveSession{}).Error
	return wrapStorageError("clear session", err)
}
