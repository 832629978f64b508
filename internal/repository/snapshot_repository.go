package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/taskpad/internal/models"
)

// GormSnapshotRepository is a GORM implementation of SnapshotRepository
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Find returns the snapshot row of an account
func (r *GormSnapshotRepository) Find(ctx context.Context, accountID string) (*models.TaskSnapshot, error) {
	var snapshot models.TaskSnapshot
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&snapshot).Error; err != nil {
		return nil, wrapStorageError("find snapshot", err)
	}
	return &snapshot, nil
}

// Save upserts the snapshot row of an account
func (r *GormSnapshotRepository) Save(ctx context.Context, snapshot *models.TaskSnapshot) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(snapshot).Error
	return wrapStorageError("save snapshot", err)
}
