package repository

import (
	"context"
	"errors"
	"flaggate/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideInterface defines the interface for per-user override persistence
type OverrideInterface interface {
	GetByPair(ctx context.Context, userID, featureName string) (*model.UserFeatureOverride, error)
	Upsert(ctx context.Context, override *model.UserFeatureOverride) error
	DeleteByPair(ctx context.Context, userID, featureName string) (bool, error)
}

// OverrideRepository implementation of OverrideInterface for MySQL
type OverrideRepository struct {
	db *gorm.DB
}

// NewOverrideRepository creates a new instance
func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// GetByPair retrieves the override for (user_id, feature_name), nil when absent
func (r *OverrideRepository) GetByPair(ctx context.Context, userID, featureName string) (*model.UserFeatureOverride, error) {
	var override model.UserFeatureOverride
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND feature_name = ?", userID, featureName).
		First(&override).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

// Upsert inserts the override or, when the (user_id, feature_name) row
// already exists, overwrites only its enabled value. A single conflict-aware
// statement, so concurrent upserts for the same pair cannot both insert.
func (r *OverrideRepository) Upsert(ctx context.Context, override *model.UserFeatureOverride) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature_name"}},
		DoUpdates: clause.Assignments(map[string]any{"enabled": override.Enabled}),
	}).Create(override).Error
}

// DeleteByPair removes the matching row, reporting whether one existed
func (r *OverrideRepository) DeleteByPair(ctx context.Context, userID, featureName string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND feature_name = ?", userID, featureName).
		Delete(&model.UserFeatureOverride{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
