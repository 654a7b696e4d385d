package repository

import (
	"context"
	"errors"
	"flaggate/internal/model"

	"gorm.io/gorm"
)

// FlagInterface defines the interface for feature flag persistence
type FlagInterface interface {
	GetByName(ctx context.Context, name string) (*model.FeatureFlag, error)
	Create(ctx context.Context, flag *model.FeatureFlag) error
	PingContext(ctx context.Context) error
}

// FlagRepository implementation of FlagInterface for MySQL
type FlagRepository struct {
	db *gorm.DB
}

// NewFlagRepository creates a new instance
func NewFlagRepository(db *gorm.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// GetByName retrieves the flag record by its unique name, nil when absent
func (r *FlagRepository) GetByName(ctx context.Context, name string) (*model.FeatureFlag, error) {
	var flag model.FeatureFlag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&flag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

func (r *FlagRepository) Create(ctx context.Context, flag *model.FeatureFlag) error {
	return r.db.WithContext(ctx).Create(flag).Error
}

func (r *FlagRepository) PingContext(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
