package service

import (
	"context"
	"errors"
	"strings"

	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	v1 "flaggate/pkg/api/v1"
	"flaggate/pkg/constraints"
	"flaggate/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrValidation       = errors.New("required input missing")
	ErrFlagExists       = errors.New("feature flag already exists")
	ErrOverrideNotFound = errors.New("user feature override not found")
	ErrStoreUnhealthy   = errors.New("store unhealthy")
)

type FlagService struct {
	flagRepo     repository.FlagInterface
	overrideRepo repository.OverrideInterface
	observer     metrics.EvaluationObserver
}

func NewFlagService(flagRepo repository.FlagInterface, overrideRepo repository.OverrideInterface, observer metrics.EvaluationObserver) *FlagService {
	return &FlagService{
		flagRepo:     flagRepo,
		overrideRepo: overrideRepo,
		observer:     observer,
	}
}

// CreateFlag registers a global flag. Flag names are unique; a second create
// for the same name fails with ErrFlagExists. The pre-check gives callers a
// clean conflict, the unique index catches the concurrent-create race.
func (s *FlagService) CreateFlag(ctx context.Context, name string, enabled bool, description string) (uint64, error) {
	if name == "" {
		return 0, ErrValidation
	}

	existing, err := s.flagRepo.GetByName(ctx, name)
	if err != nil {
		logger.Error("failed to look up feature flag", zap.String("name", name), zap.Error(err))
		return 0, err
	}
	if existing != nil {
		return 0, ErrFlagExists
	}

	flag := &model.FeatureFlag{
		Name:        name,
		Enabled:     enabled,
		Description: description,
	}
	if err := s.flagRepo.Create(ctx, flag); err != nil {
		if isDuplicateKey(err) {
			return 0, ErrFlagExists
		}
		logger.Error("failed to create feature flag", zap.String("name", name), zap.Error(err))
		return 0, err
	}

	s.observer.RecordFlagCreated()
	logger.Info("feature flag created",
		zap.String("name", name),
		zap.Bool("enabled", enabled))
	return flag.ID, nil
}

// Evaluate resolves the effective value for (user_id, feature_name) with
// strict precedence: override, then flag, then a hardcoded disabled default.
// An unknown flag is not an error; it resolves to disabled.
func (s *FlagService) Evaluate(ctx context.Context, userID, featureName string) (*v1.Decision, error) {
	if userID == "" || featureName == "" {
		return nil, ErrValidation
	}

	override, err := s.overrideRepo.GetByPair(ctx, userID, featureName)
	if err != nil {
		return nil, err
	}
	if override != nil {
		return s.decision(featureName, override.Enabled, constraints.SourceOverride), nil
	}

	flag, err := s.flagRepo.GetByName(ctx, featureName)
	if err != nil {
		return nil, err
	}
	if flag != nil {
		return s.decision(featureName, flag.Enabled, constraints.SourceFlag), nil
	}

	return s.decision(featureName, false, constraints.SourceDefault), nil
}

func (s *FlagService) decision(featureName string, enabled bool, source constraints.Source) *v1.Decision {
	s.observer.RecordEvaluation(string(source))
	return &v1.Decision{
		FeatureKey: featureName,
		Enabled:    enabled,
		Source:     source,
	}
}

// UpsertOverride creates or updates the per-user override for a flag. The
// write is a single conflict-aware statement, so the (user_id, feature_name)
// uniqueness invariant holds under concurrent upserts.
func (s *FlagService) UpsertOverride(ctx context.Context, userID, featureName string, enabled bool) error {
	if userID == "" || featureName == "" {
		return ErrValidation
	}

	override := &model.UserFeatureOverride{
		UserID:      userID,
		FeatureName: featureName,
		Enabled:     enabled,
	}
	if err := s.overrideRepo.Upsert(ctx, override); err != nil {
		logger.Error("failed to upsert user feature override",
			zap.String("user_id", userID),
			zap.String("feature_name", featureName),
			zap.Error(err))
		return err
	}

	s.observer.RecordOverrideWrite()
	return nil
}

// DeleteOverride removes the override for (user_id, feature_name), failing
// with ErrOverrideNotFound when no such row exists.
func (s *FlagService) DeleteOverride(ctx context.Context, userID, featureName string) error {
	if userID == "" || featureName == "" {
		return ErrValidation
	}

	deleted, err := s.overrideRepo.DeleteByPair(ctx, userID, featureName)
	if err != nil {
		logger.Error("failed to delete user feature override",
			zap.String("user_id", userID),
			zap.String("feature_name", featureName),
			zap.Error(err))
		return err
	}
	if !deleted {
		return ErrOverrideNotFound
	}

	s.observer.RecordOverrideDelete()
	return nil
}

// isDuplicateKey recognizes a unique-index violation across the drivers in
// use (mysql in production, sqlite in tests). Not every driver translates to
// gorm.ErrDuplicatedKey, hence the message fallback.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

func (s *FlagService) Health(ctx context.Context) error {
	if err := s.flagRepo.PingContext(ctx); err != nil {
		return ErrStoreUnhealthy
	}
	return nil
}
