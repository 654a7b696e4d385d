package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"flaggate/internal/metrics"
	"flaggate/internal/model"
	"flaggate/internal/repository"
	"flaggate/pkg/constraints"
	"flaggate/pkg/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func init() {
	logger.InitLogger("test")
}

func setupTestService(t *testing.T) (*FlagService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:flag_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.FeatureFlag{}, &model.UserFeatureOverride{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	svc := NewFlagService(
		repository.NewFlagRepository(db),
		repository.NewOverrideRepository(db),
		metrics.NewPrometheusObserver(),
	)
	return svc, db
}

func TestEvaluate_DefaultWhenNothingDefined(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	decision, err := svc.Evaluate(ctx, "u1", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if decision.Enabled {
		t.Error("expected disabled by default")
	}
	if decision.Source != constraints.SourceDefault {
		t.Errorf("source = %q, want %q", decision.Source, constraints.SourceDefault)
	}
	if decision.FeatureKey != "dark_mode" {
		t.Errorf("feature_key = %q, want dark_mode", decision.FeatureKey)
	}
}

func TestEvaluate_FlagLayer(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFlag(ctx, "dark_mode", true, ""); err != nil {
		t.Fatalf("create flag: %v", err)
	}

	decision, err := svc.Evaluate(ctx, "u1", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Enabled {
		t.Error("expected enabled from flag layer")
	}
	if decision.Source != constraints.SourceFlag {
		t.Errorf("source = %q, want %q", decision.Source, constraints.SourceFlag)
	}
}

func TestEvaluate_OverrideBeatsFlag(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFlag(ctx, "dark_mode", true, "global rollout"); err != nil {
		t.Fatalf("create flag: %v", err)
	}
	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", false); err != nil {
		t.Fatalf("upsert override: %v", err)
	}

	// u1 gets the override, u2 still sees the global flag
	decision, err := svc.Evaluate(ctx, "u1", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate u1: %v", err)
	}
	if decision.Enabled || decision.Source != constraints.SourceOverride {
		t.Errorf("u1: got (%v, %q), want (false, override)", decision.Enabled, decision.Source)
	}

	decision, err = svc.Evaluate(ctx, "u2", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate u2: %v", err)
	}
	if !decision.Enabled || decision.Source != constraints.SourceFlag {
		t.Errorf("u2: got (%v, %q), want (true, flag)", decision.Enabled, decision.Source)
	}
}

func TestEvaluate_OverrideWithoutFlag(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	// overrides are decoupled from flag definitions
	if err := svc.UpsertOverride(ctx, "u1", "not_yet_defined", true); err != nil {
		t.Fatalf("upsert override: %v", err)
	}

	decision, err := svc.Evaluate(ctx, "u1", "not_yet_defined")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !decision.Enabled || decision.Source != constraints.SourceOverride {
		t.Errorf("got (%v, %q), want (true, override)", decision.Enabled, decision.Source)
	}
}

func TestEvaluate_Validation(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, "", "dark_mode"); !errors.Is(err, ErrValidation) {
		t.Errorf("missing user_id: err = %v, want ErrValidation", err)
	}
	if _, err := svc.Evaluate(ctx, "u1", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("missing feature_name: err = %v, want ErrValidation", err)
	}
}

func TestCreateFlag_DuplicateName(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFlag(ctx, "dark_mode", true, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateFlag(ctx, "dark_mode", false, "second attempt"); !errors.Is(err, ErrFlagExists) {
		t.Fatalf("second create: err = %v, want ErrFlagExists", err)
	}

	var count int64
	db.Model(&model.FeatureFlag{}).Where("name = ?", "dark_mode").Count(&count)
	if count != 1 {
		t.Errorf("rows named dark_mode = %d, want 1", count)
	}
}

func TestCreateFlag_EmptyName(t *testing.T) {
	svc, _ := setupTestService(t)

	if _, err := svc.CreateFlag(context.Background(), "", true, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpsertOverride_Idempotent(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", true); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	var first model.UserFeatureOverride
	if err := db.Where("user_id = ? AND feature_name = ?", "u1", "dark_mode").First(&first).Error; err != nil {
		t.Fatalf("fetch first row: %v", err)
	}

	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", true); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []model.UserFeatureOverride
	if err := db.Where("user_id = ? AND feature_name = ?", "u1", "dark_mode").Find(&rows).Error; err != nil {
		t.Fatalf("fetch rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", len(rows))
	}
	if rows[0].ID != first.ID {
		t.Errorf("row id changed from %d to %d, want same row", first.ID, rows[0].ID)
	}
	if !rows[0].Enabled {
		t.Error("enabled = false, want true")
	}
}

func TestUpsertOverride_FlipsValueInPlace(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", true); err != nil {
		t.Fatalf("upsert true: %v", err)
	}
	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", false); err != nil {
		t.Fatalf("upsert false: %v", err)
	}

	var rows []model.UserFeatureOverride
	db.Where("user_id = ? AND feature_name = ?", "u1", "dark_mode").Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Enabled {
		t.Error("enabled = true, want false after flip")
	}
}

func TestDeleteOverride_RoundTrip(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFlag(ctx, "dark_mode", true, ""); err != nil {
		t.Fatalf("create flag: %v", err)
	}
	if err := svc.UpsertOverride(ctx, "u1", "dark_mode", false); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	decision, err := svc.Evaluate(ctx, "u1", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate with override: %v", err)
	}
	if decision.Source != constraints.SourceOverride {
		t.Fatalf("source = %q, want override", decision.Source)
	}

	if err := svc.DeleteOverride(ctx, "u1", "dark_mode"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// precedence falls back to the flag layer
	decision, err = svc.Evaluate(ctx, "u1", "dark_mode")
	if err != nil {
		t.Fatalf("evaluate after delete: %v", err)
	}
	if !decision.Enabled || decision.Source != constraints.SourceFlag {
		t.Errorf("got (%v, %q), want (true, flag)", decision.Enabled, decision.Source)
	}
}

func TestDeleteOverride_NotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	err := svc.DeleteOverride(context.Background(), "u1", "never_overridden")
	if !errors.Is(err, ErrOverrideNotFound) {
		t.Errorf("err = %v, want ErrOverrideNotFound", err)
	}
}
