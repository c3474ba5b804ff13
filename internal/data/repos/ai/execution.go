package ai

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type ExecutionConfigRepo interface {
	Create(dbc dbctx.Context, row *types.ExecutionConfig) (*types.ExecutionConfig, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ExecutionConfig, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
}

type executionConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExecutionConfigRepo(db *gorm.DB, log *logger.Logger) ExecutionConfigRepo {
	return &executionConfigRepo{db: db, log: log.With("repo", "ExecutionConfigRepo")}
}

func (r *executionConfigRepo) Create(dbc dbctx.Context, row *types.ExecutionConfig) (*types.ExecutionConfig, error) {
	if row == nil || row.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *executionConfigRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ExecutionConfig, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ExecutionConfig
	if err := txx.WithContext(dbc.Ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *executionConfigRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ExecutionConfig{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
