package user

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type UserConfigRepo interface {
	Create(dbc dbctx.Context, row *types.UserConfig) (*types.UserConfig, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserConfig, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
}

type userConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserConfigRepo(db *gorm.DB, log *logger.Logger) UserConfigRepo {
	return &userConfigRepo{db: db, log: log.With("repo", "UserConfigRepo")}
}

func (r *userConfigRepo) Create(dbc dbctx.Context, row *types.UserConfig) (*types.UserConfig, error) {
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

func (r *userConfigRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserConfig, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.UserConfig
	if err := txx.WithContext(dbc.Ctx).First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userConfigRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.UserConfig{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
