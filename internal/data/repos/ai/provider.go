package ai

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type ProviderRepo interface {
	Create(dbc dbctx.Context, row *types.ProviderCredential) (*types.ProviderCredential, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProviderCredential, error)
	GetByUserAndCode(dbc dbctx.Context, userID uuid.UUID, code string) (*types.ProviderCredential, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ProviderCredential, error)
	// GetDefault resolves the credential a chat request should use:
	// the default row if one exists, otherwise the enabled row with the
	// highest priority.
	GetDefault(dbc dbctx.Context, userID uuid.UUID) (*types.ProviderCredential, error)
	ClearDefaults(dbc dbctx.Context, userID uuid.UUID) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
}

type providerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProviderRepo(db *gorm.DB, log *logger.Logger) ProviderRepo {
	return &providerRepo{db: db, log: log.With("repo", "ProviderRepo")}
}

func (r *providerRepo) Create(dbc dbctx.Context, row *types.ProviderCredential) (*types.ProviderCredential, error) {
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

func (r *providerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ProviderCredential, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing provider_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ProviderCredential
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *providerRepo) GetByUserAndCode(dbc dbctx.Context, userID uuid.UUID, code string) (*types.ProviderCredential, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if code == "" {
		return nil, fmt.Errorf("missing provider_code")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ProviderCredential
	if err := txx.WithContext(dbc.Ctx).
		First(&out, "user_id = ? AND provider_code = ?", userID, code).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *providerRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ProviderCredential, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ProviderCredential
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, priority DESC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *providerRepo) GetDefault(dbc dbctx.Context, userID uuid.UUID) (*types.ProviderCredential, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ProviderCredential
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND is_enabled = TRUE", userID).
		Order("is_default DESC, priority DESC, created_at ASC").
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *providerRepo) ClearDefaults(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ProviderCredential{}).
		Where("user_id = ? AND is_default = TRUE", userID).
		Update("is_default", false).Error
}

func (r *providerRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing provider_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ProviderCredential{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *providerRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.ProviderCredential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
