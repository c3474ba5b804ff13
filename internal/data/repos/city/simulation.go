package city

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type SimulationRepo interface {
	Create(dbc dbctx.Context, row *types.SimulationRecord) (*types.SimulationRecord, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SimulationRecord, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, scenarioType string, limit int) ([]*types.SimulationRecord, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
}

type simulationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationRepo(db *gorm.DB, log *logger.Logger) SimulationRepo {
	return &simulationRepo{db: db, log: log.With("repo", "SimulationRepo")}
}

func (r *simulationRepo) Create(dbc dbctx.Context, row *types.SimulationRecord) (*types.SimulationRecord, error) {
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

func (r *simulationRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SimulationRecord, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.SimulationRecord
	if err := txx.WithContext(dbc.Ctx).
		First(&out, "user_id = ? AND id = ?", userID, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *simulationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, scenarioType string, limit int) ([]*types.SimulationRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).Where("user_id = ?", userID)
	if scenarioType != "" {
		q = q.Where("scenario_type = ?", scenarioType)
	}
	var out []*types.SimulationRecord
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *simulationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing simulation_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.SimulationRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *simulationRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.SimulationRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
