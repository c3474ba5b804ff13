package city

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, row *types.CityEvent) (*types.CityEvent, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CityEvent, error)
	List(dbc dbctx.Context, eventType, severity, status string, limit int) ([]*types.CityEvent, error)
	Resolve(dbc dbctx.Context, id uuid.UUID) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, log *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: log.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, row *types.CityEvent) (*types.CityEvent, error) {
	if row == nil {
		return nil, fmt.Errorf("missing event")
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

func (r *eventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CityEvent, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing event_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.CityEvent
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *eventRepo) List(dbc dbctx.Context, eventType, severity, status string, limit int) ([]*types.CityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).Model(&types.CityEvent{})
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if severity != "" {
		q = q.Where("severity = ?", severity)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.CityEvent
	if err := q.Order("occurred_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) Resolve(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing event_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	now := time.Now().UTC()
	res := txx.WithContext(dbc.Ctx).
		Model(&types.CityEvent{}).
		Where("id = ? AND status <> 'resolved'", id).
		Updates(map[string]interface{}{
			"status":      "resolved",
			"resolved_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
