package city

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, row *types.AnalysisReport) (*types.AnalysisReport, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.AnalysisReport, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, analysisType string, limit int) ([]*types.AnalysisReport, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, log *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: log.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(dbc dbctx.Context, row *types.AnalysisReport) (*types.AnalysisReport, error) {
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

func (r *reportRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.AnalysisReport, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.AnalysisReport
	if err := txx.WithContext(dbc.Ctx).
		First(&out, "user_id = ? AND id = ?", userID, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, analysisType string, limit int) ([]*types.AnalysisReport, error) {
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
	if analysisType != "" {
		q = q.Where("analysis_type = ?", analysisType)
	}
	var out []*types.AnalysisReport
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.AnalysisReport{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
