package city

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

// BuildingSearch filters the building list. Zero values mean "any".
type BuildingSearch struct {
	Keyword   string
	Category  string
	District  string
	Status    string
	RiskLevel *int
	Limit     int
	Offset    int
}

// BoundingBox is a lon/lat rectangle used to pre-filter circle queries
// before exact distance checks.
type BoundingBox struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RiskCount struct {
	RiskLevel int   `json:"risk_level"`
	Count     int64 `json:"count"`
}

type HeightBucketCount struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

type BuildingRepo interface {
	Create(dbc dbctx.Context, row *types.Building) (*types.Building, error)
	CreateBatch(dbc dbctx.Context, rows []*types.Building) ([]*types.Building, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Building, error)
	Search(dbc dbctx.Context, q BuildingSearch) ([]*types.Building, int64, error)
	ListInBox(dbc dbctx.Context, box BoundingBox, limit int) ([]*types.Building, error)
	Categories(dbc dbctx.Context) ([]string, error)
	CountByCategory(dbc dbctx.Context) ([]CategoryCount, error)
	CountByStatus(dbc dbctx.Context) ([]StatusCount, error)
	CountByRisk(dbc dbctx.Context) ([]RiskCount, error)
	CountByHeightBucket(dbc dbctx.Context) ([]HeightBucketCount, error)
	Aggregates(dbc dbctx.Context) (total int64, avgHeight float64, totalArea float64, err error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type buildingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBuildingRepo(db *gorm.DB, log *logger.Logger) BuildingRepo {
	return &buildingRepo{db: db, log: log.With("repo", "BuildingRepo")}
}

func (r *buildingRepo) Create(dbc dbctx.Context, row *types.Building) (*types.Building, error) {
	if row == nil {
		return nil, fmt.Errorf("missing building")
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

func (r *buildingRepo) CreateBatch(dbc dbctx.Context, rows []*types.Building) ([]*types.Building, error) {
	if len(rows) == 0 {
		return []*types.Building{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *buildingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Building, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing building_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.Building
	if err := txx.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *buildingRepo) Search(dbc dbctx.Context, q BuildingSearch) ([]*types.Building, int64, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	base := txx.WithContext(dbc.Ctx).Model(&types.Building{})
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		pat := "%" + kw + "%"
		base = base.Where("name ILIKE ? OR address ILIKE ? OR description ILIKE ?", pat, pat, pat)
	}
	if q.Category != "" {
		base = base.Where("category = ?", q.Category)
	}
	if q.District != "" {
		base = base.Where("district = ?", q.District)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.RiskLevel != nil {
		base = base.Where("risk_level = ?", *q.RiskLevel)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Building
	if err := base.Order("name ASC").Limit(q.Limit).Offset(q.Offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *buildingRepo) ListInBox(dbc dbctx.Context, box BoundingBox, limit int) ([]*types.Building, error) {
	if limit <= 0 || limit > 2000 {
		limit = 1000
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Building
	if err := txx.WithContext(dbc.Ctx).
		Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) Categories(dbc dbctx.Context) ([]string, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []string
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) CountByCategory(dbc dbctx.Context) ([]CategoryCount, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []CategoryCount
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) CountByStatus(dbc dbctx.Context) ([]StatusCount, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []StatusCount
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) CountByRisk(dbc dbctx.Context) ([]RiskCount, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []RiskCount
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Select("risk_level, COUNT(*) AS count").
		Group("risk_level").
		Order("risk_level ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) CountByHeightBucket(dbc dbctx.Context) ([]HeightBucketCount, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []HeightBucketCount
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Select("CASE WHEN height < 50 THEN '0-50m' WHEN height < 100 THEN '50-100m' WHEN height < 200 THEN '100-200m' ELSE '200m+' END AS bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buildingRepo) Aggregates(dbc dbctx.Context) (int64, float64, float64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var row struct {
		Total     int64
		AvgHeight float64
		TotalArea float64
	}
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Select("COUNT(*) AS total, COALESCE(AVG(height), 0) AS avg_height, COALESCE(SUM(area), 0) AS total_area").
		Scan(&row).Error; err != nil {
		return 0, 0, 0, err
	}
	return row.Total, row.AvgHeight, row.TotalArea, nil
}

func (r *buildingRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing building_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Building{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *buildingRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing building_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Building{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
