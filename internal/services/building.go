package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type CreateBuildingInput struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Height      float64 `json:"height" binding:"gte=0"`
	Longitude   float64 `json:"longitude" binding:"required"`
	Latitude    float64 `json:"latitude" binding:"required"`
	Address     string  `json:"address"`
	District    string  `json:"district"`
	City        string  `json:"city"`
	Status      string  `json:"status"`
	RiskLevel   int     `json:"risk_level" binding:"gte=0,lte=4"`
	Floors      int     `json:"floors" binding:"gte=0"`
	BuildYear   int     `json:"build_year"`
	Area        float64 `json:"area" binding:"gte=0"`
	Description string  `json:"description"`
}

type UpdateBuildingInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Height      *float64 `json:"height"`
	Address     *string  `json:"address"`
	District    *string  `json:"district"`
	Status      *string  `json:"status"`
	RiskLevel   *int     `json:"risk_level"`
	Floors      *int     `json:"floors"`
	BuildYear   *int     `json:"build_year"`
	Area        *float64 `json:"area"`
	Description *string  `json:"description"`
}

type BuildingPage struct {
	Items  []*types.Building `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type CircleQueryInput struct {
	Longitude float64 `json:"longitude" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
	RadiusM   float64 `json:"radius" binding:"required,gt=0"`
	Category  string  `json:"category"`
}

type BuildingStatistics struct {
	Total      int64                     `json:"total"`
	AvgHeight  float64                   `json:"avg_height"`
	TotalArea  float64                   `json:"total_area"`
	ByCategory []repos.CategoryCount     `json:"by_category"`
	ByStatus   []repos.StatusCount       `json:"by_status"`
	ByRisk     []repos.RiskCount         `json:"by_risk_level"`
	ByHeight   []repos.HeightBucketCount `json:"by_height"`
}

type BuildingService interface {
	Create(ctx context.Context, in CreateBuildingInput) (*types.Building, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Building, error)
	Search(ctx context.Context, q repos.BuildingSearch) (*BuildingPage, error)
	QueryCircle(ctx context.Context, in CircleQueryInput) ([]BufferBuilding, error)
	Categories(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context) (*BuildingStatistics, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateBuildingInput) (*types.Building, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type buildingService struct {
	db        *gorm.DB
	log       *logger.Logger
	buildings repos.BuildingRepo
}

func NewBuildingService(db *gorm.DB, log *logger.Logger, buildings repos.BuildingRepo) BuildingService {
	return &buildingService{
		db:        db,
		log:       log.With("service", "BuildingService"),
		buildings: buildings,
	}
}

func (s *buildingService) Create(ctx context.Context, in CreateBuildingInput) (*types.Building, error) {
	status := in.Status
	if status == "" {
		status = "normal"
	}
	city := in.City
	if city == "" {
		city = "北京"
	}
	floors := in.Floors
	if floors == 0 {
		floors = 1
	}

	row := &types.Building{
		ID:          uuid.New(),
		Name:        in.Name,
		Category:    in.Category,
		Height:      in.Height,
		Longitude:   in.Longitude,
		Latitude:    in.Latitude,
		Address:     in.Address,
		District:    in.District,
		City:        city,
		Status:      status,
		RiskLevel:   in.RiskLevel,
		Floors:      floors,
		BuildYear:   in.BuildYear,
		Area:        in.Area,
		Description: in.Description,
	}
	return s.buildings.Create(dbctx.Context{Ctx: ctx}, row)
}

func (s *buildingService) Get(ctx context.Context, id uuid.UUID) (*types.Building, error) {
	row, err := s.buildings.GetByID(dbctx.Context{Ctx: ctx}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("BUILDING_NOT_FOUND", "building not found")
	}
	return row, err
}

func (s *buildingService) Search(ctx context.Context, q repos.BuildingSearch) (*BuildingPage, error) {
	items, total, err := s.buildings.Search(dbctx.Context{Ctx: ctx}, q)
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 50
	}
	return &BuildingPage{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// QueryCircle returns buildings within a radius of a point, with exact
// distances. The repo prefilters on a bounding box.
func (s *buildingService) QueryCircle(ctx context.Context, in CircleQueryInput) ([]BufferBuilding, error) {
	candidates, err := s.buildings.ListInBox(dbctx.Context{Ctx: ctx}, boundingBox(in.Longitude, in.Latitude, in.RadiusM), 0)
	if err != nil {
		return nil, err
	}
	out := []BufferBuilding{}
	for _, b := range candidates {
		if in.Category != "" && b.Category != in.Category {
			continue
		}
		d := Haversine(in.Longitude, in.Latitude, b.Longitude, b.Latitude)
		if d > in.RadiusM {
			continue
		}
		out = append(out, BufferBuilding{Building: b, DistanceM: round1(d)})
	}
	return out, nil
}

func (s *buildingService) Categories(ctx context.Context) ([]string, error) {
	return s.buildings.Categories(dbctx.Context{Ctx: ctx})
}

func (s *buildingService) Statistics(ctx context.Context) (*BuildingStatistics, error) {
	dbc := dbctx.Context{Ctx: ctx}

	total, avgHeight, totalArea, err := s.buildings.Aggregates(dbc)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.buildings.CountByCategory(dbc)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.buildings.CountByStatus(dbc)
	if err != nil {
		return nil, err
	}
	byRisk, err := s.buildings.CountByRisk(dbc)
	if err != nil {
		return nil, err
	}
	byHeight, err := s.buildings.CountByHeightBucket(dbc)
	if err != nil {
		return nil, err
	}

	return &BuildingStatistics{
		Total:      total,
		AvgHeight:  round1(avgHeight),
		TotalArea:  round1(totalArea),
		ByCategory: byCategory,
		ByStatus:   byStatus,
		ByRisk:     byRisk,
		ByHeight:   byHeight,
	}, nil
}

func (s *buildingService) Update(ctx context.Context, id uuid.UUID, in UpdateBuildingInput) (*types.Building, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Height != nil {
		updates["height"] = *in.Height
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.District != nil {
		updates["district"] = *in.District
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.RiskLevel != nil {
		if *in.RiskLevel < 0 || *in.RiskLevel > 4 {
			return nil, apierr.BadRequest("INVALID_RISK_LEVEL", "risk_level must be 0-4")
		}
		updates["risk_level"] = *in.RiskLevel
	}
	if in.Floors != nil {
		updates["floors"] = *in.Floors
	}
	if in.BuildYear != nil {
		updates["build_year"] = *in.BuildYear
	}
	if in.Area != nil {
		updates["area"] = *in.Area
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.buildings.UpdateFields(dbc, id, updates); err != nil {
		return nil, err
	}
	return s.buildings.GetByID(dbc, id)
}

func (s *buildingService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.buildings.Delete(dbctx.Context{Ctx: ctx}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound("BUILDING_NOT_FOUND", "building not found")
	}
	return err
}
