package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
)

type fakeBuildingRepo struct {
	rows []*types.Building
}

func (f *fakeBuildingRepo) Create(dbc dbctx.Context, row *types.Building) (*types.Building, error) {
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeBuildingRepo) CreateBatch(dbc dbctx.Context, rows []*types.Building) ([]*types.Building, error) {
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeBuildingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Building, error) {
	for _, b := range f.rows {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBuildingRepo) Search(dbc dbctx.Context, q repos.BuildingSearch) ([]*types.Building, int64, error) {
	return f.rows, int64(len(f.rows)), nil
}

func (f *fakeBuildingRepo) ListInBox(dbc dbctx.Context, box repos.BoundingBox, limit int) ([]*types.Building, error) {
	var out []*types.Building
	for _, b := range f.rows {
		if b.Longitude >= box.MinLon && b.Longitude <= box.MaxLon &&
			b.Latitude >= box.MinLat && b.Latitude <= box.MaxLat {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBuildingRepo) Categories(dbc dbctx.Context) ([]string, error) { return nil, nil }
func (f *fakeBuildingRepo) CountByCategory(dbc dbctx.Context) ([]repos.CategoryCount, error) {
	return nil, nil
}
func (f *fakeBuildingRepo) CountByStatus(dbc dbctx.Context) ([]repos.StatusCount, error) {
	return nil, nil
}
func (f *fakeBuildingRepo) CountByRisk(dbc dbctx.Context) ([]repos.RiskCount, error) {
	return nil, nil
}
func (f *fakeBuildingRepo) CountByHeightBucket(dbc dbctx.Context) ([]repos.HeightBucketCount, error) {
	return nil, nil
}
func (f *fakeBuildingRepo) Aggregates(dbc dbctx.Context) (int64, float64, float64, error) {
	return int64(len(f.rows)), 0, 0, nil
}
func (f *fakeBuildingRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}
func (f *fakeBuildingRepo) Delete(dbc dbctx.Context, id uuid.UUID) error { return nil }

func ringOfBuildings(centerLon, centerLat float64) *fakeBuildingRepo {
	repo := &fakeBuildingRepo{}
	// Roughly 250m, 600m, 1.2km and 2.5km east of the center.
	for i, offset := range []float64{0.003, 0.007, 0.014, 0.029} {
		repo.rows = append(repo.rows, &types.Building{
			ID:        uuid.New(),
			Name:      "楼" + string(rune('A'+i)),
			Category:  "residential",
			Longitude: centerLon + offset,
			Latitude:  centerLat,
		})
	}
	return repo
}

func TestQueryCircleMonotonicInRadius(t *testing.T) {
	const lon, lat = 116.4074, 39.9042
	svc := NewBuildingService(nil, newTestLogger(t), ringOfBuildings(lon, lat))

	prev := -1
	for _, radius := range []float64{100, 300, 700, 1500, 3000} {
		out, err := svc.QueryCircle(context.Background(), CircleQueryInput{
			Longitude: lon, Latitude: lat, RadiusM: radius,
		})
		if err != nil {
			t.Fatalf("radius %.0f: %v", radius, err)
		}
		if len(out) < prev {
			t.Fatalf("result shrank: radius %.0f returned %d, previous %d", radius, len(out), prev)
		}
		for _, b := range out {
			if b.DistanceM > radius {
				t.Fatalf("building %s at %.1fm outside radius %.0f", b.Building.Name, b.DistanceM, radius)
			}
		}
		prev = len(out)
	}
	if prev != 4 {
		t.Fatalf("largest radius should cover all 4 buildings, got %d", prev)
	}
}

func TestQueryCircleCategoryFilter(t *testing.T) {
	const lon, lat = 116.4074, 39.9042
	repo := ringOfBuildings(lon, lat)
	repo.rows[0].Category = "commercial"
	svc := NewBuildingService(nil, newTestLogger(t), repo)

	out, err := svc.QueryCircle(context.Background(), CircleQueryInput{
		Longitude: lon, Latitude: lat, RadiusM: 3000, Category: "commercial",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].Building.Category != "commercial" {
		t.Fatalf("got %d results", len(out))
	}
}
