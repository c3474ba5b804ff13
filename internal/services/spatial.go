package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

const (
	earthRadiusM = 6371000.0
	// Metres per degree of latitude, used for bounding-box prefilters.
	metersPerDegreeLat = 111320.0

	viewshedMaxDistanceM = 500.0
)

// Travel speeds in metres per minute, matching typical urban averages.
var travelSpeeds = map[string]float64{
	"driving": 833.3,
	"walking": 83.3,
	"transit": 416.7,
}

type BufferInput struct {
	Longitude float64  `json:"longitude" binding:"required"`
	Latitude  float64  `json:"latitude" binding:"required"`
	RadiusM   float64  `json:"radius" binding:"required,gt=0"`
	Category  string   `json:"category"`
	Keyword   string   `json:"keyword"`
	MinHeight *float64 `json:"min_height"`
	MaxHeight *float64 `json:"max_height"`
	MinRisk   *int     `json:"min_risk"`
}

type BufferBuilding struct {
	Building  *types.Building `json:"building"`
	DistanceM float64         `json:"distance"`
}

// BufferStatistics groups the filtered set the way the viewer's side
// panel renders it.
type BufferStatistics struct {
	ByCategory   map[string]int `json:"by_category"`
	ByHeight     map[string]int `json:"by_height"`
	ByRiskLevel  map[int]int    `json:"by_risk_level"`
	AvgDistanceM float64        `json:"average_distance"`
}

type BufferResult struct {
	Center     [2]float64       `json:"center"`
	RadiusM    float64          `json:"radius"`
	Count      int              `json:"count"`
	Buildings  []BufferBuilding `json:"buildings"`
	Statistics BufferStatistics `json:"statistics"`
}

type ViewshedInput struct {
	Longitude      float64 `json:"longitude" binding:"required"`
	Latitude       float64 `json:"latitude" binding:"required"`
	ObserverHeight float64 `json:"observer_height" binding:"required,gt=0"`
	RadiusM        float64 `json:"radius"`
}

type ViewshedBuilding struct {
	Building  *types.Building `json:"building"`
	DistanceM float64         `json:"distance"`
	Visible   bool            `json:"visible"`
}

type ViewshedResult struct {
	Center       [2]float64         `json:"center"`
	ObserverH    float64            `json:"observer_height"`
	VisibleCount int                `json:"visible_count"`
	BlockedCount int                `json:"blocked_count"`
	Buildings    []ViewshedBuilding `json:"buildings"`
}

type AccessibilityInput struct {
	Longitude float64 `json:"longitude" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Mode      string  `json:"mode" binding:"required"`
	MaxTimeM  int     `json:"max_time"`
}

type Isochrone struct {
	TimeMinutes int          `json:"time_minutes"`
	RadiusM     float64      `json:"radius"`
	Ring        [][2]float64 `json:"ring"`
}

type AccessibilityResult struct {
	Center         [2]float64  `json:"center"`
	Mode           string      `json:"mode"`
	SpeedMPerMin   float64     `json:"speed_m_per_min"`
	Isochrones     []Isochrone `json:"isochrones"`
	CoverageSqKM   float64     `json:"coverage_sq_km"`
	ReachableCount int         `json:"reachable_count"`
}

type SpatialService interface {
	Buffer(ctx context.Context, userID uuid.UUID, in BufferInput) (*BufferResult, error)
	Viewshed(ctx context.Context, userID uuid.UUID, in ViewshedInput) (*ViewshedResult, error)
	Accessibility(ctx context.Context, userID uuid.UUID, in AccessibilityInput) (*AccessibilityResult, error)
	Reports(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*types.AnalysisReport, error)
	Report(ctx context.Context, userID, id uuid.UUID) (*types.AnalysisReport, error)
}

type spatialService struct {
	db        *gorm.DB
	log       *logger.Logger
	buildings repos.BuildingRepo
	reports   repos.ReportRepo
}

func NewSpatialService(db *gorm.DB, log *logger.Logger, buildings repos.BuildingRepo, reports repos.ReportRepo) SpatialService {
	return &spatialService{
		db:        db,
		log:       log.With("service", "SpatialService"),
		buildings: buildings,
		reports:   reports,
	}
}

// Haversine returns the great-circle distance in metres between two
// lon/lat points.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func boundingBox(lon, lat, radiusM float64) repos.BoundingBox {
	dLat := radiusM / metersPerDegreeLat
	dLon := radiusM / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))
	return repos.BoundingBox{
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
	}
}

func (s *spatialService) Buffer(ctx context.Context, userID uuid.UUID, in BufferInput) (*BufferResult, error) {
	if in.RadiusM <= 0 || in.RadiusM > 50000 {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_RADIUS", fmt.Errorf("radius out of range: %f", in.RadiusM))
	}

	dbc := dbctx.Context{Ctx: ctx}
	candidates, err := s.buildings.ListInBox(dbc, boundingBox(in.Longitude, in.Latitude, in.RadiusM), 0)
	if err != nil {
		return nil, err
	}

	result := &BufferResult{
		Center:    [2]float64{in.Longitude, in.Latitude},
		RadiusM:   in.RadiusM,
		Buildings: []BufferBuilding{},
		Statistics: BufferStatistics{
			ByCategory:  map[string]int{},
			ByHeight:    map[string]int{"0-50m": 0, "50-100m": 0, "100-200m": 0, "200m+": 0},
			ByRiskLevel: map[int]int{},
		},
	}
	var distanceSum float64
	for _, b := range candidates {
		if !matchBufferFilters(b, in) {
			continue
		}
		d := Haversine(in.Longitude, in.Latitude, b.Longitude, b.Latitude)
		if d > in.RadiusM {
			continue
		}
		result.Buildings = append(result.Buildings, BufferBuilding{Building: b, DistanceM: round1(d)})
		distanceSum += d

		category := b.Category
		if category == "" {
			category = "未分类"
		}
		result.Statistics.ByCategory[category]++
		result.Statistics.ByHeight[heightBucket(b.Height)]++
		result.Statistics.ByRiskLevel[b.RiskLevel]++
	}
	sort.Slice(result.Buildings, func(i, j int) bool {
		return result.Buildings[i].DistanceM < result.Buildings[j].DistanceM
	})
	result.Count = len(result.Buildings)
	if result.Count > 0 {
		result.Statistics.AvgDistanceM = round1(distanceSum / float64(result.Count))
	}

	s.persistReport(ctx, userID, "buffer", fmt.Sprintf("缓冲区分析 %.0fm", in.RadiusM), in, result)
	return result, nil
}

func matchBufferFilters(b *types.Building, in BufferInput) bool {
	if in.Category != "" && b.Category != in.Category {
		return false
	}
	if in.MinHeight != nil && b.Height < *in.MinHeight {
		return false
	}
	if in.MaxHeight != nil && b.Height > *in.MaxHeight {
		return false
	}
	if in.MinRisk != nil && b.RiskLevel < *in.MinRisk {
		return false
	}
	if in.Keyword != "" {
		kw := strings.ToLower(in.Keyword)
		if !strings.Contains(strings.ToLower(b.Name), kw) &&
			!strings.Contains(strings.ToLower(b.Address), kw) &&
			!strings.Contains(strings.ToLower(b.Description), kw) {
			return false
		}
	}
	return true
}

func heightBucket(h float64) string {
	switch {
	case h < 50:
		return "0-50m"
	case h < 100:
		return "50-100m"
	case h < 200:
		return "100-200m"
	default:
		return "200m+"
	}
}

// Viewshed marks each nearby building visible or blocked with a simple
// height rule: a building blocks sight only when it is taller than the
// observer and closer than the occlusion cutoff.
func (s *spatialService) Viewshed(ctx context.Context, userID uuid.UUID, in ViewshedInput) (*ViewshedResult, error) {
	radius := in.RadiusM
	if radius <= 0 {
		radius = 1000
	}
	if radius > 10000 {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_RADIUS", fmt.Errorf("radius out of range: %f", radius))
	}

	dbc := dbctx.Context{Ctx: ctx}
	candidates, err := s.buildings.ListInBox(dbc, boundingBox(in.Longitude, in.Latitude, radius), 0)
	if err != nil {
		return nil, err
	}

	result := &ViewshedResult{
		Center:    [2]float64{in.Longitude, in.Latitude},
		ObserverH: in.ObserverHeight,
		Buildings: []ViewshedBuilding{},
	}
	for _, b := range candidates {
		d := Haversine(in.Longitude, in.Latitude, b.Longitude, b.Latitude)
		if d > radius {
			continue
		}
		visible := b.Height < in.ObserverHeight || d > viewshedMaxDistanceM
		if visible {
			result.VisibleCount++
		} else {
			result.BlockedCount++
		}
		result.Buildings = append(result.Buildings, ViewshedBuilding{Building: b, DistanceM: round1(d), Visible: visible})
	}

	s.persistReport(ctx, userID, "viewshed", fmt.Sprintf("视域分析 h=%.0fm", in.ObserverHeight), in, result)
	return result, nil
}

// Accessibility draws circular isochrones at five minute steps for the
// requested travel mode and counts buildings inside the furthest ring.
func (s *spatialService) Accessibility(ctx context.Context, userID uuid.UUID, in AccessibilityInput) (*AccessibilityResult, error) {
	speed, ok := travelSpeeds[in.Mode]
	if !ok {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_MODE", fmt.Errorf("unsupported travel mode: %s", in.Mode))
	}

	maxTime := in.MaxTimeM
	if maxTime <= 0 {
		maxTime = 20
	}
	if maxTime > 20 {
		maxTime = 20
	}

	result := &AccessibilityResult{
		Center:       [2]float64{in.Longitude, in.Latitude},
		Mode:         in.Mode,
		SpeedMPerMin: speed,
		Isochrones:   []Isochrone{},
	}

	var maxRadius float64
	for t := 5; t <= maxTime; t += 5 {
		radius := speed * float64(t)
		maxRadius = radius
		result.Isochrones = append(result.Isochrones, Isochrone{
			TimeMinutes: t,
			RadiusM:     round1(radius),
			Ring:        circleRing(in.Longitude, in.Latitude, radius, 32),
		})
	}

	maxKM := maxRadius / 1000
	result.CoverageSqKM = round2(math.Pi * maxKM * maxKM)

	candidates, err := s.buildings.ListInBox(dbctx.Context{Ctx: ctx}, boundingBox(in.Longitude, in.Latitude, maxRadius), 0)
	if err != nil {
		return nil, err
	}
	for _, b := range candidates {
		if Haversine(in.Longitude, in.Latitude, b.Longitude, b.Latitude) <= maxRadius {
			result.ReachableCount++
		}
	}

	s.persistReport(ctx, userID, "accessibility", fmt.Sprintf("可达性分析 %s %dmin", in.Mode, maxTime), in, result)
	return result, nil
}

func (s *spatialService) Reports(ctx context.Context, userID uuid.UUID, analysisType string, limit int) ([]*types.AnalysisReport, error) {
	return s.reports.ListByUser(dbctx.Context{Ctx: ctx}, userID, analysisType, limit)
}

func (s *spatialService) Report(ctx context.Context, userID, id uuid.UUID) (*types.AnalysisReport, error) {
	row, err := s.reports.GetByID(dbctx.Context{Ctx: ctx}, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound("REPORT_NOT_FOUND", "report not found")
	}
	return row, err
}

// persistReport is best-effort: an analysis still succeeds when its
// audit row cannot be written.
func (s *spatialService) persistReport(ctx context.Context, userID uuid.UUID, analysisType, title string, params, result any) {
	if userID == uuid.Nil {
		return
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return
	}
	_, err = s.reports.Create(dbctx.Context{Ctx: ctx}, &types.AnalysisReport{
		ID:           uuid.New(),
		UserID:       userID,
		AnalysisType: analysisType,
		Title:        title,
		Parameters:   datatypes.JSON(paramsJSON),
		Result:       datatypes.JSON(resultJSON),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("Failed to persist analysis report", "type", analysisType, "error", err)
	}
}

// circleRing approximates a circle with a closed ring of points.
func circleRing(lon, lat, radiusM float64, points int) [][2]float64 {
	if points <= 0 {
		points = 32
	}
	ring := make([][2]float64, 0, points+1)
	dLat := radiusM / metersPerDegreeLat
	dLon := radiusM / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))
	for i := 0; i < points; i++ {
		theta := 2 * math.Pi * float64(i) / float64(points)
		ring = append(ring, [2]float64{
			lon + dLon*math.Cos(theta),
			lat + dLat*math.Sin(theta),
		})
	}
	// Close the ring exactly; recomputing sin(2π) would drift.
	ring = append(ring, ring[0])
	return ring
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
