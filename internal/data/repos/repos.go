package repos

import (
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos/ai"
	"github.com/urbantwin/citytwin-backend/internal/data/repos/city"
	"github.com/urbantwin/citytwin-backend/internal/data/repos/user"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserConfigRepo = user.UserConfigRepo

type ProviderRepo = ai.ProviderRepo
type ConversationRepo = ai.ConversationRepo
type UsageRepo = ai.UsageRepo
type ExecutionConfigRepo = ai.ExecutionConfigRepo

type BuildingRepo = city.BuildingRepo
type SimulationRepo = city.SimulationRepo
type EventRepo = city.EventRepo
type ReportRepo = city.ReportRepo

type SessionSummary = ai.SessionSummary
type BuildingSearch = city.BuildingSearch
type BoundingBox = city.BoundingBox
type CategoryCount = city.CategoryCount
type StatusCount = city.StatusCount
type RiskCount = city.RiskCount
type HeightBucketCount = city.HeightBucketCount

// Set bundles every repo so wiring stays a single constructor call.
type Set struct {
	User            UserRepo
	UserConfig      UserConfigRepo
	Provider        ProviderRepo
	Conversation    ConversationRepo
	Usage           UsageRepo
	ExecutionConfig ExecutionConfigRepo
	Building        BuildingRepo
	Simulation      SimulationRepo
	Event           EventRepo
	Report          ReportRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) *Set {
	return &Set{
		User:            user.NewUserRepo(db, log),
		UserConfig:      user.NewUserConfigRepo(db, log),
		Provider:        ai.NewProviderRepo(db, log),
		Conversation:    ai.NewConversationRepo(db, log),
		Usage:           ai.NewUsageRepo(db, log),
		ExecutionConfig: ai.NewExecutionConfigRepo(db, log),
		Building:        city.NewBuildingRepo(db, log),
		Simulation:      city.NewSimulationRepo(db, log),
		Event:           city.NewEventRepo(db, log),
		Report:          city.NewReportRepo(db, log),
	}
}
