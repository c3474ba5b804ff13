package domain

import (
	"github.com/urbantwin/citytwin-backend/internal/domain/ai"
	"github.com/urbantwin/citytwin-backend/internal/domain/city"
	"github.com/urbantwin/citytwin-backend/internal/domain/user"
)

type User = user.User
type UserConfig = user.UserConfig

type ProviderCredential = ai.ProviderCredential
type Conversation = ai.Conversation
type UsageStat = ai.UsageStat
type ExecutionConfig = ai.ExecutionConfig

type Building = city.Building
type SimulationRecord = city.SimulationRecord
type CityEvent = city.CityEvent
type AnalysisReport = city.AnalysisReport

// AllModels is the migration set, ordered parents before children.
func AllModels() []any {
	return []any{
		&User{},
		&UserConfig{},
		&ProviderCredential{},
		&Conversation{},
		&UsageStat{},
		&ExecutionConfig{},
		&Building{},
		&SimulationRecord{},
		&CityEvent{},
		&AnalysisReport{},
	}
}
