package city

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Building is one asset on the city map. RiskLevel runs 0 (none) to 4
// (critical).
type Building struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Name     string `gorm:"column:name;not null;index" json:"name"`
	Category string `gorm:"column:category;not null;index" json:"category"`

	Height    float64 `gorm:"column:height;not null;default:0" json:"height"`
	Longitude float64 `gorm:"column:longitude;not null;index" json:"longitude"`
	Latitude  float64 `gorm:"column:latitude;not null;index" json:"latitude"`

	Address  string `gorm:"column:address" json:"address"`
	District string `gorm:"column:district;index" json:"district"`
	City     string `gorm:"column:city;not null;default:'北京';index" json:"city"`

	Status    string `gorm:"column:status;not null;default:'normal';index" json:"status"`
	RiskLevel int    `gorm:"column:risk_level;not null;default:0" json:"risk_level"`

	Floors    int     `gorm:"column:floors;not null;default:1" json:"floors"`
	BuildYear int     `gorm:"column:build_year" json:"build_year"`
	Area      float64 `gorm:"column:area;not null;default:0" json:"area"`

	Description string `gorm:"column:description;type:text" json:"description"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Building) TableName() string { return "building" }

// SimulationRecord stores one run of a what-if scenario together with
// its computed impact summary.
type SimulationRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	ScenarioType string `gorm:"column:scenario_type;not null;index" json:"scenario_type"`
	Name         string `gorm:"column:name;not null" json:"name"`
	Status       string `gorm:"column:status;not null;default:'pending';index" json:"status"`

	Parameters    datatypes.JSON `gorm:"type:jsonb;column:parameters;not null;default:'{}'" json:"parameters"`
	ImpactSummary datatypes.JSON `gorm:"type:jsonb;column:impact_summary" json:"impact_summary,omitempty"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SimulationRecord) TableName() string { return "simulation_record" }

// CityEvent is an operational incident surfaced on the dashboard.
type CityEvent struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	EventType string `gorm:"column:event_type;not null;index" json:"event_type"`
	Title     string `gorm:"column:title;not null" json:"title"`
	Severity  string `gorm:"column:severity;not null;default:'info';index" json:"severity"`
	Status    string `gorm:"column:status;not null;default:'open';index" json:"status"`

	Longitude float64 `gorm:"column:longitude" json:"longitude"`
	Latitude  float64 `gorm:"column:latitude" json:"latitude"`

	Description string         `gorm:"column:description;type:text" json:"description"`
	Payload     datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload,omitempty"`

	OccurredAt time.Time  `gorm:"column:occurred_at;not null;default:now();index" json:"occurred_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CityEvent) TableName() string { return "city_event" }

// AnalysisReport is a persisted result of a spatial analysis request so
// the frontend can replay past analyses.
type AnalysisReport struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	AnalysisType string         `gorm:"column:analysis_type;not null;index" json:"analysis_type"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Parameters   datatypes.JSON `gorm:"type:jsonb;column:parameters;not null;default:'{}'" json:"parameters"`
	Result       datatypes.JSON `gorm:"type:jsonb;column:result" json:"result,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (AnalysisReport) TableName() string { return "analysis_report" }
