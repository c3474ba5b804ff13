package ai

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProviderCredential is one user-scoped credential for an LLM vendor.
// APIKeyEncrypted carries either an AES-GCM envelope or, for rows that
// predate encryption, the raw key.
type ProviderCredential struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_user_provider" json:"user_id"`

	ProviderCode string `gorm:"column:provider_code;not null;uniqueIndex:uq_user_provider" json:"provider_code"`
	ProviderName string `gorm:"column:provider_name;not null" json:"provider_name"`

	APIKeyEncrypted string `gorm:"column:api_key_encrypted;not null" json:"-"`
	BaseURL         string `gorm:"column:base_url" json:"base_url"`
	DefaultModel    string `gorm:"column:default_model" json:"default_model"`

	IsEnabled bool `gorm:"column:is_enabled;not null;default:true" json:"is_enabled"`
	IsDefault bool `gorm:"column:is_default;not null;default:false;index" json:"is_default"`
	Priority  int  `gorm:"column:priority;not null;default:0" json:"priority"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProviderCredential) TableName() string { return "ai_provider" }

// Conversation is one turn (user or assistant) in a chat session.
// Actions holds the decoded UI actions attached to assistant turns.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID string    `gorm:"column:session_id;not null;index" json:"session_id"`

	Role    string `gorm:"column:role;not null" json:"role"`
	Content string `gorm:"column:content;not null;type:text" json:"content"`

	ModelName  string         `gorm:"column:model_name" json:"model_name,omitempty"`
	TokensUsed int            `gorm:"column:tokens_used;not null;default:0" json:"tokens_used"`
	Actions    datatypes.JSON `gorm:"type:jsonb;column:actions" json:"actions,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Conversation) TableName() string { return "ai_conversation" }

// UsageStat accumulates request and token counts per user, provider,
// model and calendar day.
type UsageStat struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_usage_day" json:"user_id"`

	ProviderCode string    `gorm:"column:provider_code;not null;uniqueIndex:uq_usage_day" json:"provider_code"`
	ModelName    string    `gorm:"column:model_name;not null;uniqueIndex:uq_usage_day" json:"model_name"`
	StatDate     time.Time `gorm:"column:stat_date;not null;type:date;uniqueIndex:uq_usage_day" json:"stat_date"`

	RequestCount  int     `gorm:"column:request_count;not null;default:0" json:"request_count"`
	TokensInput   int     `gorm:"column:tokens_input;not null;default:0" json:"tokens_input"`
	TokensOutput  int     `gorm:"column:tokens_output;not null;default:0" json:"tokens_output"`
	EstimatedCost float64 `gorm:"column:estimated_cost;not null;default:0" json:"estimated_cost"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UsageStat) TableName() string { return "ai_usage_stat" }

// ExecutionConfig is the per-user policy for replaying decoded actions
// on the client: which actions run unattended and which wait for the
// user to confirm.
type ExecutionConfig struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Mode               string         `gorm:"column:mode;not null;default:'auto'" json:"mode"`
	ConfirmActions     datatypes.JSON `gorm:"type:jsonb;column:confirm_actions;not null;default:'[]'" json:"confirm_actions"`
	AutoApproveActions datatypes.JSON `gorm:"type:jsonb;column:auto_approve_actions;not null;default:'[]'" json:"auto_approve_actions"`
	GeekMode           bool           `gorm:"column:geek_mode;not null;default:false" json:"geek_mode"`
	UndoLimit          int            `gorm:"column:undo_limit;not null;default:10" json:"undo_limit"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ExecutionConfig) TableName() string { return "ai_execution_config" }
