package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`

	DisplayName string `gorm:"column:display_name" json:"display_name"`
	AvatarURL   string `gorm:"column:avatar_url" json:"avatar_url"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// UserConfig holds per-user UI and assistant preferences. One row per
// user, created lazily on first read.
type UserConfig struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Provider    string  `gorm:"column:provider;not null;default:'zhipu'" json:"provider"`
	ModelName   string  `gorm:"column:model_name;not null;default:'glm-4-flash'" json:"model_name"`
	Persona     string  `gorm:"column:persona;not null;default:'admin'" json:"persona"`
	Temperature float64 `gorm:"column:temperature;not null;default:0.7" json:"temperature"`
	TopP        float64 `gorm:"column:top_p;not null;default:0.9" json:"top_p"`
	AutoExecute bool    `gorm:"column:auto_execute;not null;default:false" json:"auto_execute"`

	Theme            string  `gorm:"column:theme;not null;default:'dark'" json:"theme"`
	Language         string  `gorm:"column:language;not null;default:'zh-CN'" json:"language"`
	DefaultCity      string  `gorm:"column:default_city;not null;default:'北京'" json:"default_city"`
	DefaultLongitude float64 `gorm:"column:default_longitude;not null;default:116.4074" json:"default_longitude"`
	DefaultLatitude  float64 `gorm:"column:default_latitude;not null;default:39.9042" json:"default_latitude"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserConfig) TableName() string { return "user_config" }
