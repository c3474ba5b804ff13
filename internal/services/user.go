package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

var validPersonas = map[string]bool{
	"admin":   true,
	"planner": true,
	"geek":    true,
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type UpdateConfigInput struct {
	Provider         *string  `json:"provider"`
	ModelName        *string  `json:"model_name"`
	Persona          *string  `json:"persona"`
	Temperature      *float64 `json:"temperature"`
	TopP             *float64 `json:"top_p"`
	AutoExecute      *bool    `json:"auto_execute"`
	Theme            *string  `json:"theme"`
	Language         *string  `json:"language"`
	DefaultCity      *string  `json:"default_city"`
	DefaultLongitude *float64 `json:"default_longitude"`
	DefaultLatitude  *float64 `json:"default_latitude"`
}

type UserService interface {
	Profile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*types.User, error)
	Config(ctx context.Context, userID uuid.UUID) (*types.UserConfig, error)
	UpdateConfig(ctx context.Context, userID uuid.UUID, in UpdateConfigInput) (*types.UserConfig, error)
}

type userService struct {
	db      *gorm.DB
	log     *logger.Logger
	users   repos.UserRepo
	configs repos.UserConfigRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, configs repos.UserConfigRepo) UserService {
	return &userService{
		db:      db,
		log:     log.With("service", "UserService"),
		users:   users,
		configs: configs,
	}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.users.GetByID(dbctx.Context{Ctx: ctx}, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*types.User, error) {
	updates := map[string]interface{}{}
	if in.DisplayName != nil {
		updates["display_name"] = *in.DisplayName
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.users.UpdateFields(dbc, userID, updates); err != nil {
		return nil, err
	}
	return s.users.GetByID(dbc, userID)
}

// Config returns the per-user config row, creating defaults on first
// access so the frontend never has to special-case a missing config.
func (s *userService) Config(ctx context.Context, userID uuid.UUID) (*types.UserConfig, error) {
	dbc := dbctx.Context{Ctx: ctx}

	cfg, err := s.configs.GetByUserID(dbc, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := s.configs.Create(dbc, &types.UserConfig{ID: uuid.New(), UserID: userID})
	if err != nil {
		// Lost the race with a concurrent first read.
		if existing, getErr := s.configs.GetByUserID(dbc, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

func (s *userService) UpdateConfig(ctx context.Context, userID uuid.UUID, in UpdateConfigInput) (*types.UserConfig, error) {
	if _, err := s.Config(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Provider != nil {
		updates["provider"] = *in.Provider
	}
	if in.ModelName != nil {
		updates["model_name"] = *in.ModelName
	}
	if in.Persona != nil {
		if !validPersonas[*in.Persona] {
			return nil, apierr.New(http.StatusBadRequest, "INVALID_PERSONA", fmt.Errorf("unknown persona: %s", *in.Persona))
		}
		updates["persona"] = *in.Persona
	}
	if in.Temperature != nil {
		if *in.Temperature < 0 || *in.Temperature > 2 {
			return nil, apierr.New(http.StatusBadRequest, "INVALID_TEMPERATURE", fmt.Errorf("temperature out of range: %f", *in.Temperature))
		}
		updates["temperature"] = *in.Temperature
	}
	if in.TopP != nil {
		if *in.TopP < 0 || *in.TopP > 1 {
			return nil, apierr.New(http.StatusBadRequest, "INVALID_TOP_P", fmt.Errorf("top_p out of range: %f", *in.TopP))
		}
		updates["top_p"] = *in.TopP
	}
	if in.AutoExecute != nil {
		updates["auto_execute"] = *in.AutoExecute
	}
	if in.Theme != nil {
		updates["theme"] = *in.Theme
	}
	if in.Language != nil {
		updates["language"] = *in.Language
	}
	if in.DefaultCity != nil {
		updates["default_city"] = *in.DefaultCity
	}
	if in.DefaultLongitude != nil {
		updates["default_longitude"] = *in.DefaultLongitude
	}
	if in.DefaultLatitude != nil {
		updates["default_latitude"] = *in.DefaultLatitude
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.configs.UpdateFields(dbc, userID, updates); err != nil {
		return nil, err
	}
	return s.configs.GetByUserID(dbc, userID)
}
