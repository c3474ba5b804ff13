package services

import (
	"context"
	"encoding/json"
	"errors"

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
	ExecutionModeAuto    = "auto"
	ExecutionModeConfirm = "confirm"
	ExecutionModeManual  = "manual"
)

type UpdateExecutionInput struct {
	Mode               *string   `json:"mode"`
	ConfirmActions     *[]string `json:"confirm_actions"`
	AutoApproveActions *[]string `json:"auto_approve_actions"`
	GeekMode           *bool     `json:"geek_mode"`
	UndoLimit          *int      `json:"undo_limit"`
}

// ActionCheck is the verdict for one action type under the current
// policy.
type ActionCheck struct {
	ActionType      string `json:"action_type"`
	Allowed         bool   `json:"allowed"`
	RequiresConfirm bool   `json:"requires_confirm"`
}

type ExecutionService interface {
	Config(ctx context.Context, userID uuid.UUID) (*types.ExecutionConfig, error)
	Update(ctx context.Context, userID uuid.UUID, in UpdateExecutionInput) (*types.ExecutionConfig, error)
	CheckAction(ctx context.Context, userID uuid.UUID, actionType string) (*ActionCheck, error)
}

type executionService struct {
	db      *gorm.DB
	log     *logger.Logger
	configs repos.ExecutionConfigRepo
}

func NewExecutionService(db *gorm.DB, log *logger.Logger, configs repos.ExecutionConfigRepo) ExecutionService {
	return &executionService{
		db:      db,
		log:     log.With("service", "ExecutionService"),
		configs: configs,
	}
}

// Config returns the policy row, creating defaults on first access.
func (s *executionService) Config(ctx context.Context, userID uuid.UUID) (*types.ExecutionConfig, error) {
	dbc := dbctx.Context{Ctx: ctx}

	cfg, err := s.configs.GetByUserID(dbc, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := s.configs.Create(dbc, &types.ExecutionConfig{
		ID:                 uuid.New(),
		UserID:             userID,
		Mode:               ExecutionModeAuto,
		ConfirmActions:     datatypes.JSON([]byte(`[]`)),
		AutoApproveActions: datatypes.JSON([]byte(`[]`)),
		UndoLimit:          10,
	})
	if err != nil {
		if existing, getErr := s.configs.GetByUserID(dbc, userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

func (s *executionService) Update(ctx context.Context, userID uuid.UUID, in UpdateExecutionInput) (*types.ExecutionConfig, error) {
	if _, err := s.Config(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Mode != nil {
		switch *in.Mode {
		case ExecutionModeAuto, ExecutionModeConfirm, ExecutionModeManual:
		default:
			return nil, apierr.BadRequest("INVALID_MODE", "mode must be auto, confirm or manual")
		}
		updates["mode"] = *in.Mode
	}
	if in.ConfirmActions != nil {
		raw, err := json.Marshal(*in.ConfirmActions)
		if err != nil {
			return nil, err
		}
		updates["confirm_actions"] = datatypes.JSON(raw)
	}
	if in.AutoApproveActions != nil {
		raw, err := json.Marshal(*in.AutoApproveActions)
		if err != nil {
			return nil, err
		}
		updates["auto_approve_actions"] = datatypes.JSON(raw)
	}
	if in.GeekMode != nil {
		updates["geek_mode"] = *in.GeekMode
	}
	if in.UndoLimit != nil {
		if *in.UndoLimit < 0 || *in.UndoLimit > 100 {
			return nil, apierr.BadRequest("INVALID_UNDO_LIMIT", "undo_limit must be 0-100")
		}
		updates["undo_limit"] = *in.UndoLimit
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.configs.UpdateFields(dbc, userID, updates); err != nil {
		return nil, err
	}
	return s.configs.GetByUserID(dbc, userID)
}

// CheckAction resolves the policy for one action type. Explicit lists
// win over the mode default, and geek mode auto-approves everything.
func (s *executionService) CheckAction(ctx context.Context, userID uuid.UUID, actionType string) (*ActionCheck, error) {
	cfg, err := s.Config(ctx, userID)
	if err != nil {
		return nil, err
	}

	check := &ActionCheck{ActionType: actionType, Allowed: true}

	if cfg.GeekMode {
		return check, nil
	}
	if containsString(cfg.AutoApproveActions, actionType) {
		return check, nil
	}
	if containsString(cfg.ConfirmActions, actionType) {
		check.RequiresConfirm = true
		return check, nil
	}

	switch cfg.Mode {
	case ExecutionModeConfirm:
		check.RequiresConfirm = true
	case ExecutionModeManual:
		check.Allowed = false
	}
	return check, nil
}

func containsString(raw datatypes.JSON, want string) bool {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return false
	}
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
