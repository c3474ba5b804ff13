package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	types "github.com/urbantwin/citytwin-backend/internal/domain"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type CreateEventInput struct {
	EventType   string         `json:"event_type" binding:"required"`
	Title       string         `json:"title" binding:"required"`
	Severity    string         `json:"severity"`
	Longitude   float64        `json:"longitude"`
	Latitude    float64        `json:"latitude"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
	OccurredAt  *time.Time     `json:"occurred_at"`
}

type EventFilter struct {
	EventType string
	Severity  string
	Status    string
	Limit     int
}

type EventService interface {
	Create(ctx context.Context, in CreateEventInput) (*types.CityEvent, error)
	List(ctx context.Context, f EventFilter) ([]*types.CityEvent, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type eventService struct {
	db     *gorm.DB
	log    *logger.Logger
	events repos.EventRepo
}

func NewEventService(db *gorm.DB, log *logger.Logger, events repos.EventRepo) EventService {
	return &eventService{
		db:     db,
		log:    log.With("service", "EventService"),
		events: events,
	}
}

func (s *eventService) Create(ctx context.Context, in CreateEventInput) (*types.CityEvent, error) {
	severity := in.Severity
	switch severity {
	case "":
		severity = "info"
	case "info", "warning", "critical":
	default:
		return nil, apierr.BadRequest("INVALID_SEVERITY", "severity must be info, warning or critical")
	}

	occurred := time.Now().UTC()
	if in.OccurredAt != nil {
		occurred = in.OccurredAt.UTC()
	}

	var payload datatypes.JSON
	if len(in.Payload) > 0 {
		raw, err := json.Marshal(in.Payload)
		if err != nil {
			return nil, err
		}
		payload = datatypes.JSON(raw)
	}

	return s.events.Create(dbctx.Context{Ctx: ctx}, &types.CityEvent{
		ID:          uuid.New(),
		EventType:   in.EventType,
		Title:       in.Title,
		Severity:    severity,
		Status:      "open",
		Longitude:   in.Longitude,
		Latitude:    in.Latitude,
		Description: in.Description,
		Payload:     payload,
		OccurredAt:  occurred,
	})
}

func (s *eventService) List(ctx context.Context, f EventFilter) ([]*types.CityEvent, error) {
	return s.events.List(dbctx.Context{Ctx: ctx}, f.EventType, f.Severity, f.Status, f.Limit)
}

func (s *eventService) Resolve(ctx context.Context, id uuid.UUID) error {
	err := s.events.Resolve(dbctx.Context{Ctx: ctx}, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound("EVENT_NOT_FOUND", "event not found or already resolved")
	}
	return err
}
