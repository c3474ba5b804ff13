package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// POST /api/v1/events
func (eh *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	event, err := eh.eventService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"event": event})
}

// GET /api/v1/events?type=flood&severity=warning&status=open
func (eh *EventHandler) List(c *gin.Context) {
	events, err := eh.eventService.List(c.Request.Context(), services.EventFilter{
		EventType: c.Query("type"),
		Severity:  c.Query("severity"),
		Status:    c.Query("status"),
		Limit:     queryInt(c, "limit", 50),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

// POST /api/v1/events/:id/resolve
func (eh *EventHandler) Resolve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := eh.eventService.Resolve(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
