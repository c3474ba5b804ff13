package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type ExecutionHandler struct {
	executionService services.ExecutionService
}

func NewExecutionHandler(executionService services.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{executionService: executionService}
}

// GET /api/v1/execution/config
func (eh *ExecutionHandler) GetConfig(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	cfg, err := eh.executionService.Config(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"config": cfg})
}

// PUT /api/v1/execution/config
func (eh *ExecutionHandler) UpdateConfig(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.UpdateExecutionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	cfg, err := eh.executionService.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"config": cfg})
}

// GET /api/v1/execution/check?action=camera_flyTo
func (eh *ExecutionHandler) CheckAction(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	actionType := c.Query("action")
	if actionType == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("missing action"))
		return
	}
	check, err := eh.executionService.CheckAction(c.Request.Context(), userID, actionType)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"check": check})
}
