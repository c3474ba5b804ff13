package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(simulationService services.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: simulationService}
}

// POST /api/v1/simulations
func (sh *SimulationHandler) Run(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.RunSimulationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	record, impact, err := sh.simulationService.Run(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"simulation": record, "impact": impact})
}

// GET /api/v1/simulations/:id
func (sh *SimulationHandler) Get(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	record, err := sh.simulationService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"simulation": record})
}

// GET /api/v1/simulations?type=flood&limit=20
func (sh *SimulationHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	records, err := sh.simulationService.List(c.Request.Context(), userID, c.Query("type"), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"simulations": records})
}

// DELETE /api/v1/simulations/:id
func (sh *SimulationHandler) Delete(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := sh.simulationService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
