package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type SpatialHandler struct {
	spatialService services.SpatialService
}

func NewSpatialHandler(spatialService services.SpatialService) *SpatialHandler {
	return &SpatialHandler{spatialService: spatialService}
}

// POST /api/v1/spatial/buffer
func (sh *SpatialHandler) Buffer(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.BufferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := sh.spatialService.Buffer(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/v1/spatial/viewshed
func (sh *SpatialHandler) Viewshed(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.ViewshedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := sh.spatialService.Viewshed(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/v1/spatial/accessibility
func (sh *SpatialHandler) Accessibility(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.AccessibilityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := sh.spatialService.Accessibility(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /api/v1/spatial/reports?type=buffer&limit=20
func (sh *SpatialHandler) ListReports(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	reports, err := sh.spatialService.Reports(c.Request.Context(), userID, c.Query("type"), queryInt(c, "limit", 20))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reports": reports})
}

// GET /api/v1/spatial/reports/:id
func (sh *SpatialHandler) GetReport(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := sh.spatialService.Report(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}
