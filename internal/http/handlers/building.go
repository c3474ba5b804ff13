package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type BuildingHandler struct {
	buildingService services.BuildingService
}

func NewBuildingHandler(buildingService services.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: buildingService}
}

// POST /api/v1/buildings
func (bh *BuildingHandler) Create(c *gin.Context) {
	var req services.CreateBuildingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	building, err := bh.buildingService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"building": building})
}

// GET /api/v1/buildings/:id
func (bh *BuildingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	building, err := bh.buildingService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"building": building})
}

// GET /api/v1/buildings
func (bh *BuildingHandler) Search(c *gin.Context) {
	q := repos.BuildingSearch{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		District: c.Query("district"),
		Status:   c.Query("status"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
	if raw := c.Query("risk_level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_risk_level", err)
			return
		}
		q.RiskLevel = &level
	}
	page, err := bh.buildingService.Search(c.Request.Context(), q)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /api/v1/buildings/query-circle
func (bh *BuildingHandler) QueryCircle(c *gin.Context) {
	var req services.CircleQueryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	buildings, err := bh.buildingService.QueryCircle(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"buildings": buildings, "count": len(buildings)})
}

// GET /api/v1/buildings/categories
func (bh *BuildingHandler) Categories(c *gin.Context) {
	categories, err := bh.buildingService.Categories(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": categories})
}

// GET /api/v1/buildings/statistics
func (bh *BuildingHandler) Statistics(c *gin.Context) {
	stats, err := bh.buildingService.Statistics(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"statistics": stats})
}

// PATCH /api/v1/buildings/:id
func (bh *BuildingHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateBuildingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	building, err := bh.buildingService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"building": building})
}

// DELETE /api/v1/buildings/:id
func (bh *BuildingHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := bh.buildingService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
