package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type ProviderHandler struct {
	providerService services.ProviderService
}

func NewProviderHandler(providerService services.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

// GET /api/v1/ai/vendors
func (ph *ProviderHandler) ListVendors(c *gin.Context) {
	response.RespondOK(c, gin.H{"vendors": ph.providerService.Vendors()})
}

// GET /api/v1/ai/providers
func (ph *ProviderHandler) ListProviders(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	providers, err := ph.providerService.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"providers": providers})
}

// POST /api/v1/ai/providers
func (ph *ProviderHandler) AddProvider(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.AddProviderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	provider, err := ph.providerService.Add(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"provider": provider})
}

// PATCH /api/v1/ai/providers/:id
func (ph *ProviderHandler) UpdateProvider(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProviderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	provider, err := ph.providerService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"provider": provider})
}

// POST /api/v1/ai/providers/:id/default
func (ph *ProviderHandler) SetDefaultProvider(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ph.providerService.SetDefault(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/v1/ai/providers/:id
func (ph *ProviderHandler) DeleteProvider(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ph.providerService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/v1/ai/models
func (ph *ProviderHandler) ListModels(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	models, err := ph.providerService.ListModels(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"models": models})
}

// GET /api/v1/ai/usage?days=30
func (ph *ProviderHandler) Usage(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	days := queryInt(c, "days", 30)
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	stats, err := ph.providerService.Usage(c.Request.Context(), userID, since)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"usage": stats})
}
