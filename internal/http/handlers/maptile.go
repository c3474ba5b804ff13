package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

var errInvalidTileCoords = errors.New("z, x and y must be integers")

type MapTileHandler struct {
	geocodeService services.GeocodeService
}

func NewMapTileHandler(geocodeService services.GeocodeService) *MapTileHandler {
	return &MapTileHandler{geocodeService: geocodeService}
}

// GET /api/v1/map/styles
func (mh *MapTileHandler) ListStyles(c *gin.Context) {
	response.RespondOK(c, gin.H{"styles": services.MapStyles()})
}

// GET /api/v1/map/tile-url?style=street&z=10&x=843&y=388
func (mh *MapTileHandler) TileURL(c *gin.Context) {
	z, zErr := strconv.Atoi(c.Query("z"))
	x, xErr := strconv.Atoi(c.Query("x"))
	y, yErr := strconv.Atoi(c.Query("y"))
	if zErr != nil || xErr != nil || yErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidTileCoords)
		return
	}
	url, err := services.MapTileURL(c.Query("style"), z, x, y)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}

// GET /api/v1/map/reverse-geocode?longitude=116.40&latitude=39.90
func (mh *MapTileHandler) ReverseGeocode(c *gin.Context) {
	lon, lonErr := queryFloat(c, "longitude")
	lat, latErr := queryFloat(c, "latitude")
	if lonErr != nil || latErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			errors.New("longitude and latitude must be numbers"))
		return
	}
	addr, err := mh.geocodeService.ReverseGeocode(c.Request.Context(), lon, lat)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"address": addr})
}
