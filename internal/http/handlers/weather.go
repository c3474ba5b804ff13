package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urbantwin/citytwin-backend/internal/http/response"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type WeatherHandler struct {
	weatherService services.WeatherService
}

func NewWeatherHandler(weatherService services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// Accepts either lon/lat or a known city name.
func weatherCoords(c *gin.Context) (lon, lat float64, city string, err error) {
	if name := c.Query("city"); name != "" {
		loc, ok := services.LookupCity(name)
		if !ok {
			return 0, 0, "", errors.New("unknown city")
		}
		return loc.Longitude, loc.Latitude, loc.Name, nil
	}
	lon, lonErr := queryFloat(c, "longitude")
	lat, latErr := queryFloat(c, "latitude")
	if lonErr != nil || latErr != nil {
		return 0, 0, "", errors.New("longitude and latitude, or city, required")
	}
	return lon, lat, "", nil
}

// GET /api/v1/weather/current?longitude=&latitude=  or ?city=
func (wh *WeatherHandler) Current(c *gin.Context) {
	lon, lat, city, err := weatherCoords(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	report, err := wh.weatherService.Current(c.Request.Context(), lon, lat, city)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"weather": report})
}

// GET /api/v1/weather/forecast?longitude=&latitude=  or ?city=
func (wh *WeatherHandler) Forecast(c *gin.Context) {
	lon, lat, city, err := weatherCoords(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	forecast, err := wh.weatherService.Forecast(c.Request.Context(), lon, lat, city)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"forecast": forecast})
}

// GET /api/v1/cities
func (wh *WeatherHandler) ListCities(c *gin.Context) {
	response.RespondOK(c, gin.H{"cities": services.KnownCities()})
}
