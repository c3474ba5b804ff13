package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/urbantwin/citytwin-backend/internal/http/handlers"
	httpMW "github.com/urbantwin/citytwin-backend/internal/http/middleware"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Middleware  []gin.HandlerFunc

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler

	ProviderHandler  *httpH.ProviderHandler
	ChatHandler      *httpH.ChatHandler
	ExecutionHandler *httpH.ExecutionHandler

	BuildingHandler   *httpH.BuildingHandler
	SpatialHandler    *httpH.SpatialHandler
	SimulationHandler *httpH.SimulationHandler
	EventHandler      *httpH.EventHandler

	WeatherHandler *httpH.WeatherHandler
	MapTileHandler *httpH.MapTileHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "citytwin"
	}
	r.Use(otelgin.Middleware(serviceName))
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Map styles need no identity; the viewer loads them before login.
		if cfg.MapTileHandler != nil {
			api.GET("/map/styles", cfg.MapTileHandler.ListStyles)
			api.GET("/map/tile-url", cfg.MapTileHandler.TileURL)
			api.GET("/map/reverse-geocode", cfg.MapTileHandler.ReverseGeocode)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.GET("/me/config", cfg.UserHandler.GetConfig)
			protected.PUT("/me/config", cfg.UserHandler.UpdateConfig)
		}

		// AI providers
		if cfg.ProviderHandler != nil {
			protected.GET("/ai/vendors", cfg.ProviderHandler.ListVendors)
			protected.GET("/ai/providers", cfg.ProviderHandler.ListProviders)
			protected.POST("/ai/providers", cfg.ProviderHandler.AddProvider)
			protected.PATCH("/ai/providers/:id", cfg.ProviderHandler.UpdateProvider)
			protected.POST("/ai/providers/:id/default", cfg.ProviderHandler.SetDefaultProvider)
			protected.DELETE("/ai/providers/:id", cfg.ProviderHandler.DeleteProvider)
			protected.GET("/ai/models", cfg.ProviderHandler.ListModels)
			protected.GET("/ai/usage", cfg.ProviderHandler.Usage)
		}

		// Chat
		if cfg.ChatHandler != nil {
			protected.POST("/chat/send", cfg.ChatHandler.Send)
			protected.GET("/chat/sessions", cfg.ChatHandler.ListSessions)
			protected.GET("/chat/sessions/:sessionId", cfg.ChatHandler.History)
			protected.DELETE("/chat/sessions/:sessionId", cfg.ChatHandler.DeleteSession)
		}

		// Action execution policy
		if cfg.ExecutionHandler != nil {
			protected.GET("/execution/config", cfg.ExecutionHandler.GetConfig)
			protected.PUT("/execution/config", cfg.ExecutionHandler.UpdateConfig)
			protected.GET("/execution/check", cfg.ExecutionHandler.CheckAction)
		}

		// Buildings
		if cfg.BuildingHandler != nil {
			protected.POST("/buildings", cfg.BuildingHandler.Create)
			protected.GET("/buildings", cfg.BuildingHandler.Search)
			protected.GET("/buildings/categories", cfg.BuildingHandler.Categories)
			protected.GET("/buildings/statistics", cfg.BuildingHandler.Statistics)
			protected.POST("/buildings/query-circle", cfg.BuildingHandler.QueryCircle)
			protected.GET("/buildings/:id", cfg.BuildingHandler.Get)
			protected.PATCH("/buildings/:id", cfg.BuildingHandler.Update)
			protected.DELETE("/buildings/:id", cfg.BuildingHandler.Delete)
		}

		// Spatial analysis
		if cfg.SpatialHandler != nil {
			protected.POST("/spatial/buffer", cfg.SpatialHandler.Buffer)
			protected.POST("/spatial/viewshed", cfg.SpatialHandler.Viewshed)
			protected.POST("/spatial/accessibility", cfg.SpatialHandler.Accessibility)
			protected.GET("/spatial/reports", cfg.SpatialHandler.ListReports)
			protected.GET("/spatial/reports/:id", cfg.SpatialHandler.GetReport)
		}

		// Simulations
		if cfg.SimulationHandler != nil {
			protected.POST("/simulations", cfg.SimulationHandler.Run)
			protected.GET("/simulations", cfg.SimulationHandler.List)
			protected.GET("/simulations/:id", cfg.SimulationHandler.Get)
			protected.DELETE("/simulations/:id", cfg.SimulationHandler.Delete)
		}

		// City events
		if cfg.EventHandler != nil {
			protected.POST("/events", cfg.EventHandler.Create)
			protected.GET("/events", cfg.EventHandler.List)
			protected.POST("/events/:id/resolve", cfg.EventHandler.Resolve)
		}

		// Weather
		if cfg.WeatherHandler != nil {
			protected.GET("/weather/current", cfg.WeatherHandler.Current)
			protected.GET("/weather/forecast", cfg.WeatherHandler.Forecast)
			protected.GET("/cities", cfg.WeatherHandler.ListCities)
		}
	}

	return r
}
