package app

import (
	apphttp "github.com/urbantwin/citytwin-backend/internal/http"
)

func wireRouter(cfg Config, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		ServiceName: "citytwin",
		CORSOrigins: cfg.CORSOrigins,
		Middleware:  middleware.Global,

		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		UserHandler:    handlers.User,

		ProviderHandler:  handlers.Provider,
		ChatHandler:      handlers.Chat,
		ExecutionHandler: handlers.Execution,

		BuildingHandler:   handlers.Building,
		SpatialHandler:    handlers.Spatial,
		SimulationHandler: handlers.Simulation,
		EventHandler:      handlers.Event,

		WeatherHandler: handlers.Weather,
		MapTileHandler: handlers.MapTile,

		HealthHandler: handlers.Health,
	})
}
