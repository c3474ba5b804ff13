package app

import (
	"github.com/urbantwin/citytwin-backend/internal/http/handlers"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler

	Provider  *handlers.ProviderHandler
	Chat      *handlers.ChatHandler
	Execution *handlers.ExecutionHandler

	Building   *handlers.BuildingHandler
	Spatial    *handlers.SpatialHandler
	Simulation *handlers.SimulationHandler
	Event      *handlers.EventHandler

	Weather *handlers.WeatherHandler
	MapTile *handlers.MapTileHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(),
		Auth:   handlers.NewAuthHandler(services.Auth),
		User:   handlers.NewUserHandler(services.User),

		Provider:  handlers.NewProviderHandler(services.Provider),
		Chat:      handlers.NewChatHandler(services.Chat),
		Execution: handlers.NewExecutionHandler(services.Execution),

		Building:   handlers.NewBuildingHandler(services.Building),
		Spatial:    handlers.NewSpatialHandler(services.Spatial),
		Simulation: handlers.NewSimulationHandler(services.Simulation),
		Event:      handlers.NewEventHandler(services.Event),

		Weather: handlers.NewWeatherHandler(services.Weather),
		MapTile: handlers.NewMapTileHandler(services.Geocode),
	}
}
