package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/urbantwin/citytwin-backend/internal/data/repos"
	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
	"github.com/urbantwin/citytwin-backend/internal/platform/secrets"
	"github.com/urbantwin/citytwin-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Provider   services.ProviderService
	Chat       services.ChatService
	Execution  services.ExecutionService
	Building   services.BuildingService
	Spatial    services.SpatialService
	Simulation services.SimulationService
	Event      services.EventService
	Weather    services.WeatherService
	Geocode    services.GeocodeService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet *repos.Set, rdb *goredis.Client) (Services, error) {
	log.Info("Wiring services...")

	cipher, err := secrets.NewCipher(normalizeKey(cfg.EncryptionKey, log))
	if err != nil {
		return Services{}, fmt.Errorf("init cipher: %w", err)
	}

	provider := services.NewProviderService(db, log, reposet.Provider, reposet.Usage, cipher)

	return Services{
		Auth:       services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:       services.NewUserService(db, log, reposet.User, reposet.UserConfig),
		Provider:   provider,
		Chat:       services.NewChatService(db, log, reposet.Conversation, reposet.Usage, reposet.UserConfig, provider),
		Execution:  services.NewExecutionService(db, log, reposet.ExecutionConfig),
		Building:   services.NewBuildingService(db, log, reposet.Building),
		Spatial:    services.NewSpatialService(db, log, reposet.Building, reposet.Report),
		Simulation: services.NewSimulationService(db, log, reposet.Simulation, reposet.Building),
		Event:      services.NewEventService(db, log, reposet.Event),
		Weather:    services.NewWeatherService(log, cfg.OpenWeatherAPIKey, rdb),
		Geocode:    services.NewGeocodeService(log, cfg.AmapAPIKey),
	}, nil
}

// normalizeKey pads or truncates to the 32 bytes AES-256 wants so a dev
// setup without ENCRYPTION_KEY still boots. Stored credentials survive a
// key change because decryption falls back to passthrough.
func normalizeKey(key string, log *logger.Logger) string {
	if len(key) == 32 {
		return key
	}
	if key == "" {
		log.Warn("ENCRYPTION_KEY not set, using insecure default")
		key = "citytwin-dev-only-encryption-key"
	} else {
		log.Warn("ENCRYPTION_KEY is not 32 bytes, normalizing", "length", len(key))
	}
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = '0'
	}
	copy(buf, key)
	return string(buf)
}
