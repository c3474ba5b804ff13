package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

const weatherCacheTTL = 10 * time.Minute

// Scene condition codes understood by the frontend renderer.
const (
	ConditionClear  = "clear"
	ConditionCloudy = "cloudy"
	ConditionRain   = "rain"
	ConditionSnow   = "snow"
	ConditionFog    = "fog"
)

// WeatherReport is the condensed weather payload the scene consumes.
type WeatherReport struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	TempC       float64 `json:"temperature"`
	FeelsLikeC  float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	IsDay       bool    `json:"is_day"`
	City        string  `json:"city"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Mock        bool    `json:"mock"`
}

// ForecastEntry is one 3-hour step of the forecast, condensed to the
// scene fields.
type ForecastEntry struct {
	Time      time.Time `json:"time"`
	Condition string    `json:"condition"`
	TempC     float64   `json:"temperature"`
}

type WeatherForecast struct {
	City    string          `json:"city"`
	Entries []ForecastEntry `json:"entries"`
	Mock    bool            `json:"mock"`
}

type WeatherService interface {
	Current(ctx context.Context, lon, lat float64, city string) (*WeatherReport, error)
	Forecast(ctx context.Context, lon, lat float64, city string) (*WeatherForecast, error)
}

type weatherService struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
}

func NewWeatherService(log *logger.Logger, apiKey string, cache *redis.Client) WeatherService {
	return &weatherService{
		log:        log.With("service", "WeatherService"),
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/data/2.5",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
	}
}

// NewWeatherServiceWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWeatherServiceWithHTTPClient(log *logger.Logger, apiKey, baseURL string, httpClient *http.Client) WeatherService {
	s := &weatherService{
		log:        log.With("service", "WeatherService"),
		apiKey:     apiKey,
		baseURL:    "https://api.openweathermap.org/data/2.5",
		httpClient: httpClient,
	}
	if baseURL != "" {
		s.baseURL = baseURL
	}
	return s
}

type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// Current returns live weather when an API key is configured and the
// upstream responds, and synthetic weather otherwise so the scene can
// always render something.
func (s *weatherService) Current(ctx context.Context, lon, lat float64, city string) (*WeatherReport, error) {
	if s.apiKey == "" {
		return s.mock(lon, lat, city), nil
	}

	cacheKey := fmt.Sprintf("weather:%.4f:%.4f", lon, lat)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached WeatherReport
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	report, err := s.fetch(ctx, lon, lat)
	if err != nil {
		s.log.Warn("Weather upstream failed, serving mock", "error", err)
		return s.mock(lon, lat, city), nil
	}
	if city != "" {
		report.City = city
	}

	if s.cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, weatherCacheTTL).Err(); err != nil {
				s.log.Warn("Failed to cache weather", "error", err)
			}
		}
	}
	return report, nil
}

func (s *weatherService) fetch(ctx context.Context, lon, lat float64) (*WeatherReport, error) {
	q := url.Values{}
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "zh_cn")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("openweathermap status=%d body=%s", resp.StatusCode, string(raw))
	}

	var out owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	main, description := "", ""
	if len(out.Weather) > 0 {
		main = out.Weather[0].Main
		description = out.Weather[0].Description
	}

	return &WeatherReport{
		Condition:   MapCondition(main),
		Description: description,
		TempC:       out.Main.Temp,
		FeelsLikeC:  out.Main.FeelsLike,
		Humidity:    out.Main.Humidity,
		WindSpeed:   out.Wind.Speed,
		IsDay:       isDay(time.Now(), out.Sys.Sunrise, out.Sys.Sunset),
		City:        out.Name,
		Longitude:   lon,
		Latitude:    lat,
	}, nil
}

type owmForecastResponse struct {
	List []struct {
		DT      int64 `json:"dt"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

func (s *weatherService) Forecast(ctx context.Context, lon, lat float64, city string) (*WeatherForecast, error) {
	if s.apiKey == "" {
		return s.mockForecast(city), nil
	}

	q := url.Values{}
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	q.Set("cnt", "8")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("Forecast upstream failed, serving mock", "error", err)
		return s.mockForecast(city), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("Forecast upstream failed, serving mock", "status", resp.StatusCode)
		return s.mockForecast(city), nil
	}

	var out owmForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return s.mockForecast(city), nil
	}

	forecast := &WeatherForecast{City: out.City.Name}
	if city != "" {
		forecast.City = city
	}
	for _, entry := range out.List {
		main := ""
		if len(entry.Weather) > 0 {
			main = entry.Weather[0].Main
		}
		forecast.Entries = append(forecast.Entries, ForecastEntry{
			Time:      time.Unix(entry.DT, 0).UTC(),
			Condition: MapCondition(main),
			TempC:     entry.Main.Temp,
		})
	}
	return forecast, nil
}

func (s *weatherService) mockForecast(city string) *WeatherForecast {
	now := time.Now().UTC().Truncate(3 * time.Hour)
	conditions := []string{ConditionClear, ConditionCloudy, ConditionRain}
	out := &WeatherForecast{City: city, Mock: true}
	for i := 0; i < 8; i++ {
		out.Entries = append(out.Entries, ForecastEntry{
			Time:      now.Add(time.Duration(i) * 3 * time.Hour),
			Condition: conditions[i%len(conditions)],
			TempC:     15 + float64(i%5)*2,
		})
	}
	return out
}

// MapCondition folds OpenWeatherMap's condition groups into the five
// scene codes.
func MapCondition(main string) string {
	switch main {
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionCloudy
	case "Rain", "Drizzle", "Thunderstorm", "Squall", "Tornado":
		return ConditionRain
	case "Snow":
		return ConditionSnow
	case "Mist", "Fog", "Haze", "Smoke", "Dust", "Sand", "Ash":
		return ConditionFog
	default:
		return ConditionClear
	}
}

// isDay prefers real sunrise/sunset and falls back to a 06:00-18:00
// local heuristic when the upstream omits them.
func isDay(now time.Time, sunrise, sunset int64) bool {
	if sunrise > 0 && sunset > 0 {
		ts := now.Unix()
		return ts >= sunrise && ts < sunset
	}
	h := now.Hour()
	return h >= 6 && h < 18
}

func (s *weatherService) mock(lon, lat float64, city string) *WeatherReport {
	conditions := []string{ConditionClear, ConditionCloudy, ConditionRain}
	return &WeatherReport{
		Condition:   conditions[rand.Intn(len(conditions))],
		Description: "模拟天气",
		TempC:       15 + rand.Float64()*15,
		FeelsLikeC:  15 + rand.Float64()*15,
		Humidity:    40 + rand.Intn(40),
		WindSpeed:   rand.Float64() * 10,
		IsDay:       isDay(time.Now(), 0, 0),
		City:        city,
		Longitude:   lon,
		Latitude:    lat,
		Mock:        true,
	}
}
