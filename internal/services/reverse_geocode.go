package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/urbantwin/citytwin-backend/internal/platform/logger"
)

// Address is a resolved reverse-geocode result. Source is "amap" for
// live lookups and "city_table" for the keyless fallback.
type Address struct {
	Address   string  `json:"address"`
	Province  string  `json:"province,omitempty"`
	City      string  `json:"city"`
	District  string  `json:"district,omitempty"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	DistanceM float64 `json:"distance_m,omitempty"`
	Source    string  `json:"source"`
}

type GeocodeService interface {
	ReverseGeocode(ctx context.Context, lon, lat float64) (*Address, error)
}

type geocodeService struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeocodeService(log *logger.Logger, apiKey string) GeocodeService {
	return &geocodeService{
		log:        log.With("service", "GeocodeService"),
		apiKey:     apiKey,
		baseURL:    "https://restapi.amap.com/v3/geocode",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGeocodeServiceWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewGeocodeServiceWithHTTPClient(log *logger.Logger, apiKey, baseURL string, httpClient *http.Client) GeocodeService {
	s := &geocodeService{
		log:        log.With("service", "GeocodeService"),
		apiKey:     apiKey,
		baseURL:    "https://restapi.amap.com/v3/geocode",
		httpClient: httpClient,
	}
	if baseURL != "" {
		s.baseURL = baseURL
	}
	return s
}

type amapRegeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode struct {
		FormattedAddress string `json:"formatted_address"`
		AddressComponent struct {
			Province string `json:"province"`
			City     string `json:"city"`
			District string `json:"district"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

// ReverseGeocode resolves coordinates to an address via AMAP when an
// API key is configured, and to the nearest known city otherwise so
// the viewer always gets a label.
func (s *geocodeService) ReverseGeocode(ctx context.Context, lon, lat float64) (*Address, error) {
	if s.apiKey == "" {
		return s.fallback(lon, lat), nil
	}

	addr, err := s.fetch(ctx, lon, lat)
	if err != nil {
		s.log.Warn("Reverse geocode upstream failed, serving nearest city", "error", err)
		return s.fallback(lon, lat), nil
	}
	return addr, nil
}

func (s *geocodeService) fetch(ctx context.Context, lon, lat float64) (*Address, error) {
	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("location", fmt.Sprintf("%f,%f", lon, lat))
	q.Set("extensions", "base")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/regeo?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amap status=%d", resp.StatusCode)
	}

	var out amapRegeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Status != "1" {
		return nil, fmt.Errorf("amap error: %s", out.Info)
	}

	comp := out.Regeocode.AddressComponent
	return &Address{
		Address:   out.Regeocode.FormattedAddress,
		Province:  comp.Province,
		City:      comp.City,
		District:  comp.District,
		Longitude: lon,
		Latitude:  lat,
		Source:    "amap",
	}, nil
}

func (s *geocodeService) fallback(lon, lat float64) *Address {
	city, dist := NearestCity(lon, lat)
	return &Address{
		Address:   fmt.Sprintf("位置: %.4f, %.4f", lat, lon),
		City:      city.Name,
		Longitude: lon,
		Latitude:  lat,
		DistanceM: round1(dist),
		Source:    "city_table",
	}
}
