package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/urbantwin/citytwin-backend/internal/platform/apierr"
	"github.com/urbantwin/citytwin-backend/internal/platform/envutil"
)

// Map tile styles offered to the scene. Templates use the standard
// {z}/{x}/{y} slippy-map placeholders the frontend substitutes, and
// deployments with a commercial tile contract override them via
// AMAP_TILE_URL / AMAP_SATELLITE_URL.
const (
	MapStyleStreet    = "street"
	MapStyleSatellite = "satellite"
)

type MapTileConfig struct {
	Style       string `json:"style"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

var mapStyles = map[string]MapTileConfig{
	MapStyleStreet: {
		Style:       MapStyleStreet,
		URLTemplate: envutil.String("AMAP_TILE_URL", "https://tile.openstreetmap.org/{z}/{x}/{y}.png"),
		Attribution: "© OpenStreetMap contributors",
		MaxZoom:     19,
	},
	MapStyleSatellite: {
		Style:       MapStyleSatellite,
		URLTemplate: envutil.String("AMAP_SATELLITE_URL", "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"),
		Attribution: "© Esri",
		MaxZoom:     18,
	},
}

// MapTileStyle resolves a style name to its tile source. Empty input
// means street.
func MapTileStyle(style string) (MapTileConfig, error) {
	name := strings.ToLower(strings.TrimSpace(style))
	if name == "" {
		name = MapStyleStreet
	}
	cfg, ok := mapStyles[name]
	if !ok {
		return MapTileConfig{}, apierr.New(http.StatusBadRequest, "INVALID_MAP_STYLE", fmt.Errorf("unknown map style: %s", style))
	}
	return cfg, nil
}

// MapTileURL expands a style's template for one tile, for clients that
// cannot substitute placeholders themselves.
func MapTileURL(style string, z, x, y int) (string, error) {
	cfg, err := MapTileStyle(style)
	if err != nil {
		return "", err
	}
	if z < 0 || z > cfg.MaxZoom {
		return "", apierr.BadRequest("INVALID_ZOOM", "zoom out of range")
	}
	max := 1 << uint(z)
	if x < 0 || x >= max || y < 0 || y >= max {
		return "", apierr.BadRequest("INVALID_TILE", "tile coordinates out of range")
	}

	url := cfg.URLTemplate
	url = strings.ReplaceAll(url, "{z}", fmt.Sprintf("%d", z))
	url = strings.ReplaceAll(url, "{x}", fmt.Sprintf("%d", x))
	url = strings.ReplaceAll(url, "{y}", fmt.Sprintf("%d", y))
	return url, nil
}

func MapStyles() []MapTileConfig {
	return []MapTileConfig{mapStyles[MapStyleStreet], mapStyles[MapStyleSatellite]}
}
