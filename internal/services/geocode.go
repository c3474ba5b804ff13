package services

import (
	"strings"
)

// CityLocation is a known city centre used to resolve chat references
// like "飞到上海" without an external geocoder.
type CityLocation struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

var cityTable = []CityLocation{
	{Name: "北京", Longitude: 116.4074, Latitude: 39.9042},
	{Name: "上海", Longitude: 121.4737, Latitude: 31.2304},
	{Name: "广州", Longitude: 113.2644, Latitude: 23.1291},
	{Name: "深圳", Longitude: 114.0579, Latitude: 22.5431},
	{Name: "香港", Longitude: 114.1694, Latitude: 22.3193},
	{Name: "西安", Longitude: 108.9398, Latitude: 34.3416},
	{Name: "成都", Longitude: 104.0668, Latitude: 30.5728},
	{Name: "杭州", Longitude: 120.1551, Latitude: 30.2741},
	{Name: "武汉", Longitude: 114.3055, Latitude: 30.5928},
	{Name: "南京", Longitude: 118.7969, Latitude: 32.0603},
}

// Ordered so mention scanning is deterministic.
var cityAliases = []struct {
	Alias, Name string
}{
	{"beijing", "北京"},
	{"shanghai", "上海"},
	{"guangzhou", "广州"},
	{"shenzhen", "深圳"},
	{"hong kong", "香港"},
	{"hongkong", "香港"},
	{"xi'an", "西安"},
	{"xian", "西安"},
	{"chengdu", "成都"},
	{"hangzhou", "杭州"},
	{"wuhan", "武汉"},
	{"nanjing", "南京"},
}

func aliasLookup(q string) (string, bool) {
	for _, a := range cityAliases {
		if a.Alias == q {
			return a.Name, true
		}
	}
	return "", false
}

// LookupCity resolves a city name to coordinates. Exact names win,
// then english aliases, then a substring match in either direction so
// inputs like "北京市" or "去上海看看" still resolve.
func LookupCity(name string) (CityLocation, bool) {
	q := strings.TrimSpace(strings.ToLower(name))
	if q == "" {
		return CityLocation{}, false
	}

	for _, c := range cityTable {
		if c.Name == q || strings.ToLower(c.Name) == q {
			return c, true
		}
	}
	if canonical, ok := aliasLookup(q); ok {
		return LookupCity(canonical)
	}
	for _, c := range cityTable {
		if strings.Contains(q, c.Name) || strings.Contains(c.Name, q) {
			return c, true
		}
	}
	for _, a := range cityAliases {
		if strings.Contains(q, a.Alias) {
			return LookupCity(a.Name)
		}
	}
	return CityLocation{}, false
}

// KnownCities returns the full lookup table, for the frontend's city
// picker.
func KnownCities() []CityLocation {
	out := make([]CityLocation, len(cityTable))
	copy(out, cityTable)
	return out
}

// NearestCity returns the known city closest to the given point and the
// distance to it in metres.
func NearestCity(lon, lat float64) (CityLocation, float64) {
	best := cityTable[0]
	bestDist := Haversine(lon, lat, best.Longitude, best.Latitude)
	for _, c := range cityTable[1:] {
		if d := Haversine(lon, lat, c.Longitude, c.Latitude); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, bestDist
}

// FindCityMention scans free text for the first known city reference.
func FindCityMention(text string) (CityLocation, bool) {
	lower := strings.ToLower(text)
	for _, c := range cityTable {
		if strings.Contains(text, c.Name) {
			return c, true
		}
	}
	for _, a := range cityAliases {
		if strings.Contains(lower, a.Alias) {
			return LookupCity(a.Name)
		}
	}
	return CityLocation{}, false
}
