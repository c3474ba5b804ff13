package services

import (
	"encoding/json"

	"github.com/urbantwin/citytwin-backend/internal/ai"
)

// Action is one typed UI instruction the frontend executes, decoded
// from a model tool call.
type Action struct {
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

const (
	ActionCameraFlyTo        = "camera_flyTo"
	ActionHighlightBuildings = "highlight_buildings"
	ActionQueryBuildings     = "query_buildings"
	ActionSpatialBuffer      = "spatial_buffer"
	ActionSpatialViewshed    = "spatial_viewshed"
	ActionSpatialAccess      = "spatial_accessibility"
	ActionGetWeather         = "get_weather"
	ActionSetWeather         = "set_weather"

	// query_weather_scene is a composite: it never reaches the client
	// directly, it expands into a flight plus a weather fetch.
	toolQueryWeatherScene = "query_weather_scene"
)

func numberParam(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

// ChatTools is the tool catalog advertised to every vendor.
func ChatTools() []ai.Tool {
	lonLat := map[string]any{
		"longitude": map[string]any{"type": "number", "description": "经度"},
		"latitude":  map[string]any{"type": "number", "description": "纬度"},
	}

	object := func(props map[string]any, required ...string) map[string]any {
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		return schema
	}

	merge := func(maps ...map[string]any) map[string]any {
		out := map[string]any{}
		for _, m := range maps {
			for k, v := range m {
				out[k] = v
			}
		}
		return out
	}

	return []ai.Tool{
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionCameraFlyTo,
			Description: "将相机飞行到指定位置。可以指定城市名或经纬度。",
			Parameters: object(merge(lonLat, map[string]any{
				"city":    map[string]any{"type": "string", "description": "城市名称，如 北京、上海"},
				"height":  map[string]any{"type": "number", "description": "相机高度（米），默认 2000"},
				"heading": map[string]any{"type": "number", "description": "朝向角度"},
				"pitch":   map[string]any{"type": "number", "description": "俯仰角度，默认 -45"},
			})),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionHighlightBuildings,
			Description: "在场景中高亮一组建筑。",
			Parameters: object(map[string]any{
				"building_ids": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"category":     map[string]any{"type": "string", "description": "按类别高亮"},
				"color":        map[string]any{"type": "string", "description": "高亮颜色，默认红色"},
			}),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionQueryBuildings,
			Description: "按关键词、类别或范围查询建筑。",
			Parameters: object(merge(lonLat, map[string]any{
				"keyword":  map[string]any{"type": "string"},
				"category": map[string]any{"type": "string"},
				"radius":   map[string]any{"type": "number", "description": "查询半径（米）"},
			})),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionSpatialBuffer,
			Description: "对某个点做缓冲区分析，统计半径内的建筑。",
			Parameters: object(merge(lonLat, map[string]any{
				"radius": map[string]any{"type": "number", "description": "缓冲半径（米）"},
			}), "radius"),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionSpatialViewshed,
			Description: "从观察点做视域分析，判断周边建筑是否可见。",
			Parameters: object(merge(lonLat, map[string]any{
				"observer_height": map[string]any{"type": "number", "description": "观察点高度（米）"},
			}), "observer_height"),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionSpatialAccess,
			Description: "做可达性分析，绘制等时圈。",
			Parameters: object(merge(lonLat, map[string]any{
				"mode":     map[string]any{"type": "string", "enum": []string{"driving", "walking", "transit"}},
				"max_time": map[string]any{"type": "number", "description": "最大时间（分钟），最多 20"},
			}), "mode"),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionGetWeather,
			Description: "查询指定位置的实时天气。",
			Parameters: object(merge(lonLat, map[string]any{
				"city": map[string]any{"type": "string"},
			})),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        ActionSetWeather,
			Description: "设置场景天气效果。",
			Parameters: object(map[string]any{
				"condition": map[string]any{"type": "string", "enum": []string{
					ConditionClear, ConditionCloudy, ConditionRain, ConditionSnow, ConditionFog,
				}},
				"is_day": map[string]any{"type": "boolean"},
			}, "condition"),
		}},
		{Type: "function", Function: ai.ToolFunction{
			Name:        toolQueryWeatherScene,
			Description: "查询某个城市的天气并把场景切换过去。",
			Parameters: object(merge(lonLat, map[string]any{
				"city": map[string]any{"type": "string"},
			})),
		}},
	}
}

// DecodeActions turns raw tool calls into UI actions. A malformed
// argument payload degrades to empty parameters instead of failing
// the reply, and composite tools are expanded in place.
func DecodeActions(calls []ai.ToolCall) []Action {
	out := []Action{}
	for _, call := range calls {
		name := call.Function.Name
		if name == "" {
			continue
		}

		params := map[string]any{}
		if raw := call.Function.Arguments; raw != "" {
			if err := json.Unmarshal([]byte(raw), &params); err != nil {
				params = map[string]any{}
			}
		}

		if name == toolQueryWeatherScene {
			out = append(out, expandWeatherScene(params)...)
			continue
		}
		out = append(out, Action{Type: name, Parameters: params})
	}
	return out
}

// expandWeatherScene turns the composite weather-scene query into a
// camera flight followed by a delayed weather fetch, so the fetch runs
// after the flight lands.
func expandWeatherScene(params map[string]any) []Action {
	lon := numberParam(params, "longitude", 0)
	lat := numberParam(params, "latitude", 0)

	if city, _ := params["city"].(string); city != "" && (lon == 0 || lat == 0) {
		if c, ok := LookupCity(city); ok {
			lon, lat = c.Longitude, c.Latitude
		}
	}

	flyParams := map[string]any{
		"longitude":           lon,
		"latitude":            lat,
		"height":              5000.0,
		"pitch":               -30.0,
		"wait_for_completion": true,
	}
	if city, _ := params["city"].(string); city != "" {
		flyParams["city"] = city
	}

	weatherParams := map[string]any{
		"longitude": lon,
		"latitude":  lat,
		"delay_ms":  1000.0,
	}
	if city, _ := params["city"].(string); city != "" {
		weatherParams["city"] = city
	}

	return []Action{
		{Type: ActionCameraFlyTo, Parameters: flyParams},
		{Type: ActionGetWeather, Parameters: weatherParams},
	}
}
