package services

import (
	"fmt"
	"strings"
)

// ruleReply is the offline fallback: when no LLM provider is usable we
// still answer simple commands with keyword rules so the scene stays
// interactive.
type ruleReply struct {
	Content string
	Actions []Action
}

var weatherSetKeywords = map[string]string{
	"下雨": ConditionRain,
	"雨天": ConditionRain,
	"下雪": ConditionSnow,
	"雪天": ConditionSnow,
	"起雾": ConditionFog,
	"大雾": ConditionFog,
	"多云": ConditionCloudy,
	"阴天": ConditionCloudy,
	"晴天": ConditionClear,
	"放晴": ConditionClear,
}

func matchRules(message string) (*ruleReply, bool) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, false
	}
	lower := strings.ToLower(text)

	// Scene weather override, e.g. "让场景下雨".
	for kw, condition := range weatherSetKeywords {
		if strings.Contains(text, kw) && !containsAny(lower, "天气怎么样", "天气如何", "weather") {
			return &ruleReply{
				Content: fmt.Sprintf("好的，已将场景切换为%s效果。", kw),
				Actions: []Action{{
					Type:       ActionSetWeather,
					Parameters: map[string]any{"condition": condition},
				}},
			}, true
		}
	}

	// Weather query, optionally city-scoped.
	if containsAny(lower, "天气", "weather") {
		params := map[string]any{}
		reply := "好的，正在查询当前位置的天气。"
		if c, ok := FindCityMention(text); ok {
			params["city"] = c.Name
			params["longitude"] = c.Longitude
			params["latitude"] = c.Latitude
			reply = fmt.Sprintf("好的，正在查询%s的天气。", c.Name)
		}
		return &ruleReply{
			Content: reply,
			Actions: expandWeatherScene(params),
		}, true
	}

	// Camera flight, e.g. "飞到上海" / "去北京看看".
	if containsAny(lower, "飞到", "飞往", "去", "前往", "fly", "go to") {
		if c, ok := FindCityMention(text); ok {
			return &ruleReply{
				Content: fmt.Sprintf("好的，正在飞往%s。", c.Name),
				Actions: []Action{{
					Type: ActionCameraFlyTo,
					Parameters: map[string]any{
						"city":      c.Name,
						"longitude": c.Longitude,
						"latitude":  c.Latitude,
						"height":    2000.0,
						"pitch":     -45.0,
					},
				}},
			}, true
		}
	}

	// Building search, e.g. "查询附近的医院".
	if containsAny(lower, "查询", "查找", "搜索", "附近", "find", "search") {
		if category, ok := matchCategory(text); ok {
			return &ruleReply{
				Content: fmt.Sprintf("好的，正在查询%s。", category),
				Actions: []Action{{
					Type:       ActionQueryBuildings,
					Parameters: map[string]any{"category": category},
				}},
			}, true
		}
	}

	// Highlight, e.g. "高亮所有商业建筑".
	if containsAny(lower, "高亮", "标记", "highlight") {
		params := map[string]any{"color": "red"}
		reply := "好的，已高亮选中的建筑。"
		if category, ok := matchCategory(text); ok {
			params["category"] = category
			reply = fmt.Sprintf("好的，已高亮%s类建筑。", category)
		}
		return &ruleReply{
			Content: reply,
			Actions: []Action{{Type: ActionHighlightBuildings, Parameters: params}},
		}, true
	}

	return nil, false
}

var categoryKeywords = []string{
	"住宅", "商业", "办公", "医院", "学校", "工业", "交通", "文化", "公园",
}

func matchCategory(text string) (string, bool) {
	for _, c := range categoryKeywords {
		if strings.Contains(text, c) {
			return c, true
		}
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
