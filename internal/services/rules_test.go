package services

import "testing"

func TestMatchRulesSetWeather(t *testing.T) {
	r, ok := matchRules("让场景下雨")
	if !ok {
		t.Fatal("expected match")
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != ActionSetWeather {
		t.Fatalf("actions=%+v", r.Actions)
	}
	if r.Actions[0].Parameters["condition"] != ConditionRain {
		t.Fatalf("condition=%v", r.Actions[0].Parameters["condition"])
	}
}

func TestMatchRulesWeatherQueryWithCity(t *testing.T) {
	r, ok := matchRules("上海天气怎么样")
	if !ok {
		t.Fatal("expected match")
	}
	// Composite expansion: flight first, then the weather fetch.
	if len(r.Actions) != 2 {
		t.Fatalf("actions=%+v", r.Actions)
	}
	if r.Actions[0].Type != ActionCameraFlyTo || r.Actions[1].Type != ActionGetWeather {
		t.Fatalf("types=%q,%q", r.Actions[0].Type, r.Actions[1].Type)
	}
	if r.Actions[0].Parameters["longitude"] != 121.4737 {
		t.Fatalf("longitude=%v", r.Actions[0].Parameters["longitude"])
	}
}

func TestMatchRulesFlyTo(t *testing.T) {
	r, ok := matchRules("飞到深圳")
	if !ok {
		t.Fatal("expected match")
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != ActionCameraFlyTo {
		t.Fatalf("actions=%+v", r.Actions)
	}
	if r.Actions[0].Parameters["city"] != "深圳" {
		t.Fatalf("city=%v", r.Actions[0].Parameters["city"])
	}
}

func TestMatchRulesQueryBuildings(t *testing.T) {
	r, ok := matchRules("查询附近的医院")
	if !ok {
		t.Fatal("expected match")
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != ActionQueryBuildings {
		t.Fatalf("actions=%+v", r.Actions)
	}
	if r.Actions[0].Parameters["category"] != "医院" {
		t.Fatalf("category=%v", r.Actions[0].Parameters["category"])
	}
}

func TestMatchRulesHighlight(t *testing.T) {
	r, ok := matchRules("高亮所有商业建筑")
	if !ok {
		t.Fatal("expected match")
	}
	if r.Actions[0].Type != ActionHighlightBuildings {
		t.Fatalf("type=%q", r.Actions[0].Type)
	}
	if r.Actions[0].Parameters["category"] != "商业" {
		t.Fatalf("category=%v", r.Actions[0].Parameters["category"])
	}
}

func TestMatchRulesNoMatch(t *testing.T) {
	if _, ok := matchRules("讲个笑话"); ok {
		t.Fatal("expected no match")
	}
	if _, ok := matchRules(""); ok {
		t.Fatal("expected no match for empty input")
	}
}
