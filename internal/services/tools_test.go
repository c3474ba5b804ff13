package services

import (
	"testing"

	"github.com/urbantwin/citytwin-backend/internal/ai"
)

func TestDecodeActionsBasic(t *testing.T) {
	actions := DecodeActions([]ai.ToolCall{
		{Function: ai.ToolCallFunction{
			Name:      ActionCameraFlyTo,
			Arguments: `{"longitude":116.4074,"latitude":39.9042,"height":2000}`,
		}},
		{Function: ai.ToolCallFunction{
			Name:      ActionSetWeather,
			Arguments: `{"condition":"rain"}`,
		}},
	})
	if len(actions) != 2 {
		t.Fatalf("len=%d", len(actions))
	}
	if actions[0].Type != ActionCameraFlyTo {
		t.Fatalf("type=%q", actions[0].Type)
	}
	if actions[0].Parameters["height"] != 2000.0 {
		t.Fatalf("height=%v", actions[0].Parameters["height"])
	}
	if actions[1].Parameters["condition"] != "rain" {
		t.Fatalf("condition=%v", actions[1].Parameters["condition"])
	}
}

func TestDecodeActionsToleratesMalformedArguments(t *testing.T) {
	actions := DecodeActions([]ai.ToolCall{
		{Function: ai.ToolCallFunction{Name: ActionGetWeather, Arguments: `{not json`}},
		{Function: ai.ToolCallFunction{Name: ActionGetWeather, Arguments: `{"city":"北京"}`}},
		{Function: ai.ToolCallFunction{Name: "", Arguments: `{}`}},
	})
	if len(actions) != 2 {
		t.Fatalf("len=%d", len(actions))
	}
	if len(actions[0].Parameters) != 0 {
		t.Fatalf("malformed arguments should decode to empty params, got %v", actions[0].Parameters)
	}
	if actions[1].Parameters["city"] != "北京" {
		t.Fatalf("city=%v", actions[1].Parameters["city"])
	}
}

func TestDecodeActionsExpandsWeatherScene(t *testing.T) {
	actions := DecodeActions([]ai.ToolCall{
		{Function: ai.ToolCallFunction{
			Name:      toolQueryWeatherScene,
			Arguments: `{"city":"上海"}`,
		}},
	})
	if len(actions) != 2 {
		t.Fatalf("len=%d", len(actions))
	}

	fly := actions[0]
	if fly.Type != ActionCameraFlyTo {
		t.Fatalf("first=%q", fly.Type)
	}
	if fly.Parameters["height"] != 5000.0 || fly.Parameters["pitch"] != -30.0 {
		t.Fatalf("fly params=%v", fly.Parameters)
	}
	if fly.Parameters["wait_for_completion"] != true {
		t.Fatal("expected wait_for_completion")
	}
	if fly.Parameters["longitude"] != 121.4737 {
		t.Fatalf("longitude=%v", fly.Parameters["longitude"])
	}

	weather := actions[1]
	if weather.Type != ActionGetWeather {
		t.Fatalf("second=%q", weather.Type)
	}
	if weather.Parameters["delay_ms"] != 1000.0 {
		t.Fatalf("delay=%v", weather.Parameters["delay_ms"])
	}
}

func TestChatToolsCoverCatalog(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range ChatTools() {
		if tool.Type != "function" {
			t.Fatalf("tool type=%q", tool.Type)
		}
		names[tool.Function.Name] = true
	}
	for _, want := range []string{
		ActionCameraFlyTo, ActionHighlightBuildings, ActionQueryBuildings,
		ActionSpatialBuffer, ActionSpatialViewshed, ActionSpatialAccess,
		ActionGetWeather, ActionSetWeather, toolQueryWeatherScene,
	} {
		if !names[want] {
			t.Errorf("missing tool %q", want)
		}
	}
}
