package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestMapCondition(t *testing.T) {
	cases := map[string]string{
		"Clear":        ConditionClear,
		"Clouds":       ConditionCloudy,
		"Rain":         ConditionRain,
		"Drizzle":      ConditionRain,
		"Thunderstorm": ConditionRain,
		"Squall":       ConditionRain,
		"Tornado":      ConditionRain,
		"Snow":         ConditionSnow,
		"Mist":         ConditionFog,
		"Fog":          ConditionFog,
		"Haze":         ConditionFog,
		"Smoke":        ConditionFog,
		"Dust":         ConditionFog,
		"Sand":         ConditionFog,
		"Ash":          ConditionFog,
		"Mystery":      ConditionClear,
		"":             ConditionClear,
	}
	for in, want := range cases {
		if got := MapCondition(in); got != want {
			t.Errorf("MapCondition(%q)=%q want %q", in, got, want)
		}
	}
}

func TestIsDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !isDay(now, now.Add(-6*time.Hour).Unix(), now.Add(6*time.Hour).Unix()) {
		t.Fatal("noon inside sunrise/sunset should be day")
	}
	if isDay(now, now.Add(time.Hour).Unix(), now.Add(12*time.Hour).Unix()) {
		t.Fatal("before sunrise should be night")
	}

	// Fallback heuristic when timestamps are missing.
	if !isDay(time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local), 0, 0) {
		t.Fatal("10:00 should be day")
	}
	if isDay(time.Date(2026, 3, 1, 22, 0, 0, 0, time.Local), 0, 0) {
		t.Fatal("22:00 should be night")
	}
}

func TestCurrentMocksWithoutAPIKey(t *testing.T) {
	log := newTestLogger(t)
	s := NewWeatherService(log, "", nil)

	report, err := s.Current(context.Background(), 116.4074, 39.9042, "北京")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !report.Mock {
		t.Fatal("expected mock report")
	}
	if report.City != "北京" {
		t.Fatalf("city=%q", report.City)
	}
}

func TestCurrentParsesUpstream(t *testing.T) {
	log := newTestLogger(t)

	upstream := owmResponse{Name: "Beijing"}
	upstream.Weather = []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	}{{Main: "Rain", Description: "小雨"}}
	upstream.Main.Temp = 21.5
	upstream.Main.Humidity = 80
	upstream.Sys.Sunrise = time.Now().Add(-3 * time.Hour).Unix()
	upstream.Sys.Sunset = time.Now().Add(3 * time.Hour).Unix()

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/data/2.5/weather" {
				t.Fatalf("path=%s", req.URL.Path)
			}
			if req.URL.Query().Get("appid") != "owm-key" {
				t.Fatalf("appid=%q", req.URL.Query().Get("appid"))
			}
			b, _ := json.Marshal(upstream)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader(b)),
			}, nil
		}),
	}

	s := NewWeatherServiceWithHTTPClient(log, "owm-key", "http://upstream/data/2.5", client)
	report, err := s.Current(context.Background(), 116.4074, 39.9042, "")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if report.Mock {
		t.Fatal("expected live report")
	}
	if report.Condition != ConditionRain {
		t.Fatalf("condition=%q", report.Condition)
	}
	if report.TempC != 21.5 {
		t.Fatalf("temp=%f", report.TempC)
	}
	if !report.IsDay {
		t.Fatal("expected day")
	}
	if report.City != "Beijing" {
		t.Fatalf("city=%q", report.City)
	}
}

func TestCurrentFallsBackOnUpstreamError(t *testing.T) {
	log := newTestLogger(t)

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(bytes.NewReader(nil)),
			}, nil
		}),
	}

	s := NewWeatherServiceWithHTTPClient(log, "owm-key", "http://upstream/data/2.5", client)
	report, err := s.Current(context.Background(), 116.4074, 39.9042, "上海")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !report.Mock {
		t.Fatal("expected mock fallback")
	}
}
