package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestReverseGeocodeFallsBackWithoutAPIKey(t *testing.T) {
	log := newTestLogger(t)
	s := NewGeocodeService(log, "")

	addr, err := s.ReverseGeocode(context.Background(), 116.5, 39.8)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if addr.Source != "city_table" {
		t.Fatalf("source=%q", addr.Source)
	}
	if addr.City != "北京" {
		t.Fatalf("city=%q", addr.City)
	}
	if addr.DistanceM <= 0 {
		t.Fatalf("distance=%f", addr.DistanceM)
	}
}

func TestReverseGeocodeParsesUpstream(t *testing.T) {
	log := newTestLogger(t)

	body := `{"status":"1","regeocode":{"formatted_address":"北京市朝阳区建国门外大街1号",` +
		`"addressComponent":{"province":"北京市","city":"北京市","district":"朝阳区"}}}`

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v3/geocode/regeo" {
				t.Fatalf("path=%s", req.URL.Path)
			}
			if req.URL.Query().Get("key") != "amap-key" {
				t.Fatalf("key=%q", req.URL.Query().Get("key"))
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}),
	}

	s := NewGeocodeServiceWithHTTPClient(log, "amap-key", "http://upstream/v3/geocode", client)
	addr, err := s.ReverseGeocode(context.Background(), 116.4074, 39.9042)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if addr.Source != "amap" {
		t.Fatalf("source=%q", addr.Source)
	}
	if addr.Address != "北京市朝阳区建国门外大街1号" {
		t.Fatalf("address=%q", addr.Address)
	}
	if addr.District != "朝阳区" {
		t.Fatalf("district=%q", addr.District)
	}
}

func TestReverseGeocodeFallsBackOnUpstreamError(t *testing.T) {
	log := newTestLogger(t)

	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"status":"0","info":"INVALID_USER_KEY"}`)),
			}, nil
		}),
	}

	s := NewGeocodeServiceWithHTTPClient(log, "amap-key", "http://upstream/v3/geocode", client)
	addr, err := s.ReverseGeocode(context.Background(), 121.4737, 31.2304)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if addr.Source != "city_table" {
		t.Fatalf("source=%q", addr.Source)
	}
	if addr.City != "上海" {
		t.Fatalf("city=%q", addr.City)
	}
}
