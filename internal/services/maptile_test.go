package services

import "testing"

func TestMapTileStyleDefaultsToStreet(t *testing.T) {
	cfg, err := MapTileStyle("")
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if cfg.Style != MapStyleStreet {
		t.Fatalf("style=%q", cfg.Style)
	}
}

func TestMapTileStyleUnknown(t *testing.T) {
	if _, err := MapTileStyle("terrain"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMapTileURL(t *testing.T) {
	url, err := MapTileURL(MapStyleStreet, 10, 843, 388)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "https://tile.openstreetmap.org/10/843/388.png" {
		t.Fatalf("url=%q", url)
	}
}

func TestMapTileURLBounds(t *testing.T) {
	if _, err := MapTileURL(MapStyleStreet, 2, 4, 0); err == nil {
		t.Fatal("x out of range should fail")
	}
	if _, err := MapTileURL(MapStyleStreet, 25, 0, 0); err == nil {
		t.Fatal("zoom out of range should fail")
	}
}
