package services

import "testing"

func TestLookupCityExact(t *testing.T) {
	c, ok := LookupCity("北京")
	if !ok {
		t.Fatal("expected hit")
	}
	if c.Longitude != 116.4074 || c.Latitude != 39.9042 {
		t.Fatalf("coords=%f,%f", c.Longitude, c.Latitude)
	}
}

func TestLookupCityAlias(t *testing.T) {
	for _, q := range []string{"shanghai", "Shanghai", "SHANGHAI"} {
		c, ok := LookupCity(q)
		if !ok || c.Name != "上海" {
			t.Fatalf("%q resolved to %+v ok=%v", q, c, ok)
		}
	}
}

func TestLookupCityFuzzy(t *testing.T) {
	c, ok := LookupCity("北京市")
	if !ok || c.Name != "北京" {
		t.Fatalf("got %+v ok=%v", c, ok)
	}
	if _, ok := LookupCity("atlantis"); ok {
		t.Fatal("expected miss for unknown city")
	}
}

func TestFindCityMention(t *testing.T) {
	c, ok := FindCityMention("帮我飞到深圳看看")
	if !ok || c.Name != "深圳" {
		t.Fatalf("got %+v ok=%v", c, ok)
	}
	c, ok = FindCityMention("fly to hangzhou please")
	if !ok || c.Name != "杭州" {
		t.Fatalf("got %+v ok=%v", c, ok)
	}
	if _, ok := FindCityMention("no city here"); ok {
		t.Fatal("expected miss")
	}
}

func TestNearestCity(t *testing.T) {
	c, dist := NearestCity(116.5, 39.8)
	if c.Name != "北京" {
		t.Fatalf("got %v", c.Name)
	}
	if dist <= 0 || dist > 30000 {
		t.Fatalf("distance %v out of range", dist)
	}
	c, dist = NearestCity(121.4737, 31.2304)
	if c.Name != "上海" || dist != 0 {
		t.Fatalf("got %v dist=%v", c.Name, dist)
	}
}

func TestCityTableCoordinates(t *testing.T) {
	cases := map[string][2]float64{
		"北京": {116.4074, 39.9042},
		"西安": {108.9398, 34.3416},
	}
	for name, want := range cases {
		c, ok := LookupCity(name)
		if !ok || c.Longitude != want[0] || c.Latitude != want[1] {
			t.Fatalf("%s: got %+v ok=%v", name, c, ok)
		}
	}
}
