package catalog

import "testing"

func TestEveryVendorHasEndpointAndDefaultModel(t *testing.T) {
	for _, v := range All() {
		if v.BaseURL == "" {
			t.Errorf("%s: missing base url", v.Code)
		}
		if v.DefaultModel == "" {
			t.Errorf("%s: missing default model", v.Code)
		}
		if len(v.Models) == 0 {
			t.Errorf("%s: empty model list", v.Code)
			continue
		}
		found := false
		for _, m := range v.Models {
			if m.Name == v.DefaultModel {
				found = true
			}
			if m.MaxTokens <= 0 {
				t.Errorf("%s/%s: max tokens not set", v.Code, m.Name)
			}
			if m.ContextLength < m.MaxTokens {
				t.Errorf("%s/%s: context %d smaller than output cap %d", v.Code, m.Name, m.ContextLength, m.MaxTokens)
			}
			if m.InputPrice < 0 || m.OutputPrice < 0 {
				t.Errorf("%s/%s: negative price", v.Code, m.Name)
			}
		}
		if !found {
			t.Errorf("%s: default model %q not in model list", v.Code, v.DefaultModel)
		}
	}
}

func TestGetUnknownCode(t *testing.T) {
	if _, ok := Get("claude"); ok {
		t.Fatal("expected unknown vendor to miss")
	}
}

func TestOnlyOllamaSkipsKey(t *testing.T) {
	for _, v := range All() {
		wantKey := v.Code != "ollama"
		if v.RequiresKey != wantKey {
			t.Errorf("%s: requires_key=%v", v.Code, v.RequiresKey)
		}
	}
}

func TestModelMetadataMatchesVendorTables(t *testing.T) {
	zhipu, ok := Get("zhipu")
	if !ok {
		t.Fatal("zhipu missing")
	}
	var flash, plus bool
	for _, m := range zhipu.Models {
		switch m.Name {
		case "glm-4-flash":
			flash = true
			if !m.IsFree || m.InputPrice != 0 || !m.SupportsFunctionCalling || m.SupportsVision {
				t.Fatalf("glm-4-flash metadata: %+v", m)
			}
			if m.ContextLength != 128000 {
				t.Fatalf("glm-4-flash context=%d", m.ContextLength)
			}
		case "glm-4-plus":
			plus = true
			if m.IsFree || m.InputPrice != 0.01 || !m.SupportsVision {
				t.Fatalf("glm-4-plus metadata: %+v", m)
			}
		}
	}
	if !flash || !plus {
		t.Fatal("expected glm-4-flash and glm-4-plus in the zhipu table")
	}

	for _, v := range All() {
		if v.Code != "ollama" {
			continue
		}
		for _, m := range v.Models {
			if !m.IsFree || m.InputPrice != 0 || m.OutputPrice != 0 {
				t.Fatalf("local model %s should be free: %+v", m.Name, m)
			}
		}
	}
}
