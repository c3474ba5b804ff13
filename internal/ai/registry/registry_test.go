package registry

import (
	"errors"
	"testing"
)

func TestBuildKnownVendor(t *testing.T) {
	p, err := Build("deepseek", "sk-test", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Code() != "deepseek" {
		t.Fatalf("code=%q", p.Code())
	}
	if p.Name() != "DeepSeek" {
		t.Fatalf("name=%q", p.Name())
	}
}

func TestBuildUnknownVendor(t *testing.T) {
	_, err := Build("gemini", "sk-test", "")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestBuildMissingKey(t *testing.T) {
	if _, err := Build("openai", "", ""); err == nil {
		t.Fatal("expected error for missing key")
	}
	// Ollama runs locally and needs no key.
	if _, err := Build("ollama", "", ""); err != nil {
		t.Fatalf("ollama without key: %v", err)
	}
}

func TestBuildBaseURLOverride(t *testing.T) {
	p, err := Build("zhipu", "sk-test", "http://proxy.internal/v4")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Code() != "zhipu" {
		t.Fatalf("code=%q", p.Code())
	}
}
