package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate(16)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 16 {
		t.Errorf("len = %d, want 16", len(got))
	}
	for _, c := range got {
		if !strings.ContainsRune(alphabet, c) {
			t.Errorf("character %q outside base62 alphabet", c)
		}
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Error("Generate(0) expected error")
	}
	if _, err := Generate(-3); err == nil {
		t.Error("Generate(-3) expected error")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	got, err := GenerateWithPrefix(PrefixPartner, 12)
	if err != nil {
		t.Fatalf("GenerateWithPrefix() error = %v", err)
	}
	if !strings.HasPrefix(got, "ptr_") {
		t.Errorf("id %q missing ptr_ prefix", got)
	}
	if len(got) != len("ptr_")+12 {
		t.Errorf("len = %d, want prefix plus 12", len(got))
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := MustGenerate(12)
		if seen[id] {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

func TestStripPrefix(t *testing.T) {
	got, ok := StripPrefix(PrefixApplication, "app_AbC123")
	if !ok || got != "AbC123" {
		t.Errorf("StripPrefix() = %q, %v, want AbC123, true", got, ok)
	}
	got, ok = StripPrefix(PrefixApplication, "AbC123")
	if ok || got != "AbC123" {
		t.Errorf("StripPrefix() without prefix = %q, %v, want passthrough, false", got, ok)
	}
}
