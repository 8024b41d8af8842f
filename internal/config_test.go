package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestRenderConfig_InvalidColorMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Render.ColorMode = "rainbow"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid color mode should fail validation")
	}
}

func TestRenderConfig_RequiresDimensions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Render.Width = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero width should fail validation")
	}
}

func TestRenderConfig_PrefsCarriesPointers(t *testing.T) {
	level := 0
	cfg := RenderConfig{
		Width:              800,
		Height:             600,
		InitialExpandLevel: &level,
		DepthColors:        []string{"#111", "#222"},
	}
	p := cfg.Prefs()
	if p.InitialExpandLevel == nil || *p.InitialExpandLevel != 0 {
		t.Error("explicit zero expand level lost in conversion")
	}
	if len(p.DepthColors) != 2 {
		t.Errorf("depth colors = %v", p.DepthColors)
	}
	if p.MaxWidth != nil {
		t.Error("unset max width should stay nil")
	}
}

func TestUpdateConfig_Durations(t *testing.T) {
	cfg := UpdateConfig{DebounceMS: 300, StylingDelayMS: 100, SSEThrottleMS: 250}
	if cfg.DebounceWindow() != 300*time.Millisecond {
		t.Errorf("debounce = %v", cfg.DebounceWindow())
	}
	if cfg.StylingDelay() != 100*time.Millisecond {
		t.Errorf("styling delay = %v", cfg.StylingDelay())
	}
	if cfg.SSEThrottle() != 250*time.Millisecond {
		t.Errorf("sse throttle = %v", cfg.SSEThrottle())
	}
}

func TestUpdateConfig_RejectsNegative(t *testing.T) {
	cfg := UpdateConfig{DebounceMS: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail validation")
	}
}
