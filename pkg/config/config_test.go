package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	t.Setenv("MIN_SAMPLES_GLOBAL", "")
	t.Setenv("SMOOTHING_ALPHA", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinSamplesGlobal != 100 {
		t.Errorf("expected default MinSamplesGlobal of 100, got %d", cfg.MinSamplesGlobal)
	}
	if cfg.SmoothingAlpha != 0.3 {
		t.Errorf("expected default SmoothingAlpha of 0.3, got %v", cfg.SmoothingAlpha)
	}
	if cfg.TrainingDeadline != 15*time.Minute {
		t.Errorf("expected default TrainingDeadline of 15m, got %v", cfg.TrainingDeadline)
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("MIN_SAMPLES_GLOBAL", "250")
	t.Setenv("REQUEST_DEADLINE", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinSamplesGlobal != 250 {
		t.Errorf("expected overridden MinSamplesGlobal of 250, got %d", cfg.MinSamplesGlobal)
	}
	if cfg.RequestDeadline != 45*time.Second {
		t.Errorf("expected overridden RequestDeadline of 45s, got %v", cfg.RequestDeadline)
	}
}

func TestEnvInt_IgnoresUnparsableValue(t *testing.T) {
	t.Setenv("MIN_SAMPLES_INDUSTRY", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinSamplesIndustry != 30 {
		t.Errorf("expected fallback of 30 for an unparsable value, got %d", cfg.MinSamplesIndustry)
	}
}
