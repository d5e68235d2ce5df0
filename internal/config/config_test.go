package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.WorkdayStart != "09:00" || cfg.WorkdayEnd != "18:00" {
		t.Errorf("expected default workday 09:00-18:00, got %s-%s", cfg.WorkdayStart, cfg.WorkdayEnd)
	}
	if cfg.SlotDuration != 30*time.Minute {
		t.Errorf("expected default slot duration 30m, got %s", cfg.SlotDuration)
	}
	if cfg.CancelTolerance != 15*time.Minute {
		t.Errorf("expected default cancel tolerance 15m, got %s", cfg.CancelTolerance)
	}
	if len(cfg.NonWorkingDays) != 1 || cfg.NonWorkingDays[0] != "Sunday" {
		t.Errorf("expected default non-working days [Sunday], got %v", cfg.NonWorkingDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NON_WORKING_DAYS", "Saturday, Sunday")
	t.Setenv("ALTERNATIVE_COUNT", "3")
	t.Setenv("CANCEL_TOLERANCE", "10m")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if len(cfg.NonWorkingDays) != 2 {
		t.Fatalf("expected 2 non-working days, got %v", cfg.NonWorkingDays)
	}
	if cfg.NonWorkingDays[1] != "Sunday" {
		t.Errorf("expected trimmed day name, got %q", cfg.NonWorkingDays[1])
	}
	if cfg.AlternativeCount != 3 {
		t.Errorf("expected alternative count 3, got %d", cfg.AlternativeCount)
	}
	if cfg.CancelTolerance != 10*time.Minute {
		t.Errorf("expected tolerance 10m, got %s", cfg.CancelTolerance)
	}
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("ALTERNATIVE_WINDOW_DAYS", "not-a-number")
	cfg := Load()
	if cfg.AlternativeWindow != 7 {
		t.Errorf("expected fallback to 7, got %d", cfg.AlternativeWindow)
	}
}
