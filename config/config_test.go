package config

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("JWT_REFRESH_EXPIRY", "not-a-duration")
	t.Setenv("NOTIFICATION_ASYNC", "false")
	t.Setenv("RATE_LIMIT_BOOKING_BURST", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Errorf("App.Port = %q, want 9090", cfg.App.Port)
	}
	if cfg.DB.Host != "db.internal" {
		t.Errorf("DB.Host = %q, want db.internal", cfg.DB.Host)
	}
	if cfg.JWT.AccessExpiry != 30*time.Minute {
		t.Errorf("JWT.AccessExpiry = %v, want 30m", cfg.JWT.AccessExpiry)
	}
	if cfg.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Errorf("JWT.RefreshExpiry = %v, want fallback of 7 days", cfg.JWT.RefreshExpiry)
	}
	if cfg.Notification.Async {
		t.Error("Notification.Async should follow the environment override")
	}
	if cfg.RateLimit.BookingBurst != 3 {
		t.Errorf("RateLimit.BookingBurst = %d, want 3", cfg.RateLimit.BookingBurst)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Notification.Queue != "notifications" {
		t.Errorf("Notification.Queue = %q, want notifications", cfg.Notification.Queue)
	}
	if cfg.Redis.AvailabilityTTL != 10*time.Minute {
		t.Errorf("Redis.AvailabilityTTL = %v, want 10m", cfg.Redis.AvailabilityTTL)
	}
	if cfg.Telemetry.MetricsPath != "/metrics" {
		t.Errorf("Telemetry.MetricsPath = %q, want /metrics", cfg.Telemetry.MetricsPath)
	}
}
