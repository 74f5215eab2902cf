package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.OrderNumberFormat != "ORD" {
		t.Errorf("expected ORD default, got %s", cfg.OrderNumberFormat)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.AI.MaxTurns != 20 || cfg.AI.SessionTTL != 24*time.Hour {
		t.Errorf("unexpected chat defaults %+v", cfg.AI)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ORDER_NUMBER_FORMAT", "ts")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.OrderNumberFormat != "TS" || cfg.Email.Provider != "sendgrid" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ORDER_NUMBER_FORMAT", "XYZ")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad order number format")
	}
}
