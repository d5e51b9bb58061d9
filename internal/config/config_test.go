package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CRM_ENDPOINT", "")
	t.Setenv("CRM_TIMEOUT", "")
	t.Setenv("LEAD_STORE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("CRM_DEFAULT_MODEL", "")
	cfg := FromEnv()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CRMEndpoint != defaultCRMEndpoint {
		t.Fatalf("expected default crm endpoint, got %s", cfg.CRMEndpoint)
	}
	if cfg.CRMTimeout != 30*time.Second {
		t.Fatalf("expected default crm timeout, got %s", cfg.CRMTimeout)
	}
	if cfg.LeadStore != "memory" {
		t.Fatalf("expected memory lead store, got %s", cfg.LeadStore)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CRMDefaultModel != "General Enquiry" {
		t.Fatalf("expected default model fallback, got %s", cfg.CRMDefaultModel)
	}
	if !cfg.AdminCookieSecure {
		t.Fatalf("expected secure admin cookie by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CRM_TIMEOUT", "5s")
	t.Setenv("CRM_DEALERSHIP_ID", "42")
	t.Setenv("LEAD_STORE", " Mongo ")
	t.Setenv("SUBMIT_RATE_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://skywell.ae, ,https://legendmotors.ae")
	t.Setenv("ADMIN_COOKIE_SECURE", "false")
	cfg := FromEnv()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.CRMTimeout != 5*time.Second {
		t.Fatalf("expected crm timeout override, got %s", cfg.CRMTimeout)
	}
	if cfg.CRMDealershipID != "42" {
		t.Fatalf("expected dealership override, got %s", cfg.CRMDealershipID)
	}
	if cfg.LeadStore != "mongo" {
		t.Fatalf("expected normalized lead store, got %q", cfg.LeadStore)
	}
	if cfg.SubmitRatePerMinute != 5 {
		t.Fatalf("expected rate override, got %d", cfg.SubmitRatePerMinute)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://legendmotors.ae" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AdminCookieSecure {
		t.Fatalf("expected admin cookie secure override")
	}
}

func TestGetEnvAsDurationInvalidFallsBack(t *testing.T) {
	t.Setenv("CRM_TIMEOUT", "soon")
	if got := getEnvAsDuration("CRM_TIMEOUT", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
}
