package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dispatch", SSLMode: "disable"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Vapi:  VapiConfig{APIKey: "vapi-key"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	c.Auth.JWTIssuer = "issuer"
	c.Auth.JWTAudience = "aud"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	// The default must reach the DSN the pool opener consumes.
	if !strings.Contains(c.PostgresDSN(), "sslmode=disable") {
		t.Fatalf("expected sslmode=disable in DSN, got %q", c.PostgresDSN())
	}
}

func TestValidate_AppliesTokenTTLDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected access TTL default, got %v", c.Auth.AccessTokenTTL)
	}
	if c.Auth.RefreshTokenTTL != 30*24*time.Hour {
		t.Fatalf("expected refresh TTL default, got %v", c.Auth.RefreshTokenTTL)
	}
}

func TestValidate_RequiresProviderKey(t *testing.T) {
	c := validConfig()
	c.Vapi.APIKey = ""
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "VAPI_API_KEY") {
		t.Fatalf("expected VAPI_API_KEY error, got %v", err)
	}
}

func TestValidate_PartialGatewayRejected(t *testing.T) {
	c := validConfig()
	c.Gateway.BaseURL = "https://gw.example"
	c.Gateway.APIKey = "key"
	// secret and extension missing
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for partially configured gateway")
	}
}

func TestValidate_PrefixesRequireGateway(t *testing.T) {
	c := validConfig()
	c.Gateway.Prefixes = []string{"+995"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for prefixes without gateway credentials")
	}

	c.Gateway.BaseURL = "https://gw.example"
	c.Gateway.APIKey = "key"
	c.Gateway.APISecret = "secret"
	c.Gateway.Extension = "100"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error with full gateway config, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	c := validConfig()
	if c.VapiBaseURL() != "https://api.vapi.ai" {
		t.Fatalf("unexpected default base url: %s", c.VapiBaseURL())
	}
	if c.BatchPacing() <= 0 {
		t.Fatalf("expected positive default pacing")
	}
	if c.DefaultAMDProfile() != "balanced" {
		t.Fatalf("unexpected default profile: %s", c.DefaultAMDProfile())
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" +995, +7 ,,+380 ")
	if len(got) != 3 || got[0] != "+995" || got[1] != "+7" || got[2] != "+380" {
		t.Fatalf("unexpected split: %v", got)
	}
	if splitList("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
