package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Vapi     VapiConfig
	Gateway  GatewayConfig
	Dispatch DispatchConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for AWS-ready posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// VapiConfig is the voice-provider credential set.
type VapiConfig struct {
	APIKey             string
	BaseURL            string
	RequestTimeout     time.Duration
	DefaultAssistantID string
}

// GatewayConfig is the regional trunk. All-or-nothing: a partially configured
// gateway fails validation rather than silently degrading routing.
type GatewayConfig struct {
	BaseURL         string
	APIKey          string
	APISecret       string
	Extension       string
	DefaultCallerID string

	// Prefixes is the destination prefix set routed through the gateway
	// (comma-separated in GATEWAY_PREFIXES).
	Prefixes []string
}

func (g GatewayConfig) Configured() bool {
	return g.BaseURL != "" && g.APIKey != "" && g.APISecret != "" && g.Extension != ""
}

func (g GatewayConfig) partiallyConfigured() bool {
	any := g.BaseURL != "" || g.APIKey != "" || g.APISecret != "" || g.Extension != ""
	return any && !g.Configured()
}

type DispatchConfig struct {
	// BatchPacing is the delay between successive attempts within a batch.
	BatchPacing time.Duration

	// ConcurrencyLimit caps in-flight calls per tenant. Zero disables the cap.
	ConcurrencyLimit int

	DefaultAMDProfile string

	// WebhookDedupTTL is the replay-suppression window for provider webhooks.
	WebhookDedupTTL time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")

	c.Vapi.APIKey = os.Getenv("VAPI_API_KEY")
	c.Vapi.BaseURL = strings.TrimSpace(os.Getenv("VAPI_BASE_URL"))
	c.Vapi.RequestTimeout = mustDuration("VAPI_REQUEST_TIMEOUT")
	c.Vapi.DefaultAssistantID = strings.TrimSpace(os.Getenv("VAPI_ASSISTANT_ID"))

	c.Gateway.BaseURL = strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL"))
	c.Gateway.APIKey = os.Getenv("GATEWAY_API_KEY")
	c.Gateway.APISecret = os.Getenv("GATEWAY_API_SECRET")
	c.Gateway.Extension = strings.TrimSpace(os.Getenv("GATEWAY_EXTENSION"))
	c.Gateway.DefaultCallerID = strings.TrimSpace(os.Getenv("GATEWAY_CALLER_ID"))
	c.Gateway.Prefixes = splitList(os.Getenv("GATEWAY_PREFIXES"))

	c.Dispatch.BatchPacing = mustDuration("DISPATCH_BATCH_PACING")
	{
		v := strings.TrimSpace(os.Getenv("DISPATCH_CONCURRENCY_LIMIT"))
		if v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("DISPATCH_CONCURRENCY_LIMIT must be an integer, got %q", v))
			}
			c.Dispatch.ConcurrencyLimit = n
		}
	}
	c.Dispatch.DefaultAMDProfile = strings.TrimSpace(os.Getenv("DISPATCH_AMD_PROFILE"))
	c.Dispatch.WebhookDedupTTL = mustDuration("WEBHOOK_DEDUP_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the loaded values and applies the caller-visible defaults
// (local SSL mode, token TTLs), so the receiver is a pointer.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			// Allowed values are enforced below.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		// Default: short-lived access tokens.
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		// Default: longer-lived refresh tokens.
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Vapi.APIKey == "" {
		errs = append(errs, errors.New("VAPI_API_KEY is required"))
	}

	if c.Gateway.partiallyConfigured() {
		errs = append(errs, errors.New("gateway config is all-or-nothing: GATEWAY_BASE_URL, GATEWAY_API_KEY, GATEWAY_API_SECRET and GATEWAY_EXTENSION must all be set"))
	}
	if len(c.Gateway.Prefixes) > 0 && !c.Gateway.Configured() {
		// Destinations matching the prefixes would be undispatchable.
		errs = append(errs, errors.New("GATEWAY_PREFIXES is set but the gateway is not configured"))
	}

	if c.Dispatch.ConcurrencyLimit < 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_CONCURRENCY_LIMIT must be >= 0, got %d", c.Dispatch.ConcurrencyLimit))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c Config) VapiBaseURL() string {
	if c.Vapi.BaseURL != "" {
		return c.Vapi.BaseURL
	}
	return "https://api.vapi.ai"
}

func (c Config) VapiTimeout() time.Duration {
	if c.Vapi.RequestTimeout > 0 {
		return c.Vapi.RequestTimeout
	}
	return 30 * time.Second
}

func (c Config) BatchPacing() time.Duration {
	if c.Dispatch.BatchPacing > 0 {
		return c.Dispatch.BatchPacing
	}
	return 2 * time.Second
}

func (c Config) DefaultAMDProfile() string {
	if c.Dispatch.DefaultAMDProfile != "" {
		return c.Dispatch.DefaultAMDProfile
	}
	return "balanced"
}

func (c Config) WebhookDedupTTL() time.Duration {
	if c.Dispatch.WebhookDedupTTL > 0 {
		return c.Dispatch.WebhookDedupTTL
	}
	return 24 * time.Hour
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
