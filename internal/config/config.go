package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"gopkg.in/yaml.v3"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	// Endpoint overrides the account-derived R2 endpoint (MinIO, local dev).
	Endpoint string
}

// DeliveryPolicy holds the lifecycle and access-code knobs.
type DeliveryPolicy struct {
	CodeTTL               time.Duration
	CodeMaxAttempts       int
	CodeRequestsPerWindow int
	CodeRequestWindow     time.Duration
	RequireAccessCode     bool
	StrictShareTokens     bool
	GrantTTL              time.Duration
	SweepInterval         time.Duration
	SweepBatchSize        int
	DefaultTTL            time.Duration
	MaxUploadBytes        int64
}

type Config struct {
	DB_URL       string
	Port         string
	JWTSecret    string
	Environment  string
	RedisURL     string
	KafkaBrokers []string
	CorsOrigins  []string
	R2           R2Config
	Policy       DeliveryPolicy
}

// policyFile mirrors the optional YAML overlay pointed to by CONFIG_FILE.
type policyFile struct {
	Delivery struct {
		DefaultTTLHours   int   `yaml:"default_ttl_hours"`
		MaxUploadMB       int64 `yaml:"max_upload_mb"`
		RequireAccessCode *bool `yaml:"require_access_code"`
		GrantTTLMinutes   int   `yaml:"grant_ttl_minutes"`
		StrictShareTokens bool  `yaml:"strict_share_tokens"`
	} `yaml:"delivery"`
	AccessCode struct {
		TTLMinutes        int `yaml:"ttl_minutes"`
		MaxAttempts       int `yaml:"max_attempts"`
		RequestsPerWindow int `yaml:"requests_per_window"`
		WindowMinutes     int `yaml:"window_minutes"`
	} `yaml:"access_code"`
	Sweeper struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		BatchSize       int `yaml:"batch_size"`
	} `yaml:"sweeper"`
	CorsOrigins []string `yaml:"cors_origins"`
}

func defaults() Config {
	return Config{
		Port:        "8080",
		JWTSecret:   "not-so-secret-now-is-it?",
		Environment: "development",
		CorsOrigins: []string{"http://localhost:5173"},
		R2: R2Config{
			Region: "auto",
		},
		Policy: DeliveryPolicy{
			CodeTTL:               15 * time.Minute,
			CodeMaxAttempts:       3,
			CodeRequestsPerWindow: 5,
			CodeRequestWindow:     15 * time.Minute,
			RequireAccessCode:     true,
			GrantTTL:              30 * time.Minute,
			SweepInterval:         time.Minute,
			SweepBatchSize:        100,
			DefaultTTL:            24 * time.Hour,
			MaxUploadBytes:        100 << 20, // 100 MB
		},
	}
}

// Load resolves configuration in priority order: defaults, .env file, YAML
// overlay (CONFIG_FILE), environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFile)

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	p := &cfg.Policy
	if f.Delivery.DefaultTTLHours > 0 {
		p.DefaultTTL = time.Duration(f.Delivery.DefaultTTLHours) * time.Hour
	}
	if f.Delivery.MaxUploadMB > 0 {
		p.MaxUploadBytes = f.Delivery.MaxUploadMB << 20
	}
	if f.Delivery.RequireAccessCode != nil {
		p.RequireAccessCode = *f.Delivery.RequireAccessCode
	}
	if f.Delivery.StrictShareTokens {
		p.StrictShareTokens = true
	}
	if f.Delivery.GrantTTLMinutes > 0 {
		p.GrantTTL = time.Duration(f.Delivery.GrantTTLMinutes) * time.Minute
	}
	if f.AccessCode.TTLMinutes > 0 {
		p.CodeTTL = time.Duration(f.AccessCode.TTLMinutes) * time.Minute
	}
	if f.AccessCode.MaxAttempts > 0 {
		p.CodeMaxAttempts = f.AccessCode.MaxAttempts
	}
	if f.AccessCode.RequestsPerWindow > 0 {
		p.CodeRequestsPerWindow = f.AccessCode.RequestsPerWindow
	}
	if f.AccessCode.WindowMinutes > 0 {
		p.CodeRequestWindow = time.Duration(f.AccessCode.WindowMinutes) * time.Minute
	}
	if f.Sweeper.IntervalSeconds > 0 {
		p.SweepInterval = time.Duration(f.Sweeper.IntervalSeconds) * time.Second
	}
	if f.Sweeper.BatchSize > 0 {
		p.SweepBatchSize = f.Sweeper.BatchSize
	}
	if len(f.CorsOrigins) > 0 {
		cfg.CorsOrigins = f.CorsOrigins
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DB_URL = getEnv("DB_URL", cfg.DB_URL)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = getEnvCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.CorsOrigins = getEnvCSV("CORS_ORIGINS", cfg.CorsOrigins)

	cfg.R2.AccountID = getEnv("R2_ACCOUNT_ID", cfg.R2.AccountID)
	cfg.R2.AccessKeyID = getEnv("R2_ACCESS_KEY_ID", cfg.R2.AccessKeyID)
	cfg.R2.SecretAccessKey = getEnv("R2_SECRET_ACCESS_KEY", cfg.R2.SecretAccessKey)
	cfg.R2.BucketName = getEnv("R2_BUCKET_NAME", cfg.R2.BucketName)
	cfg.R2.Region = getEnv("R2_REGION", cfg.R2.Region)
	cfg.R2.Endpoint = getEnv("R2_ENDPOINT", cfg.R2.Endpoint)

	p := &cfg.Policy
	p.CodeTTL = getEnvMinutes("CODE_TTL_MINUTES", p.CodeTTL)
	p.CodeMaxAttempts = getEnvInt("CODE_MAX_ATTEMPTS", p.CodeMaxAttempts)
	p.CodeRequestsPerWindow = getEnvInt("CODE_REQUESTS_PER_WINDOW", p.CodeRequestsPerWindow)
	p.RequireAccessCode = getEnvBool("REQUIRE_ACCESS_CODE", p.RequireAccessCode)
	p.StrictShareTokens = getEnvBool("STRICT_SHARE_TOKENS", p.StrictShareTokens)
	p.GrantTTL = getEnvMinutes("GRANT_TTL_MINUTES", p.GrantTTL)
	if secs := getEnvInt("SWEEP_INTERVAL_SECONDS", 0); secs > 0 {
		p.SweepInterval = time.Duration(secs) * time.Second
	}
}

func (c Config) validate() error {
	if c.Policy.CodeMaxAttempts < 1 {
		return fmt.Errorf("CODE_MAX_ATTEMPTS must be at least 1, got %d", c.Policy.CodeMaxAttempts)
	}
	if c.Policy.CodeTTL <= 0 {
		return fmt.Errorf("CODE_TTL_MINUTES must be positive")
	}
	if c.Environment == "production" && c.JWTSecret == defaults().JWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	n := getEnvInt(key, 0)
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Minute
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c Config) CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
