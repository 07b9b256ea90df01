package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	maxTemperature       = 2.0
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load 는 환경 변수 기반 설정을 로드한다.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig 는 설정을 로드하고 검증한다.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 는 설정 유효성을 검사한다.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validateProfile("primary", c.OpenAI.Primary); err != nil {
		return err
	}
	if err := validateProfile("secondary", c.OpenAI.Secondary); err != nil {
		return err
	}
	// 0 이면 호출별 기한 없이 트랜스포트 동작을 그대로 따른다.
	if c.OpenAI.TimeoutSeconds < 0 {
		return fmt.Errorf("openai timeout must not be negative: %d", c.OpenAI.TimeoutSeconds)
	}
	parsed, err := url.Parse(c.OpenAI.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid openai base url: %q", c.OpenAI.BaseURL)
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("mcp path must start with '/': %q", c.MCP.Path)
	}
	return nil
}

func validateProfile(name string, profile ModelProfile) error {
	if strings.TrimSpace(profile.Model) == "" {
		return fmt.Errorf("%s model is empty", name)
	}
	if math.IsNaN(profile.Temperature) || profile.Temperature < 0 || profile.Temperature > maxTemperature {
		return fmt.Errorf("%s temperature out of range: %v", name, profile.Temperature)
	}
	if profile.MaxTokens < 0 {
		return fmt.Errorf("%s max tokens must not be negative: %d", name, profile.MaxTokens)
	}
	return nil
}

// LogEnvStatus 는 환경 설정 상태를 로그로 남긴다.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	logger.Debug(
		"env_status",
		"env_file", fileExists(".env"),
		"openai_key", MaskSecret(cfg.OpenAI.APIKey),
		"openai_base_url", cfg.OpenAI.BaseURL,
		"primary_model", cfg.OpenAI.Primary.Model,
		"secondary_model", cfg.OpenAI.Secondary.Model,
		"timeout", cfg.OpenAI.TimeoutSeconds,
		"guard_enabled", cfg.Guard.Enabled,
		"usage_db_enabled", cfg.Database.UsageEnabled,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Name,
		"mcp_enabled", cfg.MCP.Enabled,
	)

	// 요청별 키 전달이 기본이므로 경고만 남긴다.
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("env_missing_openai_api_key")
	}
}

func buildConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:  getEnvString("OPENAI_API_KEY", ""),
			BaseURL: strings.TrimRight(getEnvString("OPENAI_BASE_URL", defaultOpenAIBaseURL), "/"),
			Primary: ModelProfile{
				Model:       getEnvString("OPENAI_PRIMARY_MODEL", "gpt-4"),
				Temperature: getEnvFloat("OPENAI_PRIMARY_TEMPERATURE", 0.7),
				MaxTokens:   getEnvNonNegativeInt("OPENAI_PRIMARY_MAX_TOKENS", 0),
			},
			Secondary: ModelProfile{
				Model:       getEnvString("OPENAI_SECONDARY_MODEL", "gpt-3.5-turbo"),
				Temperature: getEnvFloat("OPENAI_SECONDARY_TEMPERATURE", 0.9),
				MaxTokens:   getEnvNonNegativeInt("OPENAI_SECONDARY_MAX_TOKENS", 1000),
			},
			TimeoutSeconds: getEnvNonNegativeInt("OPENAI_TIMEOUT", 0),
		},
		Guard: GuardConfig{
			Enabled:         getEnvBool("GUARD_ENABLED", false),
			Threshold:       getEnvFloat("GUARD_THRESHOLD", 0.7),
			RulepacksDir:    getEnvString("RULEPACKS_DIR", ""),
			CacheMaxSize:    getEnvInt("GUARD_CACHE_SIZE", 10000),
			CacheTTLSeconds: getEnvInt("GUARD_CACHE_TTL", 3600),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 1),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:           getEnvString("HTTP_HOST", "127.0.0.1"),
			Port:           getEnvInt("HTTP_PORT", 40531),
			HTTP2Enabled:   getEnvBool("HTTP2_ENABLED", true),
			GzipEnabled:    getEnvBool("HTTP_GZIP_ENABLED", true),
			TrustedProxies: getEnvList("HTTP_TRUSTED_PROXIES"),
		},
		HTTPAuth: HTTPAuthConfig{
			APIKey: getEnvString("HTTP_API_KEY", ""),
		},
		HTTPRateLimit: HTTPRateLimitConfig{
			RequestsPerMinute: getEnvNonNegativeInt("HTTP_RATE_LIMIT_RPM", 0),
			CacheSize:         max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_SIZE", 10000)),
			CacheTTLSeconds:   max(1, getEnvNonNegativeInt("HTTP_RATE_LIMIT_CACHE_TTL_SECONDS", 120)),
		},
		MCP: MCPConfig{
			Enabled: getEnvBool("MCP_ENABLED", true),
			Path:    getEnvString("MCP_PATH", "/mcp"),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvBool("OTEL_ENABLED", false),
			ServiceName:    getEnvString("OTEL_SERVICE_NAME", "idea-llm-server"),
			ServiceVersion: getEnvString("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnvString("OTEL_ENVIRONMENT", "production"),
			OTLPEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			OTLPInsecure:   getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRate:     getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Database: DatabaseConfig{
			UsageEnabled:           getEnvBool("DB_USAGE_ENABLED", false),
			Host:                   getEnvString("DB_HOST", "localhost"),
			Port:                   getEnvInt("DB_PORT", 5432),
			Name:                   getEnvString("DB_NAME", "ideas"),
			User:                   getEnvString("DB_USER", "ideas"),
			Password:               getEnvString("DB_PASSWORD", ""),
			MinPool:                getEnvInt("DB_MIN_POOL", 1),
			MaxPool:                getEnvInt("DB_MAX_POOL", 5),
			ConnMaxLifetimeMinutes: getEnvNonNegativeInt("DB_CONN_MAX_LIFETIME_MINUTES", 60),
			ConnMaxIdleTimeMinutes: getEnvNonNegativeInt("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
		},
	}
}
