package config

import (
	"net"
	"net/url"
	"strconv"
)

// ModelProfile: 단일 모델 호출 설정입니다.
// MaxTokens 가 0 이면 요청에 max_tokens 를 싣지 않습니다.
type ModelProfile struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// OpenAIConfig: OpenAI Chat Completions 설정입니다.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Primary        ModelProfile
	Secondary      ModelProfile
	TimeoutSeconds int
}

// GuardConfig: 주제 입력 검증 설정입니다.
type GuardConfig struct {
	Enabled         bool
	Threshold       float64
	RulepacksDir    string
	CacheMaxSize    int
	CacheTTLSeconds int
}

// LoggingConfig: 로깅 설정입니다.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig: HTTP 서버 설정입니다.
type HTTPConfig struct {
	Host         string
	Port         int
	HTTP2Enabled bool
	GzipEnabled  bool

	// TrustedProxies 가 비어 있으면 X-Forwarded-For 를 믿지 않고 원격 주소를 쓴다.
	TrustedProxies []string
}

// HTTPAuthConfig: 서비스 API 키 인증 설정입니다.
type HTTPAuthConfig struct {
	APIKey string
}

// HTTPRateLimitConfig: 요청 제한 설정입니다.
type HTTPRateLimitConfig struct {
	RequestsPerMinute int
	CacheSize         int
	CacheTTLSeconds   int
}

// MCPConfig: MCP 엔드포인트 설정입니다.
type MCPConfig struct {
	Enabled bool
	Path    string
}

// TelemetryConfig: OpenTelemetry 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}

// DatabaseConfig: 사용량 집계 DB 설정입니다.
type DatabaseConfig struct {
	UsageEnabled           bool
	Host                   string
	Port                   int
	Name                   string
	User                   string
	Password               string
	MinPool                int
	MaxPool                int
	ConnMaxLifetimeMinutes int
	ConnMaxIdleTimeMinutes int
}

// DSN: DB 접속 문자열을 반환합니다.
func (d DatabaseConfig) DSN() string {
	host := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	} else {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Config: 애플리케이션 전체 설정입니다.
type Config struct {
	OpenAI        OpenAIConfig
	Guard         GuardConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
	HTTPAuth      HTTPAuthConfig
	HTTPRateLimit HTTPRateLimitConfig
	MCP           MCPConfig
	Telemetry     TelemetryConfig
	Database      DatabaseConfig
}
