package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig holds everything read from the environment. Credentials and
// transport tuning live here; site-specific shape (selectors, filter rule,
// prompt templates) lives in the optional Profile.
type EnvConfig struct {
	ProfilePath string
	Listing     ListingEnvConfig
	Store       StoreEnvConfig
	Score       ScoreEnvConfig
	OpenAI      OpenAIEnvConfig
	Telegram    TelegramEnvConfig
	SMTP        SMTPEnvConfig
	OTel        OTelEnvConfig
}

type ListingEnvConfig struct {
	BaseURL     string
	Path        string
	PageSize    int
	MaxPages    int
	HTTPTimeout time.Duration
	UserAgent   string
}

type StoreEnvConfig struct {
	Backend string // "csv" or "sqlite"
	Path    string
}

type ScoreEnvConfig struct {
	Enabled   *bool // nil means "enabled when an API key is present"
	Threshold int
	Cooldown  time.Duration
}

type OpenAIEnvConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
}

type TelegramEnvConfig struct {
	Token       string
	ChatID      string
	HTTPTimeout time.Duration
}

type SMTPEnvConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	From               string
	To                 string
	TLSMode            string
	InsecureSkipVerify bool
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	model := strings.TrimSpace(envString("OPENAI_MODEL", ""))
	if model == "" {
		model = "gpt-4o-mini"
	}

	return EnvConfig{
		ProfilePath: envString("SCOUT_PROFILE", ""),
		Listing: ListingEnvConfig{
			BaseURL:     envString("LISTING_BASE_URL", "https://2handland.com"),
			Path:        envString("LISTING_PATH", "/muon-mua"),
			PageSize:    envInt("LISTING_PAGE_SIZE", 48),
			MaxPages:    envInt("LISTING_MAX_PAGES", 3),
			HTTPTimeout: envDuration("LISTING_HTTP_TIMEOUT", 15*time.Second),
			UserAgent:   envString("LISTING_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Store: StoreEnvConfig{
			Backend: strings.ToLower(envString("STORE_BACKEND", "csv")),
			Path:    envString("STORE_PATH", "danh_sach_san_pham.csv"),
		},
		Score: ScoreEnvConfig{
			Enabled:   envBoolPtr("SCORE_ENABLED"),
			Threshold: envInt("SCORE_THRESHOLD", 9),
			Cooldown:  envDuration("SCORE_COOLDOWN", 2*time.Second),
		},
		OpenAI: OpenAIEnvConfig{
			APIKey:      strings.TrimSpace(envString("OPENAI_API_KEY", "")),
			BaseURL:     strings.TrimSpace(envString("OPENAI_BASE_URL", "")),
			Model:       model,
			Temperature: envFloatPtr("OPENAI_TEMPERATURE"),
		},
		Telegram: TelegramEnvConfig{
			Token:       strings.TrimSpace(envString("TELEGRAM_TOKEN", "")),
			ChatID:      strings.TrimSpace(envString("TELEGRAM_CHAT_ID", "")),
			HTTPTimeout: envDuration("TELEGRAM_HTTP_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPEnvConfig{
			Host:               envString("SMTP_HOST", ""),
			Port:               envInt("SMTP_PORT", 587),
			User:               envString("SMTP_USER", ""),
			Password:           envString("SMTP_PASSWORD", ""),
			From:               envString("SMTP_FROM", ""),
			To:                 envString("SMTP_TO", ""),
			TLSMode:            envString("SMTP_TLS_MODE", ""),
			InsecureSkipVerify: envBool("SMTP_INSECURE_SKIP_VERIFY", false),
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: strings.TrimSpace(envString("OTEL_SERVICE_NAME", "secondhand-scout")),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			Headers:     parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envBoolPtr(key string) *bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b := envBool(key, false)
	return &b
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envFloatPtr(key string) *float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := parseDurationExtended(v)
	if err != nil {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func defaultInsecure(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return u.Scheme == "http"
	}
	return strings.HasPrefix(endpoint, "localhost:") ||
		strings.HasPrefix(endpoint, "127.0.0.1:") ||
		strings.HasPrefix(endpoint, "0.0.0.0:")
}
