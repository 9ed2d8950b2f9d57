package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal images
)

var ErrMissing = errors.New("missing required environment variable")

// Email holds the fixed sender and internal distribution list.
type Email struct {
	APIKey        string
	From          string
	BusinessTo    string
	BusinessCC    []string
	Gap           time.Duration
	RatePerSecond float64
}

type Brand struct {
	Name         string
	LogoURL      string
	SupportEmail string
}

type Config struct {
	HTTPAddr       string
	PostgresDSN    string
	RedisAddr      string
	KafkaBrokers   []string
	LifecycleTopic string
	RequestTopic   string
	WorkerGroup    string
	WorkerCount    int
	ServiceName    string
	ServiceVersion string
	ExporterURL    string
	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxLabelBytes  int64
	Location       *time.Location

	Email Email
	Brand Brand

	AbortOnPrimaryFailure   bool
	AbortOnSecondaryFailure bool
}

// Load reads the environment. The data store DSN and the email provider key
// are required; everything else has a default.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:       ":" + getenv("PORT", "3001"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   splitCSV(os.Getenv("KAFKA_BROKERS")),
		LifecycleTopic: getenv("KAFKA_LIFECYCLE_TOPIC", "shoe.order.lifecycle"),
		RequestTopic:   getenv("KAFKA_REQUEST_TOPIC", "shoe.order.lifecycle.requested"),
		WorkerGroup:    getenv("WORKER_GROUP", "shoe-email-worker"),
		ServiceName:    getenv("SERVICE_NAME", "shoe-cleaning-email-service"),
		ServiceVersion: getenv("SERVICE_VERSION", "1.0.0"),
		ExporterURL:    os.Getenv("OTEL_EXPORTER_URL"),
		CORSOrigins:    splitCSV(getenv("CORS_ORIGINS", "http://localhost:3000,https://offseasonshoes.com")),
		Email: Email{
			APIKey:     os.Getenv("RESEND_API_KEY"),
			From:       getenv("EMAIL_FROM", "OFFseason <no-reply@offseasonshoes.com>"),
			BusinessTo: getenv("BUSINESS_EMAIL", "OFFseason <info@offseasonshoes.com>"),
			BusinessCC: splitCSV(os.Getenv("BUSINESS_CC")),
		},
		Brand: Brand{
			Name:         getenv("BRAND_NAME", "OFFseason"),
			LogoURL:      getenv("LOGO_URL", "https://offseasonshoes.com/logo.png"),
			SupportEmail: getenv("SUPPORT_EMAIL", "info@offseasonshoes.com"),
		},
	}

	if cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("%w: POSTGRES_DSN", ErrMissing)
	}
	if cfg.Email.APIKey == "" {
		return Config{}, fmt.Errorf("%w: RESEND_API_KEY", ErrMissing)
	}

	var err error
	if cfg.Email.Gap, err = getDuration("EMAIL_GAP", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Email.RatePerSecond, err = getFloat("EMAIL_RATE_PER_SEC", 0); err != nil {
		return Config{}, err
	}
	if cfg.AbortOnPrimaryFailure, err = getBool("ABORT_ON_PRIMARY_FAILURE", true); err != nil {
		return Config{}, err
	}
	if cfg.AbortOnSecondaryFailure, err = getBool("ABORT_ON_SECONDARY_FAILURE", false); err != nil {
		return Config{}, err
	}
	workers, err := getInt("WORKER_COUNT", 4)
	if err != nil {
		return Config{}, err
	}
	cfg.WorkerCount = workers
	maxLabel, err := getInt("MAX_LABEL_BYTES", 10<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxLabelBytes = int64(maxLabel)

	cfg.Location, err = time.LoadLocation(getenv("TIMEZONE", "Europe/London"))
	if err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}
	return cfg, nil
}

// Warnings lists settings that are valid but probably not what production
// wants. main logs them at startup.
func (c Config) Warnings() []string {
	var w []string
	if len(c.Email.BusinessCC) == 0 {
		w = append(w, "BUSINESS_CC is empty: business notifications go to "+c.Email.BusinessTo+" only")
	}
	return w
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return i, nil
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
