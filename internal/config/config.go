package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	InternalJobToken   string

	MatchesSource       string
	TeamsSource         string
	SourceTimeout       time.Duration
	SourceMaxRetries    int
	SourceCircuit       resilience.CircuitBreakerConfig
	DataRefreshInterval time.Duration
	ScheduleTimezone    string
	ScheduleLocation    *time.Location

	LiveFeedEnabled      bool
	LiveFeedBaseURL      string
	LiveFeedToken        string
	LiveFeedTimeout      time.Duration
	LiveFeedPollInterval time.Duration
	LiveFeedMaxWorkers   int
	LiveFeedCircuit      resilience.CircuitBreakerConfig
	LiveSnapshotTTL      time.Duration

	MetricsEnabled             bool
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := getEnvAsBool("SWAGGER_ENABLED", swaggerDefault)
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	// Websocket streams outlive any write timeout; 0 disables it.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if writeTimeout < 0 {
		return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT must be >= 0")
	}

	matchesSource := strings.TrimSpace(getEnv("MATCHES_SOURCE", "matches.csv"))
	sourceTimeout, err := getEnvAsPositiveDuration("SOURCE_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	sourceMaxRetries, err := getEnvAsInt("SOURCE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_MAX_RETRIES: %w", err)
	}
	if sourceMaxRetries < 0 {
		return Config{}, fmt.Errorf("SOURCE_MAX_RETRIES must be >= 0")
	}
	sourceCircuit, err := parseCircuitBreaker("SOURCE_CIRCUIT")
	if err != nil {
		return Config{}, err
	}
	refreshInterval, err := time.ParseDuration(getEnv("DATA_REFRESH_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DATA_REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval < 0 {
		return Config{}, fmt.Errorf("DATA_REFRESH_INTERVAL must be >= 0")
	}

	scheduleTimezone := strings.TrimSpace(getEnv("SCHEDULE_TIMEZONE", "UTC"))
	scheduleLocation, err := time.LoadLocation(scheduleTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE_TIMEZONE: %w", err)
	}

	liveFeedEnabled, err := getEnvAsBool("LIVE_FEED_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	liveFeedBaseURL := strings.TrimSpace(getEnv("LIVE_FEED_BASE_URL", ""))
	if liveFeedEnabled && liveFeedBaseURL == "" {
		return Config{}, fmt.Errorf("LIVE_FEED_BASE_URL is required when LIVE_FEED_ENABLED=true")
	}
	liveFeedTimeout, err := getEnvAsPositiveDuration("LIVE_FEED_TIMEOUT", "5s")
	if err != nil {
		return Config{}, err
	}
	livePollInterval, err := getEnvAsPositiveDuration("LIVE_FEED_POLL_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}
	liveMaxWorkers, err := getEnvAsInt("LIVE_FEED_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_FEED_MAX_WORKERS: %w", err)
	}
	if liveMaxWorkers < 1 {
		return Config{}, fmt.Errorf("LIVE_FEED_MAX_WORKERS must be >= 1")
	}
	liveCircuit, err := parseCircuitBreaker("LIVE_FEED_CIRCUIT")
	if err != nil {
		return Config{}, err
	}
	liveSnapshotTTL, err := time.ParseDuration(getEnv("LIVE_SNAPSHOT_TTL", "3h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_SNAPSHOT_TTL: %w", err)
	}
	if liveSnapshotTTL < 0 {
		return Config{}, fmt.Errorf("LIVE_SNAPSHOT_TTL must be >= 0")
	}

	metricsEnabled, err := getEnvAsBool("METRICS_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := getEnvAsBool("PPROF_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "volley-league-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:             swaggerEnabled,
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		MatchesSource:              matchesSource,
		TeamsSource:                strings.TrimSpace(getEnv("TEAMS_SOURCE", "")),
		SourceTimeout:              sourceTimeout,
		SourceMaxRetries:           sourceMaxRetries,
		SourceCircuit:              sourceCircuit,
		DataRefreshInterval:        refreshInterval,
		ScheduleTimezone:           scheduleTimezone,
		ScheduleLocation:           scheduleLocation,
		LiveFeedEnabled:            liveFeedEnabled,
		LiveFeedBaseURL:            liveFeedBaseURL,
		LiveFeedToken:              strings.TrimSpace(getEnv("LIVE_FEED_TOKEN", "")),
		LiveFeedTimeout:            liveFeedTimeout,
		LiveFeedPollInterval:       livePollInterval,
		LiveFeedMaxWorkers:         liveMaxWorkers,
		LiveFeedCircuit:            liveCircuit,
		LiveSnapshotTTL:            liveSnapshotTTL,
		MetricsEnabled:             metricsEnabled,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.MatchesSource == "" {
		return Config{}, fmt.Errorf("MATCHES_SOURCE cannot be empty")
	}

	return cfg, nil
}

// parseCircuitBreaker reads <prefix>_ENABLED, _FAILURE_COUNT, _OPEN_TIMEOUT
// and _HALF_OPEN_MAX_REQ.
func parseCircuitBreaker(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabled, err := getEnvAsBool(prefix+"_ENABLED", strconv.FormatBool(defaults.Enabled))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}
	failureCount, err := getEnvAsInt(prefix+"_FAILURE_COUNT", defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_FAILURE_COUNT: %w", prefix, err)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_OPEN_TIMEOUT", defaults.OpenTimeout.String()))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_OPEN_TIMEOUT: %w", prefix, err)
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_HALF_OPEN_MAX_REQ", defaults.HalfOpenMaxReq)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}

	cfg := resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}
	if err := cfg.Validate(); err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s: %w", prefix, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
