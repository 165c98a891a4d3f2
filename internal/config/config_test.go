package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MatchesSource != "matches.csv" {
		t.Fatalf("unexpected MatchesSource: %q", cfg.MatchesSource)
	}
	if cfg.TeamsSource != "" {
		t.Fatalf("expected no roster source by default, got %q", cfg.TeamsSource)
	}
	if cfg.ScheduleLocation != time.UTC {
		t.Fatalf("expected UTC schedule location, got %v", cfg.ScheduleLocation)
	}
	if cfg.DataRefreshInterval != 5*time.Minute {
		t.Fatalf("unexpected DataRefreshInterval: %s", cfg.DataRefreshInterval)
	}
	if cfg.LiveFeedEnabled {
		t.Fatalf("expected live feed disabled by default")
	}
	if !cfg.SourceCircuit.Enabled || cfg.SourceCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected source circuit defaults: %+v", cfg.SourceCircuit)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
	if cfg.ServiceName != "volley-league-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `other=1, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_ScheduleTimezone(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SCHEDULE_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ScheduleLocation.String() != "Asia/Jakarta" {
		t.Fatalf("unexpected location: %v", cfg.ScheduleLocation)
	}

	t.Setenv("SCHEDULE_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoad_LiveFeedRequiresBaseURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LIVE_FEED_ENABLED", "true")
	t.Setenv("LIVE_FEED_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when LIVE_FEED_ENABLED=true without LIVE_FEED_BASE_URL")
	}
}

func TestLoad_LiveFeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LIVE_FEED_ENABLED", "true")
	t.Setenv("LIVE_FEED_BASE_URL", " https://live.example.com/v1 ")
	t.Setenv("LIVE_FEED_TOKEN", "live-token")
	t.Setenv("LIVE_FEED_POLL_INTERVAL", "3s")
	t.Setenv("LIVE_FEED_MAX_WORKERS", "8")
	t.Setenv("LIVE_FEED_CIRCUIT_ENABLED", "false")
	t.Setenv("LIVE_FEED_CIRCUIT_FAILURE_COUNT", "7")
	t.Setenv("LIVE_SNAPSHOT_TTL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LiveFeedBaseURL != "https://live.example.com/v1" || cfg.LiveFeedToken != "live-token" {
		t.Fatalf("unexpected live feed endpoint config: %q %q", cfg.LiveFeedBaseURL, cfg.LiveFeedToken)
	}
	if cfg.LiveFeedPollInterval != 3*time.Second || cfg.LiveFeedMaxWorkers != 8 {
		t.Fatalf("unexpected poller config: %s workers=%d", cfg.LiveFeedPollInterval, cfg.LiveFeedMaxWorkers)
	}
	if cfg.LiveFeedCircuit.Enabled || cfg.LiveFeedCircuit.FailureThreshold != 7 {
		t.Fatalf("unexpected live circuit config: %+v", cfg.LiveFeedCircuit)
	}
	if cfg.LiveSnapshotTTL != 0 {
		t.Fatalf("expected snapshots kept until cleared, got %s", cfg.LiveSnapshotTTL)
	}
}

func TestLoad_RejectsInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		"SOURCE_MAX_RETRIES":                  "-1",
		"SOURCE_CIRCUIT_FAILURE_COUNT":        "0",
		"SOURCE_CIRCUIT_OPEN_TIMEOUT":         "0s",
		"LIVE_FEED_MAX_WORKERS":               "0",
		"DATA_REFRESH_INTERVAL":               "-1m",
		"APP_READ_TIMEOUT":                    "soon",
		"LIVE_FEED_CIRCUIT_HALF_OPEN_MAX_REQ": "x",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_RefreshIntervalZeroDisablesBackgroundRefresh(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DATA_REFRESH_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DataRefreshInterval != 0 {
		t.Fatalf("expected zero interval, got %s", cfg.DataRefreshInterval)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("unexpected PprofAddr: %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "volley-api")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://pyroscope:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "volley-api" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for empty CORS origins")
	}
}
