package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Service holds process level settings read from the environment
// (after godotenv has loaded .env in main).
type Service struct {
	Environment   string
	LogLevel      string
	Port          string
	DatasetPath   string
	DatasetURL    string
	DownloadDir   string
	AnalyticsPath string
	RedactPII     bool
	RedactURLs    bool
	FoldAccents   bool
	FetchTimeout  time.Duration

	// DataDir bounds the paths a reload request may name, and ReloadHosts
	// the hosts it may download from. Both default to the configured source.
	DataDir     string
	ReloadHosts []string
	CORSOrigins []string
}

func FromEnv() Service {
	svc := Service{
		Environment:   os.Getenv("ENVIRONMENT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Port:          envOr("PORT", "8080"),
		DatasetPath:   envOr("DATASET_PATH", "cases.csv"),
		DatasetURL:    os.Getenv("DATASET_URL"),
		DownloadDir:   envOr("DOWNLOAD_DIR", os.TempDir()),
		AnalyticsPath: os.Getenv("ANALYTICS_CONFIG"),
		RedactPII:     envBool("REDACT_PII", true),
		RedactURLs:    envBool("REDACT_URLS", false),
		FoldAccents:   envBool("FOLD_ACCENTS", false),
		FetchTimeout:  envDuration("FETCH_TIMEOUT", 60*time.Second),
		CORSOrigins:   envList("CORS_ORIGINS"),
	}
	svc.DataDir = envOr("DATA_DIR", filepath.Dir(svc.DatasetPath))
	svc.ReloadHosts = envList("RELOAD_HOSTS")
	if len(svc.ReloadHosts) == 0 && svc.DatasetURL != "" {
		if u, err := url.Parse(svc.DatasetURL); err == nil && u.Hostname() != "" {
			svc.ReloadHosts = []string{u.Hostname()}
		}
	}
	return svc
}

func envList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
