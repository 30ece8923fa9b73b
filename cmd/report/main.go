package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
	"case-insights-go/internal/processor"
	"case-insights-go/internal/report"
)

func main() {
	_ = godotenv.Load()
	svc := config.FromEnv()

	var (
		path      = flag.String("data", svc.DatasetPath, "Dataset file (.csv, .xlsx, .parquet)")
		url       = flag.String("url", svc.DatasetURL, "Download the dataset from this URL instead")
		cfgPath   = flag.String("config", svc.AnalyticsPath, "Analytics YAML overrides (optional)")
		format    = flag.String("format", "text", "Output format: text or markdown")
		redactPII = flag.Bool("redact", svc.RedactPII, "Redact PII in free text before analysis")
		timeout   = flag.Duration("timeout", 5*time.Minute, "Overall time limit")
	)
	flag.Parse()

	log := logger.NewWithOutput(svc.Environment, svc.LogLevel, os.Stderr)

	out, err := report.ParseFormat(*format)
	if err != nil {
		log.WithError(err).Fatal("bad -format")
	}
	analytics, err := config.LoadAnalytics(*cfgPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load analytics config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	loader := &processor.Loader{
		Config: analytics,
		Options: processor.Options{
			RedactPII:   *redactPII,
			RedactURLs:  svc.RedactURLs,
			FoldAccents: svc.FoldAccents,
		},
		Fetcher:     dataset.NewFetcher(log, svc.FetchTimeout),
		DownloadDir: svc.DownloadDir,
		Log:         log,
	}
	s, err := loader.Load(ctx, processor.Source{Path: *path, URL: *url})
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}

	d := processor.BuildDashboard(ctx, s, log)
	if err := report.NewRenderer(os.Stdout, out).Dashboard(d); err != nil {
		log.WithError(err).Fatal("failed to write report")
	}
}
