package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"case-insights-go/internal/api"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
	"case-insights-go/internal/processor"
)

func main() {
	_ = godotenv.Load() // loads .env

	svc := config.FromEnv()
	log := logger.New(svc.Environment, svc.LogLevel)
	log.WithField("service", "case-insights-go").Info("starting service")

	analytics, err := config.LoadAnalytics(svc.AnalyticsPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load analytics config")
	}

	loader := &processor.Loader{
		Config: analytics,
		Options: processor.Options{
			RedactPII:   svc.RedactPII,
			RedactURLs:  svc.RedactURLs,
			FoldAccents: svc.FoldAccents,
		},
		Fetcher:     dataset.NewFetcher(log, svc.FetchTimeout),
		DownloadDir: svc.DownloadDir,
		Log:         log,
	}
	store := processor.NewStore()

	// the API answers 503 until the first dataset is in
	src := processor.Source{Path: svc.DatasetPath, URL: svc.DatasetURL}
	go func() {
		start := time.Now()
		log.WithField("source", src.String()).Info("loading dataset")
		ctx, cancel := context.WithTimeout(context.Background(), svc.FetchTimeout+5*time.Minute)
		defer cancel()
		s, err := loader.Load(ctx, src)
		if err != nil {
			log.WithError(err).Error("initial dataset load failed; POST /api/dataset/reload to retry")
			return
		}
		store.Replace(s)
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("rows", s.Summary.TotalRows).
			Info("dataset loaded")
	}()

	reload := api.ReloadConfig{
		Default: src,
		Policy:  processor.SourcePolicy{DataDir: svc.DataDir, Hosts: svc.ReloadHosts},
	}
	e := api.NewServer(api.NewHandler(store, loader, reload, log), log, svc.CORSOrigins)

	addr := fmt.Sprintf(":%s", svc.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
