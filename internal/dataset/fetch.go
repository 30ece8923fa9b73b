package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"case-insights-go/internal/logger"
)

// Fetcher downloads a remote case export into a local directory so it can
// be handed to Load.
type Fetcher struct {
	Client          *http.Client
	Log             *logger.Logger
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

func NewFetcher(log *logger.Logger, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:          &http.Client{Timeout: timeout},
		Log:             log.Component("dataset.fetch"),
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  timeout,
	}
}

// Fetch retries transport errors and 5xx responses with exponential backoff.
// 4xx responses fail immediately. It returns the path of the downloaded file.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse dataset url: %w", err)
	}
	name := path.Base(u.Path)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm", ".parquet":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	dest := filepath.Join(dir, name)

	bo := backoff.NewExponentialBackOff()
	if f.InitialInterval > 0 {
		bo.InitialInterval = f.InitialInterval
	}
	if f.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = f.MaxElapsedTime
	}

	attempt := 0
	var lastErr error
	op := func() error {
		attempt++
		err := f.download(ctx, rawURL, dest)
		if err != nil {
			lastErr = err
			f.Log.WithError(err).WithField("attempt", attempt).Warn("dataset download failed")
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("fetch %s: %w", rawURL, lastErr)
	}
	f.Log.WithField("path", dest).WithField("attempts", attempt).Info("dataset downloaded")
	return dest, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("download failed: status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("read body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return backoff.Permanent(fmt.Errorf("move download: %w", err))
	}
	return nil
}
