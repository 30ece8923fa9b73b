package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
)

var (
	ErrNoSource         = errors.New("no dataset path or url given")
	ErrSourceNotAllowed = errors.New("dataset source not allowed")
)

// Source names a dataset: a local path, or a URL downloaded first.
type Source struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

// SourcePolicy bounds the sources a caller may ask for: paths must stay
// inside DataDir and URLs must point at one of Hosts. The zero policy allows
// nothing.
type SourcePolicy struct {
	DataDir string
	Hosts   []string
}

// Check validates src and returns it with Path made absolute. Symlinks are
// followed before the containment check.
func (p SourcePolicy) Check(src Source) (Source, error) {
	if src.URL != "" {
		u, err := url.Parse(src.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return src, fmt.Errorf("%w: %q is not an http(s) url", ErrSourceNotAllowed, src.URL)
		}
		for _, h := range p.Hosts {
			if strings.EqualFold(h, u.Hostname()) {
				return src, nil
			}
		}
		return src, fmt.Errorf("%w: host %q", ErrSourceNotAllowed, u.Hostname())
	}
	if src.Path == "" {
		return src, ErrNoSource
	}
	if p.DataDir == "" {
		return src, fmt.Errorf("%w: no data directory configured", ErrSourceNotAllowed)
	}

	root, err := filepath.Abs(p.DataDir)
	if err != nil {
		return src, fmt.Errorf("data dir: %w", err)
	}
	path := src.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)
	if !within(root, path) {
		return src, fmt.Errorf("%w: %q is outside the data directory", ErrSourceNotAllowed, src.Path)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		realRoot, rootErr := filepath.EvalSymlinks(root)
		if rootErr != nil || !within(realRoot, resolved) {
			return src, fmt.Errorf("%w: %q is outside the data directory", ErrSourceNotAllowed, src.Path)
		}
	}
	src.Path = path
	return src, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Loader turns a Source into a ready Session.
type Loader struct {
	Config      config.Analytics
	Options     Options
	Fetcher     *dataset.Fetcher
	DownloadDir string
	Log         *logger.Logger
}

func (l *Loader) Load(ctx context.Context, src Source) (*Session, error) {
	path := src.Path
	if src.URL != "" {
		if l.Fetcher == nil {
			return nil, fmt.Errorf("fetch %s: downloads are not configured", src.URL)
		}
		p, err := l.Fetcher.Fetch(ctx, src.URL, l.DownloadDir)
		if err != nil {
			return nil, fmt.Errorf("fetch dataset: %w", err)
		}
		path = p
	}
	if path == "" {
		return nil, ErrNoSource
	}

	t, _, err := dataset.LoadAndSummarize(path, l.Log)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	s, err := NewSession(t, src.String(), l.Config, l.Options)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	l.Log.Component("processor.loader").WithFields(map[string]interface{}{
		"session_id": s.ID,
		"source":     s.Source,
		"rows":       s.Summary.TotalRows,
		"bindings":   len(s.Columns.Bindings()),
		"pii_found":  s.PII.Total(),
	}).Info("session ready")
	return s, nil
}
