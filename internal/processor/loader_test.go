package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
)

func testLoader() *Loader {
	return &Loader{Config: config.Default(), Options: Options{RedactPII: true}, Log: logger.Discard()}
}

func TestLoaderLoadsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte("Issue,Notes\nBilling,call me on 555-123-4567\nLogin,\n"), 0o644))

	s, err := testLoader().Load(context.Background(), Source{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, 2, s.Summary.TotalRows)
	assert.True(t, s.Redacted)
	assert.True(t, s.Columns.Has("subcategory"))
}

func TestLoaderErrors(t *testing.T) {
	l := testLoader()

	_, err := l.Load(context.Background(), Source{})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = l.Load(context.Background(), Source{Path: "cases.pdf"})
	assert.ErrorIs(t, err, dataset.ErrUnsupportedFormat)

	_, err = l.Load(context.Background(), Source{URL: "https://example.invalid/cases.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloads are not configured")
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "a.csv", Source{Path: "a.csv"}.String())
	assert.Equal(t, "https://x/b.csv", Source{Path: "a.csv", URL: "https://x/b.csv"}.String())
}

func TestSourcePolicyCheck(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secrets.csv")
	require.NoError(t, os.WriteFile(outside, []byte("a\n1\n"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "escape.csv")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cases.csv"), []byte("a\n1\n"), 0o644))

	p := SourcePolicy{DataDir: dir, Hosts: []string{"exports.example.com"}}

	got, err := p.Check(Source{Path: "cases.csv"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cases.csv"), got.Path)

	got, err = p.Check(Source{Path: filepath.Join(dir, "sub", "..", "cases.csv")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cases.csv"), got.Path)

	for _, path := range []string{"/etc/passwd", "../secrets.csv", outside, "escape.csv"} {
		_, err := p.Check(Source{Path: path})
		assert.ErrorIs(t, err, ErrSourceNotAllowed, path)
	}

	_, err = p.Check(Source{URL: "https://exports.example.com/cases.csv"})
	assert.NoError(t, err)
	for _, u := range []string{"https://evil.example/cases.csv", "ftp://exports.example.com/cases.csv", "file:///etc/passwd"} {
		_, err := p.Check(Source{URL: u})
		assert.ErrorIs(t, err, ErrSourceNotAllowed, u)
	}

	_, err = p.Check(Source{})
	assert.ErrorIs(t, err, ErrNoSource)

	var zero SourcePolicy
	_, err = zero.Check(Source{Path: "cases.csv"})
	assert.ErrorIs(t, err, ErrSourceNotAllowed)
	_, err = zero.Check(Source{URL: "https://exports.example.com/cases.csv"})
	assert.ErrorIs(t, err, ErrSourceNotAllowed)
}
