package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, core.DefaultAccent, c.Colors.Primary)
	assert.Equal(t, urls.ModeAll, c.URLPolicy().Mode)
	assert.NoError(t, c.Validate())

	got, ok := c.Resolver().Resolve("a.avif")
	assert.True(t, ok)
	assert.Equal(t, "a.jpg", got)
}

func TestLoad(t *testing.T) {
	path := writeSettings(t, `
colors:
  primary: "#1F6AA5"
urls:
  policy: allowlist
  secure_hosts: [example.com]
  insecure_hosts: [legacy.example.org]
media:
  avif_replacement: .PNG
`)
	c, err := Load(path)
	require.NoError(t, err)

	accent, err := c.Theme().Accent()
	require.NoError(t, err)
	assert.Equal(t, "#1F6AA5", accent)

	p := c.URLPolicy()
	assert.Equal(t, urls.ModeAllowlist, p.Mode)
	assert.Equal(t, []string{"example.com"}, p.SecureHosts)
	assert.Equal(t, []string{"legacy.example.org"}, p.InsecureHosts)

	got, _ := c.Resolver().Resolve("hero.avif")
	assert.Equal(t, "hero.png", got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	c, err := Load(writeSettings(t, "colors:\n  primary: navy\n"))
	require.NoError(t, err)
	assert.Equal(t, "navy", c.Colors.Primary)
	assert.Equal(t, "all", c.URLs.Policy)
	assert.Equal(t, ".jpg", c.Media.AVIFReplacement)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"markup in color", "colors:\n  primary: \"red;<b>\"\n"},
		{"unknown policy", "urls:\n  policy: some\n"},
		{"avif replacement", "media:\n  avif_replacement: .webp\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.body))
			assert.ErrorIs(t, err, core.ErrInvalidSettings)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeSettings(t, "colors: [\n"))
	assert.ErrorContains(t, err, "parsing settings")
}
