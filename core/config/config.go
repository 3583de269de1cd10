// Package config loads the bulletin settings file.
//
//	colors:
//	  primary: "#1F6AA5"
//	urls:
//	  policy: all            # or allowlist
//	  secure_hosts: []
//	  insecure_hosts: []
//	media:
//	  avif_replacement: ".jpg"
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/gaurav-prasanna/bulletinpipe/core/media"
	"github.com/gaurav-prasanna/bulletinpipe/core/urls"
	"gopkg.in/yaml.v3"
)

// rasterExtensions are the substitutes an AVIF reference may be rewritten to.
var rasterExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// Config holds the full settings file.
type Config struct {
	Colors core.Colors `yaml:"colors"`
	URLs   URLConfig   `yaml:"urls"`
	Media  MediaConfig `yaml:"media"`
}

// URLConfig controls the http:// upgrade policy.
type URLConfig struct {
	Policy        string   `yaml:"policy"`
	SecureHosts   []string `yaml:"secure_hosts"`
	InsecureHosts []string `yaml:"insecure_hosts"`
}

// MediaConfig controls AVIF substitution.
type MediaConfig struct {
	AVIFReplacement string `yaml:"avif_replacement"`
}

func (c *Config) defaults() {
	if c.Colors.Primary == "" {
		c.Colors.Primary = core.DefaultAccent
	}
	if c.URLs.Policy == "" {
		c.URLs.Policy = string(urls.ModeAll)
	}
	if c.Media.AVIFReplacement == "" {
		c.Media.AVIFReplacement = media.DefaultResolver().Extension
	}
}

// Default returns the settings used when no file is given.
func Default() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// Load reads a YAML settings file. Missing keys take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	c.defaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return c, nil
}

// Validate checks that every value can be handed to the pipeline.
func (c *Config) Validate() error {
	if _, err := c.Theme().Accent(); err != nil {
		return err
	}
	if _, err := urls.ParseMode(c.URLs.Policy); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidSettings, err)
	}
	ext := strings.ToLower(c.Media.AVIFReplacement)
	if !rasterExtensions[ext] {
		return fmt.Errorf("%w: avif_replacement %q (want .jpg, .jpeg, .png or .gif)",
			core.ErrInvalidSettings, c.Media.AVIFReplacement)
	}
	return nil
}

// Theme returns the theme settings for the pipeline.
func (c *Config) Theme() *core.ThemeSettings {
	return &core.ThemeSettings{Colors: c.Colors}
}

// URLPolicy returns the configured upgrade policy. An unknown mode falls
// back to urls.ModeAll; Validate reports it.
func (c *Config) URLPolicy() urls.Policy {
	mode, err := urls.ParseMode(c.URLs.Policy)
	if err != nil {
		mode = urls.ModeAll
	}
	return urls.Policy{
		Mode:          mode,
		SecureHosts:   append([]string(nil), c.URLs.SecureHosts...),
		InsecureHosts: append([]string(nil), c.URLs.InsecureHosts...),
	}
}

// Resolver returns the AVIF resolver for the configured replacement.
func (c *Config) Resolver() media.Resolver {
	return media.SiblingResolver{Extension: strings.ToLower(c.Media.AVIFReplacement)}
}
