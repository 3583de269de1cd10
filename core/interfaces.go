// Package core defines the shared types and stage interfaces for BulletinPipe.
// Each transform stage lives in its own package and works on a parsed tree;
// this package only carries what the stages and the CLI have in common.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Contract violations. These indicate a caller bug, not a content problem.
var (
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidSettings = errors.New("invalid theme settings")
)

// Profile selects the transform set and the validator rule table.
type Profile string

const (
	ProfileWeb   Profile = "web"
	ProfileEmail Profile = "email"
)

// ParseProfile converts a profile tag such as "email" into a Profile.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (want web or email)", ErrInvalidProfile, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known profiles.
func (p Profile) Valid() bool {
	return p == ProfileWeb || p == ProfileEmail
}

func (p Profile) String() string {
	return string(p)
}

// DefaultAccent is the CTA background used when no primary color is configured.
const DefaultAccent = "#103040"

// Colors holds the theme palette.
type Colors struct {
	Primary string `yaml:"primary" json:"primary"`
}

// ThemeSettings is the read-only settings object handed to the pipeline.
type ThemeSettings struct {
	Colors Colors `yaml:"colors" json:"colors"`
}

// Accent returns the primary color to use for CTA buttons.
// A nil receiver or a blank primary yields DefaultAccent.
func (s *ThemeSettings) Accent() (string, error) {
	if s == nil {
		return DefaultAccent, nil
	}
	c := strings.TrimSpace(s.Colors.Primary)
	if c == "" {
		return DefaultAccent, nil
	}
	if strings.ContainsAny(c, ";\"'<>{}\\") {
		return "", fmt.Errorf("%w: primary color %q", ErrInvalidSettings, s.Colors.Primary)
	}
	return c, nil
}

// BulletinMeta describes a normalized bulletin for the export renderers.
type BulletinMeta struct {
	Title   string  `json:"title"`
	Profile Profile `json:"profile"`
	Source  string  `json:"source,omitempty"`
}

// Renderer converts normalized bulletin HTML into a final export format.
type Renderer interface {
	Render(html string, meta BulletinMeta) ([]byte, error)
	// Extension returns the file suffix for this renderer (e.g. ".txt", ".pdf").
	Extension() string
}

// Prober reports whether a host answers over HTTPS.
type Prober interface {
	Probe(ctx context.Context, host string) bool
}
