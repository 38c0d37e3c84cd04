package tui

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/presets"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

// Theme holds the prefixes applied to session messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used unless WithTheme overrides it.
var DefaultTheme = Theme{InfoPrefix: "", ErrorPrefix: "! "}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver. Defaults to survey on stdout.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithCatalog sets the preset catalog offered by "Add preset field".
func WithCatalog(catalog *presets.Catalog) Option {
	return func(s *Session) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithPreviewer sets the previewer used by "Preview draft".
func WithPreviewer(p *preview.Previewer) Option {
	return func(s *Session) {
		if p != nil {
			s.previewer = p
		}
	}
}

// WithRenderer sets the renderer used for samples.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Session) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithResolver sets the resolver used for samples.
func WithResolver(r *render.Resolver) Option {
	return func(s *Session) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets the logger used for session traces.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithSessionID overrides the generated session id used in logs.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithClock overrides the clock used in sample renders.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
