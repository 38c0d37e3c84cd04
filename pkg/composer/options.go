package composer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// Persister is the slice of the templates API the composer needs to submit a
// draft. pkg/api.Client and pkg/api.CachedStore satisfy it.
type Persister interface {
	CreateTemplate(ctx context.Context, doc model.Template) (int64, error)
	UpdateTemplate(ctx context.Context, id int64, doc model.Template) error
}

// DocumentValidator checks a complete draft before it is sent. pkg/openapi's
// Validator satisfies it.
type DocumentValidator interface {
	ValidateTemplate(ctx context.Context, doc model.Template) error
}

// Option customises a Composer.
type Option func(*Composer)

// WithPersister sets the API used by Submit.
func WithPersister(p Persister) Option {
	return func(c *Composer) {
		c.persister = p
	}
}

// WithValidator registers a document validator that runs before Submit sends
// the draft.
func WithValidator(v DocumentValidator) Option {
	return func(c *Composer) {
		c.validator = v
	}
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTaskID sets the owning task of a new draft.
func WithTaskID(id int64) Option {
	return func(c *Composer) {
		c.draft.TaskID = id
	}
}

// WithClock overrides the clock used to stamp the last successful submit.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}
