// Package pubtemplate composes, renders, and persists publishing templates:
// the per-task layouts that turn a processed news item into the message a
// Telegram bot publishes.
package pubtemplate

import (
	"github.com/goliatone/go-pubtemplate/pkg/api"
	"github.com/goliatone/go-pubtemplate/pkg/composer"
	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

// Template aliases model.Template for callers that only import the root
// package.
type Template = model.Template

// Field aliases model.Field.
type Field = model.Field

// Inputs aliases render.Inputs: the pipeline outputs a template is filled
// from.
type Inputs = render.Inputs

// NewComposer starts an empty draft.
func NewComposer(options ...composer.Option) *composer.Composer {
	return composer.New(options...)
}

// EditTemplate starts a draft from a persisted template.
func EditTemplate(tpl Template, options ...composer.Option) *composer.Composer {
	return composer.FromTemplate(tpl, options...)
}

// NewRenderer exposes the renderer constructor from the top-level module.
func NewRenderer(options ...render.Option) *render.Renderer {
	return render.NewRenderer(options...)
}

// Render resolves field values from in and renders tpl. Inactive templates
// return the summary unchanged.
func Render(tpl Template, in Inputs, options ...render.Option) string {
	values := render.NewResolver().Resolve(tpl, in)
	return render.NewRenderer(options...).Render(tpl, render.RenderOptions{
		Values:   values,
		Fallback: in.Summary,
	})
}

// NewClient constructs a templates API client.
func NewClient(baseURL string, options ...api.Option) (*api.Client, error) {
	return api.NewClient(baseURL, options...)
}

// NewCachedStore wraps store with the per-task list cache.
func NewCachedStore(store api.Store, options ...api.CacheOption) *api.CachedStore {
	return api.NewCachedStore(store, options...)
}
