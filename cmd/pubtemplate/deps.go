package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-pubtemplate"
	"github.com/goliatone/go-pubtemplate/pkg/api"
	"github.com/goliatone/go-pubtemplate/pkg/config"
	"github.com/goliatone/go-pubtemplate/pkg/model"
	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

var errNoAPIURL = errors.New("no API URL configured: pass --api-url or set " + config.EnvAPIURL)

func (app *cli) client() (*api.Client, error) {
	if strings.TrimSpace(app.cfg.API.BaseURL) == "" {
		return nil, errNoAPIURL
	}
	options := []api.Option{
		api.WithTimeout(app.cfg.Timeout()),
		api.WithLogger(app.logger.Named("api")),
	}
	if app.cfg.API.Token != "" {
		options = append(options, api.WithToken(app.cfg.API.Token))
	}
	if app.cfg.API.UserAgent != "" {
		options = append(options, api.WithUserAgent(app.cfg.API.UserAgent))
	}
	return pubtemplate.NewClient(app.cfg.API.BaseURL, options...)
}

func (app *cli) catalog() (*presets.Catalog, error) {
	path := app.cfg.Presets.CatalogPath
	if path == "" {
		return presets.Default(), nil
	}
	return presets.LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

func (app *cli) previewer() (*preview.Previewer, error) {
	var options []preview.Option
	if dir := app.cfg.Preview.TemplatesDir; dir != "" {
		options = append(options, preview.WithBaseDir(dir))
	}
	return preview.New(options...)
}

func (app *cli) renderer() (*render.Renderer, error) {
	dialect, err := render.DefaultRegistry().Get(app.cfg.Render.Dialect)
	if err != nil {
		return nil, err
	}
	options := []render.Option{
		render.WithDialect(dialect),
		render.WithLogger(app.logger.Named("render")),
	}
	if !app.cfg.SanitizeValues() {
		options = append(options, render.WithoutSanitizer())
	}
	return pubtemplate.NewRenderer(options...), nil
}

// validator compiles the configured API document, or nil when validation
// is disabled.
func (app *cli) validator(ctx context.Context) (pkgopenapi.Validator, error) {
	settings := app.cfg.Validation
	if settings.Disabled {
		return nil, nil
	}
	var options []pkgopenapi.ValidatorOption
	if settings.Schema != "" {
		options = append(options, pkgopenapi.WithSchemaName(settings.Schema))
	}

	location := strings.TrimSpace(settings.Document)
	if location == "" {
		return pubtemplate.NewValidator(ctx, nil, options...)
	}

	var (
		src    pkgopenapi.Source
		loader pkgopenapi.Loader
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		parsed, err := pkgopenapi.SourceFromURL(location)
		if err != nil {
			return nil, err
		}
		src = parsed
		loader = pubtemplate.NewLoader(pkgopenapi.WithHTTPFallback(app.cfg.Timeout()))
	} else {
		src = pkgopenapi.SourceFromFile(location)
		loader = pubtemplate.NewLoader()
	}
	return pubtemplate.LoadValidator(ctx, loader, src, options...)
}

func (app *cli) taskID(flagValue int64) (int64, error) {
	if flagValue > 0 {
		return flagValue, nil
	}
	if app.cfg.Task.DefaultID > 0 {
		return app.cfg.Task.DefaultID, nil
	}
	return 0, errors.New("no task given: pass --task or set task.default_id")
}

func readTemplateFile(path string) (model.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Template{}, fmt.Errorf("read template: %w", err)
	}
	var tpl model.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return model.Template{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	return tpl, nil
}
