package pubtemplate_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pubtemplate"
	pkgopenapi "github.com/goliatone/go-pubtemplate/pkg/openapi"
	"github.com/goliatone/go-pubtemplate/pkg/render"
	"github.com/goliatone/go-pubtemplate/pkg/testsupport"
)

func TestRenderGolden(t *testing.T) {
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))
	values := testsupport.MustLoadValues(t, testsupport.FixturePath("news_values.json"))

	got := pubtemplate.NewRenderer().Render(tpl, render.RenderOptions{Values: values})

	goldenPath := testsupport.FixturePath("news_render.golden")
	if testsupport.WriteMaybeGolden(t, goldenPath, []byte(got)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, goldenPath)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderResolvesInputs(t *testing.T) {
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))

	got := pubtemplate.Render(tpl, pubtemplate.Inputs{
		Summary:   "Flood warning issued for the southern districts.",
		Extracted: map[string]string{"المحافظة": "البصرة"},
		Now:       time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC),
	}, render.WithDialect(render.Plain()))

	want := "Morning bulletin\nDate: 2026-10-16\nFlood warning issued for the southern districts.\nالمحافظة: البصرة\n@channel"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderInactiveReturnsSummary(t *testing.T) {
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))
	tpl.IsActive = false

	got := pubtemplate.Render(tpl, pubtemplate.Inputs{Summary: "original text"})
	if got != "original text" {
		t.Fatalf("expected summary fallback, got %q", got)
	}
}

func TestComposerFromTemplateKeepsOrder(t *testing.T) {
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))

	c := pubtemplate.EditTemplate(tpl)
	var got []string
	for _, field := range c.Fields() {
		got = append(got, field.FieldName)
	}
	if diff := cmp.Diff([]string{"date", "summary", "المحافظة"}, got); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if pubtemplate.NewComposer().Len() != 0 {
		t.Fatalf("expected an empty draft")
	}
}

func TestDefaultValidatorAcceptsFixture(t *testing.T) {
	ctx := context.Background()
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))

	validator, err := pubtemplate.NewValidator(ctx, nil)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if err := validator.ValidateTemplate(ctx, tpl); err != nil {
		t.Fatalf("expected fixture to validate, got %v", err)
	}
	if len(validator.Operations()) != 5 {
		t.Fatalf("expected five operations, got %v", validator.Operations())
	}
}

func TestLoadValidatorFromEmbeddedFS(t *testing.T) {
	ctx := context.Background()
	loader := pubtemplate.NewLoader(pkgopenapi.WithFileSystem(pubtemplate.EmbeddedAPIDocument()))

	validator, err := pubtemplate.LoadValidator(ctx, loader, pkgopenapi.SourceFromFS(pkgopenapi.EmbeddedDocumentName))
	if err != nil {
		t.Fatalf("load validator: %v", err)
	}

	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))
	tpl.Name = ""
	if err := validator.ValidateTemplate(ctx, tpl); err == nil || !strings.Contains(err.Error(), "/name") {
		t.Fatalf("expected /name issue, got %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := pubtemplate.NewClient("ftp://example.com"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	client, err := pubtemplate.NewClient("https://example.com/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if pubtemplate.NewCachedStore(client) == nil {
		t.Fatalf("expected cached store")
	}
}

func TestEmbeddedPreviewTemplates(t *testing.T) {
	if _, err := fs.ReadFile(pubtemplate.EmbeddedPreviewTemplates(), "draft.tpl"); err != nil {
		t.Fatalf("expected draft view: %v", err)
	}
}
