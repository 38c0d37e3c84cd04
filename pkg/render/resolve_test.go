package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

func newsTemplate() model.Template {
	tpl := model.NewTemplate()
	tpl.Name = "News"
	tpl.ExtractionPrompt = "You are a news desk assistant."

	specialist := field("specialist", "Specialist", model.FieldTypeStatic)
	specialist.DefaultValue = "Dr. Ali"

	source := field("المصدر", "المصدر", model.FieldTypeExtracted)
	source.ExtractionInstructions = "  channel or outlet  "

	inactive := field("category", "Category", model.FieldTypeExtracted)
	inactive.ExtractionInstructions = "topic"
	inactive.IsActive = false

	tpl.CustomFields = []model.Field{
		field("date", "Date", model.FieldTypeDateToday),
		field("رقم_القيد", "رقم القيد", model.FieldTypeStatic),
		specialist,
		field("التلخيص", "التلخيص", model.FieldTypeSummary),
		source,
		inactive,
	}
	model.Renumber(tpl.CustomFields)
	return tpl
}

func TestResolver_Resolve(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC) }
	resolver := render.NewResolver(render.WithClock(clock))

	got := resolver.Resolve(newsTemplate(), render.Inputs{
		Summary:   "  Short summary ",
		Extracted: map[string]string{"المصدر": " Reuters ", "category": "politics"},
		Serial:    "15",
	})

	want := map[string]string{
		"date":       "2026-10-16",
		"رقم_القيد":  "#15",
		"specialist": "Dr. Ali",
		"التلخيص":    "Short summary",
		"المصدر":     "Reuters",
		"category":   "politics",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved values mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_SerialAndSummaryFallbacks(t *testing.T) {
	resolver := render.NewResolver()
	tpl := newsTemplate()

	got := resolver.Resolve(tpl, render.Inputs{
		Extracted: map[string]string{"summary": "from pipeline"},
		Serial:    "0",
		Now:       time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	if got["رقم_القيد"] != "" {
		t.Fatalf("placeholder serial should resolve empty, got %q", got["رقم_القيد"])
	}
	if got["التلخيص"] != "from pipeline" {
		t.Fatalf("expected generic summary key fallback, got %q", got["التلخيص"])
	}
	if got["date"] != "2025-01-02" {
		t.Fatalf("expected Inputs.Now to win, got %q", got["date"])
	}

	got = resolver.Resolve(tpl, render.Inputs{Serial: "#7"})
	if got["رقم_القيد"] != "#7" {
		t.Fatalf("serial already prefixed should be kept, got %q", got["رقم_القيد"])
	}
}

func TestResolveThenRender(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC) }
	tpl := newsTemplate()
	values := render.NewResolver(render.WithClock(clock)).Resolve(tpl, render.Inputs{
		Summary:   "Body",
		Extracted: map[string]string{"المصدر": "Reuters"},
		Serial:    "3",
	})

	got := render.NewRenderer(render.WithDialect(render.Plain())).Render(tpl, render.RenderOptions{Values: values})
	want := strings.Join([]string{
		"Date: 2026-10-16",
		"رقم القيد: #3",
		"Specialist: Dr. Ali",
		"التلخيص: Body",
		"المصدر: Reuters",
	}, "\n")
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestExtractionRequests(t *testing.T) {
	got := render.ExtractionRequests(newsTemplate())
	want := []render.ExtractionRequest{{
		FieldName:    "المصدر",
		FieldLabel:   "المصدر",
		Instructions: "channel or outlet",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractionPrompt(t *testing.T) {
	prompt := render.ExtractionPrompt(newsTemplate())
	for _, fragment := range []string{
		"You are a news desk assistant.",
		`- "المصدر" (المصدر): channel or outlet`,
		`{"المصدر": "..."}`,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}

	empty := model.NewTemplate()
	empty.CustomFields = []model.Field{field("date", "Date", model.FieldTypeDateToday)}
	if got := render.ExtractionPrompt(empty); got != "" {
		t.Fatalf("expected empty prompt, got %q", got)
	}
}
