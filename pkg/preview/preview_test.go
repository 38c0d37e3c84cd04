package preview_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
	"github.com/goliatone/go-pubtemplate/pkg/testsupport"
)

func newPreviewer(t *testing.T, options ...preview.Option) *preview.Previewer {
	t.Helper()
	p, err := preview.New(options...)
	if err != nil {
		t.Fatalf("new previewer: %v", err)
	}
	return p
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, output)
		}
	}
}

func TestPreviewer_Draft(t *testing.T) {
	p := newPreviewer(t)
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))
	tpl.CustomFields = model.SortByDisplayOrder(tpl.CustomFields)
	tpl.CustomFields[2].IsActive = false

	var buf bytes.Buffer
	out, err := p.Draft(preview.NewDraftData(tpl, 1, "<b>Morning bulletin</b>"), &buf)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if buf.String() != out {
		t.Fatalf("writer and result differ")
	}

	assertContains(t, out,
		"Template: Morning bulletin #12",
		"Type: news | active: yes | default: yes",
		"Header: Morning bulletin [bold] +newline",
		"Max length: 4096",
		"Fields (3):",
		`  0. date "Date" date_today/none`,
		`* 1. summary "Summary" summary/none`,
		`2. المحافظة "المحافظة" extracted/bold (inactive)`,
		"Sample:\n<b>Morning bulletin</b>",
	)
}

func TestPreviewer_EmptyDraft(t *testing.T) {
	p := newPreviewer(t)
	out, err := p.Draft(preview.NewDraftData(model.NewTemplate(), -1, ""))
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	assertContains(t, out, "Template: (unnamed)", "Max length: unlimited", "Fields (0):", "(no fields yet)")
	if strings.Contains(out, "Sample:") {
		t.Fatalf("empty sample should be omitted:\n%s", out)
	}
}

func TestPreviewer_List(t *testing.T) {
	p := newPreviewer(t)
	tpl := testsupport.MustLoadTemplate(t, testsupport.FixturePath("news_template.json"))
	inactive := model.NewTemplate()
	inactive.ID = 13
	inactive.Name = "Archive"
	inactive.IsActive = false

	out, err := p.List(4, []model.Template{tpl, inactive})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertContains(t, out,
		"Templates of task 4:",
		"#12 Morning bulletin [news] default - 3 fields",
		"#13 Archive [custom] inactive - 0 fields",
	)

	empty, err := p.List(4, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertContains(t, empty, "(none)")
}

func TestPreviewer_Presets(t *testing.T) {
	p := newPreviewer(t)
	out, err := p.Presets(presets.Default())
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	assertContains(t, out, "Preset fields:", "serial_number: رقم_القيد (static, bold)", "date: التاريخ (date_today)")
}

func TestEngine_OverridesAndGlobals(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "list.tpl"), []byte("custom list for {{ taskId }} by {{ operator }}"), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}

	p := newPreviewer(t,
		preview.WithBaseDir(dir),
		preview.WithGlobalData(map[string]any{"operator": "desk"}))

	out, err := p.List(7, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "custom list for 7 by desk" {
		t.Fatalf("expected override, got %q", out)
	}

	draft, err := p.Draft(preview.NewDraftData(model.NewTemplate(), -1, ""))
	if err != nil {
		t.Fatalf("draft falls back to bundled template: %v", err)
	}
	assertContains(t, draft, "Template: (unnamed)")
}

func TestEngine_WithFS(t *testing.T) {
	files := fstest.MapFS{
		"card.txt": &fstest.MapFile{Data: []byte("{{ name|trim }}!")},
	}
	engine, err := preview.NewEngine(preview.WithFS(files), preview.WithExtension("txt"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := engine.RenderTemplate("card", map[string]any{"name": "  News  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "News!" {
		t.Fatalf("unexpected output %q", out)
	}

	inline, err := engine.RenderString("{{ count }} fields", map[string]any{"count": 3})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if inline != "3 fields" {
		t.Fatalf("unexpected inline output %q", inline)
	}

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}
