package composer_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pubtemplate/pkg/composer"
	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
)

type fakePersister struct {
	created []model.Template
	updated []model.Template
	nextID  int64
	err     error
}

func (f *fakePersister) CreateTemplate(_ context.Context, doc model.Template) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.created = append(f.created, doc)
	f.nextID++
	return f.nextID, nil
}

func (f *fakePersister) UpdateTemplate(_ context.Context, id int64, doc model.Template) error {
	if f.err != nil {
		return f.err
	}
	if id != doc.ID {
		return fmt.Errorf("id mismatch: %d vs %d", id, doc.ID)
	}
	f.updated = append(f.updated, doc)
	return nil
}

type rejectingValidator struct{ calls int }

func (v *rejectingValidator) ValidateTemplate(context.Context, model.Template) error {
	v.calls++
	return errors.New("customFields/0/fieldType: value is not one of the allowed values")
}

func staticField(name, label string) model.Field {
	field := model.NewField()
	field.FieldName = name
	field.FieldLabel = label
	field.FieldType = model.FieldTypeStatic
	return field
}

func names(c *composer.Composer) []string {
	var out []string
	for _, field := range c.Fields() {
		out = append(out, field.FieldName)
	}
	return out
}

func assertOrder(t *testing.T, c *composer.Composer) {
	t.Helper()
	seen := map[string]struct{}{}
	for idx, field := range c.Fields() {
		if field.DisplayOrder != idx {
			t.Fatalf("field %q at index %d has displayOrder %d", field.FieldName, idx, field.DisplayOrder)
		}
		if _, dup := seen[field.FieldName]; dup {
			t.Fatalf("duplicate field name %q", field.FieldName)
		}
		seen[field.FieldName] = struct{}{}
	}
}

func datePreset(t *testing.T) presets.Preset {
	t.Helper()
	preset, ok := presets.Default().Lookup("date")
	if !ok {
		t.Fatalf("date preset missing from catalog")
	}
	return preset
}

func TestNew_Defaults(t *testing.T) {
	c := composer.New(composer.WithTaskID(42))
	draft := c.Draft()

	if draft.TaskID != 42 {
		t.Fatalf("expected task id 42, got %d", draft.TaskID)
	}
	if draft.FieldSeparator != "\n" || draft.TemplateType != model.TemplateTypeCustom {
		t.Fatalf("unexpected defaults: %+v", draft)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty draft")
	}
	if _, editing := c.EditingIndex(); editing {
		t.Fatalf("new composer should not be editing")
	}
}

func TestUpsertField_Validation(t *testing.T) {
	cases := []struct {
		name      string
		field     model.Field
		attribute string
	}{
		{name: "missing name", field: staticField("  ", "Label"), attribute: "fieldName"},
		{name: "missing label", field: staticField("name", ""), attribute: "fieldLabel"},
		{
			name: "extracted without instructions",
			field: func() model.Field {
				f := staticField("source", "Source")
				f.FieldType = model.FieldTypeExtracted
				return f
			}(),
			attribute: "extractionInstructions",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := composer.New()
			err := c.UpsertField(tc.field)

			var verr *composer.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Attribute != tc.attribute {
				t.Fatalf("expected attribute %q, got %q", tc.attribute, verr.Attribute)
			}
			if !errors.Is(err, composer.ErrValidation) {
				t.Fatalf("expected errors.Is ErrValidation")
			}
			if c.Len() != 0 {
				t.Fatalf("draft should be unchanged")
			}
		})
	}
}

func TestUpsertField_NonExtractedNeedsNoInstructions(t *testing.T) {
	c := composer.New()
	for _, fieldType := range []model.FieldType{model.FieldTypeSummary, model.FieldTypeDateToday, model.FieldTypeStatic} {
		field := staticField(string(fieldType), "Label")
		field.FieldType = fieldType
		if err := c.UpsertField(field); err != nil {
			t.Fatalf("upsert %s: %v", fieldType, err)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", c.Len())
	}
}

func TestUpsertField_AppendsWithOrder(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"a", "b", "c"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	assertOrder(t, c)
}

func TestUpsertField_NormalizesName(t *testing.T) {
	c := composer.New()
	if err := c.UpsertField(staticField(" news  type ", "News type")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := c.Fields()[0].FieldName; got != "news_type" {
		t.Fatalf("expected normalised name, got %q", got)
	}
}

func TestUpsertField_MergesDuplicateInPlace(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"x", "y"} {
		if err := c.UpsertField(staticField(name, "old")); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := c.UpsertField(staticField("x", "new")); err != nil {
		t.Fatalf("merge upsert: %v", err)
	}

	fields := c.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields after merge, got %d", len(fields))
	}
	if fields[0].FieldName != "x" || fields[0].FieldLabel != "new" || fields[0].DisplayOrder != 0 {
		t.Fatalf("expected x overwritten in place, got %+v", fields[0])
	}
	assertOrder(t, c)
}

func TestUpsertField_EditingReplacesAtIndex(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"a", "b", "c"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := c.Builder().FieldName; got != "b" {
		t.Fatalf("expected builder loaded with b, got %q", got)
	}

	builder := c.Builder()
	builder.FieldName = "renamed"
	builder.FieldLabel = "Renamed"
	c.SetBuilder(builder)
	if err := c.CommitBuilder(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "renamed", "c"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, editing := c.EditingIndex(); editing {
		t.Fatalf("editing state should be cleared")
	}
	if c.Builder().FieldName != "" {
		t.Fatalf("builder should be cleared")
	}
	assertOrder(t, c)
}

func TestUpsertField_EditingRejectsNameOfAnotherField(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"a", "b"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}

	err := c.UpsertField(staticField("a", "clash"))
	if !errors.Is(err, composer.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if idx, editing := c.EditingIndex(); !editing || idx != 1 {
		t.Fatalf("editing state should survive a failed upsert")
	}
	if diff := cmp.Diff([]string{"a", "b"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPresetField_DuplicateLeavesListUnchanged(t *testing.T) {
	c := composer.New()
	date := datePreset(t)

	if err := c.AddPresetField(date); err != nil {
		t.Fatalf("first add: %v", err)
	}
	before := c.Fields()

	err := c.AddPresetField(date)
	var dup *composer.DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateFieldError, got %v", err)
	}
	if dup.FieldName != date.FieldName {
		t.Fatalf("unexpected duplicate name %q", dup.FieldName)
	}
	if !errors.Is(err, composer.ErrDuplicateField) {
		t.Fatalf("expected errors.Is ErrDuplicateField")
	}
	if diff := cmp.Diff(before, c.Fields()); diff != "" {
		t.Fatalf("field list changed (-want +got):\n%s", diff)
	}
	if c.Len() != 1 {
		t.Fatalf("expected a single field, got %d", c.Len())
	}
}

func TestAddPresetField_AppendsPresetDefaults(t *testing.T) {
	c := composer.New()
	if err := c.UpsertField(staticField("first", "First")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	governorate, _ := presets.Default().Lookup("governorate")
	if err := c.AddPresetField(governorate); err != nil {
		t.Fatalf("add preset: %v", err)
	}

	got := c.Fields()[1]
	if got.DisplayOrder != 1 || !got.ShowLabel || got.LabelSeparator != ": " || got.DefaultValue != "" {
		t.Fatalf("unexpected preset field: %+v", got)
	}
	if got.FieldType != model.FieldTypeExtracted || got.ExtractionInstructions == "" {
		t.Fatalf("governorate preset should be extracted with instructions: %+v", got)
	}
}

func TestAllPresetsCanBeAdded(t *testing.T) {
	c := composer.New()
	for _, preset := range presets.Default().All() {
		if err := c.AddPresetField(preset); err != nil {
			t.Fatalf("add %s: %v", preset.Key, err)
		}
	}
	if c.Len() != 8 {
		t.Fatalf("expected 8 fields, got %d", c.Len())
	}
	assertOrder(t, c)
}

func TestRemoveField_Renumbers(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := c.RemoveField(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c", "d"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	assertOrder(t, c)

	if err := c.RemoveField(3); !errors.Is(err, composer.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestRemoveField_EditingState(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"a", "b", "c"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	if err := c.EditField(2); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := c.RemoveField(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if idx, editing := c.EditingIndex(); !editing || idx != 1 {
		t.Fatalf("expected editing index to follow field c to 1, got %d (%v)", idx, editing)
	}

	if err := c.RemoveField(1); err != nil {
		t.Fatalf("remove edited: %v", err)
	}
	if _, editing := c.EditingIndex(); editing {
		t.Fatalf("removing the edited field should clear editing state")
	}
	if c.Builder().FieldName != "" {
		t.Fatalf("builder should be cleared, got %+v", c.Builder())
	}
}

func TestMoveField(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"A", "B", "C"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	c.MoveField(2, composer.Up)
	if diff := cmp.Diff([]string{"A", "C", "B"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	assertOrder(t, c)

	c.MoveField(0, composer.Down)
	if diff := cmp.Diff([]string{"C", "A", "B"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	assertOrder(t, c)
}

func TestMoveField_BoundsAreNoOps(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"A", "B", "C"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	before := c.Fields()

	c.MoveField(0, composer.Up)
	c.MoveField(2, composer.Down)
	c.MoveField(-1, composer.Down)
	c.MoveField(7, composer.Up)
	c.MoveField(1, composer.Direction("sideways"))

	if diff := cmp.Diff(before, c.Fields()); diff != "" {
		t.Fatalf("out of bounds moves changed the draft (-want +got):\n%s", diff)
	}
}

func TestMoveField_EditingFollowsField(t *testing.T) {
	c := composer.New()
	for _, name := range []string{"A", "B", "C"} {
		if err := c.UpsertField(staticField(name, name)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	c.MoveField(1, composer.Down)
	if idx, _ := c.EditingIndex(); idx != 2 {
		t.Fatalf("expected editing index 2 after move, got %d", idx)
	}
	c.MoveField(1, composer.Down)
	if idx, _ := c.EditingIndex(); idx != 1 {
		t.Fatalf("expected editing index 1 after neighbour move, got %d", idx)
	}
}

func TestOperationSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := composer.New()
	catalog := presets.Default().All()

	for step := 0; step < 2000; step++ {
		switch rng.Intn(5) {
		case 0:
			name := fmt.Sprintf("f%d", rng.Intn(12))
			_ = c.UpsertField(staticField(name, fmt.Sprintf("label %d", step)))
		case 1:
			_ = c.AddPresetField(catalog[rng.Intn(len(catalog))])
		case 2:
			if c.Len() > 0 {
				_ = c.RemoveField(rng.Intn(c.Len()))
			}
		case 3:
			direction := composer.Up
			if rng.Intn(2) == 0 {
				direction = composer.Down
			}
			c.MoveField(rng.Intn(c.Len()+1), direction)
		case 4:
			if c.Len() > 0 {
				_ = c.EditField(rng.Intn(c.Len()))
			}
		}
		assertOrder(t, c)
	}
}

func TestSubmit_EmptyDraftSkipsPersister(t *testing.T) {
	persister := &fakePersister{}
	c := composer.New(composer.WithPersister(persister))
	c.SetMetadata(func(tpl *model.Template) { tpl.Name = "News" })

	err := c.Submit(context.Background())
	if !errors.Is(err, composer.ErrIncompleteTemplate) {
		t.Fatalf("expected ErrIncompleteTemplate, got %v", err)
	}
	if len(persister.created)+len(persister.updated) != 0 {
		t.Fatalf("persister must not be called")
	}
}

func TestSubmit_CreateThenUpdate(t *testing.T) {
	persister := &fakePersister{nextID: 99}
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	c := composer.New(
		composer.WithPersister(persister),
		composer.WithTaskID(5),
		composer.WithClock(func() time.Time { return now }),
	)
	c.SetMetadata(func(tpl *model.Template) {
		tpl.Name = "Daily"
		tpl.HeaderText = "Bulletin"
		tpl.CustomFields = nil
	})
	if err := c.AddPresetField(datePreset(t)); err != nil {
		t.Fatalf("add preset: %v", err)
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(persister.created) != 1 {
		t.Fatalf("expected one create, got %d", len(persister.created))
	}
	sent := persister.created[0]
	if sent.TaskID != 5 || sent.HeaderText != "Bulletin" || len(sent.CustomFields) != 1 {
		t.Fatalf("unexpected document sent: %+v", sent)
	}
	if got := c.Draft().ID; got != 100 {
		t.Fatalf("expected draft id 100, got %d", got)
	}
	if !c.SavedAt().Equal(now) {
		t.Fatalf("expected saved at %v, got %v", now, c.SavedAt())
	}

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if len(persister.updated) != 1 || persister.updated[0].ID != 100 {
		t.Fatalf("expected update of template 100, got %+v", persister.updated)
	}
}

func TestSubmit_PersistenceErrorLeavesDraft(t *testing.T) {
	cause := errors.New("connection refused")
	persister := &fakePersister{err: cause}
	c := composer.New(composer.WithPersister(persister))
	c.SetMetadata(func(tpl *model.Template) { tpl.Name = "News" })
	if err := c.UpsertField(staticField("a", "A")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	before := c.Draft()

	err := c.Submit(context.Background())
	var perr *composer.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Op != "create" || !errors.Is(err, cause) || !errors.Is(err, composer.ErrPersistence) {
		t.Fatalf("unexpected persistence error: %v", err)
	}
	if diff := cmp.Diff(before, c.Draft()); diff != "" {
		t.Fatalf("draft changed after failure (-want +got):\n%s", diff)
	}
	if !c.SavedAt().IsZero() {
		t.Fatalf("failed submit must not stamp SavedAt")
	}
}

func TestSubmit_RequiresName(t *testing.T) {
	persister := &fakePersister{}
	c := composer.New(composer.WithPersister(persister))
	if err := c.UpsertField(staticField("a", "A")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err := c.Submit(context.Background())
	var verr *composer.ValidationError
	if !errors.As(err, &verr) || verr.Attribute != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}
	if len(persister.created) != 0 {
		t.Fatalf("persister must not be called")
	}
}

func TestSubmit_ValidatorRejects(t *testing.T) {
	persister := &fakePersister{}
	validator := &rejectingValidator{}
	c := composer.New(composer.WithPersister(persister), composer.WithValidator(validator))
	c.SetMetadata(func(tpl *model.Template) { tpl.Name = "News" })
	if err := c.UpsertField(staticField("a", "A")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := c.Submit(context.Background()); !errors.Is(err, composer.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validator.calls != 1 || len(persister.created) != 0 {
		t.Fatalf("validator should run once and block the create")
	}
}

func TestFromTemplate_SortsAndRenumbers(t *testing.T) {
	tpl := model.NewTemplate()
	tpl.ID = 12
	tpl.Name = "Stored"
	tpl.CustomFields = []model.Field{
		staticFieldWithOrder("late", 9),
		staticFieldWithOrder("early", 2),
	}

	c := composer.FromTemplate(tpl)
	if diff := cmp.Diff([]string{"early", "late"}, names(c)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	assertOrder(t, c)

	c.SetMetadata(func(draft *model.Template) {
		draft.ID = 0
		draft.Name = "Edited"
	})
	if got := c.Draft(); got.ID != 12 || got.Name != "Edited" {
		t.Fatalf("SetMetadata must keep the persisted id: %+v", got)
	}
	if tpl.CustomFields[0].FieldName != "late" {
		t.Fatalf("source template must not be mutated")
	}
}

func TestReset(t *testing.T) {
	c := composer.New(composer.WithTaskID(3))
	if err := c.UpsertField(staticField("a", "A")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	c.Reset()
	if c.Len() != 0 || c.Draft().TaskID != 3 {
		t.Fatalf("reset should empty the draft and keep the task: %+v", c.Draft())
	}
}

func staticFieldWithOrder(name string, order int) model.Field {
	field := staticField(name, name)
	field.DisplayOrder = order
	return field
}
