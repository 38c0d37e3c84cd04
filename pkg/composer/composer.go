package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
)

// Direction selects the neighbour MoveField swaps with.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

const (
	noEditing = -1
	notFound  = -1
)

// Composer owns a single draft template for one edit session. It holds the
// draft, a field builder, and the index of the field being edited, if any.
// A Composer is not safe for concurrent use; each session owns its own.
type Composer struct {
	draft     model.Template
	builder   model.Field
	editing   int
	persister Persister
	validator DocumentValidator
	logger    *zap.Logger
	now       func() time.Time
	savedAt   time.Time
}

// New starts an empty draft populated with the template defaults.
func New(options ...Option) *Composer {
	c := &Composer{
		draft:   model.NewTemplate(),
		builder: model.NewField(),
		editing: noEditing,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// FromTemplate starts a draft copied from a persisted template. Fields are
// ordered by their stored displayOrder and renumbered so the draft starts
// with a contiguous order.
func FromTemplate(tpl model.Template, options ...Option) *Composer {
	c := New(options...)
	draft := tpl.Clone()
	draft.CustomFields = model.SortByDisplayOrder(draft.CustomFields)
	if draft.TaskID == 0 {
		draft.TaskID = c.draft.TaskID
	}
	c.draft = draft
	return c
}

// Draft returns a deep copy of the current draft.
func (c *Composer) Draft() model.Template {
	return c.draft.Clone()
}

// Fields returns a copy of the draft's field list in render order.
func (c *Composer) Fields() []model.Field {
	return append([]model.Field{}, c.draft.CustomFields...)
}

// Len reports the number of fields in the draft.
func (c *Composer) Len() int {
	return len(c.draft.CustomFields)
}

// SetMetadata applies fn to the draft's template-level attributes. Changes
// fn makes to CustomFields are discarded; use the field operations instead.
func (c *Composer) SetMetadata(fn func(*model.Template)) {
	if fn == nil {
		return
	}
	fields := c.draft.CustomFields
	id := c.draft.ID
	fn(&c.draft)
	c.draft.CustomFields = fields
	c.draft.ID = id
}

// Builder returns the in-progress field.
func (c *Composer) Builder() model.Field {
	return c.builder
}

// SetBuilder replaces the in-progress field.
func (c *Composer) SetBuilder(field model.Field) {
	c.builder = field
}

// EditingIndex returns the index being edited and whether editing is active.
func (c *Composer) EditingIndex() (int, bool) {
	return c.editing, c.editing != noEditing
}

// EditField loads the field at index into the builder; the next UpsertField
// replaces that entry instead of appending.
func (c *Composer) EditField(index int) error {
	if index < 0 || index >= len(c.draft.CustomFields) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	c.builder = c.draft.CustomFields[index]
	c.editing = index
	return nil
}

// CancelEdit clears the builder and editing state.
func (c *Composer) CancelEdit() {
	c.resetBuilder()
}

// CommitBuilder upserts the current builder contents.
func (c *Composer) CommitBuilder() error {
	return c.UpsertField(c.builder)
}

// UpsertField validates candidate and writes it into the draft. When a field
// is being edited the candidate replaces it; otherwise a field with the same
// fieldName is overwritten in place, and a new name is appended. The
// replaced entry keeps its displayOrder. Builder and editing state are
// cleared on success.
func (c *Composer) UpsertField(candidate model.Field) error {
	candidate.FieldName = model.NormalizeFieldName(candidate.FieldName)
	if err := validateCandidate(candidate); err != nil {
		return err
	}
	if candidate.Formatting == "" {
		candidate.Formatting = model.FormattingNone
	}

	fields := c.draft.CustomFields
	existing := c.draft.IndexOf(candidate.FieldName)

	switch {
	case c.editing != noEditing:
		if c.editing >= len(fields) {
			c.resetBuilder()
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.editing)
		}
		if existing != notFound && existing != c.editing {
			return &ValidationError{
				Attribute: "fieldName",
				Reason:    fmt.Sprintf("%q is already used by another field", candidate.FieldName),
			}
		}
		candidate.DisplayOrder = fields[c.editing].DisplayOrder
		fields[c.editing] = candidate
		c.logger.Debug("composer: field replaced",
			zap.String("field", candidate.FieldName), zap.Int("index", c.editing))
	case existing != notFound:
		candidate.DisplayOrder = fields[existing].DisplayOrder
		fields[existing] = candidate
		c.logger.Debug("composer: field merged",
			zap.String("field", candidate.FieldName), zap.Int("index", existing))
	default:
		candidate.DisplayOrder = len(fields)
		c.draft.CustomFields = append(fields, candidate)
		c.logger.Debug("composer: field appended",
			zap.String("field", candidate.FieldName), zap.Int("index", candidate.DisplayOrder))
	}

	c.resetBuilder()
	return nil
}

// AddPresetField appends the field described by preset. Unlike UpsertField
// it never overwrites: a present fieldName yields *DuplicateFieldError and
// the draft is unchanged.
func (c *Composer) AddPresetField(preset presets.Preset) error {
	field := preset.Field()
	field.FieldName = model.NormalizeFieldName(field.FieldName)
	if c.draft.IndexOf(field.FieldName) != notFound {
		c.logger.Debug("composer: preset already present", zap.String("field", field.FieldName))
		return &DuplicateFieldError{FieldName: field.FieldName}
	}
	if err := validateCandidate(field); err != nil {
		return err
	}
	field.DisplayOrder = len(c.draft.CustomFields)
	c.draft.CustomFields = append(c.draft.CustomFields, field)
	c.logger.Debug("composer: preset added",
		zap.String("preset", preset.Key), zap.String("field", field.FieldName))
	return nil
}

// RemoveField deletes the field at index and renumbers the rest. Removing
// the field being edited clears the builder.
func (c *Composer) RemoveField(index int) error {
	fields := c.draft.CustomFields
	if index < 0 || index >= len(fields) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	removed := fields[index].FieldName
	c.draft.CustomFields = append(fields[:index:index], fields[index+1:]...)
	model.Renumber(c.draft.CustomFields)

	switch {
	case c.editing == index:
		c.resetBuilder()
	case c.editing > index:
		c.editing--
	}
	c.logger.Debug("composer: field removed", zap.String("field", removed), zap.Int("index", index))
	return nil
}

// MoveField swaps the field at index with its neighbour in direction. Moves
// past either end, unknown directions, and invalid indexes are no-ops.
func (c *Composer) MoveField(index int, direction Direction) {
	fields := c.draft.CustomFields
	if index < 0 || index >= len(fields) {
		return
	}
	target := index
	switch direction {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return
	}
	if target < 0 || target >= len(fields) {
		return
	}

	fields[index], fields[target] = fields[target], fields[index]
	fields[index].DisplayOrder = index
	fields[target].DisplayOrder = target

	switch c.editing {
	case index:
		c.editing = target
	case target:
		c.editing = index
	}
	c.logger.Debug("composer: field moved",
		zap.String("field", fields[target].FieldName), zap.Int("from", index), zap.Int("to", target))
}

// Submit sends the whole draft to the persister, creating it when it has no
// id and updating it otherwise. The draft is only modified on success, when
// a newly created template receives its id.
func (c *Composer) Submit(ctx context.Context) error {
	if len(c.draft.CustomFields) == 0 {
		return ErrIncompleteTemplate
	}
	if problems := model.TemplateProblems(c.draft); len(problems) > 0 {
		first := problems[0]
		attribute := first.Attribute
		if first.Field != "" {
			attribute = first.Field + "." + first.Attribute
		}
		return &ValidationError{Attribute: attribute, Reason: first.Reason}
	}
	if c.persister == nil {
		return &PersistenceError{Op: "submit", Err: errors.New("no persister configured")}
	}

	doc := c.draft.Clone()
	if c.validator != nil {
		if err := c.validator.ValidateTemplate(ctx, doc); err != nil {
			c.logger.Debug("composer: document rejected", zap.Error(err))
			return &ValidationError{Reason: err.Error(), Err: err}
		}
	}

	if doc.IsPersisted() {
		if err := c.persister.UpdateTemplate(ctx, doc.ID, doc); err != nil {
			c.logger.Warn("composer: update failed", zap.Int64("template", doc.ID), zap.Error(err))
			return &PersistenceError{Op: "update", Err: err}
		}
		c.logger.Info("composer: template updated", zap.Int64("template", doc.ID))
	} else {
		id, err := c.persister.CreateTemplate(ctx, doc)
		if err != nil {
			c.logger.Warn("composer: create failed", zap.String("name", doc.Name), zap.Error(err))
			return &PersistenceError{Op: "create", Err: err}
		}
		c.draft.ID = id
		c.logger.Info("composer: template created", zap.Int64("template", id), zap.String("name", doc.Name))
	}
	c.savedAt = c.now()
	return nil
}

// SavedAt returns when Submit last succeeded, or the zero time.
func (c *Composer) SavedAt() time.Time {
	return c.savedAt
}

// Reset discards the draft and starts a new one for the same task.
func (c *Composer) Reset() {
	taskID := c.draft.TaskID
	c.draft = model.NewTemplate()
	c.draft.TaskID = taskID
	c.savedAt = time.Time{}
	c.resetBuilder()
}

func (c *Composer) resetBuilder() {
	c.builder = model.NewField()
	c.editing = noEditing
}

func validateCandidate(field model.Field) error {
	if strings.TrimSpace(field.FieldName) == "" {
		return &ValidationError{Attribute: "fieldName", Reason: "is required"}
	}
	if strings.TrimSpace(field.FieldLabel) == "" {
		return &ValidationError{Attribute: "fieldLabel", Reason: "is required"}
	}
	if field.FieldType == "" {
		return &ValidationError{Attribute: "fieldType", Reason: "is required"}
	}
	if problems := model.FieldProblems(field); len(problems) > 0 {
		return &ValidationError{Attribute: problems[0].Attribute, Reason: problems[0].Reason}
	}
	return nil
}
