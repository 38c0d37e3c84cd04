package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/api"
	"github.com/goliatone/go-pubtemplate/pkg/composer"
	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/openapi"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
	"github.com/goliatone/go-pubtemplate/pkg/preview"
	"github.com/goliatone/go-pubtemplate/pkg/render"
)

type action int

const (
	actionSettings action = iota
	actionAddPreset
	actionAddField
	actionEditField
	actionRemoveField
	actionMoveUp
	actionMoveDown
	actionPreview
	actionSample
	actionPrompt
	actionSubmit
	actionQuit
)

var actionLabels = []string{
	"Edit template settings",
	"Add preset field",
	"Add custom field",
	"Edit field",
	"Remove field",
	"Move field up",
	"Move field down",
	"Preview draft",
	"Render sample",
	"Show extraction prompt",
	"Submit",
	"Quit",
}

var errNoFields = errors.New("the template has no fields yet")

// promptError marks failures of the prompt driver itself; they end the
// session instead of being reported.
type promptError struct {
	err error
}

func (e *promptError) Error() string { return e.err.Error() }

func (e *promptError) Unwrap() error { return e.err }

// Session is an interactive edit session over one Composer.
type Session struct {
	id        string
	composer  *composer.Composer
	driver    PromptDriver
	catalog   *presets.Catalog
	previewer *preview.Previewer
	renderer  *render.Renderer
	resolver  *render.Resolver
	logger    *zap.Logger
	theme     Theme
	now       func() time.Time
	dirty     bool
}

// NewSession prepares a session for c.
func NewSession(c *composer.Composer, options ...Option) (*Session, error) {
	if c == nil {
		return nil, ErrNoComposer
	}
	s := &Session{
		id:       uuid.NewString(),
		composer: c,
		catalog:  presets.Default(),
		renderer: render.NewRenderer(),
		logger:   zap.NewNop(),
		theme:    DefaultTheme,
		now:      time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	if s.previewer == nil {
		p, err := preview.New()
		if err != nil {
			return nil, err
		}
		s.previewer = p
	}
	if s.resolver == nil {
		s.resolver = render.NewResolver(render.WithClock(s.now))
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Composer returns the composer the session edits.
func (s *Session) Composer() *composer.Composer {
	return s.composer
}

// Run shows the action menu until the user quits. Composer and API errors
// are reported and the loop continues; prompt failures, aborts, and a done
// ctx end the session.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("tui: session started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		choice, err := s.selectOne(ctx, SelectConfig{
			Message:  s.menuTitle(),
			Options:  actionLabels,
			PageSize: len(actionLabels),
		})
		if err != nil {
			return s.end(err)
		}

		selected := action(choice)
		if selected == actionQuit {
			leave, err := s.confirmQuit(ctx)
			if err != nil {
				return s.end(err)
			}
			if leave {
				return s.end(nil)
			}
			continue
		}

		if err := s.dispatch(ctx, selected); err != nil {
			var perr *promptError
			if errors.As(err, &perr) || ctx.Err() != nil {
				return s.end(err)
			}
			if err := s.report(ctx, err); err != nil {
				return s.end(err)
			}
		}
	}
}

func (s *Session) end(err error) error {
	var perr *promptError
	if errors.As(err, &perr) {
		err = perr.err
	}
	if err != nil {
		s.logger.Info("tui: session ended", zap.Error(err))
		return err
	}
	s.logger.Info("tui: session ended")
	return nil
}

func (s *Session) dispatch(ctx context.Context, selected action) error {
	switch selected {
	case actionSettings:
		return s.editSettings(ctx)
	case actionAddPreset:
		return s.addPreset(ctx)
	case actionAddField:
		return s.fieldFlow(ctx)
	case actionEditField:
		return s.editField(ctx)
	case actionRemoveField:
		return s.removeField(ctx)
	case actionMoveUp:
		return s.moveField(ctx, composer.Up)
	case actionMoveDown:
		return s.moveField(ctx, composer.Down)
	case actionPreview:
		return s.preview(ctx)
	case actionSample:
		return s.renderSample(ctx)
	case actionPrompt:
		return s.extractionPrompt(ctx)
	case actionSubmit:
		return s.submit(ctx)
	default:
		return fmt.Errorf("unknown action %d", selected)
	}
}

func (s *Session) menuTitle() string {
	draft := s.composer.Draft()
	name := draft.Name
	if name == "" {
		name = "New template"
	}
	title := fmt.Sprintf("%s (%d fields)", name, len(draft.CustomFields))
	if idx, ok := s.composer.EditingIndex(); ok {
		title += fmt.Sprintf(", editing #%d", idx)
	}
	if s.dirty {
		title += " *"
	}
	return title
}

func (s *Session) editSettings(ctx context.Context) error {
	draft := s.composer.Draft()

	name, err := s.input(ctx, InputConfig{Message: "Template name", Default: draft.Name, Validator: required})
	if err != nil {
		return err
	}
	templateType, err := s.selectEnum(ctx, "Template type", templateTypeOptions(), string(draft.TemplateType))
	if err != nil {
		return err
	}
	header, err := s.input(ctx, InputConfig{Message: "Header text", Default: draft.HeaderText})
	if err != nil {
		return err
	}
	headerFormatting, err := s.selectEnum(ctx, "Header formatting", formattingOptions(), string(draft.HeaderFormatting))
	if err != nil {
		return err
	}
	footer, err := s.input(ctx, InputConfig{Message: "Footer text", Default: draft.FooterText})
	if err != nil {
		return err
	}
	footerFormatting, err := s.selectEnum(ctx, "Footer formatting", formattingOptions(), string(draft.FooterFormatting))
	if err != nil {
		return err
	}
	separator, err := s.input(ctx, InputConfig{
		Message: "Field separator",
		Default: escapeSeparator(draft.FieldSeparator),
		Help:    `Use \n for a line break.`,
	})
	if err != nil {
		return err
	}
	afterHeader, err := s.confirm(ctx, ConfirmConfig{Message: "Line break after the header?", Default: draft.UseNewlineAfterHeader})
	if err != nil {
		return err
	}
	beforeFooter, err := s.confirm(ctx, ConfirmConfig{Message: "Line break before the footer?", Default: draft.UseNewlineBeforeFooter})
	if err != nil {
		return err
	}
	rawMax, err := s.input(ctx, InputConfig{
		Message:   "Maximum length",
		Default:   formatMaxLength(draft.MaxLength),
		Help:      "Leave empty for no limit.",
		Validator: validateMaxLength,
	})
	if err != nil {
		return err
	}
	maxLength, err := parseMaxLength(rawMax)
	if err != nil {
		return err
	}
	isDefault, err := s.confirm(ctx, ConfirmConfig{Message: "Default template of the task?", Default: draft.IsDefault})
	if err != nil {
		return err
	}
	isActive, err := s.confirm(ctx, ConfirmConfig{Message: "Template active?", Default: draft.IsActive})
	if err != nil {
		return err
	}
	prompt, err := s.textArea(ctx, TextAreaConfig{Message: "Extraction prompt", Default: draft.ExtractionPrompt})
	if err != nil {
		return err
	}

	s.composer.SetMetadata(func(tpl *model.Template) {
		tpl.Name = strings.TrimSpace(name)
		tpl.TemplateType = model.TemplateType(templateType)
		tpl.HeaderText = header
		tpl.HeaderFormatting = model.Formatting(headerFormatting)
		tpl.FooterText = footer
		tpl.FooterFormatting = model.Formatting(footerFormatting)
		tpl.FieldSeparator = unescapeSeparator(separator)
		tpl.UseNewlineAfterHeader = afterHeader
		tpl.UseNewlineBeforeFooter = beforeFooter
		tpl.MaxLength = maxLength
		tpl.IsDefault = isDefault
		tpl.IsActive = isActive
		tpl.ExtractionPrompt = strings.TrimSpace(prompt)
	})
	s.dirty = true
	return s.info(ctx, "Template settings updated.")
}

func (s *Session) addPreset(ctx context.Context) error {
	all := s.catalog.All()
	if len(all) == 0 {
		return s.info(ctx, "No preset fields are available.")
	}
	options := make([]string, 0, len(all))
	for _, preset := range all {
		options = append(options, fmt.Sprintf("%s: %s", preset.Key, preset.FieldLabel))
	}
	idx, err := s.selectOne(ctx, SelectConfig{Message: "Preset field", Options: options})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(all) {
		return nil
	}

	preset := all[idx]
	if err := s.composer.AddPresetField(preset); err != nil {
		return err
	}
	s.dirty = true
	return s.info(ctx, fmt.Sprintf("Added preset field %q.", preset.FieldName))
}

func (s *Session) fieldFlow(ctx context.Context) error {
	current := s.composer.Builder()

	name, err := s.input(ctx, InputConfig{Message: "Field name", Default: current.FieldName, Validator: required})
	if err != nil {
		return err
	}
	labelDefault := current.FieldLabel
	if labelDefault == "" {
		labelDefault = model.DefaultLabeler(model.NormalizeFieldName(name))
	}
	label, err := s.input(ctx, InputConfig{Message: "Field label", Default: labelDefault, Validator: required})
	if err != nil {
		return err
	}
	fieldType, err := s.selectEnum(ctx, "Field type", fieldTypeOptions(), string(current.FieldType))
	if err != nil {
		return err
	}
	instructions := current.ExtractionInstructions
	if model.FieldType(fieldType) == model.FieldTypeExtracted {
		instructions, err = s.textArea(ctx, TextAreaConfig{
			Message: "Extraction instructions",
			Default: current.ExtractionInstructions,
			Help:    "What the extraction step should look for in the text.",
		})
		if err != nil {
			return err
		}
	}
	defaultValue, err := s.input(ctx, InputConfig{Message: "Default value", Default: current.DefaultValue})
	if err != nil {
		return err
	}
	useDefault, err := s.confirm(ctx, ConfirmConfig{Message: "Use the default value when empty?", Default: current.UseDefaultIfEmpty})
	if err != nil {
		return err
	}
	formatting, err := s.selectEnum(ctx, "Formatting", formattingOptions(), string(current.Formatting))
	if err != nil {
		return err
	}
	showLabel, err := s.confirm(ctx, ConfirmConfig{Message: "Show the label?", Default: current.ShowLabel})
	if err != nil {
		return err
	}
	labelSeparator := current.LabelSeparator
	if showLabel {
		labelSeparator, err = s.input(ctx, InputConfig{Message: "Label separator", Default: current.LabelSeparator})
		if err != nil {
			return err
		}
	}
	prefix, err := s.input(ctx, InputConfig{Message: "Prefix", Default: current.Prefix})
	if err != nil {
		return err
	}
	suffix, err := s.input(ctx, InputConfig{Message: "Suffix", Default: current.Suffix})
	if err != nil {
		return err
	}
	active, err := s.confirm(ctx, ConfirmConfig{Message: "Field active?", Default: current.IsActive})
	if err != nil {
		return err
	}

	field := current
	field.FieldName = name
	field.FieldLabel = strings.TrimSpace(label)
	field.FieldType = model.FieldType(fieldType)
	field.ExtractionInstructions = strings.TrimSpace(instructions)
	field.DefaultValue = defaultValue
	field.UseDefaultIfEmpty = useDefault
	field.Formatting = model.Formatting(formatting)
	field.ShowLabel = showLabel
	field.LabelSeparator = labelSeparator
	field.Prefix = prefix
	field.Suffix = suffix
	field.IsActive = active

	s.composer.SetBuilder(field)
	if err := s.composer.CommitBuilder(); err != nil {
		return err
	}
	s.dirty = true
	return s.info(ctx, fmt.Sprintf("Saved field %q.", model.NormalizeFieldName(name)))
}

func (s *Session) editField(ctx context.Context) error {
	idx, err := s.pickField(ctx, "Field to edit")
	if err != nil {
		return err
	}
	if err := s.composer.EditField(idx); err != nil {
		return err
	}
	return s.fieldFlow(ctx)
}

func (s *Session) removeField(ctx context.Context) error {
	idx, err := s.pickField(ctx, "Field to remove")
	if err != nil {
		return err
	}
	name := s.composer.Fields()[idx].FieldName
	if err := s.composer.RemoveField(idx); err != nil {
		return err
	}
	s.dirty = true
	return s.info(ctx, fmt.Sprintf("Removed field %q.", name))
}

func (s *Session) moveField(ctx context.Context, direction composer.Direction) error {
	idx, err := s.pickField(ctx, "Field to move "+string(direction))
	if err != nil {
		return err
	}
	before := s.composer.Fields()[idx].FieldName
	s.composer.MoveField(idx, direction)
	if s.composer.Fields()[idx].FieldName == before {
		return s.info(ctx, fmt.Sprintf("Field %q cannot move %s.", before, direction))
	}
	s.dirty = true
	return nil
}

func (s *Session) pickField(ctx context.Context, message string) (int, error) {
	fields := s.composer.Fields()
	if len(fields) == 0 {
		return 0, errNoFields
	}
	options := make([]string, 0, len(fields))
	for idx, field := range fields {
		options = append(options, fmt.Sprintf("%d. %s (%s)", idx+1, field.FieldName, field.FieldLabel))
	}
	idx, err := s.selectOne(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(fields) {
		return 0, fmt.Errorf("%w: %d", composer.ErrIndexOutOfRange, idx)
	}
	return idx, nil
}

func (s *Session) preview(ctx context.Context) error {
	draft := s.composer.Draft()
	editing, ok := s.composer.EditingIndex()
	if !ok {
		editing = -1
	}

	extracted := make(map[string]string)
	for _, field := range draft.CustomFields {
		extracted[field.FieldName] = "[" + field.FieldLabel + "]"
	}
	values := s.resolver.Resolve(draft, render.Inputs{
		Summary:   "[summary]",
		Extracted: extracted,
		Serial:    "1",
	})
	sample := ""
	if len(draft.CustomFields) > 0 {
		sample = s.renderer.Render(draft, render.RenderOptions{Values: values, Fallback: "[original text]"})
	}

	out, err := s.previewer.Draft(preview.NewDraftData(draft, editing, sample))
	if err != nil {
		return err
	}
	return s.info(ctx, strings.TrimRight(out, "\n"))
}

func (s *Session) renderSample(ctx context.Context) error {
	draft := s.composer.Draft()
	if len(draft.CustomFields) == 0 {
		return errNoFields
	}

	text, err := s.textArea(ctx, TextAreaConfig{Message: "Sample text", Help: "Used as the summary and as the inactive fallback."})
	if err != nil {
		return err
	}
	extracted := make(map[string]string)
	for _, req := range render.ExtractionRequests(draft) {
		value, err := s.input(ctx, InputConfig{Message: fmt.Sprintf("Value for %s", req.FieldLabel), Help: req.Instructions})
		if err != nil {
			return err
		}
		extracted[req.FieldName] = value
	}
	serial, err := s.input(ctx, InputConfig{Message: "Serial number", Help: "Leave empty when the item has none."})
	if err != nil {
		return err
	}

	values := s.resolver.Resolve(draft, render.Inputs{
		Summary:   text,
		Extracted: extracted,
		Serial:    serial,
		Now:       s.now(),
	})
	rendered := s.renderer.Render(draft, render.RenderOptions{Values: values, Fallback: text})
	return s.info(ctx, rendered)
}

func (s *Session) extractionPrompt(ctx context.Context) error {
	prompt := render.ExtractionPrompt(s.composer.Draft())
	if prompt == "" {
		return s.info(ctx, "No field needs extraction.")
	}
	return s.info(ctx, prompt)
}

func (s *Session) submit(ctx context.Context) error {
	if err := s.composer.Submit(ctx); err != nil {
		return err
	}
	s.dirty = false
	return s.info(ctx, fmt.Sprintf("Saved template #%d.", s.composer.Draft().ID))
}

func (s *Session) confirmQuit(ctx context.Context) (bool, error) {
	if !s.dirty {
		return true, nil
	}
	return s.confirm(ctx, ConfirmConfig{Message: "Discard unsaved changes?", Default: false})
}

// report prints err and, for API or document validation failures, the
// messages mapped onto the draft's fields.
func (s *Session) report(ctx context.Context, err error) error {
	s.logger.Warn("tui: action failed", zap.Error(err))

	lines := []string{s.theme.ErrorPrefix + err.Error()}
	draft := s.composer.Draft()

	var apiErr *api.APIError
	var invalid *openapi.ValidationError
	switch {
	case errors.As(err, &apiErr):
		lines = append(lines, mappingLines(apiErr.Mapping(draft))...)
	case errors.As(err, &invalid):
		lines = append(lines, mappingLines(render.MapErrorPayload(draft, invalid.Payload()))...)
	}
	return s.driver.Info(ctx, strings.Join(lines, "\n"))
}

func mappingLines(mapping render.ErrorMapping) []string {
	var lines []string
	for _, name := range sortedKeys(mapping.Fields) {
		lines = append(lines, fmt.Sprintf("  field %s: %s", name, strings.Join(mapping.Fields[name], "; ")))
	}
	for _, name := range sortedKeys(mapping.Attributes) {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, strings.Join(mapping.Attributes[name], "; ")))
	}
	for _, message := range mapping.Template {
		lines = append(lines, "  "+message)
	}
	return lines
}

func sortedKeys(in map[string][]string) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Session) info(ctx context.Context, msg string) error {
	if err := s.driver.Info(ctx, s.theme.InfoPrefix+msg); err != nil {
		return &promptError{err: err}
	}
	return nil
}

func (s *Session) input(ctx context.Context, cfg InputConfig) (string, error) {
	out, err := s.driver.Input(ctx, cfg)
	if err != nil {
		return "", &promptError{err: err}
	}
	return out, nil
}

func (s *Session) textArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	out, err := s.driver.TextArea(ctx, cfg)
	if err != nil {
		return "", &promptError{err: err}
	}
	return out, nil
}

func (s *Session) confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	out, err := s.driver.Confirm(ctx, cfg)
	if err != nil {
		return false, &promptError{err: err}
	}
	return out, nil
}

func (s *Session) selectOne(ctx context.Context, cfg SelectConfig) (int, error) {
	out, err := s.driver.Select(ctx, cfg)
	if err != nil {
		return 0, &promptError{err: err}
	}
	return out, nil
}

func (s *Session) selectEnum(ctx context.Context, message string, options []string, current string) (string, error) {
	idx, err := s.selectOne(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: indexOf(options, current),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return current, nil
	}
	return options[idx], nil
}

func templateTypeOptions() []string {
	out := make([]string, 0, len(model.TemplateTypes()))
	for _, value := range model.TemplateTypes() {
		out = append(out, string(value))
	}
	return out
}

func fieldTypeOptions() []string {
	out := make([]string, 0, len(model.FieldTypes()))
	for _, value := range model.FieldTypes() {
		out = append(out, string(value))
	}
	return out
}

func formattingOptions() []string {
	out := make([]string, 0, len(model.Formattings()))
	for _, value := range model.Formattings() {
		out = append(out, string(value))
	}
	return out
}

func required(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

var (
	separatorEscaper   = strings.NewReplacer("\n", `\n`, "\t", `\t`)
	separatorUnescaper = strings.NewReplacer(`\n`, "\n", `\t`, "\t")
)

func escapeSeparator(sep string) string {
	return separatorEscaper.Replace(sep)
}

func unescapeSeparator(sep string) string {
	return separatorUnescaper.Replace(sep)
}

func formatMaxLength(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func validateMaxLength(raw string) error {
	_, err := parseMaxLength(raw)
	return err
}

func parseMaxLength(raw string) (*int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil || value <= 0 {
		return nil, &composer.ValidationError{Attribute: "maxLength", Reason: "must be a positive integer"}
	}
	return &value, nil
}
