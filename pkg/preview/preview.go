package preview

import (
	"io"

	"github.com/goliatone/go-pubtemplate/pkg/model"
	"github.com/goliatone/go-pubtemplate/pkg/presets"
)

// Template names of the bundled views.
const (
	DraftView   = "draft"
	ListView    = "list"
	PresetsView = "presets"
)

// Previewer renders the human-readable views of drafts, template lists and
// the preset catalog.
type Previewer struct {
	engine *Engine
}

// New builds a Previewer. Options are passed to NewEngine.
func New(options ...Option) (*Previewer, error) {
	engine, err := NewEngine(options...)
	if err != nil {
		return nil, err
	}
	return &Previewer{engine: engine}, nil
}

// Engine returns the underlying template engine.
func (p *Previewer) Engine() *Engine {
	return p.engine
}

// DraftData is the view model of the draft view.
type DraftData struct {
	Template model.Template `json:"template"`
	Fields   []FieldRow     `json:"fields"`
	Sample   string         `json:"sample,omitempty"`
}

// FieldRow is one field line of the draft view.
type FieldRow struct {
	FieldName    string           `json:"fieldName"`
	FieldLabel   string           `json:"fieldLabel"`
	FieldType    model.FieldType  `json:"fieldType"`
	Formatting   model.Formatting `json:"formatting"`
	DisplayOrder int              `json:"displayOrder"`
	IsActive     bool             `json:"isActive"`
	Editing      bool             `json:"editing"`
}

// NewDraftData builds the draft view model. editing is the index of the
// field being edited, or a negative value.
func NewDraftData(tpl model.Template, editing int, sample string) DraftData {
	rows := make([]FieldRow, 0, len(tpl.CustomFields))
	for idx, field := range tpl.CustomFields {
		rows = append(rows, FieldRow{
			FieldName:    field.FieldName,
			FieldLabel:   field.FieldLabel,
			FieldType:    field.FieldType,
			Formatting:   field.Formatting,
			DisplayOrder: field.DisplayOrder,
			IsActive:     field.IsActive,
			Editing:      idx == editing,
		})
	}
	return DraftData{Template: tpl, Fields: rows, Sample: sample}
}

// Draft renders the draft view.
func (p *Previewer) Draft(data DraftData, out ...io.Writer) (string, error) {
	return p.engine.RenderTemplate(DraftView, data, out...)
}

type listData struct {
	TaskID    int64            `json:"taskId"`
	Templates []model.Template `json:"templates"`
}

// List renders the templates owned by a task.
func (p *Previewer) List(taskID int64, templates []model.Template, out ...io.Writer) (string, error) {
	if templates == nil {
		templates = []model.Template{}
	}
	return p.engine.RenderTemplate(ListView, listData{TaskID: taskID, Templates: templates}, out...)
}

type presetsData struct {
	Presets []presets.Preset `json:"presets"`
}

// Presets renders the preset catalog.
func (p *Previewer) Presets(catalog *presets.Catalog, out ...io.Writer) (string, error) {
	data := presetsData{Presets: []presets.Preset{}}
	if catalog != nil {
		data.Presets = catalog.All()
	}
	return p.engine.RenderTemplate(PresetsView, data, out...)
}
