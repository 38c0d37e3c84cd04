package presets

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

//go:embed catalog/presets.yaml
var embeddedCatalog embed.FS

const embeddedPath = "catalog/presets.yaml"

// Preset is a predefined field configuration offered for quick insertion.
type Preset struct {
	Key                    string           `yaml:"key" json:"key"`
	FieldName              string           `yaml:"fieldName" json:"fieldName"`
	FieldLabel             string           `yaml:"fieldLabel" json:"fieldLabel"`
	FieldType              model.FieldType  `yaml:"fieldType" json:"fieldType"`
	Formatting             model.Formatting `yaml:"formatting" json:"formatting"`
	ExtractionInstructions string           `yaml:"extractionInstructions" json:"extractionInstructions,omitempty"`
	Description            string           `yaml:"description" json:"description,omitempty"`
}

// Field builds the template field inserted for the preset: label shown with a
// colon separator and an empty default value. DisplayOrder is left for the
// composer to assign.
func (p Preset) Field() model.Field {
	field := model.NewField()
	field.FieldName = p.FieldName
	field.FieldLabel = p.FieldLabel
	field.FieldType = p.FieldType
	field.ExtractionInstructions = p.ExtractionInstructions
	field.DefaultValue = ""
	field.ShowLabel = true
	field.LabelSeparator = model.DefaultLabelSeparator
	if p.Formatting != "" {
		field.Formatting = p.Formatting
	}
	return field
}

// Catalog is an ordered, read-only set of presets.
type Catalog struct {
	presets []Preset
	byKey   map[string]int
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog of common news fields.
func Default() *Catalog {
	defaultOnce.Do(func() {
		catalog, err := LoadFS(embeddedCatalog, embeddedPath)
		if err != nil {
			// The catalog is compiled into the binary and covered by tests.
			panic(err)
		}
		defaultCatalog = catalog
	})
	return defaultCatalog
}

// LoadFS reads a YAML catalog from fsys.
func LoadFS(fsys fs.FS, path string) (*Catalog, error) {
	if fsys == nil {
		return nil, fmt.Errorf("presets: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("presets: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("presets: catalog is empty")
	}
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("presets: parse catalog: %w", err)
	}
	return New(doc.Presets...)
}

// New builds a catalog from presets, rejecting duplicate keys or field names
// and presets whose field would not pass builder validation.
func New(presets ...Preset) (*Catalog, error) {
	catalog := &Catalog{
		presets: make([]Preset, 0, len(presets)),
		byKey:   make(map[string]int, len(presets)),
	}
	names := make(map[string]string, len(presets))
	for _, preset := range presets {
		preset.Key = strings.TrimSpace(preset.Key)
		preset.FieldName = model.NormalizeFieldName(preset.FieldName)
		if preset.Key == "" {
			return nil, fmt.Errorf("presets: preset %q has an empty key", preset.FieldName)
		}
		if _, exists := catalog.byKey[preset.Key]; exists {
			return nil, fmt.Errorf("presets: duplicate key %q", preset.Key)
		}
		if other, exists := names[preset.FieldName]; exists {
			return nil, fmt.Errorf("presets: %q and %q share field name %q", other, preset.Key, preset.FieldName)
		}
		if problems := model.FieldProblems(preset.Field()); len(problems) > 0 {
			return nil, fmt.Errorf("presets: preset %q: %s", preset.Key, problems[0])
		}
		names[preset.FieldName] = preset.Key
		catalog.byKey[preset.Key] = len(catalog.presets)
		catalog.presets = append(catalog.presets, preset)
	}
	return catalog, nil
}

// All returns the presets in catalog order.
func (c *Catalog) All() []Preset {
	if c == nil {
		return nil
	}
	return append([]Preset(nil), c.presets...)
}

// Lookup returns the preset registered under key.
func (c *Catalog) Lookup(key string) (Preset, bool) {
	if c == nil {
		return Preset{}, false
	}
	idx, ok := c.byKey[strings.TrimSpace(key)]
	if !ok {
		return Preset{}, false
	}
	return c.presets[idx], true
}

// Keys returns the preset keys in catalog order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.presets))
	for _, preset := range c.presets {
		keys = append(keys, preset.Key)
	}
	return keys
}

// Len reports the number of presets.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.presets)
}
