package forms

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"archmap/backend/internal/constants"
	"archmap/backend/pkg/errors"

	"gopkg.in/yaml.v3"
)

//go:embed descriptors/*.yaml
var descriptorFS embed.FS

// FieldKind is the widget used to edit a field
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindRichText FieldKind = "rich-text"
	KindSelect   FieldKind = "select"
	KindSwitch   FieldKind = "switch"
	KindDate     FieldKind = "date"
)

// Option is one choice of a select field
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Field describes one form field
type Field struct {
	Name        string    `yaml:"name" json:"name"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Multiple    bool      `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`
	CSV         bool      `yaml:"csv,omitempty" json:"csv,omitempty"`
	VisibleWhen string    `yaml:"visible_when,omitempty" json:"visible_when,omitempty"`
}

// Section groups fields under a heading
type Section struct {
	Title  string  `yaml:"title,omitempty" json:"title,omitempty"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Descriptor is a complete form definition
type Descriptor struct {
	Name                 string    `yaml:"name" json:"name"`
	Title                string    `yaml:"title" json:"title"`
	ValidationDebounceMs int       `yaml:"validation_debounce_ms" json:"validation_debounce_ms"`
	Sections             []Section `yaml:"sections" json:"sections"`
}

// Field returns the named field
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// FieldNames returns every field name in display order
func (d *Descriptor) FieldNames() []string {
	var names []string
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

func (d *Descriptor) validate() error {
	seen := make(map[string]bool)
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if seen[f.Name] {
				return fmt.Errorf("duplicate field %q", f.Name)
			}
			seen[f.Name] = true
			switch f.Kind {
			case KindText, KindRichText, KindSwitch, KindDate:
			case KindSelect:
				if len(f.Options) == 0 {
					return fmt.Errorf("select field %q has no options", f.Name)
				}
			default:
				return fmt.Errorf("field %q has unknown kind %q", f.Name, f.Kind)
			}
		}
	}
	return nil
}

var (
	loadOnce    sync.Once
	descriptors map[string]*Descriptor
	loadErr     error
)

func loadDescriptors() (map[string]*Descriptor, error) {
	loadOnce.Do(func() {
		entries, err := descriptorFS.ReadDir("descriptors")
		if err != nil {
			loadErr = fmt.Errorf("reading embedded descriptors: %w", err)
			return
		}

		out := make(map[string]*Descriptor, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
				continue
			}
			data, err := descriptorFS.ReadFile(path.Join("descriptors", entry.Name()))
			if err != nil {
				loadErr = fmt.Errorf("reading %s: %w", entry.Name(), err)
				return
			}

			var d Descriptor
			if err := yaml.Unmarshal(data, &d); err != nil {
				loadErr = fmt.Errorf("parsing %s: %w", entry.Name(), err)
				return
			}
			if d.ValidationDebounceMs == 0 {
				d.ValidationDebounceMs = constants.ValidationDebounceMillis
			}
			if err := d.validate(); err != nil {
				loadErr = fmt.Errorf("%s: %w", entry.Name(), err)
				return
			}
			out[d.Name] = &d
		}
		descriptors = out
	})
	return descriptors, loadErr
}

// Load returns the descriptor registered under name
func Load(name string) (*Descriptor, error) {
	all, err := loadDescriptors()
	if err != nil {
		return nil, err
	}
	d, ok := all[name]
	if !ok {
		return nil, errors.NewFormNotFound(name)
	}
	return d, nil
}

// Names lists the available forms
func Names() []string {
	all, _ := loadDescriptors()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
