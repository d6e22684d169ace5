package model

import (
	"errors"
	"strings"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("model: invalid group config")

// InsertionMode controls where a new fragment lands inside its group.
type InsertionMode string

const (
	// InsertBeforeButton places the fragment immediately before the add
	// control so the control always trails the fragment list.
	InsertBeforeButton InsertionMode = "beforeButton"
	// AppendToContainer places the fragment as the last child of the group
	// container.
	AppendToContainer InsertionMode = "appendToContainer"
)

// TemplateSource selects which existing fragment is cloned.
type TemplateSource string

const (
	TemplateFirst TemplateSource = "first"
	TemplateLast  TemplateSource = "last"
)

// DefaultDeleteField is the per-fragment removal marker rendered by the
// server-side form framework.
const DefaultDeleteField = "DELETE"

// PrefixPlaceholder is substituted with the new index when a group builds
// fragments from EmptyTemplate.
const PrefixPlaceholder = "__prefix__"

// ResetPolicy describes the values a cloned fragment holds before it is
// inserted. Fields maps a field name (the part after `<prefix>-<index>-`) to
// its value. Text-like inputs without an entry fall back to Default. Checkbox
// and radio inputs are always unchecked.
type ResetPolicy struct {
	Default     string            `json:"default,omitempty" yaml:"default,omitempty"`
	Fields      map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
	KeepHidden  []string          `json:"keepHidden,omitempty" yaml:"keepHidden,omitempty"`
	DeleteField string            `json:"deleteField,omitempty" yaml:"deleteField,omitempty"`
}

// ValueFor returns the reset value for a text-like field.
func (p ResetPolicy) ValueFor(field string) string {
	if value, ok := p.Fields[field]; ok {
		return value
	}
	return p.Default
}

// HasField reports whether the policy names the field explicitly.
func (p ResetPolicy) HasField(field string) bool {
	_, ok := p.Fields[field]
	return ok
}

// KeepsHidden reports whether a hidden field keeps the template's value.
func (p ResetPolicy) KeepsHidden(field string) bool {
	for _, name := range p.KeepHidden {
		if name == field {
			return true
		}
	}
	return false
}

// IsDeleteField reports whether field is the removal marker.
func (p ResetPolicy) IsDeleteField(field string) bool {
	marker := p.DeleteField
	if marker == "" {
		marker = DefaultDeleteField
	}
	return field == marker
}

// GroupConfig is the per-group record driving the parameterised add handler.
// Empty selectors and patterns are derived from Tag and Prefix by Normalize.
type GroupConfig struct {
	Tag    string `json:"tag" yaml:"tag"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	// Help is Markdown rendered next to the group on the demo page.
	Help string `json:"help,omitempty" yaml:"help,omitempty"`

	ContainerSelector  string `json:"container,omitempty" yaml:"container,omitempty"`
	FragmentSelector   string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	ButtonSelector     string `json:"button,omitempty" yaml:"button,omitempty"`
	CounterSelector    string `json:"counter,omitempty" yaml:"counter,omitempty"`
	MaxCounterSelector string `json:"maxCounter,omitempty" yaml:"maxCounter,omitempty"`

	// IndexPattern is a regular expression whose first capture group spans
	// the index digits to rewrite.
	IndexPattern string `json:"indexPattern,omitempty" yaml:"indexPattern,omitempty"`

	InsertionMode  InsertionMode  `json:"insertion,omitempty" yaml:"insertion,omitempty"`
	TemplateSource TemplateSource `json:"template,omitempty" yaml:"template,omitempty"`

	// EmptyTemplate is optional fragment markup using PrefixPlaceholder in
	// place of the index. When set it is used instead of cloning.
	EmptyTemplate string `json:"emptyTemplate,omitempty" yaml:"emptyTemplate,omitempty"`

	// MaxForms caps the fragment count; zero defers to the page's
	// MAX_NUM_FORMS field when present.
	MaxForms int `json:"maxForms,omitempty" yaml:"maxForms,omitempty"`

	Reset ResetPolicy `json:"reset,omitempty" yaml:"reset,omitempty"`
}

// SetPrefix returns the `<tag>_set` prefix used by inline formsets.
func SetPrefix(tag string) string {
	return strings.TrimSpace(tag) + "_set"
}
