package render

import "github.com/goliatone/go-formset/pkg/model"

// FieldType selects the control rendered for a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldURL      FieldType = "url"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
	FieldHidden   FieldType = "hidden"
)

// Field describes one control inside a fragment. Name is the bare field
// name; the `<prefix>-<index>-` part is added when rendering.
type Field struct {
	Name    string
	Label   string
	Type    FieldType
	Options []string
}

// Row holds submitted or stored values for one fragment keyed by field name.
// Checkbox fields are checked when their value is truthy.
type Row map[string]string

// Group pairs a group configuration with the fields of each fragment and the
// existing rows. Every row also gets the hidden id field and the delete
// marker.
type Group struct {
	Config model.GroupConfig
	Fields []Field
	Rows   []Row
}

// Page is the input to Renderer.Profile.
type Page struct {
	Title        string
	Action       string
	PrimaryEmail string
	// CSRFToken is written into CSRFField when set.
	CSRFToken   string
	CSRFField   string
	RuntimePath string
	Groups      []Group
}

// DefaultCSRFField matches gorilla/csrf's form field name.
const DefaultCSRFField = "gorilla.csrf.Token"

var defaultFields = map[string][]Field{
	model.GroupPhone: {
		{Name: "phone_number", Label: "Phone number", Type: FieldTel},
		{Name: "phone_type", Label: "Type", Type: FieldSelect, Options: []string{"Cell", "mobile", "Work", "Home"}},
		{Name: "is_primary", Label: "Primary", Type: FieldCheckbox},
	},
	model.GroupEmail: {
		{Name: "email_address", Label: "Email", Type: FieldEmail},
		{Name: "is_primary", Label: "Primary", Type: FieldCheckbox},
	},
	model.GroupEmailAddresses: {
		{Name: "email_address", Label: "Email", Type: FieldEmail},
	},
	model.GroupURL: {
		{Name: "url", Label: "Website", Type: FieldURL},
		{Name: "label", Label: "Label", Type: FieldText},
	},
	model.GroupAddress: {
		{Name: "street", Label: "Street", Type: FieldText},
		{Name: "city", Label: "City", Type: FieldText},
		{Name: "address_type", Label: "Type", Type: FieldSelect, Options: []string{"Work", "Home"}},
		{Name: "note", Label: "Note", Type: FieldTextarea},
	},
	model.GroupOrg: {
		{Name: "name", Label: "Organization", Type: FieldText},
		{Name: "title", Label: "Title", Type: FieldText},
	},
	model.GroupTag: {
		{Name: "name", Label: "Tag", Type: FieldText},
	},
}

// DefaultFields returns the built-in fields for a preset tag. Unknown tags
// get a single text field named "value".
func DefaultFields(tag string) []Field {
	fields, ok := defaultFields[tag]
	if !ok {
		return []Field{{Name: "value", Label: "Value", Type: FieldText}}
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		field.Options = append([]string(nil), field.Options...)
		out[i] = field
	}
	return out
}

// DemoProfile returns the sample profile served by the demo server.
func DemoProfile() Page {
	rows := map[string][]Row{
		model.GroupPhone: {
			{"id": "41", "phone_number": "+1 555 0100", "phone_type": "Work", "is_primary": "on"},
			{"id": "42", "phone_number": "+1 555 0199", "phone_type": "Cell"},
		},
		model.GroupEmail: {
			{"id": "7", "email_address": "ada@example.com", "is_primary": "on"},
		},
		model.GroupAddress: {
			{"id": "3", "street": "12 Analytical Row", "city": "London", "address_type": "Home"},
		},
		model.GroupTag: {
			{"id": "9", "name": "speaker"},
		},
	}

	page := Page{
		Title:        "Edit profile",
		Action:       "/",
		PrimaryEmail: "ada@example.com",
		RuntimePath:  "/runtime/formset.js",
	}
	for _, cfg := range model.ProfilePresets() {
		if cfg.Tag == model.GroupPhone {
			cfg.Help = "Add every number we can reach you on.\nThe **first** primary number receives SMS."
		}
		page.Groups = append(page.Groups, Group{
			Config: cfg,
			Fields: DefaultFields(cfg.Tag),
			Rows:   rows[cfg.Tag],
		})
	}
	return page
}
