package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render/template"
	"github.com/goliatone/go-formset/pkg/render/template/gotemplate"
)

const (
	pageTemplate     = "profile.tpl"
	fragmentTemplate = "fragment.tpl"

	// defaultMaxForms mirrors the server-side framework's MAX_NUM_FORMS
	// default when a group sets no limit.
	defaultMaxForms = 1000
)

// ToggleIDs are the primary email view and edit panels switched by
// toggleEdit.
var ToggleIDs = []string{"primary-email-view", "primary-email-edit"}

var simpleSelector = regexp.MustCompile(`^[#.]([A-Za-z][A-Za-z0-9_-]*)$`)

// Option customises a Renderer.
type Option func(*Renderer)

// WithEngine swaps the template engine. The engine must provide the
// profile.tpl and fragment.tpl templates.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithMarkdown swaps the goldmark instance used for group help text.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(r *Renderer) {
		if md != nil {
			r.markdown = md
		}
	}
}

// Renderer renders profile pages. It is safe for concurrent use when its
// engine is.
type Renderer struct {
	engine   template.TemplateRenderer
	markdown goldmark.Markdown
}

// New constructs a Renderer backed by the embedded templates unless
// WithEngine is given.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{markdown: newMarkdown()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("render: template engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

type pageView struct {
	Title        string      `json:"title"`
	Action       string      `json:"action"`
	PrimaryEmail string      `json:"primary_email"`
	CSRFToken    string      `json:"csrf_token"`
	CSRFField    string      `json:"csrf_field"`
	RuntimePath  string      `json:"runtime_path"`
	ConfigJSON   string      `json:"config_json"`
	ToggleView   string      `json:"toggle_view"`
	ToggleEdit   string      `json:"toggle_edit"`
	Groups       []groupView `json:"groups"`
}

type groupView struct {
	Tag         string   `json:"tag"`
	Prefix      string   `json:"prefix"`
	Label       string   `json:"label"`
	HelpHTML    string   `json:"help_html"`
	ContainerID string   `json:"container_id"`
	ButtonID    string   `json:"button_id"`
	TotalID     string   `json:"total_id"`
	InitialID   string   `json:"initial_id"`
	MinID       string   `json:"min_id"`
	MaxID       string   `json:"max_id"`
	Total       int      `json:"total"`
	Initial     int      `json:"initial"`
	Max         int      `json:"max"`
	Rows        []string `json:"rows"`
}

type rowView struct {
	FragmentClass string      `json:"fragment_class"`
	Fields        []fieldView `json:"fields"`
}

type fieldView struct {
	Name    string       `json:"name"`
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Value   string       `json:"value"`
	Checked bool         `json:"checked"`
	Options []optionView `json:"options"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type runtimeConfig struct {
	Groups []model.GroupConfig `json:"groups"`
	Toggle []string            `json:"toggle"`
}

// Profile renders page and writes the markup to every out writer.
func (r *Renderer) Profile(page Page, out ...io.Writer) (string, error) {
	if r == nil || r.engine == nil {
		return "", errors.New("render: renderer is nil")
	}

	configs, err := r.Configs(page)
	if err != nil {
		return "", err
	}

	view := pageView{
		Title:        defaultString(page.Title, "Profile"),
		Action:       page.Action,
		PrimaryEmail: page.PrimaryEmail,
		CSRFToken:    page.CSRFToken,
		CSRFField:    defaultString(page.CSRFField, DefaultCSRFField),
		RuntimePath:  page.RuntimePath,
		ToggleView:   ToggleIDs[0],
		ToggleEdit:   ToggleIDs[1],
	}
	for i, group := range page.Groups {
		gv, err := r.groupView(configs[i], group)
		if err != nil {
			return "", err
		}
		view.Groups = append(view.Groups, gv)
	}

	payload, err := json.Marshal(runtimeConfig{Groups: configs, Toggle: ToggleIDs})
	if err != nil {
		return "", fmt.Errorf("render: encode runtime config: %w", err)
	}
	view.ConfigJSON = string(payload)

	return r.engine.RenderTemplate(pageTemplate, view, out...)
}

// Configs returns the normalised group configurations page is rendered
// with. Groups without rows get an empty template built from their fields so
// the first fragment can still be added.
func (r *Renderer) Configs(page Page) ([]model.GroupConfig, error) {
	configs := make([]model.GroupConfig, 0, len(page.Groups))
	for _, group := range page.Groups {
		cfg, err := model.Normalize(group.Config)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		if len(group.Rows) == 0 && cfg.EmptyTemplate == "" {
			markup, err := r.fragment(cfg, group.Fields, model.PrefixPlaceholder, nil)
			if err != nil {
				return nil, err
			}
			cfg.EmptyTemplate = strings.TrimSpace(markup)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (r *Renderer) groupView(cfg model.GroupConfig, group Group) (groupView, error) {
	view := groupView{
		Tag:       cfg.Tag,
		Prefix:    cfg.Prefix,
		Label:     defaultString(cfg.Label, cfg.Tag),
		InitialID: "id_" + cfg.Prefix + "-INITIAL_FORMS",
		MinID:     "id_" + cfg.Prefix + "-MIN_NUM_FORMS",
		Total:     len(group.Rows),
		Initial:   countStored(group.Rows),
		Max:       cfg.MaxForms,
	}
	if view.Max == 0 {
		view.Max = defaultMaxForms
	}

	var err error
	if view.ContainerID, err = selectorName(cfg, "container", cfg.ContainerSelector, '#'); err != nil {
		return groupView{}, err
	}
	if view.ButtonID, err = selectorName(cfg, "button", cfg.ButtonSelector, '#'); err != nil {
		return groupView{}, err
	}
	if view.TotalID, err = selectorName(cfg, "counter", cfg.CounterSelector, '#'); err != nil {
		return groupView{}, err
	}
	if view.MaxID, err = selectorName(cfg, "max counter", cfg.MaxCounterSelector, '#'); err != nil {
		return groupView{}, err
	}
	if view.HelpHTML, err = r.Markdown(cfg.Help); err != nil {
		return groupView{}, fmt.Errorf("render: group %q help: %w", cfg.Tag, err)
	}

	for i, row := range group.Rows {
		markup, err := r.fragment(cfg, group.Fields, strconv.Itoa(i), row)
		if err != nil {
			return groupView{}, err
		}
		view.Rows = append(view.Rows, markup)
	}
	return view, nil
}

func (r *Renderer) fragment(cfg model.GroupConfig, fields []Field, index string, row Row) (string, error) {
	class, err := selectorName(cfg, "fragment", cfg.FragmentSelector, '.')
	if err != nil {
		return "", err
	}

	base := cfg.Prefix + "-" + index + "-"
	all := append(append([]Field(nil), fields...),
		Field{Name: cfg.Reset.DeleteField, Label: "Delete", Type: FieldCheckbox},
		Field{Name: "id", Type: FieldHidden},
	)

	view := rowView{FragmentClass: class, Fields: make([]fieldView, 0, len(all))}
	for _, field := range all {
		value := row[field.Name]
		fv := fieldView{
			Name:  base + field.Name,
			ID:    "id_" + base + field.Name,
			Label: defaultString(field.Label, field.Name),
			Type:  string(field.Type),
			Value: value,
		}
		if fv.Type == "" {
			fv.Type = string(FieldText)
		}
		switch field.Type {
		case FieldCheckbox:
			fv.Checked = truthy(value)
			fv.Value = ""
		case FieldSelect:
			for _, option := range field.Options {
				fv.Options = append(fv.Options, optionView{Value: option, Label: option, Selected: option == value})
			}
		}
		view.Fields = append(view.Fields, fv)
	}

	markup, err := r.engine.RenderTemplate(fragmentTemplate, view)
	if err != nil {
		return "", fmt.Errorf("render: group %q fragment: %w", cfg.Tag, err)
	}
	return markup, nil
}

// selectorName extracts the id or class from a `#name` or `.name` selector.
// Rendering needs the literal attribute, so compound selectors are rejected.
func selectorName(cfg model.GroupConfig, part, selector string, kind byte) (string, error) {
	trimmed := strings.TrimSpace(selector)
	m := simpleSelector.FindStringSubmatch(trimmed)
	if m == nil || trimmed[0] != kind {
		return "", fmt.Errorf("render: group %q %s selector %q must be a simple %c selector", cfg.Tag, part, selector, kind)
	}
	return m[1], nil
}

func countStored(rows []Row) int {
	n := 0
	for _, row := range rows {
		if strings.TrimSpace(row["id"]) != "" {
			n++
		}
	}
	return n
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
