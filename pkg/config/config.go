// Package config loads repeatable group configurations from JSON or YAML
// files. A file holds a `groups` map keyed by tag:
//
//	groups:
//	  phone:
//	    label: Phone
//	    reset:
//	      fields:
//	        phone_type: Cell
//	  email_addresses:
//	    container: "#form-container"
//	    fragment: .email-form
//	    button: "#add-email-form"
//
// Keys omitted from an entry are derived from the tag, exactly as for the
// built-in presets. An entry may start from a preset with `preset: <tag>`.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

// Store holds normalised group configurations and the file each came from.
type Store struct {
	groups  map[string]model.GroupConfig
	sources map[string]string
}

type documentFile struct {
	Groups map[string]groupFile `json:"groups" yaml:"groups"`
}

type groupFile struct {
	Preset        string               `json:"preset" yaml:"preset"`
	Prefix        string               `json:"prefix" yaml:"prefix"`
	Label         string               `json:"label" yaml:"label"`
	Help          string               `json:"help" yaml:"help"`
	Container     string               `json:"container" yaml:"container"`
	Fragment      string               `json:"fragment" yaml:"fragment"`
	Button        string               `json:"button" yaml:"button"`
	Counter       string               `json:"counter" yaml:"counter"`
	MaxCounter    string               `json:"maxCounter" yaml:"maxCounter"`
	IndexPattern  string               `json:"indexPattern" yaml:"indexPattern"`
	Insertion     model.InsertionMode  `json:"insertion" yaml:"insertion"`
	Template      model.TemplateSource `json:"template" yaml:"template"`
	EmptyTemplate string               `json:"emptyTemplate" yaml:"emptyTemplate"`
	MaxForms      int                  `json:"maxForms" yaml:"maxForms"`
	Reset         *model.ResetPolicy   `json:"reset" yaml:"reset"`
}

// New returns an empty store.
func New() *Store {
	return &Store{
		groups:  make(map[string]model.GroupConfig),
		sources: make(map[string]string),
	}
}

// LoadFS walks fsys and parses every JSON/YAML file it finds. A tag defined
// in more than one file is an error. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := New()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return store.Add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFile parses a single configuration file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	store := New()
	if err := store.Add(data, path); err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes one configuration payload. source is used in error messages.
func Parse(data []byte, source string) ([]model.GroupConfig, error) {
	store := New()
	if err := store.Add(data, source); err != nil {
		return nil, err
	}
	return store.Groups(), nil
}

// Add merges the groups defined in data into the store.
func (s *Store) Add(data []byte, source string) error {
	doc, err := parseDocument(data, source)
	if err != nil {
		return err
	}
	if len(doc.Groups) == 0 {
		return fmt.Errorf("config: file %s defines no groups", source)
	}

	tags := make([]string, 0, len(doc.Groups))
	for tag := range doc.Groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			return fmt.Errorf("config: file %s defines a group with an empty tag", source)
		}
		if prev, exists := s.sources[tag]; exists {
			return fmt.Errorf("config: duplicate group %q (files %s and %s)", tag, prev, source)
		}
		cfg, err := buildGroup(tag, doc.Groups[raw])
		if err != nil {
			return fmt.Errorf("config: file %s: %w", source, err)
		}
		s.groups[tag] = cfg
		s.sources[tag] = source
	}
	return nil
}

// Groups returns every configuration sorted by tag.
func (s *Store) Groups() []model.GroupConfig {
	if s == nil {
		return nil
	}
	tags := s.Tags()
	out := make([]model.GroupConfig, 0, len(tags))
	for _, tag := range tags {
		out = append(out, s.groups[tag])
	}
	return out
}

// Group returns the configuration for tag.
func (s *Store) Group(tag string) (model.GroupConfig, bool) {
	if s == nil {
		return model.GroupConfig{}, false
	}
	cfg, ok := s.groups[tag]
	return cfg, ok
}

// Source reports the file that defined tag.
func (s *Store) Source(tag string) string {
	if s == nil {
		return ""
	}
	return s.sources[tag]
}

// Tags lists the configured tags in sorted order.
func (s *Store) Tags() []string {
	if s == nil {
		return nil
	}
	tags := make([]string, 0, len(s.groups))
	for tag := range s.groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Empty reports whether the store holds any groups.
func (s *Store) Empty() bool {
	return s == nil || len(s.groups) == 0
}

// Apply writes every configured group into reg, replacing same-tag groups
// such as presets.
func (s *Store) Apply(reg *formset.Registry) error {
	if reg == nil {
		return fmt.Errorf("config: registry is nil")
	}
	for _, cfg := range s.Groups() {
		if err := reg.Replace(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the built-in presets overlaid with the store's groups.
func (s *Store) Registry() (*formset.Registry, error) {
	reg := formset.NewPresetRegistry()
	if err := s.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func buildGroup(tag string, raw groupFile) (model.GroupConfig, error) {
	var cfg model.GroupConfig
	if name := strings.TrimSpace(raw.Preset); name != "" {
		preset, ok := model.Preset(name)
		if !ok {
			return model.GroupConfig{}, fmt.Errorf("group %q references unknown preset %q", tag, name)
		}
		cfg = model.GroupConfig{
			Label:          preset.Label,
			Help:           preset.Help,
			InsertionMode:  preset.InsertionMode,
			TemplateSource: preset.TemplateSource,
			EmptyTemplate:  preset.EmptyTemplate,
			MaxForms:       preset.MaxForms,
			Reset:          preset.Reset,
		}
		// Selectors derive from the tag and prefix, so they only carry over
		// when those match the preset.
		if name == tag {
			cfg.ContainerSelector = preset.ContainerSelector
			cfg.FragmentSelector = preset.FragmentSelector
			cfg.ButtonSelector = preset.ButtonSelector
			if strings.TrimSpace(raw.Prefix) == "" {
				cfg.Prefix = preset.Prefix
				cfg.CounterSelector = preset.CounterSelector
				cfg.MaxCounterSelector = preset.MaxCounterSelector
				cfg.IndexPattern = preset.IndexPattern
			}
		}
	}

	cfg.Tag = tag
	cfg.Prefix = override(cfg.Prefix, raw.Prefix)
	cfg.Label = override(cfg.Label, raw.Label)
	cfg.Help = override(cfg.Help, raw.Help)
	cfg.ContainerSelector = override(cfg.ContainerSelector, raw.Container)
	cfg.FragmentSelector = override(cfg.FragmentSelector, raw.Fragment)
	cfg.ButtonSelector = override(cfg.ButtonSelector, raw.Button)
	cfg.CounterSelector = override(cfg.CounterSelector, raw.Counter)
	cfg.MaxCounterSelector = override(cfg.MaxCounterSelector, raw.MaxCounter)
	cfg.IndexPattern = override(cfg.IndexPattern, raw.IndexPattern)
	cfg.EmptyTemplate = override(cfg.EmptyTemplate, raw.EmptyTemplate)
	if raw.Insertion != "" {
		cfg.InsertionMode = raw.Insertion
	}
	if raw.Template != "" {
		cfg.TemplateSource = raw.Template
	}
	if raw.MaxForms != 0 {
		cfg.MaxForms = raw.MaxForms
	}
	if raw.Reset != nil {
		cfg.Reset = *raw.Reset
	}

	return model.Normalize(cfg)
}

func override(current, next string) string {
	if trimmed := strings.TrimSpace(next); trimmed != "" {
		return trimmed
	}
	return current
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}

	if isJSON(source, data) {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("config: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	return doc, nil
}

func isJSON(source string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(source), ".json") {
		return true
	}
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
