package formset

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formset/pkg/model"
)

// Registry stores normalised group configurations by tag, providing
// discovery and duplication safeguards. A registry can be shared across
// managers built for different documents.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]model.GroupConfig
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]model.GroupConfig),
	}
}

// NewPresetRegistry creates a registry holding every built-in preset.
func NewPresetRegistry() *Registry {
	reg := NewRegistry()
	for _, tag := range model.PresetTags() {
		if cfg, ok := model.Preset(tag); ok {
			reg.MustRegister(cfg)
		}
	}
	return reg
}

// Register normalises cfg and adds it by tag. Duplicate tags return an
// error.
func (r *Registry) Register(cfg model.GroupConfig) error {
	normalized, err := model.Normalize(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[normalized.Tag]; exists {
		return fmt.Errorf("formset: group %q already registered", normalized.Tag)
	}
	r.groups[normalized.Tag] = normalized
	return nil
}

// Replace registers cfg, overwriting any existing group with the same tag.
func (r *Registry) Replace(cfg model.GroupConfig) error {
	normalized, err := model.Normalize(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[normalized.Tag] = normalized
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(cfg model.GroupConfig) {
	if err := r.Register(cfg); err != nil {
		panic(err)
	}
}

// Get retrieves a group configuration by tag.
func (r *Registry) Get(tag string) (model.GroupConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.groups[strings.TrimSpace(tag)]
	if !ok {
		return model.GroupConfig{}, fmt.Errorf("%w: %q", ErrGroupNotFound, tag)
	}
	return cfg, nil
}

// List returns a sorted list of registered tags.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.groups))
	for tag := range r.groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Configs returns every registered configuration sorted by tag.
func (r *Registry) Configs() []model.GroupConfig {
	tags := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.GroupConfig, 0, len(tags))
	for _, tag := range tags {
		if cfg, ok := r.groups[tag]; ok {
			out = append(out, cfg)
		}
	}
	return out
}

// Has reports whether a group is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.groups[strings.TrimSpace(tag)]
	return ok
}

// Len reports the number of registered groups.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
