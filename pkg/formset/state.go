package formset

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// GroupState summarises a group as it currently appears in the document.
type GroupState struct {
	Group  string `json:"group" yaml:"group"`
	Prefix string `json:"prefix" yaml:"prefix"`
	// Count is the number of fragments found in the container.
	Count int `json:"count" yaml:"count"`
	// Counter is the TOTAL_FORMS value, or -1 when missing or unreadable.
	Counter int `json:"counter" yaml:"counter"`
	// Max is the effective fragment limit; zero means unlimited.
	Max int `json:"max,omitempty" yaml:"max,omitempty"`
	// Indices lists the index carried by each fragment in document order,
	// -1 for fragments without an indexed attribute.
	Indices    []int  `json:"indices" yaml:"indices"`
	Consistent bool   `json:"consistent" yaml:"consistent"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// State inspects one group without mutating the document. Lookup failures of
// the container are returned as errors; a missing counter is reported
// through Counter and Consistent.
func (m *Manager) State(tag string) (GroupState, error) {
	cfg, err := m.registry.Get(tag)
	if err != nil {
		return GroupState{}, err
	}
	compiled, err := m.compile(cfg)
	if err != nil {
		return GroupState{}, err
	}

	state := GroupState{Group: cfg.Tag, Prefix: cfg.Prefix, Counter: -1}
	container := compiled.container.MatchFirst(m.doc)
	if container == nil {
		return state, lookupError(cfg.Tag, PartContainer, cfg.ContainerSelector)
	}

	fragments := matchAll(compiled.fragment, container)
	state.Count = len(fragments)
	state.Indices = make([]int, 0, len(fragments))
	for _, fragment := range fragments {
		state.Indices = append(state.Indices, fragmentIndex(fragment, compiled.pattern))
	}
	state.Max = m.limit(cfg, compiled)

	if counter := compiled.counter.MatchFirst(m.doc); counter != nil {
		value, _ := getAttr(counter, "value")
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			state.Counter = parsed
		}
	}

	state.Consistent = state.Counter == state.Count && contiguous(state.Indices)
	return state, nil
}

// Discover reports the state of every registered group. Groups whose
// container is absent carry the lookup error in GroupState.Error.
func (m *Manager) Discover() []GroupState {
	tags := m.registry.List()
	out := make([]GroupState, 0, len(tags))
	for _, tag := range tags {
		state, err := m.State(tag)
		if err != nil {
			var lookup *LookupError
			if !errors.As(err, &lookup) {
				state.Group = tag
			}
			state.Error = err.Error()
		}
		out = append(out, state)
	}
	return out
}

// Present filters states down to groups found in the document.
func Present(states []GroupState) []GroupState {
	out := make([]GroupState, 0, len(states))
	for _, state := range states {
		if state.Error == "" {
			out = append(out, state)
		}
	}
	return out
}

var indexedAttrs = []string{"name", "id", "for"}

func fragmentIndex(fragment *html.Node, pattern *regexp.Regexp) int {
	index := -1
	walk(fragment, func(n *html.Node) {
		if index >= 0 || n.Type != html.ElementNode {
			return
		}
		for _, key := range indexedAttrs {
			value, ok := getAttr(n, key)
			if !ok {
				continue
			}
			if parsed, ok := FieldIndex(value, pattern); ok {
				index = parsed
				return
			}
		}
	})
	return index
}

// contiguous reports whether indices hold exactly 0..len-1 in any order.
// Fragments inserted before existing ones leave the document order
// unsorted.
func contiguous(indices []int) bool {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	for i, index := range sorted {
		if index != i {
			return false
		}
	}
	return true
}
