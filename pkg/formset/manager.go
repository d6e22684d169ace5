package formset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/model"
)

// Option customises a Manager.
type Option func(*Manager)

// WithRegistry shares a group registry between managers. Groups passed via
// WithGroups are written into it.
func WithRegistry(registry *Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithGroups registers group configurations, replacing any group with the
// same tag. Without WithRegistry the manager starts from an empty registry
// instead of the presets.
func WithGroups(groups ...model.GroupConfig) Option {
	return func(m *Manager) {
		m.pending = append(m.pending, groups...)
	}
}

// WithLogger routes Activate failures and add events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAddHook registers a callback invoked after every committed add.
func WithAddHook(hook func(Result)) Option {
	return func(m *Manager) {
		if hook != nil {
			m.hooks = append(m.hooks, hook)
		}
	}
}

// Manager owns one parsed document and mutates its repeatable groups. It is
// not safe for concurrent use; callers serialise operations per document.
type Manager struct {
	doc      *html.Node
	registry *Registry
	pending  []model.GroupConfig
	logger   *slog.Logger
	hooks    []func(Result)
	cache    *selectorCache
}

// Result describes one committed add.
type Result struct {
	Group string
	// Index is the zero-based index assigned to the new fragment.
	Index int
	// Total is the counter value written after the add.
	Total int
	Node  *html.Node
}

// New binds a manager to doc. Without options every built-in preset is
// registered.
func New(doc *html.Node, options ...Option) (*Manager, error) {
	if doc == nil {
		return nil, errors.New("formset: document is required")
	}

	m := &Manager{
		doc:    doc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:  newSelectorCache(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}

	if m.registry == nil {
		if len(m.pending) > 0 {
			m.registry = NewRegistry()
		} else {
			m.registry = NewPresetRegistry()
		}
	}
	for _, cfg := range m.pending {
		if err := m.registry.Replace(cfg); err != nil {
			return nil, err
		}
	}
	m.pending = nil

	return m, nil
}

// Document returns the managed document.
func (m *Manager) Document() *html.Node {
	return m.doc
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Add appends one cloned, renumbered, and reset fragment to the group and
// sets its counter to the new fragment count. Every lookup and the new
// fragment are resolved before the document is touched, so a failed add
// leaves the document unchanged.
func (m *Manager) Add(tag string) (Result, error) {
	cfg, err := m.registry.Get(tag)
	if err != nil {
		return Result{}, err
	}

	plan, err := m.plan(cfg)
	if err != nil {
		return Result{}, err
	}

	plan.parent.InsertBefore(plan.node, plan.before)
	setAttr(plan.counter, "value", strconv.Itoa(plan.index+1))

	result := Result{
		Group: cfg.Tag,
		Index: plan.index,
		Total: plan.index + 1,
		Node:  plan.node,
	}
	m.logger.Debug("formset: fragment added",
		slog.String("group", cfg.Tag),
		slog.Int("index", result.Index),
		slog.Int("total", result.Total),
	)
	for _, hook := range m.hooks {
		hook(result)
	}
	return result, nil
}

// AddN performs n sequential adds, stopping at the first failure. Results
// for the adds that committed are returned alongside the error.
func (m *Manager) AddN(tag string, n int) ([]Result, error) {
	if n < 0 {
		return nil, fmt.Errorf("formset: add count must not be negative, got %d", n)
	}
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		result, err := m.Add(tag)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Activate is the event-handler form of Add: failures are logged instead of
// returned so the page keeps its last good state. It reports whether a
// fragment was added.
func (m *Manager) Activate(tag string) bool {
	if _, err := m.Add(tag); err != nil {
		m.logger.Error("formset: add fragment failed",
			slog.String("group", tag),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

type addPlan struct {
	parent  *html.Node
	before  *html.Node
	node    *html.Node
	counter *html.Node
	index   int
}

func (m *Manager) compile(cfg model.GroupConfig) (*compiledGroup, error) {
	return m.cache.compile(cfg.Tag,
		cfg.ContainerSelector,
		cfg.FragmentSelector,
		cfg.ButtonSelector,
		cfg.CounterSelector,
		cfg.MaxCounterSelector,
		cfg.IndexPattern,
	)
}

func (m *Manager) plan(cfg model.GroupConfig) (*addPlan, error) {
	compiled, err := m.compile(cfg)
	if err != nil {
		return nil, err
	}

	container := compiled.container.MatchFirst(m.doc)
	if container == nil {
		return nil, lookupError(cfg.Tag, PartContainer, cfg.ContainerSelector)
	}
	button := compiled.button.MatchFirst(m.doc)
	if button == nil {
		return nil, lookupError(cfg.Tag, PartButton, cfg.ButtonSelector)
	}
	counter := compiled.counter.MatchFirst(m.doc)
	if counter == nil {
		return nil, lookupError(cfg.Tag, PartCounter, cfg.CounterSelector)
	}

	fragments := matchAll(compiled.fragment, container)
	count := len(fragments)

	if limit := m.limit(cfg, compiled); limit > 0 && count >= limit {
		return nil, fmt.Errorf("%w: group %q holds %d of %d fragments", ErrLimitReached, cfg.Tag, count, limit)
	}

	plan := &addPlan{counter: counter, index: count}
	switch cfg.InsertionMode {
	case model.AppendToContainer:
		plan.parent = container
	default:
		if !isDescendant(button, container) {
			err := lookupError(cfg.Tag, PartButton, cfg.ButtonSelector)
			err.Reason = "add control must sit inside the container to insert before it"
			return nil, err
		}
		plan.parent = button.Parent
		plan.before = button
	}

	markup, err := templateMarkup(cfg, fragments)
	if err != nil {
		return nil, err
	}

	node, err := parseFragment(cfg.Tag, Renumber(markup, compiled.pattern, count), plan.parent)
	if err != nil {
		return nil, err
	}
	ApplyReset(node, cfg.Reset, compiled.pattern)
	plan.node = node
	return plan, nil
}

func (m *Manager) limit(cfg model.GroupConfig, compiled *compiledGroup) int {
	if cfg.MaxForms > 0 {
		return cfg.MaxForms
	}
	field := compiled.maxCounter.MatchFirst(m.doc)
	if field == nil {
		return 0
	}
	value, _ := getAttr(field, "value")
	limit, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func templateMarkup(cfg model.GroupConfig, fragments []*html.Node) (string, error) {
	if cfg.EmptyTemplate != "" {
		markup := SanitizeTemplate(cfg.EmptyTemplate)
		if markup == "" {
			return "", fmt.Errorf("%w: group %q empty template is empty after sanitizing", ErrInvalidTemplate, cfg.Tag)
		}
		return markup, nil
	}
	if len(fragments) == 0 {
		return "", lookupError(cfg.Tag, PartTemplate, cfg.FragmentSelector)
	}

	template := fragments[0]
	if cfg.TemplateSource == model.TemplateLast {
		template = fragments[len(fragments)-1]
	}
	markup, err := RenderString(template)
	if err != nil {
		return "", err
	}
	return markup, nil
}

func parseFragment(tag, markup string, context *html.Node) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("%w: group %q: %v", ErrInvalidTemplate, tag, err)
	}

	var element *html.Node
	for _, node := range nodes {
		switch {
		case node.Type == html.TextNode && strings.TrimSpace(node.Data) == "":
			continue
		case node.Type == html.ElementNode && element == nil:
			element = node
		default:
			return nil, fmt.Errorf("%w: group %q template must hold exactly one element", ErrInvalidTemplate, tag)
		}
	}
	if element == nil {
		return nil, fmt.Errorf("%w: group %q template holds no element", ErrInvalidTemplate, tag)
	}
	return element, nil
}
