package formset

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// compiledGroup caches the selectors and index pattern of one group.
type compiledGroup struct {
	container  cascadia.Selector
	fragment   cascadia.Selector
	button     cascadia.Selector
	counter    cascadia.Selector
	maxCounter cascadia.Selector
	pattern    *regexp.Regexp
}

type selectorCache struct {
	mu     sync.Mutex
	groups map[string]*compiledGroup
}

func newSelectorCache() *selectorCache {
	return &selectorCache{groups: make(map[string]*compiledGroup)}
}

func (c *selectorCache) compile(tag, container, fragment, button, counter, maxCounter, pattern string) (*compiledGroup, error) {
	key := strings.Join([]string{tag, container, fragment, button, counter, maxCounter, pattern}, "\x00")

	c.mu.Lock()
	defer c.mu.Unlock()

	if compiled, ok := c.groups[key]; ok {
		return compiled, nil
	}

	compiled := &compiledGroup{}
	var err error
	if compiled.container, err = compileSelector(tag, PartContainer, container); err != nil {
		return nil, err
	}
	if compiled.fragment, err = compileSelector(tag, PartTemplate, fragment); err != nil {
		return nil, err
	}
	if compiled.button, err = compileSelector(tag, PartButton, button); err != nil {
		return nil, err
	}
	if compiled.counter, err = compileSelector(tag, PartCounter, counter); err != nil {
		return nil, err
	}
	if compiled.maxCounter, err = compileSelector(tag, "max counter", maxCounter); err != nil {
		return nil, err
	}
	if compiled.pattern, err = regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("formset: group %q index pattern: %w", tag, err)
	}

	c.groups[key] = compiled
	return compiled, nil
}

func compileSelector(tag, part, selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("formset: group %q %s selector %q: %w", tag, part, selector, err)
	}
	return sel, nil
}

// matchAll returns descendants of root matching sel in document order,
// excluding root itself. Content of <template> elements is inert markup and
// is skipped.
func matchAll(sel cascadia.Selector, root *html.Node) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data == "template" {
				continue
			}
			if sel.Match(c) {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(root)
	return out
}
