// Package visibility flips the `hidden` attribute on elements of a parsed
// page. It backs the profile page's edit toggle, which swaps a read-only
// view of the primary email with its edit form.
package visibility

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// MissingError lists ids that were not found in the document.
type MissingError struct {
	IDs []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("visibility: element(s) not found: %s", strings.Join(e.IDs, ", "))
}

// Toggle inverts the hidden state of every element named by ids. Nothing is
// changed unless all ids resolve.
func Toggle(doc *html.Node, ids ...string) error {
	nodes, err := resolve(doc, ids)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		SetHidden(n, !IsHidden(n))
	}
	return nil
}

// Exclusive shows visible and hides every element in hidden. Nothing is
// changed unless all ids resolve.
func Exclusive(doc *html.Node, visible string, hidden ...string) error {
	nodes, err := resolve(doc, append([]string{visible}, hidden...))
	if err != nil {
		return err
	}
	SetHidden(nodes[0], false)
	for _, n := range nodes[1:] {
		SetHidden(n, true)
	}
	return nil
}

// State reports the hidden state of each id that exists in doc.
func State(doc *html.Node, ids ...string) map[string]bool {
	index := indexIDs(doc)
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := index[id]; ok {
			out[id] = IsHidden(n)
		}
	}
	return out
}

// IsHidden reports whether n carries the hidden attribute.
func IsHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "hidden" {
			return true
		}
	}
	return false
}

// SetHidden adds or removes the hidden attribute.
func SetHidden(n *html.Node, hidden bool) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "hidden" {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	if hidden {
		n.Attr = append(n.Attr, html.Attribute{Key: "hidden"})
	}
}

func resolve(doc *html.Node, ids []string) ([]*html.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("visibility: document is nil")
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("visibility: at least one id is required")
	}

	index := indexIDs(doc)
	nodes := make([]*html.Node, 0, len(ids))
	var missing []string
	for _, id := range ids {
		n, ok := index[strings.TrimSpace(id)]
		if !ok {
			missing = append(missing, id)
			continue
		}
		nodes = append(nodes, n)
	}
	if len(missing) > 0 {
		return nil, &MissingError{IDs: missing}
	}
	return nodes, nil
}

// indexIDs maps each id to its first element in document order.
func indexIDs(doc *html.Node) map[string]*html.Node {
	index := make(map[string]*html.Node)
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && a.Key == "id" && a.Val != "" {
					if _, seen := index[a.Val]; !seen {
						index[a.Val] = n
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return index
}
