package formset_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/formset"
)

func loadProfile(t *testing.T) *html.Node {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", "profile.html"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()

	doc, err := formset.Parse(f)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()

	doc, err := formset.ParseString(markup)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	return doc
}

func newManager(t *testing.T, doc *html.Node, options ...formset.Option) *formset.Manager {
	t.Helper()

	manager, err := formset.New(doc, options...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func render(t *testing.T, node *html.Node) string {
	t.Helper()

	out, err := formset.RenderString(node)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func queryAll(root *html.Node, selector string) []*html.Node {
	return cascadia.MustCompile(selector).MatchAll(root)
}

func queryOne(t *testing.T, root *html.Node, selector string) *html.Node {
	t.Helper()

	nodes := queryAll(root, selector)
	if len(nodes) != 1 {
		t.Fatalf("expected exactly one match for %q, got %d", selector, len(nodes))
	}
	return nodes[0]
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func lastElementChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func assertNoChecked(t *testing.T, root *html.Node, selector string) {
	t.Helper()

	for _, n := range queryAll(root, selector) {
		if _, ok := attr(n, "checked"); ok {
			name, _ := attr(n, "name")
			t.Fatalf("expected %q to be unchecked", name)
		}
	}
}

func assertValue(t *testing.T, root *html.Node, selector, want string) {
	t.Helper()

	n := queryOne(t, root, selector)
	got, _ := attr(n, "value")
	if got != want {
		t.Fatalf("value of %s: want %q, got %q", selector, want, got)
	}
}

func text(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
