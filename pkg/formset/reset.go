package formset

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formset/pkg/model"
)

// ApplyReset rewrites every resettable field below root according to policy.
// Field identity is the name (or id when unnamed) with the index prefix
// removed by pattern.
func ApplyReset(root *html.Node, policy model.ResetPolicy, pattern *regexp.Regexp) {
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "input":
			resetInput(n, policy, fieldOf(n, pattern))
		case "textarea":
			resetTextarea(n, policy, fieldOf(n, pattern))
		case "select":
			resetSelect(n, policy, fieldOf(n, pattern))
		}
	})
}

func fieldOf(n *html.Node, pattern *regexp.Regexp) string {
	if name, ok := getAttr(n, "name"); ok && name != "" {
		return FieldName(name, pattern)
	}
	if id, ok := getAttr(n, "id"); ok {
		return FieldName(id, pattern)
	}
	return ""
}

func inputType(n *html.Node) string {
	value, _ := getAttr(n, "type")
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "text"
	}
	return value
}

func resetInput(n *html.Node, policy model.ResetPolicy, field string) {
	if field != "" && policy.IsDeleteField(field) {
		// A clone is never marked for removal.
		switch inputType(n) {
		case "checkbox", "radio":
			removeAttr(n, "checked")
		default:
			setAttr(n, "value", "")
		}
		return
	}
	switch inputType(n) {
	case "checkbox", "radio":
		removeAttr(n, "checked")
	case "submit", "button", "reset", "image":
	case "file":
		removeAttr(n, "value")
	case "hidden":
		switch {
		case policy.HasField(field):
			setAttr(n, "value", policy.ValueFor(field))
		case policy.KeepsHidden(field):
		default:
			// Clears copied primary keys and hidden delete markers.
			setAttr(n, "value", "")
		}
	default:
		value := policy.ValueFor(field)
		if _, has := getAttr(n, "value"); has || value != "" {
			setAttr(n, "value", value)
		}
	}
}

func resetTextarea(n *html.Node, policy model.ResetPolicy, field string) {
	removeChildren(n)
	if value := policy.ValueFor(field); value != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
}

func resetSelect(n *html.Node, policy model.ResetPolicy, field string) {
	value := policy.ValueFor(field)
	var options []*html.Node
	walk(n, func(c *html.Node) {
		if isElement(c, "option") {
			options = append(options, c)
		}
	})
	for _, option := range options {
		removeAttr(option, "selected")
	}
	if value == "" {
		return
	}
	for _, option := range options {
		if optionValue(option) == value {
			setAttr(option, "selected", "")
			return
		}
	}
}

func optionValue(option *html.Node) string {
	if value, ok := getAttr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(textContent(option))
}
