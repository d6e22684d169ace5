package formset

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	templatePolicyOnce sync.Once
	templatePolicy     *bluemonday.Policy
)

// SanitizeTemplate restricts configured empty-template markup to form
// structure. Scripts, event handlers, and links are dropped.
func SanitizeTemplate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(templateSanitizer().Sanitize(trimmed))
}

func templateSanitizer() *bluemonday.Policy {
	templatePolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements(
			"div", "span", "p", "small", "fieldset", "legend", "label",
			"input", "select", "option", "optgroup", "textarea", "button",
			"ul", "ol", "li", "table", "thead", "tbody", "tr", "td", "th",
		)
		policy.AllowAttrs(
			"id", "class", "name", "title", "hidden",
		).Globally()
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs(
			"type", "value", "checked", "placeholder", "autocomplete",
			"maxlength", "minlength", "required", "disabled", "readonly",
			"min", "max", "step", "pattern", "size",
		).OnElements("input")
		policy.AllowAttrs("multiple", "required", "disabled", "size").OnElements("select")
		policy.AllowAttrs("value", "selected", "disabled", "label").OnElements("option")
		policy.AllowAttrs("label", "disabled").OnElements("optgroup")
		policy.AllowAttrs("rows", "cols", "placeholder", "maxlength", "required", "disabled", "readonly").OnElements("textarea")
		policy.AllowAttrs("type", "value", "disabled").OnElements("button")
		policy.AllowDataAttributes()

		templatePolicy = policy
	})
	return templatePolicy
}
