package formset

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/model"
)

// Renumber rewrites every index captured by pattern in markup to index. Only
// the first capture group of each match is replaced, so the surrounding
// prefix and separators are kept verbatim. PrefixPlaceholder occurrences are
// replaced as well so empty templates and cloned fragments share one path.
func Renumber(markup string, pattern *regexp.Regexp, index int) string {
	replacement := strconv.Itoa(index)
	markup = strings.ReplaceAll(markup, model.PrefixPlaceholder, replacement)

	matches := pattern.FindAllStringSubmatchIndex(markup, -1)
	if len(matches) == 0 {
		return markup
	}

	var sb strings.Builder
	sb.Grow(len(markup) + len(matches)*len(replacement))
	last := 0
	for _, loc := range matches {
		start, end := loc[2], loc[3]
		if start < 0 {
			continue
		}
		sb.WriteString(markup[last:start])
		sb.WriteString(replacement)
		last = end
	}
	sb.WriteString(markup[last:])
	return sb.String()
}

// FieldName strips the `<prefix>-<index>-` part from a form field name or id.
// Names without an index are returned unchanged.
func FieldName(name string, pattern *regexp.Regexp) string {
	locs := pattern.FindAllStringIndex(name, -1)
	if len(locs) == 0 {
		return name
	}
	return name[locs[len(locs)-1][1]:]
}

// FieldIndex extracts the index embedded in a field name. ok is false when
// the name carries no index.
func FieldIndex(name string, pattern *regexp.Regexp) (index int, ok bool) {
	matches := pattern.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return 0, false
	}
	last := matches[len(matches)-1]
	if len(last) < 2 {
		return 0, false
	}
	value, err := strconv.Atoi(last[1])
	if err != nil {
		return 0, false
	}
	return value, true
}
