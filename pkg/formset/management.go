package formset

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formset/pkg/model"
)

// Management form field suffixes read by the server-side form framework.
const (
	TotalFormsField   = "TOTAL_FORMS"
	InitialFormsField = "INITIAL_FORMS"
	MinFormsField     = "MIN_NUM_FORMS"
	MaxFormsField     = "MAX_NUM_FORMS"
)

// ManagementForm is the submitted view of one group: the counters posted in
// the management form plus the fragment indices that carried fields.
type ManagementForm struct {
	Prefix  string `json:"prefix" yaml:"prefix"`
	Total   int    `json:"total" yaml:"total"`
	Initial int    `json:"initial" yaml:"initial"`
	Min     int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int    `json:"max,omitempty" yaml:"max,omitempty"`
	// Indices lists the distinct submitted indices in ascending order.
	Indices []int `json:"indices" yaml:"indices"`
	// Deleted lists indices whose delete marker was submitted.
	Deleted []int `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	// Contiguous is true when Indices is exactly 0..Total-1.
	Contiguous bool `json:"contiguous" yaml:"contiguous"`
}

// Inspect reads the management form for prefix from submitted values.
// TOTAL_FORMS is required; the other counters default to zero. Rows are
// reported as deleted through the default DELETE marker.
func Inspect(values url.Values, prefix string) (ManagementForm, error) {
	return inspect(values, prefix, model.DefaultDeleteField)
}

// InspectGroup is Inspect for a configured group, honouring its prefix and
// delete marker.
func InspectGroup(values url.Values, cfg model.GroupConfig) (ManagementForm, error) {
	prefix := cfg.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = cfg.Tag
	}
	return inspect(values, prefix, cfg.Reset.DeleteField)
}

func inspect(values url.Values, prefix, deleteField string) (ManagementForm, error) {
	policy := model.ResetPolicy{DeleteField: strings.TrimSpace(deleteField)}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ManagementForm{}, fmt.Errorf("%w: prefix is required", ErrManagementForm)
	}

	form := ManagementForm{Prefix: prefix}
	total, err := managementValue(values, prefix, TotalFormsField, true)
	if err != nil {
		return ManagementForm{}, err
	}
	form.Total = total
	if form.Initial, err = managementValue(values, prefix, InitialFormsField, false); err != nil {
		return ManagementForm{}, err
	}
	if form.Min, err = managementValue(values, prefix, MinFormsField, false); err != nil {
		return ManagementForm{}, err
	}
	if form.Max, err = managementValue(values, prefix, MaxFormsField, false); err != nil {
		return ManagementForm{}, err
	}

	pattern := regexp.MustCompile(`^` + model.DefaultIndexPattern(prefix))
	seen := make(map[int]struct{})
	deleted := make(map[int]struct{})
	for key, submitted := range values {
		index, ok := FieldIndex(key, pattern)
		if !ok {
			continue
		}
		seen[index] = struct{}{}
		if policy.IsDeleteField(FieldName(key, pattern)) && isTruthy(submitted) {
			deleted[index] = struct{}{}
		}
	}
	form.Indices = sortedKeys(seen)
	form.Deleted = sortedKeys(deleted)
	form.Contiguous = len(form.Indices) == form.Total && contiguous(form.Indices)
	return form, nil
}

func managementValue(values url.Values, prefix, field string, required bool) (int, error) {
	key := prefix + "-" + field
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: %s is missing", ErrManagementForm, key)
		}
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrManagementForm, key, raw)
	}
	return value, nil
}

func isTruthy(values []string) bool {
	for _, value := range values {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "", "0", "false", "off":
		default:
			return true
		}
	}
	return false
}

func sortedKeys(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Ints(out)
	return out
}
