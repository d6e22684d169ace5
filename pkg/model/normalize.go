package model

import (
	"fmt"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// DefaultIndexPattern returns the pattern matching `<prefix>-<digits>-` with
// the digits captured. Multi-digit indices are matched.
func DefaultIndexPattern(prefix string) string {
	return regexp.QuoteMeta(prefix) + `-(\d+)-`
}

// Normalize trims the configuration, fills every empty selector and the index
// pattern from the tag and prefix, and validates the result.
func Normalize(cfg GroupConfig) (GroupConfig, error) {
	cfg.Tag = strings.TrimSpace(cfg.Tag)
	if cfg.Tag == "" {
		return GroupConfig{}, fmt.Errorf("%w: tag is required", ErrInvalidConfig)
	}
	if !tagPattern.MatchString(cfg.Tag) {
		return GroupConfig{}, fmt.Errorf("%w: tag %q must start with a letter and use only letters, digits, '-' or '_'", ErrInvalidConfig, cfg.Tag)
	}

	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = cfg.Tag
	}
	if !tagPattern.MatchString(cfg.Prefix) {
		return GroupConfig{}, fmt.Errorf("%w: group %q prefix %q is not a valid form prefix", ErrInvalidConfig, cfg.Tag, cfg.Prefix)
	}

	cfg.Label = strings.TrimSpace(cfg.Label)
	cfg.ContainerSelector = defaultString(cfg.ContainerSelector, "#"+cfg.Tag+"-form-container")
	cfg.FragmentSelector = defaultString(cfg.FragmentSelector, "."+cfg.Tag+"-form")
	cfg.ButtonSelector = defaultString(cfg.ButtonSelector, "#add-"+cfg.Tag+"-form")
	cfg.CounterSelector = defaultString(cfg.CounterSelector, "#id_"+cfg.Prefix+"-TOTAL_FORMS")
	cfg.MaxCounterSelector = defaultString(cfg.MaxCounterSelector, "#id_"+cfg.Prefix+"-MAX_NUM_FORMS")
	cfg.IndexPattern = defaultString(cfg.IndexPattern, DefaultIndexPattern(cfg.Prefix))

	pattern, err := regexp.Compile(cfg.IndexPattern)
	if err != nil {
		return GroupConfig{}, fmt.Errorf("%w: group %q index pattern: %v", ErrInvalidConfig, cfg.Tag, err)
	}
	if pattern.NumSubexp() < 1 {
		return GroupConfig{}, fmt.Errorf("%w: group %q index pattern %q must capture the index digits", ErrInvalidConfig, cfg.Tag, cfg.IndexPattern)
	}

	switch InsertionMode(strings.TrimSpace(string(cfg.InsertionMode))) {
	case "", InsertBeforeButton:
		cfg.InsertionMode = InsertBeforeButton
	case AppendToContainer:
		cfg.InsertionMode = AppendToContainer
	default:
		return GroupConfig{}, fmt.Errorf("%w: group %q insertion mode %q", ErrInvalidConfig, cfg.Tag, cfg.InsertionMode)
	}

	switch TemplateSource(strings.TrimSpace(string(cfg.TemplateSource))) {
	case "", TemplateFirst:
		cfg.TemplateSource = TemplateFirst
	case TemplateLast:
		cfg.TemplateSource = TemplateLast
	default:
		return GroupConfig{}, fmt.Errorf("%w: group %q template source %q", ErrInvalidConfig, cfg.Tag, cfg.TemplateSource)
	}

	if cfg.MaxForms < 0 {
		return GroupConfig{}, fmt.Errorf("%w: group %q max forms must not be negative", ErrInvalidConfig, cfg.Tag)
	}

	cfg.EmptyTemplate = strings.TrimSpace(cfg.EmptyTemplate)
	cfg.Reset = normalizeReset(cfg.Reset)
	return cfg, nil
}

func normalizeReset(policy ResetPolicy) ResetPolicy {
	policy.DeleteField = defaultString(policy.DeleteField, DefaultDeleteField)
	if len(policy.Fields) > 0 {
		fields := make(map[string]string, len(policy.Fields))
		for name, value := range policy.Fields {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				fields[trimmed] = value
			}
		}
		policy.Fields = fields
	}
	if len(policy.KeepHidden) > 0 {
		keep := make([]string, 0, len(policy.KeepHidden))
		for _, name := range policy.KeepHidden {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				keep = append(keep, trimmed)
			}
		}
		policy.KeepHidden = keep
	}
	return policy
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
