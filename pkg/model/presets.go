package model

import "sort"

// Built-in group tags for the profile editing page.
const (
	GroupEmail          = "email"
	GroupEmailAddresses = "email_addresses"
	GroupPhone          = "phone"
	GroupAddress        = "address"
	GroupURL            = "url"
	GroupOrg            = "org"
	GroupTag            = "tag"
)

var presets = map[string]GroupConfig{
	GroupEmail: {
		Tag:   GroupEmail,
		Label: "Email",
	},
	// Account page variant: one shared container, explicit field resets.
	GroupEmailAddresses: {
		Tag:               GroupEmailAddresses,
		Label:             "Email addresses",
		ContainerSelector: "#form-container",
		FragmentSelector:  ".email-form",
		ButtonSelector:    "#add-email-form",
		Reset: ResetPolicy{
			Fields: map[string]string{
				"email_address": "",
			},
		},
	},
	GroupPhone: {
		Tag:   GroupPhone,
		Label: "Phone",
		Reset: ResetPolicy{
			Fields: map[string]string{"phone_type": "Cell"},
		},
	},
	GroupAddress: {
		Tag:   GroupAddress,
		Label: "Address",
		Reset: ResetPolicy{
			Fields: map[string]string{"address_type": "Work"},
		},
	},
	GroupURL: {
		Tag:   GroupURL,
		Label: "Website",
	},
	GroupOrg: {
		Tag:   GroupOrg,
		Label: "Organization",
	},
	GroupTag: {
		Tag:   GroupTag,
		Label: "Tag",
	},
}

// Preset returns the normalised built-in configuration for tag.
func Preset(tag string) (GroupConfig, bool) {
	cfg, ok := presets[tag]
	if !ok {
		return GroupConfig{}, false
	}
	cfg.Reset = cloneReset(cfg.Reset)
	normalized, err := Normalize(cfg)
	if err != nil {
		return GroupConfig{}, false
	}
	return normalized, true
}

// PresetTags lists the built-in tags in sorted order.
func PresetTags() []string {
	tags := make([]string, 0, len(presets))
	for tag := range presets {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ProfilePresets returns the groups rendered on the profile editing page.
func ProfilePresets() []GroupConfig {
	tags := []string{GroupPhone, GroupEmail, GroupURL, GroupAddress, GroupOrg, GroupTag}
	out := make([]GroupConfig, 0, len(tags))
	for _, tag := range tags {
		if cfg, ok := Preset(tag); ok {
			out = append(out, cfg)
		}
	}
	return out
}

func cloneReset(policy ResetPolicy) ResetPolicy {
	if len(policy.Fields) > 0 {
		fields := make(map[string]string, len(policy.Fields))
		for name, value := range policy.Fields {
			fields[name] = value
		}
		policy.Fields = fields
	}
	policy.KeepHidden = append([]string(nil), policy.KeepHidden...)
	return policy
}
