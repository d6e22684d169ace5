// Package model defines the group configuration records consumed by the
// formset manager, the browser runtime, and the config loaders. A group is
// identified by its tag (for example "email") and carries the selectors used
// to find its container, fragments, add control, and management counter in a
// server-rendered page, plus the index pattern, insertion mode, template
// source, and reset policy applied when a fragment is added. Field names follow
// the `<prefix>-<index>-<field>` convention read by the server-side form
// framework, where the prefix defaults to the tag and can be overridden for
// variants such as `<tag>_set` or `email_addresses`.
package model
