// Package formset manages repeatable form groups inside a parsed HTML
// document. A Manager is bound to one document and, for a registered group,
// clones a template fragment, rewrites the `<prefix>-<index>-` placeholders
// in its serialized markup, resets its fields, inserts it before the add
// control or at the end of the container, and updates the TOTAL_FORMS
// counter read by the server-side form framework.
//
// Adds fail closed: every selector lookup, the re-parse of the renumbered
// markup, and the reset happen before the document is mutated.
package formset
