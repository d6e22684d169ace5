// Package render produces the profile editing page: one fieldset per
// repeatable group with its management form, the rendered fragments, the add
// control inside the container, and the JSON configuration read by the
// browser runtime. Templates are executed through template.TemplateRenderer,
// pongo2 by default.
package render
