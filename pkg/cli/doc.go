// Package cli implements the formset command-line tool.
//
// # Commands
//
// add - Append fragments to a repeatable group:
//
//	formset add --in page.html --group phone [--times 2] [--config groups.yaml] [--out page.html]
//
// Without --group on a terminal the command lists the groups found in the
// page and asks which one to extend. --schema and --schema-name derive the
// group's reset policy from an OpenAPI component schema.
//
// inspect - Report discovered groups:
//
//	formset inspect --in page.html [--config groups.yaml] [--format json|yaml] [--all]
//
// toggle - Flip the hidden state of elements:
//
//	formset toggle --in page.html [--id primary-email-view --id primary-email-edit] [--show id]
//
// serve - Run the profile page server:
//
//	formset serve [--port 8080] [--config groups.yaml]
//
// # Global Flags
//
//	--log-level    debug, info, warn or error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// Output goes to stdout unless --out names a file. Logs go to stderr.
package cli
