// Package server serves the profile editing page and a JSON API that runs
// the formset manager server-side.
//
// Routes:
//
//	GET  /             profile page (sets the CSRF cookie)
//	POST /             CSRF-protected submit, returns the management form of every group
//	POST /v1/fragments add fragments to posted HTML
//	GET  /v1/groups    configured groups
//	GET  /runtime/*    browser runtime assets
//	GET  /health       liveness
//	GET  /ready        readiness
//	GET  /metrics      Prometheus metrics
//
// Configuration comes from DefaultConfig, which reads PORT, LOG_LEVEL,
// SHUTDOWN_TIMEOUT_SECONDS, FORMSET_CONFIG and CSRF_KEY.
package server
