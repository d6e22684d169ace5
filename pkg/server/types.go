package server

import (
	"time"

	"github.com/goliatone/go-formset/pkg/formset"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// HealthResponse is returned by /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// FragmentRequest asks the server to add Times fragments to Group in HTML.
type FragmentRequest struct {
	HTML  string `json:"html"`
	Group string `json:"group"`
	// Times defaults to 1.
	Times int `json:"times,omitempty"`
}

// AddedFragment reports one committed add.
type AddedFragment struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// FragmentResponse carries the updated document and the state of every
// group found in it.
type FragmentResponse struct {
	HTML   string               `json:"html"`
	Added  []AddedFragment      `json:"added"`
	Groups []formset.GroupState `json:"groups"`
}

// SubmissionResponse lists the management form read for each page group.
type SubmissionResponse struct {
	Groups []formset.ManagementForm `json:"groups"`
}
