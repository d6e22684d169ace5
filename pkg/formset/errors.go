package formset

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup is wrapped by every LookupError.
	ErrLookup = errors.New("formset: lookup failed")
	// ErrGroupNotFound signals a tag that was never registered.
	ErrGroupNotFound = errors.New("formset: group not registered")
	// ErrLimitReached signals the group already holds its maximum number of
	// fragments.
	ErrLimitReached = errors.New("formset: fragment limit reached")
	// ErrInvalidTemplate signals a template fragment that does not re-parse
	// into exactly one element.
	ErrInvalidTemplate = errors.New("formset: invalid template fragment")
	// ErrManagementForm signals a submitted management form that cannot be
	// read.
	ErrManagementForm = errors.New("formset: invalid management form")
)

// Parts of a group that LookupError can name.
const (
	PartContainer = "container"
	PartTemplate  = "template"
	PartButton    = "button"
	PartCounter   = "counter"
)

// LookupError reports a group element that could not be found in the
// document. It indicates a markup or configuration defect.
type LookupError struct {
	Group    string
	Part     string
	Selector string
	Reason   string
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("formset: group %q: %s not found", e.Group, e.Part)
	if e.Selector != "" {
		msg += fmt.Sprintf(" (selector %q)", e.Selector)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrLookup).
func (e *LookupError) Unwrap() error {
	return ErrLookup
}

func lookupError(group, part, selector string) *LookupError {
	return &LookupError{Group: group, Part: part, Selector: selector}
}
