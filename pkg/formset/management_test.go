package formset_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

func TestInspect(t *testing.T) {
	values := url.Values{
		"csrf_token":          {"abc"},
		"phone-TOTAL_FORMS":   {"3"},
		"phone-INITIAL_FORMS": {"2"},
		"phone-MIN_NUM_FORMS": {"0"},
		"phone-MAX_NUM_FORMS": {"1000"},
		"phone-0-phone_type":  {"Cell"},
		"phone-0-DELETE":      {"on"},
		"phone-1-phone_type":  {"Work"},
		"phone-1-DELETE":      {""},
		"phone-2-phone_type":  {"mobile"},
		"email-0-email":       {"ada@example.com"},
	}

	got, err := formset.Inspect(values, "phone")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	want := formset.ManagementForm{
		Prefix:     "phone",
		Total:      3,
		Initial:    2,
		Max:        1000,
		Indices:    []int{0, 1, 2},
		Deleted:    []int{0},
		Contiguous: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("management form mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_GapsAreNotContiguous(t *testing.T) {
	values := url.Values{
		"tag-TOTAL_FORMS": {"2"},
		"tag-0-name":      {"go"},
		"tag-2-name":      {"html"},
	}

	got, err := formset.Inspect(values, "tag")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if got.Contiguous {
		t.Fatalf("expected gap to be reported, got %+v", got)
	}
	if diff := cmp.Diff([]int{0, 2}, got.Indices); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectGroup_ConfiguredDeleteMarker(t *testing.T) {
	cfg, err := model.Normalize(model.GroupConfig{
		Tag:   "phone",
		Reset: model.ResetPolicy{DeleteField: "REMOVE"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	values := url.Values{
		"phone-TOTAL_FORMS": {"2"},
		"phone-0-number":    {"1"},
		"phone-0-DELETE":    {"on"},
		"phone-1-number":    {"2"},
		"phone-1-REMOVE":    {"on"},
	}

	got, err := formset.InspectGroup(values, cfg)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if diff := cmp.Diff([]int{1}, got.Deleted); diff != "" {
		t.Fatalf("deleted mismatch (-want +got):\n%s", diff)
	}
	if !got.Contiguous {
		t.Fatalf("expected contiguous indices, got %+v", got)
	}

	// The plain form keeps reading the default marker.
	plain, err := formset.Inspect(values, "phone")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if diff := cmp.Diff([]int{0}, plain.Deleted); diff != "" {
		t.Fatalf("default deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_Errors(t *testing.T) {
	cases := []struct {
		name   string
		values url.Values
		prefix string
	}{
		{name: "missing prefix", values: url.Values{}, prefix: " "},
		{name: "missing total", values: url.Values{"tag-0-name": {"go"}}, prefix: "tag"},
		{name: "non numeric total", values: url.Values{"tag-TOTAL_FORMS": {"two"}}, prefix: "tag"},
		{name: "negative initial", values: url.Values{"tag-TOTAL_FORMS": {"1"}, "tag-INITIAL_FORMS": {"-1"}}, prefix: "tag"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := formset.Inspect(tc.values, tc.prefix); !errors.Is(err, formset.ErrManagementForm) {
				t.Fatalf("expected ErrManagementForm, got %v", err)
			}
		})
	}
}
