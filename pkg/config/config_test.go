package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/model"
)

func TestLoadFS(t *testing.T) {
	store, err := config.LoadFS(os.DirFS(filepath.Join("testdata", "groups")))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"contact", "email_addresses", "phone", "url"}, store.Tags()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	contact, ok := store.Group("contact")
	if !ok {
		t.Fatalf("expected contact group")
	}
	want := model.GroupConfig{
		Tag:                "contact",
		Prefix:             "contact_set",
		Label:              "Contact",
		ContainerSelector:  "#contact-form-container",
		FragmentSelector:   ".contact-form",
		ButtonSelector:     "#add-contact-form",
		CounterSelector:    "#id_contact_set-TOTAL_FORMS",
		MaxCounterSelector: "#id_contact_set-MAX_NUM_FORMS",
		IndexPattern:       `contact_set-(\d+)-`,
		InsertionMode:      model.AppendToContainer,
		TemplateSource:     model.TemplateLast,
		MaxForms:           5,
		Reset: model.ResetPolicy{
			KeepHidden:  []string{"profile"},
			DeleteField: model.DefaultDeleteField,
		},
	}
	if diff := cmp.Diff(want, contact); diff != "" {
		t.Fatalf("contact config mismatch (-want +got):\n%s", diff)
	}
	if got := store.Source("url"); got != "extra.json" {
		t.Fatalf("expected url to come from extra.json, got %q", got)
	}
}

func TestLoadFS_PresetsAndOverrides(t *testing.T) {
	store, err := config.LoadFS(os.DirFS(filepath.Join("testdata", "groups")))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	phone, _ := store.Group("phone")
	if diff := cmp.Diff(map[string]string{"phone_type": "mobile"}, phone.Reset.Fields); diff != "" {
		t.Fatalf("phone reset mismatch (-want +got):\n%s", diff)
	}
	if phone.Label != "Phone" {
		t.Fatalf("expected preset label, got %q", phone.Label)
	}

	emails, _ := store.Group("email_addresses")
	if emails.ContainerSelector != "#form-container" || emails.ButtonSelector != "#add-email-form" {
		t.Fatalf("preset selectors not carried over: %+v", emails)
	}
	if !strings.Contains(emails.Help, "**every**") {
		t.Fatalf("help not loaded: %q", emails.Help)
	}

	reg, err := store.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	for _, tag := range []string{"contact", "email", "org", "phone"} {
		if !reg.Has(tag) {
			t.Fatalf("expected registry to hold %q, got %v", tag, reg.List())
		}
	}
	got, _ := reg.Get("phone")
	if got.Reset.ValueFor("phone_type") != "mobile" {
		t.Fatalf("configured group should replace the preset")
	}
}

func TestLoadFS_DuplicateTag(t *testing.T) {
	_, err := config.LoadFS(os.DirFS(filepath.Join("testdata", "duplicate")))
	if err == nil || !strings.Contains(err.Error(), `duplicate group "tag"`) {
		t.Fatalf("expected duplicate group error, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]struct {
		data   string
		source string
		want   string
	}{
		"empty":          {data: "  ", source: "a.yaml", want: "is empty"},
		"no groups":      {data: "groups: {}", source: "a.yaml", want: "defines no groups"},
		"bad json":       {data: `{"groups": `, source: "a.json", want: "parse a.json"},
		"unknown preset": {data: "groups:\n  fax:\n    preset: telex\n", source: "a.yaml", want: "unknown preset"},
		"bad insertion":  {data: "groups:\n  fax:\n    insertion: sideways\n", source: "a.yaml", want: "fax"},
		"bad pattern":    {data: "groups:\n  fax:\n    indexPattern: 'fax-\\d+-'\n", source: "a.yaml", want: "must capture"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.data), tc.source)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yml")
	if err := os.WriteFile(path, []byte("groups:\n  org:\n    label: Employer\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	org, ok := store.Group("org")
	if !ok || org.Label != "Employer" || org.FragmentSelector != ".org-form" {
		t.Fatalf("unexpected org config %+v", org)
	}
	if store.Empty() {
		t.Fatalf("store should not be empty")
	}
}
