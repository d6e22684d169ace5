package formset_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := formset.NewRegistry()
	if err := reg.Register(model.GroupConfig{Tag: "phone"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cfg, err := reg.Get("phone")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.ContainerSelector != "#phone-form-container" {
		t.Fatalf("expected normalised config, got %+v", cfg)
	}

	if err := reg.Register(model.GroupConfig{Tag: "phone"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Replace(model.GroupConfig{Tag: "phone", MaxForms: 3}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if cfg, _ := reg.Get("phone"); cfg.MaxForms != 3 {
		t.Fatalf("expected replaced config, got %+v", cfg)
	}

	if _, err := reg.Get("fax"); !errors.Is(err, formset.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if err := reg.Register(model.GroupConfig{Tag: "1bad"}); !errors.Is(err, model.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRegistry_Presets(t *testing.T) {
	reg := formset.NewPresetRegistry()

	if diff := cmp.Diff(model.PresetTags(), reg.List()); diff != "" {
		t.Fatalf("preset tags mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has(model.GroupEmailAddresses) || reg.Len() != len(model.PresetTags()) {
		t.Fatalf("unexpected preset registry contents: %v", reg.List())
	}

	configs := reg.Configs()
	if len(configs) != reg.Len() || configs[0].Tag != reg.List()[0] {
		t.Fatalf("configs not sorted by tag")
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	formset.NewRegistry().MustRegister(model.GroupConfig{})
}

func TestManager_SharedRegistry(t *testing.T) {
	reg := formset.NewRegistry()
	reg.MustRegister(model.GroupConfig{Tag: model.GroupEmail})

	first := newManager(t, loadProfile(t), formset.WithRegistry(reg))
	second := newManager(t, loadProfile(t), formset.WithRegistry(reg), formset.WithGroups(model.GroupConfig{Tag: model.GroupTag}))

	if first.Registry() != second.Registry() {
		t.Fatalf("expected managers to share the registry")
	}
	if diff := cmp.Diff([]string{"email", "tag"}, reg.List()); diff != "" {
		t.Fatalf("registry tags mismatch (-want +got):\n%s", diff)
	}
	if _, err := first.Add(model.GroupTag); err != nil {
		t.Fatalf("group added through another manager should be usable: %v", err)
	}
}
