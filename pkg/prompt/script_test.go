package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/prompt"
)

func TestScript(t *testing.T) {
	ctx := context.Background()
	script := &prompt.Script{Selections: []int{1}, Inputs: []string{"3"}}

	choice, err := script.Select(ctx, prompt.SelectConfig{Message: "Group", Options: []string{"email", "phone"}})
	if err != nil || choice != 1 {
		t.Fatalf("select: got (%d, %v)", choice, err)
	}
	answer, err := script.Input(ctx, prompt.InputConfig{Message: "How many", Default: "1", Validator: prompt.PositiveInt})
	if err != nil || answer != "3" {
		t.Fatalf("input: got (%q, %v)", answer, err)
	}
	ok, err := script.Confirm(ctx, prompt.ConfirmConfig{Message: "Write file", Default: true})
	if err != nil || !ok {
		t.Fatalf("confirm should fall back to default, got (%v, %v)", ok, err)
	}

	if diff := cmp.Diff([]string{"Group", "How many", "Write file"}, script.Asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}

	if _, err := script.Select(ctx, prompt.SelectConfig{Message: "Group", Options: []string{"email"}}); err == nil {
		t.Fatalf("expected exhausted script error")
	}
	if _, err := script.Select(ctx, prompt.SelectConfig{Message: "Group"}); !errors.Is(err, prompt.ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}
}

func TestPositiveInt(t *testing.T) {
	for answer, valid := range map[string]bool{"1": true, "12": true, "0": false, "-2": false, "two": false} {
		if err := prompt.PositiveInt(answer); (err == nil) != valid {
			t.Fatalf("PositiveInt(%q) error = %v, valid %v", answer, err, valid)
		}
	}
}
