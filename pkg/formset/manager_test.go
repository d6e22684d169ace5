package formset_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
)

func TestAdd_EmailScenario(t *testing.T) {
	doc := loadProfile(t)
	manager := newManager(t, doc)

	result, err := manager.Add(model.GroupEmail)
	if err != nil {
		t.Fatalf("add email: %v", err)
	}
	if result.Index != 1 || result.Total != 2 {
		t.Fatalf("unexpected result index=%d total=%d", result.Index, result.Total)
	}

	if got := len(queryAll(doc, ".email-form")); got != 2 {
		t.Fatalf("expected 2 email fragments, got %d", got)
	}
	assertValue(t, doc, "#id_email-TOTAL_FORMS", "2")

	fragment := result.Node
	assertValue(t, fragment, `[name="email-1-email_address"]`, "")
	assertNoChecked(t, fragment, `[name="email-1-is_primary"]`)
	assertNoChecked(t, fragment, `[name="email-1-DELETE"]`)
	assertValue(t, fragment, `[name="email-1-id"]`, "")
	if got := text(queryOne(t, fragment, "textarea")); got != "" {
		t.Fatalf("expected textarea to be emptied, got %q", got)
	}
	label := queryOne(t, fragment, "label")
	if got, _ := attr(label, "for"); got != "id_email-1-email_address" {
		t.Fatalf("label target not renumbered: %q", got)
	}
	if strings.Contains(render(t, fragment), "email-0-") {
		t.Fatalf("new fragment kept the template index:\n%s", render(t, fragment))
	}

	// The template fragment is untouched.
	assertValue(t, doc, `[name="email-0-email_address"]`, "ada@example.com")
	if _, ok := attr(queryOne(t, doc, `[name="email-0-is_primary"]`), "checked"); !ok {
		t.Fatalf("template fragment lost its checked state")
	}

	button := queryOne(t, doc, "#add-email-form")
	if next := nextElement(fragment); next != button {
		t.Fatalf("expected new fragment immediately before the add control")
	}
}

func TestAdd_PhoneTwiceUsesConfiguredDefault(t *testing.T) {
	for _, tc := range []struct {
		name      string
		options   []formset.Option
		wantValue string
	}{
		{
			name: "preset default",
			wantValue: "Cell",
		},
		{
			name: "configured default",
			options: []formset.Option{formset.WithGroups(model.GroupConfig{
				Tag:   model.GroupPhone,
				Reset: model.ResetPolicy{Fields: map[string]string{"phone_type": "mobile"}},
			})},
			wantValue: "mobile",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			doc := loadProfile(t)
			manager := newManager(t, doc, tc.options...)

			results, err := manager.AddN(model.GroupPhone, 2)
			if err != nil {
				t.Fatalf("add phones: %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("expected 2 results, got %d", len(results))
			}

			assertValue(t, doc, "#id_phone-TOTAL_FORMS", "4")
			state, err := manager.State(model.GroupPhone)
			if err != nil {
				t.Fatalf("state: %v", err)
			}
			if diff := cmp.Diff([]int{0, 1, 2, 3}, state.Indices); diff != "" {
				t.Fatalf("indices mismatch (-want +got):\n%s", diff)
			}
			if !state.Consistent {
				t.Fatalf("expected consistent state, got %+v", state)
			}

			for _, result := range results {
				selector := fmt.Sprintf(`[name="phone-%d-phone_type"] option[selected]`, result.Index)
				selected := queryAll(result.Node, selector)
				if len(selected) != 1 {
					t.Fatalf("expected one selected phone type in fragment %d, got %d", result.Index, len(selected))
				}
				if got, _ := attr(selected[0], "value"); got != tc.wantValue {
					t.Fatalf("phone type: want %q, got %q", tc.wantValue, got)
				}
				assertValue(t, result.Node, fmt.Sprintf(`[name="phone-%d-phone_number"]`, result.Index), "")
				assertNoChecked(t, result.Node, "input[type=checkbox]")
			}

			seen := make(map[string]struct{})
			for _, n := range queryAll(doc, "[id]") {
				id, _ := attr(n, "id")
				if _, dup := seen[id]; dup {
					t.Fatalf("duplicate id %q after adds", id)
				}
				seen[id] = struct{}{}
			}
		})
	}
}

func TestAdd_MissingCounterFailsClosed(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div id="url-form-container">
  <div class="url-form"><input type="url" name="url-0-url" value="https://example.com"></div>
  <a href="#" id="add-url-form">Add website</a>
</div></body></html>`)
	logger, logs := bufferLogger()
	manager := newManager(t, doc, formset.WithLogger(logger))
	before := render(t, doc)

	_, err := manager.Add(model.GroupURL)
	var lookup *formset.LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookup.Part != formset.PartCounter || !errors.Is(err, formset.ErrLookup) {
		t.Fatalf("unexpected lookup error %+v", lookup)
	}

	if manager.Activate(model.GroupURL) {
		t.Fatalf("activate should report failure")
	}
	if !strings.Contains(logs.String(), "add fragment failed") {
		t.Fatalf("expected failure to be logged, got %q", logs.String())
	}

	if after := render(t, doc); after != before {
		t.Fatalf("document mutated by failed add")
	}
	if got := len(queryAll(doc, ".url-form")); got != 1 {
		t.Fatalf("fragment count changed: %d", got)
	}
}

func TestAdd_LookupParts(t *testing.T) {
	const markup = `<html><body>
<div id="phone-form-container">
  <input type="hidden" name="phone-TOTAL_FORMS" value="0" id="id_phone-TOTAL_FORMS">
  <button id="add-phone-form">Add</button>
</div></body></html>`

	cases := []struct {
		name string
		cfg  model.GroupConfig
		part string
	}{
		{name: "container", cfg: model.GroupConfig{Tag: "phone", ContainerSelector: "#missing"}, part: formset.PartContainer},
		{name: "button", cfg: model.GroupConfig{Tag: "phone", ButtonSelector: "#missing"}, part: formset.PartButton},
		{name: "counter", cfg: model.GroupConfig{Tag: "phone", CounterSelector: "#missing"}, part: formset.PartCounter},
		{name: "template", cfg: model.GroupConfig{Tag: "phone"}, part: formset.PartTemplate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseDoc(t, markup)
			manager := newManager(t, doc, formset.WithGroups(tc.cfg))
			before := render(t, doc)

			_, err := manager.Add("phone")
			var lookup *formset.LookupError
			if !errors.As(err, &lookup) {
				t.Fatalf("expected LookupError, got %v", err)
			}
			if lookup.Part != tc.part {
				t.Fatalf("part: want %q, got %q", tc.part, lookup.Part)
			}
			if render(t, doc) != before {
				t.Fatalf("document mutated by failed add")
			}
		})
	}
}

func TestAdd_AppendToContainer(t *testing.T) {
	doc := loadProfile(t)
	manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{
		Tag:           model.GroupTag,
		InsertionMode: model.AppendToContainer,
	}))

	for i := 0; i < 2; i++ {
		result, err := manager.Add(model.GroupTag)
		if err != nil {
			t.Fatalf("add tag: %v", err)
		}
		container := queryOne(t, doc, "#tag-form-container")
		if lastElementChild(container) != result.Node {
			t.Fatalf("expected fragment %d to be the last child of the container", result.Index)
		}
		assertValue(t, result.Node, fmt.Sprintf(`[name="tag-%d-name"]`, result.Index), "")
		assertNoChecked(t, result.Node, "input[type=radio]")
		if v, _ := attr(queryOne(t, result.Node, fmt.Sprintf("#id_tag-%d-visibility_1", result.Index)), "value"); v != "private" {
			t.Fatalf("radio choice values must be preserved, got %q", v)
		}
	}

	if got := len(queryAll(doc, ".tag-form")); got != 3 {
		t.Fatalf("expected 3 tag fragments, got %d", got)
	}
	assertValue(t, doc, "#id_tag-TOTAL_FORMS", "3")
}

func TestAdd_BeforeButtonRequiresButtonInsideContainer(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div id="tag-form-container">
  <input type="hidden" id="id_tag-TOTAL_FORMS" value="1">
  <div class="tag-form"><input name="tag-0-name" value="go"></div>
</div>
<a href="#" id="add-tag-form">Add</a>
</body></html>`)
	manager := newManager(t, doc)

	_, err := manager.Add(model.GroupTag)
	var lookup *formset.LookupError
	if !errors.As(err, &lookup) || lookup.Part != formset.PartButton || lookup.Reason == "" {
		t.Fatalf("expected button lookup error with reason, got %v", err)
	}

	appendManager := newManager(t, doc, formset.WithGroups(model.GroupConfig{
		Tag:           model.GroupTag,
		InsertionMode: model.AppendToContainer,
	}))
	if _, err := appendManager.Add(model.GroupTag); err != nil {
		t.Fatalf("append mode should not require the control inside the container: %v", err)
	}
}

func TestAdd_TemplateLastAndMultiDigitIndices(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="phone-form-container">`)
	sb.WriteString(`<input type="hidden" id="id_phone-TOTAL_FORMS" value="11">`)
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&sb, `<div class="phone-form"><input name="phone-%d-phone_number" id="id_phone-%d-phone_number" value="%d">`, i, i, i)
		if i == 10 {
			sb.WriteString(`<span class="marker">last</span>`)
		}
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`<button id="add-phone-form">Add</button></div></body></html>`)

	doc := parseDoc(t, sb.String())
	manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{
		Tag:            model.GroupPhone,
		TemplateSource: model.TemplateLast,
	}))

	result, err := manager.Add(model.GroupPhone)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if result.Index != 11 {
		t.Fatalf("expected index 11, got %d", result.Index)
	}
	if len(queryAll(result.Node, ".marker")) != 1 {
		t.Fatalf("expected the last fragment to be cloned")
	}
	assertValue(t, result.Node, `[name="phone-11-phone_number"]`, "")
	if id, _ := attr(queryOne(t, result.Node, "input"), "id"); id != "id_phone-11-phone_number" {
		t.Fatalf("multi-digit index not rewritten: %q", id)
	}
	assertValue(t, doc, "#id_phone-TOTAL_FORMS", "12")
}

func TestAdd_EmptyTemplateIsSanitizedAndNumbered(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div id="url-form-container">
  <input type="hidden" id="id_url-TOTAL_FORMS" value="0">
  <a href="#" id="add-url-form">Add website</a>
</div></body></html>`)
	manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{
		Tag: model.GroupURL,
		EmptyTemplate: `<div class="url-form" onclick="steal()">
  <input type="url" name="url-__prefix__-url" id="id_url-__prefix__-url" value="https://stale.example">
  <script>alert(1)</script>
</div>`,
	}))

	for want := 0; want < 2; want++ {
		result, err := manager.Add(model.GroupURL)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if result.Index != want {
			t.Fatalf("index: want %d, got %d", want, result.Index)
		}
		markup := render(t, result.Node)
		if strings.Contains(markup, "script") || strings.Contains(markup, "onclick") {
			t.Fatalf("empty template not sanitized:\n%s", markup)
		}
		assertValue(t, result.Node, fmt.Sprintf(`[name="url-%d-url"]`, want), "")
	}
	assertValue(t, doc, "#id_url-TOTAL_FORMS", "2")
}

func TestAdd_LimitReached(t *testing.T) {
	t.Run("config limit", func(t *testing.T) {
		doc := loadProfile(t)
		manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{Tag: model.GroupPhone, MaxForms: 2}))
		before := render(t, doc)

		if _, err := manager.Add(model.GroupPhone); !errors.Is(err, formset.ErrLimitReached) {
			t.Fatalf("expected ErrLimitReached, got %v", err)
		}
		if render(t, doc) != before {
			t.Fatalf("document mutated by rejected add")
		}
	})

	t.Run("management form limit", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><div id="tag-form-container">
<input type="hidden" id="id_tag-TOTAL_FORMS" value="1">
<input type="hidden" id="id_tag-MAX_NUM_FORMS" value="1">
<div class="tag-form"><input name="tag-0-name"></div>
<a id="add-tag-form" href="#">Add</a></div></body></html>`)
		manager := newManager(t, doc)

		if _, err := manager.Add(model.GroupTag); !errors.Is(err, formset.ErrLimitReached) {
			t.Fatalf("expected ErrLimitReached, got %v", err)
		}
	})
}

func TestAdd_InvalidEmptyTemplate(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="tag-form-container">
<input type="hidden" id="id_tag-TOTAL_FORMS" value="0">
<a id="add-tag-form" href="#">Add</a></div></body></html>`)
	manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{
		Tag:           model.GroupTag,
		EmptyTemplate: `<input name="tag-__prefix__-name"><input name="tag-__prefix__-slug">`,
	}))

	if _, err := manager.Add(model.GroupTag); !errors.Is(err, formset.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}

func TestAdd_UnknownGroup(t *testing.T) {
	manager := newManager(t, loadProfile(t))
	if _, err := manager.Add("fax"); !errors.Is(err, formset.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestAdd_HooksReceiveResults(t *testing.T) {
	var got []string
	manager := newManager(t, loadProfile(t), formset.WithAddHook(func(r formset.Result) {
		got = append(got, fmt.Sprintf("%s:%d", r.Group, r.Total))
	}))

	manager.Activate(model.GroupEmail)
	manager.Activate(model.GroupPhone)
	manager.Activate(model.GroupURL)

	if diff := cmp.Diff([]string{"email:2", "phone:3"}, got); diff != "" {
		t.Fatalf("hook calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_ReportsGroupsInDocument(t *testing.T) {
	manager := newManager(t, loadProfile(t))

	present := formset.Present(manager.Discover())
	got := make(map[string]formset.GroupState, len(present))
	for _, state := range present {
		got[state.Group] = state
	}

	want := map[string]formset.GroupState{
		"email": {Group: "email", Prefix: "email", Count: 1, Counter: 1, Indices: []int{0}, Consistent: true},
		"phone": {Group: "phone", Prefix: "phone", Count: 2, Counter: 2, Max: 1000, Indices: []int{0, 1}, Consistent: true},
		"tag":   {Group: "tag", Prefix: "tag", Count: 1, Counter: 1, Indices: []int{0}, Consistent: true},
		"url":   {Group: "url", Prefix: "url", Count: 0, Counter: -1, Indices: []int{}, Consistent: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("discovered states mismatch (-want +got):\n%s", diff)
	}
}

func TestState_AddBeforeExistingFragmentsStaysConsistent(t *testing.T) {
	doc := loadProfile(t)
	manager := newManager(t, doc)

	// The tag add control sits before the fragments, so the new fragment
	// lands ahead of tag-0.
	if _, err := manager.Add(model.GroupTag); err != nil {
		t.Fatalf("add tag: %v", err)
	}
	state, err := manager.State(model.GroupTag)
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	want := formset.GroupState{Group: "tag", Prefix: "tag", Count: 2, Counter: 2, Indices: []int{1, 0}, Consistent: true}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_IgnoresFragmentsInsideTemplate(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="link-form-container">
<input type="hidden" name="link-TOTAL_FORMS" value="1" id="id_link-TOTAL_FORMS">
<template><div class="link-form"><input type="url" name="link-__prefix__-href" id="id_link-__prefix__-href"></div></template>
<div class="link-form"><input type="url" name="link-0-href" value="https://a.test" id="id_link-0-href"></div>
<button id="add-link-form" type="button">Add link</button>
</div></body></html>`)
	manager := newManager(t, doc, formset.WithGroups(model.GroupConfig{Tag: "link"}))

	before, err := manager.State("link")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if before.Count != 1 || !before.Consistent {
		t.Fatalf("template content counted as a fragment: %+v", before)
	}

	result, err := manager.Add("link")
	if err != nil {
		t.Fatalf("add link: %v", err)
	}
	if result.Index != 1 || result.Total != 2 {
		t.Fatalf("unexpected result index=%d total=%d", result.Index, result.Total)
	}
	assertValue(t, doc, "#id_link-TOTAL_FORMS", "2")
	assertValue(t, result.Node, `[name="link-1-href"]`, "")
}
