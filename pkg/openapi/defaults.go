package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/source"
)

// KeepExtension marks a hidden property whose value should survive cloning,
// for example a parent foreign key shared by every row.
const KeepExtension = "x-formset-keep"

// ErrSchemaNotFound signals a schema name missing from components.schemas.
var ErrSchemaNotFound = errors.New("openapi: schema not found")

// ResetPolicyFromSchema loads raw as an OpenAPI 3 document and builds a reset
// policy from the named component schema. String and numeric property
// defaults become field values; boolean properties are left out because
// checkboxes are always unchecked on clone.
func ResetPolicyFromSchema(ctx context.Context, raw []byte, schemaName string) (model.ResetPolicy, error) {
	doc, err := load(ctx, raw)
	if err != nil {
		return model.ResetPolicy{}, err
	}
	return policyFor(doc, schemaName)
}

// ResetPolicyFromDocument is ResetPolicyFromSchema for a loaded source
// document.
func ResetPolicyFromDocument(ctx context.Context, doc source.Document, schemaName string) (model.ResetPolicy, error) {
	policy, err := ResetPolicyFromSchema(ctx, doc.Raw(), schemaName)
	if err != nil {
		return model.ResetPolicy{}, fmt.Errorf("%w (document %s)", err, doc.Location())
	}
	return policy, nil
}

// ResetPolicies derives one policy per group. bindings maps a group tag to
// the component schema describing its rows.
func ResetPolicies(ctx context.Context, raw []byte, bindings map[string]string) (map[string]model.ResetPolicy, error) {
	doc, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(bindings))
	for tag := range bindings {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	out := make(map[string]model.ResetPolicy, len(bindings))
	for _, tag := range tags {
		policy, err := policyFor(doc, bindings[tag])
		if err != nil {
			return nil, fmt.Errorf("openapi: group %q: %w", tag, err)
		}
		out[tag] = policy
	}
	return out, nil
}

func load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return doc, nil
}

func policyFor(doc *openapi3.T, schemaName string) (model.ResetPolicy, error) {
	name := strings.TrimSpace(schemaName)
	if doc.Components == nil || doc.Components.Schemas == nil {
		return model.ResetPolicy{}, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return model.ResetPolicy{}, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
	}

	policy := model.ResetPolicy{}
	collect(&policy, ref.Value, make(map[*openapi3.Schema]struct{}))
	return policy, nil
}

func collect(policy *model.ResetPolicy, schema *openapi3.Schema, seen map[*openapi3.Schema]struct{}) {
	if schema == nil {
		return
	}
	if _, ok := seen[schema]; ok {
		return
	}
	seen[schema] = struct{}{}

	for _, part := range schema.AllOf {
		if part != nil {
			collect(policy, part.Value, seen)
		}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		if keep, _ := prop.Value.Extensions[KeepExtension].(bool); keep {
			policy.KeepHidden = append(policy.KeepHidden, name)
			continue
		}
		if prop.Value.Type != nil && prop.Value.Type.Is(openapi3.TypeBoolean) {
			continue
		}
		value, ok := defaultString(prop.Value.Default)
		if !ok {
			continue
		}
		if policy.Fields == nil {
			policy.Fields = make(map[string]string)
		}
		policy.Fields[name] = value
	}
}

func defaultString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
