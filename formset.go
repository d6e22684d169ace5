// Package formset is the top-level entry point: it loads an HTML page, binds
// a pkg/formset Manager to it with presets or file-based group
// configuration, and serializes the result.
package formset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formset/pkg/config"
	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/source"
)

// Option customises Open and AddHTML.
type Option func(*pipeline)

type pipeline struct {
	loader  source.Loader
	store   *config.Store
	logger  *slog.Logger
	manager []pkgformset.Option
}

// WithLoader overrides the loader used to read the page.
func WithLoader(loader source.Loader) Option {
	return func(p *pipeline) {
		if loader != nil {
			p.loader = loader
		}
	}
}

// WithConfig overlays file-based group configuration on the presets.
func WithConfig(store *config.Store) Option {
	return func(p *pipeline) {
		p.store = store
	}
}

// WithLogger forwards a logger to the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(p *pipeline) {
		p.logger = logger
	}
}

// WithManagerOptions passes extra options to pkg/formset.New, applied after
// the registry derived from WithConfig.
func WithManagerOptions(options ...pkgformset.Option) Option {
	return func(p *pipeline) {
		p.manager = append(p.manager, options...)
	}
}

// Open loads src, parses it and returns a manager bound to the document.
func Open(ctx context.Context, src source.Source, options ...Option) (*pkgformset.Manager, error) {
	p := &pipeline{}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if p.loader == nil {
		p.loader = NewLoader()
	}

	doc, err := p.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	page, err := pkgformset.Parse(bytes.NewReader(doc.Raw()))
	if err != nil {
		return nil, fmt.Errorf("formset: parse %s: %w", doc.Location(), err)
	}

	var managerOptions []pkgformset.Option
	if p.store != nil {
		registry, err := p.store.Registry()
		if err != nil {
			return nil, err
		}
		managerOptions = append(managerOptions, pkgformset.WithRegistry(registry))
	}
	if p.logger != nil {
		managerOptions = append(managerOptions, pkgformset.WithLogger(p.logger))
	}
	managerOptions = append(managerOptions, p.manager...)

	return pkgformset.New(page, managerOptions...)
}

// AddHTML opens src, adds times fragments to group and returns the updated
// page. Nothing is returned when any add fails.
func AddHTML(ctx context.Context, src source.Source, group string, times int, options ...Option) ([]byte, error) {
	if times < 1 {
		return nil, errors.New("formset: times must be at least 1")
	}
	manager, err := Open(ctx, src, options...)
	if err != nil {
		return nil, err
	}
	if _, err := manager.AddN(group, times); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pkgformset.Render(&buf, manager.Document()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
