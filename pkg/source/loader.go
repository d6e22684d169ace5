package source

import (
	"context"
	"io/fs"
)

// Loader reads documents from files or an fs.FS. Implementations live under
// internal/loader; construct one with formset.NewLoader.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs KindFS sources. Loading an fs source without it is an
	// error.
	FileSystem fs.FS
	// MaxBytes caps the document size; zero means unlimited.
	MaxBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithMaxBytes rejects documents larger than n bytes.
func WithMaxBytes(n int64) LoaderOption {
	return func(opts *LoaderOptions) {
		if n > 0 {
			opts.MaxBytes = n
		}
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
