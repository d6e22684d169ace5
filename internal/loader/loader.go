package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formset/pkg/source"
)

// Loader implements source.Loader by delegating to file or fs.FS reads.
type Loader struct {
	fs       fs.FS
	maxBytes int64
}

var _ source.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options source.LoaderOptions) *Loader {
	return &Loader{
		fs:       options.FileSystem,
		maxBytes: options.MaxBytes,
	}
}

// Load reads the document referenced by src.
func (l *Loader) Load(ctx context.Context, src source.Source) (source.Document, error) {
	if src == nil {
		return source.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case source.KindFile:
		data, err = loadFile(ctx, src.Location())
	case source.KindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return source.Document{}, err
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return source.Document{}, fmt.Errorf("loader: %s exceeds %d bytes", src.Location(), l.maxBytes)
	}

	return source.NewDocument(src, data)
}
