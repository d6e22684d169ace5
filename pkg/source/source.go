package source

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a page, group config, or schema document comes
// from so loaders can read files or fs.FS entries without callers caring
// which.
type Source interface {
	Kind() Kind
	Location() string
}

// Kind enumerates the loader modalities.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
)

// fileSource identifies an on-disk document.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() Kind {
	return KindFile
}

// FromFile returns a Source pointing to a file path.
func FromFile(p string) Source {
	return fileSource{path: filepath.Clean(p)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() Kind {
	return KindFS
}

// FromFS returns a Source identifying a resource inside an fs.FS. Names use
// forward slashes as required by io/fs.
func FromFS(name string) Source {
	return fsSource{name: path.Clean(strings.TrimPrefix(name, "/"))}
}

// Document pairs a payload with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("source: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("source: document " + src.Location() + " is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
