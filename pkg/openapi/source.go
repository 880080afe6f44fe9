package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Source identifies where a document is read from.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }

func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }

func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }

func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL validates raw and returns an HTTP(S) Source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// SourceFor picks a Source for a CLI style location: http(s) URLs load over
// HTTP, everything else from disk.
func SourceFor(location string) (Source, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}
