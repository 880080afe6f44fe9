package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-fieldset/pkg/openapi"
)

func TestLoader_Sources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.yaml")
	if err := os.WriteFile(path, []byte(shopDocument), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shop.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(shopDocument))
	}))
	defer server.Close()

	remote, err := openapi.SourceFromURL(server.URL + "/shop.yaml")
	if err != nil {
		t.Fatalf("url source: %v", err)
	}
	loader := openapi.NewLoader(
		openapi.WithFileSystem(fstest.MapFS{"specs/shop.yaml": {Data: []byte(shopDocument)}}),
		openapi.WithHTTPClient(server.Client()),
	)

	for name, src := range map[string]openapi.Source{
		"file": openapi.SourceFromFile(path),
		"fs":   openapi.SourceFromFS("specs/shop.yaml"),
		"url":  remote,
	} {
		t.Run(name, func(t *testing.T) {
			schemas, err := loader.Schemas(context.Background(), src)
			if err != nil {
				t.Fatalf("schemas: %v", err)
			}
			if len(schemas) != 2 {
				t.Fatalf("expected two schemas, got %d", len(schemas))
			}
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	loader := openapi.NewLoader()
	ctx := context.Background()

	remote, err := openapi.SourceFromURL("https://example.com/api.yaml")
	if err != nil {
		t.Fatalf("url source: %v", err)
	}
	if _, err := loader.Load(ctx, remote); err == nil {
		t.Fatal("expected http sources to be disabled by default")
	}
	if _, err := loader.Load(ctx, openapi.SourceFromFS("api.yaml")); err == nil {
		t.Fatal("expected a missing filesystem to fail")
	}
	if _, err := loader.Load(ctx, nil); err == nil {
		t.Fatal("expected a nil source to fail")
	}
	if _, err := openapi.SourceFromURL("not a url"); err == nil {
		t.Fatal("expected an invalid URL to fail")
	}

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	missing, _ := openapi.SourceFromURL(server.URL + "/missing")
	if _, err := openapi.NewLoader(openapi.WithHTTPFallback(0)).Load(ctx, missing); err == nil {
		t.Fatal("expected a 404 to fail")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := loader.Load(canceled, openapi.SourceFromFile("api.yaml")); err == nil {
		t.Fatal("expected a canceled context to fail")
	}
}

func TestSourceFor(t *testing.T) {
	src, err := openapi.SourceFor("https://example.com/a.json")
	if err != nil || src.Kind() != openapi.SourceKindURL {
		t.Fatalf("expected a URL source, got %v (err %v)", src, err)
	}
	src, err = openapi.SourceFor("specs/a.yaml")
	if err != nil || src.Kind() != openapi.SourceKindFile {
		t.Fatalf("expected a file source, got %v (err %v)", src, err)
	}
}
