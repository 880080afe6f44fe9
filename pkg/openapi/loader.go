package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceFromFS locations.
	FileSystem fs.FS

	// HTTPClient enables URL sources. Nil leaves them disabled unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for SourceFromFS.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// Loader fetches raw documents from files, an fs.FS or HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader. HTTP stays disabled unless a client or the
// fallback is configured.
func NewLoader(options ...LoaderOption) *Loader {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var client *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if cfg.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = cfg.RequestTimeout
		}
		client = &clone
	case cfg.AllowHTTPFallback:
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Loader{fs: cfg.FileSystem, http: client, timeout: cfg.RequestTimeout}
}

// Load returns the raw payload behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch src.Kind() {
	case SourceKindFile:
		return loadFile(src.Location())
	case SourceKindFS:
		return loadFromFS(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("openapi loader: http support disabled")
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
}

func loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("openapi loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func loadFromFS(filesystem fs.FS, name string) ([]byte, error) {
	if filesystem == nil {
		return nil, errors.New("openapi loader: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("openapi loader: fs path is required")
	}
	return fs.ReadFile(filesystem, name)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("openapi loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
