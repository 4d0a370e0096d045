// Package imagefetch resolves image references found in a document and
// decodes their headers off the UI goroutine.
package imagefetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kk-code-lab/mdview/internal/markdown"
)

const (
	DefaultWorkers   = 4
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 16 << 20
	DefaultCacheSize = 128
)

var (
	ErrNoURL             = errors.New("imagefetch: image has no url")
	ErrUnsupportedScheme = errors.New("imagefetch: unsupported scheme")
)

// Ref identifies one image to fetch. Base resolves relative URLs: a
// directory path or an absolute http(s) URL.
type Ref struct {
	Index int
	URL   string
	Base  string
}

// Result is the outcome for one Ref. On success Width, Height and Format
// describe the decoded image header.
type Result struct {
	Index    int
	URL      string
	Location string
	Width    int
	Height   int
	Format   string
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

// Config tunes a Fetcher. Zero fields take the package defaults.
type Config struct {
	Workers    int
	Timeout    time.Duration
	MaxBytes   int64
	CacheSize  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// imageInfo is what the cache keeps per resolved location.
type imageInfo struct {
	width, height int
	format        string
}

// Fetcher is safe for concurrent use.
type Fetcher struct {
	cfg   Config
	cache *lru[string, imageInfo]
}

func New(cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		cfg:   cfg,
		cache: newLRU[string, imageInfo](cfg.CacheSize),
	}
}

// RefsFor lists the image blocks of doc as fetch references.
func RefsFor(doc markdown.Document, base string) []Ref {
	images := doc.Images()
	refs := make([]Ref, 0, len(images))
	for _, img := range images {
		refs = append(refs, Ref{Index: img.Index, URL: img.Image.URL, Base: base})
	}
	return refs
}

// Fetch resolves a single reference. Failures are reported in Result.Err.
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) Result {
	res := Result{Index: ref.Index, URL: ref.URL}
	loc, remote, err := resolve(ref)
	if err != nil {
		res.Err = err
		return res
	}
	res.Location = loc

	if info, ok := f.cache.get(loc); ok {
		res.Width, res.Height, res.Format = info.width, info.height, info.format
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	var info imageInfo
	if remote {
		info, err = f.fetchRemote(ctx, loc)
	} else {
		info, err = f.readLocal(ctx, loc)
	}
	if err != nil {
		f.cfg.Logger.Debug("image fetch failed", "url", ref.URL, "location", loc, "err", err)
		res.Err = err
		return res
	}
	f.cache.put(loc, info)
	res.Width, res.Height, res.Format = info.width, info.height, info.format
	return res
}

// Start fetches refs on a pool of workers. The channel receives one Result
// per ref, in completion order, and is closed when all are done or ctx ends.
func (f *Fetcher) Start(ctx context.Context, refs []Ref) <-chan Result {
	out := make(chan Result, len(refs))
	jobs := make(chan Ref)

	var wg sync.WaitGroup
	for range min(f.cfg.Workers, max(len(refs), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				out <- f.Fetch(ctx, ref)
			}
		}()
	}

	go func() {
		defer func() {
			close(jobs)
			wg.Wait()
			close(out)
		}()
		for _, ref := range refs {
			select {
			case jobs <- ref:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Stats returns cache statistics.
func (f *Fetcher) Stats() CacheStats {
	return f.cache.snapshot()
}

// resolve turns a reference into a file path or absolute URL.
func resolve(ref Ref) (loc string, remote bool, err error) {
	raw := strings.TrimSpace(ref.URL)
	if raw == "" {
		return "", false, ErrNoURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("imagefetch: parse %q: %w", raw, err)
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return u.String(), true, nil
	case u.Scheme == "file":
		return filepath.FromSlash(u.Path), false, nil
	case u.Scheme != "" && !isDriveLetter(u.Scheme):
		return "", false, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if strings.HasPrefix(ref.Base, "http://") || strings.HasPrefix(ref.Base, "https://") {
		base, err := url.Parse(ref.Base)
		if err != nil {
			return "", false, fmt.Errorf("imagefetch: parse base %q: %w", ref.Base, err)
		}
		return base.ResolveReference(u).String(), true, nil
	}
	p := filepath.FromSlash(raw)
	if !filepath.IsAbs(p) && ref.Base != "" {
		p = filepath.Join(ref.Base, p)
	}
	return p, false, nil
}

func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}

func (f *Fetcher) readLocal(ctx context.Context, path string) (imageInfo, error) {
	if err := ctx.Err(); err != nil {
		return imageInfo{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return imageInfo{}, fmt.Errorf("imagefetch: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return decodeHeader(io.LimitReader(file, f.cfg.MaxBytes), path)
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL string) (imageInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return imageInfo{}, fmt.Errorf("imagefetch: %w", err)
	}
	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return imageInfo{}, fmt.Errorf("imagefetch: get %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return imageInfo{}, fmt.Errorf("imagefetch: get %s: %s", rawURL, resp.Status)
	}
	return decodeHeader(io.LimitReader(resp.Body, f.cfg.MaxBytes), rawURL)
}

func decodeHeader(r io.Reader, name string) (imageInfo, error) {
	cfg, format, err := image.DecodeConfig(bufio.NewReader(r))
	if err != nil {
		return imageInfo{}, fmt.Errorf("imagefetch: decode %s: %w", name, err)
	}
	return imageInfo{width: cfg.Width, height: cfg.Height, format: format}, nil
}
