// Package source loads markdown documents from disk or over HTTP and
// normalises them to UTF-8 text.
package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// DefaultMaxSize bounds the decoded size of a document.
const DefaultMaxSize int64 = 8 << 20

var (
	ErrBinary            = errors.New("source: content is not text")
	ErrTooLarge          = errors.New("source: content exceeds size limit")
	ErrUnsupportedScheme = errors.New("source: unsupported scheme")
)

// Options controls Load. The zero value is usable.
type Options struct {
	MaxSize    int64
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Digest is the BLAKE3 hash of a source's decoded text.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Source is a loaded document.
type Source struct {
	// Name is the last path element, without a trailing ".xz".
	Name string
	// Location is what Load was called with.
	Location string
	// Path is the file that was read; empty for remote sources.
	Path string
	// Base resolves relative references found in the document: a directory
	// for local files, the document URL for remote ones.
	Base       string
	Text       string
	Digest     Digest
	Compressed bool
}

// Remote reports whether the source was fetched over HTTP.
func (s Source) Remote() bool {
	return strings.HasPrefix(s.Base, "http://") || strings.HasPrefix(s.Base, "https://")
}

// Load reads location, which is a file path, a file:// URL or an http(s) URL.
func Load(ctx context.Context, location string, opts Options) (Source, error) {
	opts.applyDefaults()

	var (
		raw  []byte
		src  = Source{Location: location}
		err  error
		name string
	)
	if strings.Contains(location, "://") {
		u, perr := url.Parse(location)
		if perr != nil {
			return Source{}, fmt.Errorf("source: parse %q: %w", location, perr)
		}
		switch u.Scheme {
		case "file":
			src.Path = filepath.FromSlash(u.Path)
			raw, name, src.Base, err = readFile(ctx, src.Path, opts.MaxSize)
		case "http", "https":
			raw, err = fetch(ctx, opts.HTTPClient, u.String(), opts.MaxSize)
			name = path.Base(u.Path)
			src.Base = u.String()
		default:
			return Source{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
		}
	} else {
		src.Path = location
		raw, name, src.Base, err = readFile(ctx, location, opts.MaxSize)
	}
	if err != nil {
		return Source{}, err
	}

	if isXZ(raw) {
		raw, err = decompressXZ(raw, opts.MaxSize)
		if err != nil {
			return Source{}, fmt.Errorf("source: %s: %w", location, err)
		}
		src.Compressed = true
	}
	src.Name = strings.TrimSuffix(name, ".xz")

	if !isText(src.Name, raw) {
		return Source{}, fmt.Errorf("%w: %s", ErrBinary, location)
	}
	text, err := normalizeText(raw)
	if err != nil {
		return Source{}, fmt.Errorf("source: decode %s: %w", location, err)
	}
	src.Text = text
	src.Digest = blake3.Sum256([]byte(text))

	opts.Logger.Debug("source loaded",
		"location", location,
		"bytes", len(text),
		"compressed", src.Compressed,
		"digest", src.Digest.String()[:16])
	return src, nil
}

func readFile(ctx context.Context, p string, limit int64) (raw []byte, name, dir string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, "", "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, "", "", fmt.Errorf("source: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, "", "", fmt.Errorf("source: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	raw, err = readLimited(f, limit)
	if err != nil {
		return nil, "", "", fmt.Errorf("source: %s: %w", p, err)
	}
	return raw, filepath.Base(abs), filepath.Dir(abs), nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: get %s: %s", rawURL, resp.Status)
	}
	raw, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", rawURL, err)
	}
	return raw, nil
}

func decompressXZ(raw []byte, limit int64) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("xz: %w", err)
	}
	return readLimited(r, limit)
}

// readLimited reads at most limit bytes and fails with ErrTooLarge if r
// holds more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
