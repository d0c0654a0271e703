// Package source reads import targets: local files, http(s) URLs and files
// inside git repositories ("<repo>#<path>").
package source

import (
	"context"
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
	"time"

	"github.com/verte-zerg/checkcard/internal/logging"
)

// MaxBytes caps the size of a single imported document.
const MaxBytes = 8 << 20

// ErrTooLarge is returned when a document exceeds MaxBytes.
var ErrTooLarge = errors.New("document is too large")

// Document is the raw text of an import target.
type Document struct {
	// Name is the base file name, used to pick the format.
	Name    string
	Content string
}

// Kind classifies an import target.
type Kind int

const (
	KindFile Kind = iota
	KindHTTP
	KindGit
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindGit:
		return "git"
	default:
		return "file"
	}
}

// Classify reports how target will be read.
func Classify(target string) Kind {
	if _, _, ok := splitGitTarget(target); ok {
		return KindGit
	}
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return KindHTTP
	}
	return KindFile
}

// Resolver fetches documents.
type Resolver struct {
	// CacheDir holds git clones. Required for git targets.
	CacheDir string
	Client   *http.Client
	Logger   *slog.Logger
}

// NewResolver returns a Resolver with a 60 second HTTP timeout.
func NewResolver(cacheDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 60 * time.Second},
		Logger:   logger,
	}
}

// Name returns the document name target would resolve to, without reading it.
func Name(target string) string {
	switch Classify(target) {
	case KindGit:
		_, p, _ := splitGitTarget(target)
		return path.Base(p)
	case KindHTTP:
		if u, err := url.Parse(target); err == nil {
			return path.Base(u.Path)
		}
		return path.Base(target)
	default:
		return filepath.Base(target)
	}
}

// Resolve reads target.
func (r *Resolver) Resolve(ctx context.Context, target string) (Document, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Document{}, fmt.Errorf("import target is empty")
	}
	kind := Classify(target)
	r.logger().Debug("resolving import target", "target", target, "kind", kind.String())
	switch kind {
	case KindGit:
		repo, p, _ := splitGitTarget(target)
		return r.fromGit(ctx, repo, p)
	case KindHTTP:
		return r.fromHTTP(ctx, target)
	default:
		return readFile(target)
	}
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

func readFile(p string) (Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer func() {
		_ = f.Close()
	}()
	content, err := readLimited(f)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return Document{Name: filepath.Base(p), Content: content}, nil
}

func (r *Resolver) fromHTTP(ctx context.Context, target string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return Document{}, fmt.Errorf("failed to create request: %w", err)
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("unexpected status for %s: %s", target, resp.Status)
	}
	content, err := readLimited(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("failed to download %s: %w", target, err)
	}
	return Document{Name: Name(target), Content: content}, nil
}

func readLimited(rd io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(rd, MaxBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxBytes {
		return "", ErrTooLarge
	}
	return string(data), nil
}
