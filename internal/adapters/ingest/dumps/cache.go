package dumps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
)

// Cache keeps downloaded dumps in a flat directory
// Each file is fetched at most once; a .meta sidecar records where it came from
// Optional retention by hour age and total bytes
type Cache struct {
	dir     string
	fetcher *HTTPFetcher

	// zero disables the dimension
	maxAge   time.Duration
	maxBytes int64
	swept    atomic.Int64 // unix seconds of the last retention sweep

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// sweepEvery throttles retention sweeps
const sweepEvery = 10 * time.Minute

// Meta is the sidecar json written next to each downloaded file
type Meta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithRetention drops dumps whose hour is older than maxAge, then the oldest hours
// until the directory holds at most maxBytes; zero leaves a dimension unbounded
func WithRetention(maxAge time.Duration, maxBytes int64) CacheOption {
	return func(c *Cache) { c.maxAge, c.maxBytes = maxAge, maxBytes }
}

// NewCache creates dir when missing; f may be nil for a default fetcher
func NewCache(dir string, f *HTTPFetcher, opts ...CacheOption) (*Cache, error) {
	if dir == "" {
		return nil, perr.InvalidArgf("dumps: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dumps: create cache dir %s", dir)
	}
	if f == nil {
		f = NewHTTPFetcher("", 0)
	}
	c := &Cache{dir: dir, fetcher: f, locks: map[string]*sync.Mutex{}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string { return c.dir }

// Path returns where name lives in the cache, whether or not it exists
func (c *Cache) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", perr.InvalidArgf("dumps: %q is not a pageviews dump name", name)
	}
	return filepath.Join(c.dir, name), nil
}

// IsCached reports whether name is already on disk
func (c *Cache) IsCached(name string) (bool, error) {
	path, err := c.Path(name)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular(), nil
}

// Download stores name locally unless it is already there
// downloaded is false when the file was served from disk
func (c *Cache) Download(ctx context.Context, name string) (path string, downloaded bool, err error) {
	return c.ensure(ctx, name, nil)
}

// Fetch downloads name once and opens the local copy
// The file is opened under the name lock so a retention sweep cannot remove it first
func (c *Cache) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	var f *os.File
	_, _, err := c.ensure(ctx, name, func(path string) error {
		var oerr error
		if f, oerr = os.Open(path); oerr != nil {
			return perr.Wrapf(oerr, perr.ErrorCodeUnavailable, "dumps: open %s", path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ensure makes name present on disk and runs use, when set, while holding the name lock
func (c *Cache) ensure(ctx context.Context, name string, use func(path string) error) (path string, downloaded bool, err error) {
	path, err = c.Path(name)
	if err != nil {
		return "", false, err
	}
	lk := c.lockFor(name)
	lk.Lock()
	defer lk.Unlock()

	log := logger.C(ctx).With().Str("file", name).Logger()
	if fi, serr := os.Stat(path); serr == nil && fi.Mode().IsRegular() {
		log.Debug().Msg("dumps: cache hit")
		if use != nil {
			if err := use(path); err != nil {
				return "", false, err
			}
		}
		return path, false, nil
	}
	log.Debug().Msg("dumps: cache miss")

	resp, err := c.fetcher.get(ctx, name)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	start := time.Now()
	n, err := writeAtomic(path, func(w io.Writer) (int64, error) { return io.Copy(w, resp.Body) })
	if err != nil {
		return "", false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dumps: download %s", name)
	}

	meta := Meta{
		URL:          resp.Request.URL.String(),
		ETag:         strings.TrimSpace(resp.Header.Get("ETag")),
		LastModified: strings.TrimSpace(resp.Header.Get("Last-Modified")),
		Size:         n,
		FetchedAt:    time.Now().UTC(),
	}
	if _, err := writeAtomic(sidecar(path), func(w io.Writer) (int64, error) {
		return 0, json.NewEncoder(w).Encode(meta)
	}); err != nil {
		log.Warn().Err(err).Msg("dumps: write meta sidecar")
	}
	log.Info().Int64("bytes", n).Dur("took", time.Since(start)).Msg("dumps: downloaded")

	if use != nil {
		if err := use(path); err != nil {
			return "", false, err
		}
	}
	c.sweepSoon(path)
	return path, true, nil
}

// Meta returns the sidecar of a downloaded file
// Files placed in the directory by hand have none and yield NotFound
func (c *Cache) Meta(name string) (*Meta, error) {
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(sidecar(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perr.NotFoundf("dumps: no metadata for %s", name)
	}
	if err != nil {
		return nil, err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("dumps: decode %s: %w", sidecar(path), err)
	}
	return &m, nil
}

func (c *Cache) lockFor(name string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.locks[name]
	if !ok {
		lk = &sync.Mutex{}
		c.locks[name] = lk
	}
	return lk
}

func sidecar(path string) string { return path + ".meta" }

// writeAtomic writes through a .part file renamed over path once write and close succeed
func writeAtomic(path string, write func(io.Writer) (int64, error)) (int64, error) {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

// sweepSoon runs a retention sweep unless one ran within sweepEvery; keep survives it
func (c *Cache) sweepSoon(keep string) {
	if c.maxAge <= 0 && c.maxBytes <= 0 {
		return
	}
	now := time.Now().Unix()
	last := c.swept.Load()
	if last != 0 && now-last < int64(sweepEvery/time.Second) {
		return
	}
	if !c.swept.CompareAndSwap(last, now) {
		return
	}
	if err := c.cleanupOnce(keep); err != nil {
		logger.Named("dumps").Warn().Err(err).Str("dir", c.dir).Msg("dumps: retention sweep failed")
	}
}

type cachedDump struct {
	name string
	path string
	hour time.Time
	size int64
}

func (d cachedDump) remove() {
	_ = os.Remove(d.path)
	_ = os.Remove(sidecar(d.path))
}

// cleanupOnce applies age retention, then size retention oldest hour first
// keep and files whose name lock is held count toward the total but are never removed
func (c *Cache) cleanupOnce(keep string) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-c.maxAge)
	var kept []cachedDump
	var total int64
	for _, e := range entries {
		hour, err := ParseFilename(e.Name())
		if err != nil || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		d := cachedDump{name: e.Name(), path: filepath.Join(c.dir, e.Name()), hour: hour, size: info.Size()}
		if d.path != keep && c.maxAge > 0 && hour.Before(cutoff) && c.tryRemove(d) {
			continue
		}
		kept = append(kept, d)
		total += d.size
	}
	if c.maxBytes <= 0 {
		return nil
	}
	slices.SortFunc(kept, func(a, b cachedDump) int { return a.hour.Compare(b.hour) })
	for _, d := range kept {
		if total <= c.maxBytes {
			break
		}
		if d.path != keep && c.tryRemove(d) {
			total -= d.size
		}
	}
	return nil
}

// tryRemove deletes d unless a download or open of the same name holds its lock
func (c *Cache) tryRemove(d cachedDump) bool {
	lk := c.lockFor(d.name)
	if !lk.TryLock() {
		return false
	}
	defer lk.Unlock()
	d.remove()
	return true
}
