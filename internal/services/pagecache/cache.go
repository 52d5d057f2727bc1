package pagecache

import (
	"strings"
	"sync"
	"time"
)

// Entry is a rendered response for one path/key pair.
type Entry struct {
	Body        []byte
	ContentType string
	StoredAt    time.Time
}

type page struct {
	mu      sync.RWMutex
	gen     uint64
	entries map[string]Entry
}

// DefaultMaxEntries bounds the query variants kept per path.
const DefaultMaxEntries = 256

// Cache holds rendered pages by logical path. A path can hold several entries,
// one per query variant (key), up to maxEntries; past that the oldest entry
// is evicted.
type Cache struct {
	pages      sync.Map // path -> *page
	maxEntries int
	nowFunc    func() time.Time
}

func New() *Cache {
	return NewWithLimit(DefaultMaxEntries)
}

// NewWithLimit returns a cache holding at most maxEntries entries per path.
func NewWithLimit(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{maxEntries: maxEntries, nowFunc: time.Now}
}

// Age is how long ago e was stored.
func (c *Cache) Age(e Entry) time.Duration {
	return c.nowFunc().Sub(e.StoredAt)
}

func normalize(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func (c *Cache) page(path string) *page {
	val, _ := c.pages.LoadOrStore(normalize(path), &page{entries: map[string]Entry{}})
	return val.(*page)
}

// Get returns the cached entry for path and key.
func (c *Cache) Get(path, key string) (Entry, bool) {
	val, ok := c.pages.Load(normalize(path))
	if !ok {
		return Entry{}, false
	}
	p := val.(*page)
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[key]
	return e, ok
}

// Generation returns the current generation of path. Callers that render a page
// read it before querying and hand it to Set, so a render that raced with
// RevalidatePath is dropped instead of cached.
func (c *Cache) Generation(path string) uint64 {
	p := c.page(path)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gen
}

// Set stores an entry if path has not been revalidated since gen was read.
// It reports whether the entry was stored.
func (c *Cache) Set(path, key string, gen uint64, e Entry) bool {
	p := c.page(path)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return false
	}
	if e.StoredAt.IsZero() {
		e.StoredAt = c.nowFunc()
	}
	if _, ok := p.entries[key]; !ok && len(p.entries) >= c.maxEntries {
		p.evictOldest()
	}
	p.entries[key] = e
	return true
}

func (p *page) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range p.entries {
		if !found || e.StoredAt.Before(oldest) {
			oldestKey, oldest, found = k, e.StoredAt, true
		}
	}
	if found {
		delete(p.entries, oldestKey)
	}
}

// RevalidatePath discards every cached render of path.
func (c *Cache) RevalidatePath(path string) {
	p := c.page(path)
	p.mu.Lock()
	p.gen++
	p.entries = map[string]Entry{}
	p.mu.Unlock()
}

// Len returns the number of entries cached for path.
func (c *Cache) Len(path string) int {
	val, ok := c.pages.Load(normalize(path))
	if !ok {
		return 0
	}
	p := val.(*page)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
