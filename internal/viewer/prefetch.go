package viewer

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"viewerd/internal/stack"
)

const (
	defaultPrefetchWindow  = 5
	defaultPrefetchEntries = 256
)

// Engine is the default PrefetchEngine: it walks the stack outward from the
// cursor, fetching neighbors through the shared fetch service into a bounded
// LRU cache. The arbiter guarantees at most one viewport is enabled.
type Engine struct {
	mu      sync.Mutex
	fetcher ImageFetcher
	cache   *lru.Cache[string, []byte]
	window  int
	stops   map[int]chan struct{}
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewEngine builds an engine caching up to entries images and prefetching at
// most window neighbors on each side of the cursor. Zero values pick
// package defaults.
func NewEngine(fetcher ImageFetcher, entries, window int, log zerolog.Logger) (*Engine, error) {
	if entries <= 0 {
		entries = defaultPrefetchEntries
	}
	if window <= 0 {
		window = defaultPrefetchWindow
	}
	c, err := lru.New[string, []byte](entries)
	if err != nil {
		return nil, err
	}
	return &Engine{
		fetcher: fetcher,
		cache:   c,
		window:  window,
		stops:   make(map[int]chan struct{}),
		log:     log,
	}, nil
}

// Enable starts prefetching around the stack cursor for a viewport,
// replacing any prior run for the same viewport.
func (e *Engine) Enable(vp int, s stack.Stack) {
	e.mu.Lock()
	if stop, ok := e.stops[vp]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	e.stops[vp] = stop
	e.mu.Unlock()

	ids := neighborOrder(s.ImageIDs, s.CurrentIndex, e.window)
	e.wg.Add(1)
	go e.run(vp, ids, stop)
}

// Disable stops the background prefetch for a viewport, if any.
func (e *Engine) Disable(vp int) {
	e.mu.Lock()
	if stop, ok := e.stops[vp]; ok {
		close(stop)
		delete(e.stops, vp)
	}
	e.mu.Unlock()
}

// Cached reports whether an image body is available without a fetch.
func (e *Engine) Cached(imageID string) bool {
	return e.cache.Contains(imageID)
}

// Close stops all prefetch runs and waits for them to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	for vp, stop := range e.stops {
		close(stop)
		delete(e.stops, vp)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) run(vp int, ids []string, stop <-chan struct{}) {
	defer e.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()
	for _, id := range ids {
		select {
		case <-stop:
			return
		default:
		}
		if e.cache.Contains(id) {
			continue
		}
		img, err := e.fetcher.Fetch(ctx, id)
		if err != nil {
			// Background work: log and keep walking.
			e.log.Debug().Int("viewport", vp).Str("image_id", id).Err(err).Msg("prefetch fetch failed")
			continue
		}
		e.cache.Add(id, img.Body)
	}
}

// neighborOrder lists ids outward from the cursor, nearest first, excluding
// the cursor image itself (the load path already fetched it).
func neighborOrder(ids []string, cur, window int) []string {
	var out []string
	for d := 1; d <= window; d++ {
		if i := cur + d; i < len(ids) {
			out = append(out, ids[i])
		}
		if i := cur - d; i >= 0 {
			out = append(out, ids[i])
		}
	}
	return out
}
