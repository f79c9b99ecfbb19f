package viewer

import (
	"github.com/rs/zerolog"

	"viewerd/internal/stack"
	"viewerd/internal/studystore"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxViewports = 4
)

// Config encapsulates all tunables and collaborators for Coordinator
// construction. Nil collaborators get in-process defaults.
type Config struct {
	Store          *studystore.Store
	Fetcher        ImageFetcher
	Surfaces       SurfaceProvider
	Bridge         PersistenceBridge
	RefSync        ReferenceLineSync
	Prefetch       PrefetchEngine
	Publisher      EventPublisher
	Logger         *zerolog.Logger
	MaxViewports   int
	ReferenceLines bool
	// ErrorHook is invoked on load failures with the viewport and the image
	// id that failed. Defaults to a warn log.
	ErrorHook func(vp int, imageID string, err error)
}

// NewWithConfig constructs a Coordinator from Config.
func NewWithConfig(cfg Config) *Coordinator {
	c := &Coordinator{
		store:          cfg.Store,
		fetcher:        cfg.Fetcher,
		surfaces:       cfg.Surfaces,
		bridge:         cfg.Bridge,
		refSync:        cfg.RefSync,
		prefetch:       cfg.Prefetch,
		publisher:      cfg.Publisher,
		errorHook:      cfg.ErrorHook,
		refLinesOn:     cfg.ReferenceLines,
		maxViewports:   cfg.MaxViewports,
		index:          stack.NewIndex(),
		viewports:      make(map[int]*Viewport),
		inflight:       make(map[int]string),
		active:         -1,
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	} else {
		c.log = zerolog.Nop()
	}
	if c.maxViewports <= 0 {
		c.maxViewports = defaultMaxViewports
	}
	if c.surfaces == nil {
		c.surfaces = NewHub()
	}
	if c.bridge == nil {
		c.bridge = NewMemoryBridge()
	}
	if c.refSync == nil {
		c.refSync = NewLineSync()
	}
	if c.publisher == nil {
		c.publisher = noopPublisher{}
	}
	if c.errorHook == nil {
		c.errorHook = func(vp int, imageID string, err error) {
			c.log.Warn().Int("viewport", vp).Str("image_id", imageID).Err(err).Msg("image load failed")
		}
	}
	c.resetClock()
	return c
}
