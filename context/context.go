package context

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/erroneousboat/slackarchive-term/components"
	"github.com/erroneousboat/slackarchive-term/config"
	"github.com/erroneousboat/slackarchive-term/events"
	"github.com/erroneousboat/slackarchive-term/scroll"
	"github.com/erroneousboat/slackarchive-term/service"
)

// AppContext holds everything the panes and commands share.
type AppContext struct {
	Service  *service.ArchiveService
	Config   *config.Config
	Styles   components.Styles
	Debug    *components.Debug
	Bus      *events.Bus
	Poller   *events.Poller
	Frames   *components.FrameScheduler
	Animator *scroll.Animator

	DebugMode bool

	cancel context.CancelFunc
}

const requestTimeout = 15 * time.Second

// CreateAppContext wires the service, event bus and scroll animator for cfg.
// debug receives log output when it is not nil.
func CreateAppContext(cfg *config.Config, debug *components.Debug, debugMode bool) (*AppContext, error) {
	var cache *service.UserCache
	if !cfg.Cache.Disabled {
		path, err := cfg.UserCachePath()
		if err == nil {
			cache, err = service.OpenUserCache(path)
		}
		if err != nil {
			// Names are still resolved from each page's related users.
			log.Warn().Err(err).Msg("context: user cache unavailable")
			cache = nil
		}
	}

	svc, err := service.NewArchiveService(cfg, cache)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	bus := events.NewBus(16)
	frames := components.NewFrameScheduler(cfg.Scroll.FPS)

	return &AppContext{
		Service:   svc,
		Config:    cfg,
		Styles:    components.NewStyles(cfg.Theme),
		Debug:     debug,
		Bus:       bus,
		Poller:    events.NewPoller(svc, bus, time.Duration(cfg.Archive.RefreshSeconds)*time.Second),
		Frames:    frames,
		Animator:  scroll.New(frames, scroll.WithStep(scroll.FrameInterval(cfg.Scroll.FPS).Seconds())),
		DebugMode: debugMode,
	}, nil
}

// Request returns a context bounding one archive request.
func (c *AppContext) Request() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Start runs the poller in the background until Close.
func (c *AppContext) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.Poller.Run(ctx)
}

// Close stops the poller, closes the bus and releases the user cache.
func (c *AppContext) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.Bus.Close()
	if c.Service.PersistentCache != nil {
		return c.Service.PersistentCache.Close()
	}
	return nil
}
