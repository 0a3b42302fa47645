// Package scroll animates the scroll offset of a container with an eased,
// time-bounded tick loop.
package scroll

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultSpeed is the scroll speed in offset units per second.
	DefaultSpeed = 2000.0
	// DefaultEasing is the easing NewRequest selects.
	DefaultEasing = EaseInOutQuint
	// DefaultStep is the nominal time one tick advances the animation.
	DefaultStep = 1.0 / DefaultFPS

	MinDuration = 0.1
	MaxDuration = 0.4
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCancelled       = errors.New("animation cancelled")
)

// Container is a scrollable element. Implementations must be comparable,
// usually a pointer, since the animator tracks running animations per
// container.
type Container interface {
	ScrollOffset() float64
	SetScrollOffset(offset float64)
}

// Request describes one scroll animation.
type Request struct {
	Target float64
	Speed  float64
	Easing string
}

// NewRequest returns a request to target with the default speed and easing.
func NewRequest(target float64) Request {
	return Request{Target: target, Speed: DefaultSpeed, Easing: DefaultEasing}
}

// Duration returns the animation length in seconds for distance at speed,
// clamped to [MinDuration, MaxDuration].
func Duration(distance, speed float64) float64 {
	return math.Max(MinDuration, math.Min(math.Abs(distance)/speed, MaxDuration))
}

// Handle tracks one running animation.
type Handle struct {
	id        string
	duration  float64
	done      chan struct{}
	once      sync.Once
	cancelled atomic.Bool
	err       error
}

func newHandle(duration float64) *Handle {
	return &Handle{
		id:       uuid.NewString(),
		duration: duration,
		done:     make(chan struct{}),
	}
}

func (h *Handle) ID() string { return h.id }

// Duration is the clamped animation length in seconds.
func (h *Handle) Duration() float64 { return h.duration }

// Done is closed once the animation reached its target, failed or was
// cancelled.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns why the animation ended. It is nil while running and after a
// normal finish.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Cancel stops the animation. The pending tick returns without touching the
// container.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.finish(ErrCancelled)
}

func (h *Handle) Cancelled() bool { return h.cancelled.Load() }

func (h *Handle) finish(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

// Option configures an Animator.
type Option func(*Animator)

// WithStep sets how many seconds each tick advances the animation.
func WithStep(seconds float64) Option {
	return func(a *Animator) {
		if seconds > 0 {
			a.step = seconds
		}
	}
}

// Animator runs scroll animations. At most one animation runs per container:
// starting a new one cancels the previous.
type Animator struct {
	scheduler Scheduler
	step      float64

	mu     sync.Mutex
	active map[Container]*Handle
}

func New(scheduler Scheduler, opts ...Option) *Animator {
	a := &Animator{
		scheduler: scheduler,
		step:      DefaultStep,
		active:    make(map[Container]*Handle),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Step returns the seconds each tick advances.
func (a *Animator) Step() float64 { return a.step }

// Animate scrolls c to target at speed offset units per second.
func (a *Animator) Animate(c Container, target, speed float64, easing string) (*Handle, error) {
	return a.ScrollTo(c, Request{Target: target, Speed: speed, Easing: easing})
}

// ScrollTo starts the animation described by req and runs its first tick
// before returning. An unknown easing fails that tick with ErrInvalidArgument
// and leaves the container where it was.
func (a *Animator) ScrollTo(c Container, req Request) (*Handle, error) {
	if !(req.Speed > 0) || math.IsInf(req.Speed, 1) {
		return nil, errors.Wrapf(ErrInvalidArgument, "speed must be positive, got %v", req.Speed)
	}

	start := c.ScrollOffset()
	target := req.Target
	duration := Duration(start-target, req.Speed)
	h := newHandle(duration)

	a.mu.Lock()
	if prev, ok := a.active[c]; ok {
		prev.Cancel()
		log.Debug().Str("handle", prev.id).Msg("scroll: superseded running animation")
	}
	a.active[c] = h
	a.mu.Unlock()

	log.Debug().
		Str("handle", h.id).
		Float64("from", start).
		Float64("to", target).
		Float64("duration", duration).
		Str("easing", req.Easing).
		Msg("scroll: animation started")

	ease, easeErr := Easing(req.Easing)
	elapsed := 0.0

	var tick func()
	tick = func() {
		if h.Cancelled() {
			a.release(c, h)
			return
		}
		if easeErr != nil {
			a.end(c, h, easeErr)
			return
		}

		elapsed += a.step
		p := elapsed / duration
		if start == target {
			p = 1
		}

		if p < 1 {
			c.SetScrollOffset(start + (target-start)*ease(p))
			a.scheduler.Schedule(tick)
			return
		}

		c.SetScrollOffset(target)
		a.end(c, h, nil)
	}
	tick()

	if err := h.Err(); err != nil {
		return nil, err
	}
	return h, nil
}

// Cancel stops the animation running on c, if any.
func (a *Animator) Cancel(c Container) {
	a.mu.Lock()
	h, ok := a.active[c]
	delete(a.active, c)
	a.mu.Unlock()

	if ok {
		h.Cancel()
	}
}

// Active reports whether an animation is still running on c.
func (a *Animator) Active(c Container) bool {
	a.mu.Lock()
	h, ok := a.active[c]
	a.mu.Unlock()

	if !ok {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (a *Animator) end(c Container, h *Handle, err error) {
	h.finish(err)
	a.release(c, h)
	if err != nil {
		log.Debug().Err(err).Str("handle", h.id).Msg("scroll: animation failed")
		return
	}
	log.Debug().Str("handle", h.id).Msg("scroll: animation finished")
}

func (a *Animator) release(c Container, h *Handle) {
	a.mu.Lock()
	if a.active[c] == h {
		delete(a.active, c)
	}
	a.mu.Unlock()
}
