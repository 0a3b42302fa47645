package scroll

import (
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
)

// DefaultFPS is the nominal frame rate of the tick loop.
const DefaultFPS = 60

// Scheduler runs a callback on the next frame. Implementations decide what a
// frame is: a display refresh, a timer, or a test step.
type Scheduler interface {
	Schedule(fn func())
}

// FrameInterval returns the wall-clock length of one frame at fps.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(harmonica.FPS(fps) * float64(time.Second))
}

// TimerScheduler runs callbacks on their own timer goroutine after Interval.
// Containers driven by it must tolerate writes from other goroutines.
type TimerScheduler struct {
	Interval time.Duration
}

// NewTimerScheduler returns a TimerScheduler firing fps times per second.
func NewTimerScheduler(fps int) *TimerScheduler {
	return &TimerScheduler{Interval: FrameInterval(fps)}
}

func (s *TimerScheduler) Schedule(fn func()) {
	interval := s.Interval
	if interval <= 0 {
		interval = FrameInterval(DefaultFPS)
	}
	time.AfterFunc(interval, fn)
}

// ManualScheduler queues callbacks until the caller advances it. Every call to
// Step is one frame.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Step runs the callbacks queued before the call and returns how many ran.
// Callbacks scheduled while stepping wait for the next frame.
func (s *ManualScheduler) Step() int {
	s.mu.Lock()
	frame := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range frame {
		fn()
	}
	return len(frame)
}

// Run steps until nothing is pending or maxFrames frames ran, and returns the
// number of frames stepped.
func (s *ManualScheduler) Run(maxFrames int) int {
	frames := 0
	for frames < maxFrames && s.Pending() > 0 {
		s.Step()
		frames++
	}
	return frames
}
