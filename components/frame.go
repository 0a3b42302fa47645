package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erroneousboat/slackarchive-term/scroll"
)

// FrameMsg asks the model to run the callbacks queued for this frame.
type FrameMsg struct {
	Time time.Time
}

// FrameScheduler drives scroll animations from the bubbletea event loop so
// every tick runs inside Update, on the same goroutine as rendering.
type FrameScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	pending []func()
	armed   bool
}

func NewFrameScheduler(fps int) *FrameScheduler {
	return &FrameScheduler{interval: scroll.FrameInterval(fps)}
}

func (f *FrameScheduler) Schedule(fn func()) {
	f.mu.Lock()
	f.pending = append(f.pending, fn)
	f.mu.Unlock()
}

// Cmd returns the tick for the next frame, or nil when nothing is queued or
// a tick is already on its way.
func (f *FrameScheduler) Cmd() tea.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 || f.armed {
		return nil
	}
	f.armed = true
	return tea.Tick(f.interval, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

// Flush runs the callbacks queued before the call and returns how many ran.
func (f *FrameScheduler) Flush() int {
	f.mu.Lock()
	frame := f.pending
	f.pending = nil
	f.armed = false
	f.mu.Unlock()

	for _, fn := range frame {
		fn()
	}
	return len(frame)
}

// Pending returns the number of queued callbacks.
func (f *FrameScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
