package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const debugBacklog = 500

// Debug is a pane showing recent log lines. It is an io.Writer so the logger
// can write to it from any goroutine; the viewport is refreshed on View.
type Debug struct {
	Viewport viewport.Model

	mu    sync.Mutex
	lines []string
	dirty bool
}

func NewDebug(width, height int) *Debug {
	return &Debug{Viewport: viewport.New(width, height)}
}

func (d *Debug) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		d.Println(line)
	}
	return len(p), nil
}

func (d *Debug) Println(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append(d.lines, text)
	if len(d.lines) > debugBacklog {
		d.lines = d.lines[len(d.lines)-debugBacklog:]
	}
	d.dirty = true
}

// Lines returns a copy of the buffered lines.
func (d *Debug) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

func (d *Debug) Update(msg tea.Msg) (*Debug, tea.Cmd) {
	var cmd tea.Cmd
	d.Viewport, cmd = d.Viewport.Update(msg)
	return d, cmd
}

func (d *Debug) View() string {
	d.mu.Lock()
	if d.dirty {
		d.Viewport.SetContent(strings.Join(d.lines, "\n"))
		d.Viewport.GotoBottom()
		d.dirty = false
	}
	d.mu.Unlock()

	return d.Viewport.View()
}

func (d *Debug) SetSize(width, height int) {
	d.Viewport.Width = width
	d.Viewport.Height = height
}
