package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Chat shows a page of messages. It is the scroll.Container the animator
// drives: offsets are viewport lines.
type Chat struct {
	Viewport viewport.Model

	styles    Styles
	messages  []Message
	lines     map[string]int
	highlight string
}

func NewChat(width, height int, styles Styles) *Chat {
	// One column is reserved for the scrollbar.
	vp := viewport.New(max(width-1, 1), height)
	return &Chat{
		Viewport: vp,
		styles:   styles,
		lines:    map[string]int{},
	}
}

// SetMessages replaces the content and jumps to the newest message.
func (c *Chat) SetMessages(msgs []Message) {
	c.messages = msgs
	c.highlight = ""
	c.render()
	c.Viewport.GotoBottom()
}

func (c *Chat) Messages() []Message {
	return c.messages
}

func (c *Chat) render() {
	c.lines = make(map[string]int, len(c.messages))

	blocks := make([]string, 0, len(c.messages))
	line := 0
	for _, msg := range c.messages {
		block := RenderMessage(msg, c.Viewport.Width, c.styles, msg.ID == c.highlight)
		c.lines[msg.ID] = line
		line += lipgloss.Height(block)
		blocks = append(blocks, block)
	}

	c.Viewport.SetContent(strings.Join(blocks, "\n"))
}

// LineOf returns the first content line of the message with timestamp ts.
func (c *Chat) LineOf(ts string) (int, bool) {
	line, ok := c.lines[ts]
	return line, ok
}

// Highlight marks the message with timestamp ts without moving the view.
func (c *Chat) Highlight(ts string) {
	offset := c.Viewport.YOffset
	c.highlight = ts
	c.render()
	c.Viewport.SetYOffset(offset)
}

// MaxOffset is the largest offset that still fills the viewport.
func (c *Chat) MaxOffset() int {
	return max(c.Viewport.TotalLineCount()-c.Viewport.Height, 0)
}

func (c *Chat) clamp(offset int) float64 {
	return float64(min(max(offset, 0), c.MaxOffset()))
}

// TargetOf returns the offset that brings the message with timestamp ts into
// the upper third of the viewport.
func (c *Chat) TargetOf(ts string) (float64, bool) {
	line, ok := c.LineOf(ts)
	if !ok {
		return 0, false
	}
	return c.clamp(line - c.Viewport.Height/3), true
}

// HalfPage returns the offset half a viewport up (dir < 0) or down.
func (c *Chat) HalfPage(dir int) float64 {
	step := max(c.Viewport.Height/2, 1)
	if dir < 0 {
		step = -step
	}
	return c.clamp(c.Viewport.YOffset + step)
}

// Top and Bottom return the offsets of the first and last screen.
func (c *Chat) Top() float64    { return 0 }
func (c *Chat) Bottom() float64 { return float64(c.MaxOffset()) }

func (c *Chat) ScrollOffset() float64 {
	return float64(c.Viewport.YOffset)
}

func (c *Chat) SetScrollOffset(offset float64) {
	c.Viewport.SetYOffset(int(math.Round(offset)))
}

func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	var cmd tea.Cmd
	c.Viewport, cmd = c.Viewport.Update(msg)
	return c, cmd
}

func (c *Chat) View() string {
	bar := renderScrollbar(c.Viewport.Height, c.Viewport.TotalLineCount(), c.Viewport.YOffset, c.styles)
	return lipgloss.JoinHorizontal(lipgloss.Top, c.Viewport.View(), bar)
}

func (c *Chat) SetSize(width, height int) {
	offset := c.Viewport.YOffset
	c.Viewport.Width = max(width-1, 1)
	c.Viewport.Height = height
	c.render()
	c.Viewport.SetYOffset(offset)
}
