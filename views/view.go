package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/erroneousboat/slackarchive-term/components"
)

const (
	// Rounded border plus one column of padding on each side.
	paneFrameWidth  = 4
	paneFrameHeight = 2
	// Status bar and prompt.
	footerHeight = 2
	minChatWidth = 20
)

// Layout holds the outer widths of the panes. A width of 0 means the pane is
// hidden.
type Layout struct {
	Sidebar int
	Chat    int
	Threads int
	Debug   int
	Height  int
}

// ComputeLayout splits width between the visible panes.
func ComputeLayout(width, height int, showThreads, showDebug bool) Layout {
	l := Layout{
		Sidebar: width / 4,
		Height:  max(height-footerHeight, paneFrameHeight+1),
	}
	if showThreads {
		l.Threads = width / 5
	}
	if showDebug {
		l.Debug = width / 4
	}

	l.Chat = width - l.Sidebar - l.Threads - l.Debug
	if l.Chat < minChatWidth {
		// Give the chat its minimum back from the optional panes.
		l.Debug = 0
		l.Threads = 0
		l.Chat = width - l.Sidebar
	}
	return l
}

func inner(outer int) int {
	return max(outer-paneFrameWidth, 1)
}

func innerHeight(outer int) int {
	return max(outer-paneFrameHeight, 1)
}

type View struct {
	Input    *components.Input
	Chat     *components.Chat
	Channels *components.Channels
	Threads  *components.Threads
	Mode     *components.Mode
	Debug    *components.Debug
	Status   *components.StatusBar

	ShowThreads bool
	ShowDebug   bool

	styles components.Styles
	width  int
	height int
}

// CreateView builds the panes with a placeholder size; call Resize once the
// terminal size is known. debug may be nil.
func CreateView(styles components.Styles, debug *components.Debug) *View {
	if debug == nil {
		debug = components.NewDebug(1, 1)
	}
	return &View{
		Input:    components.NewInput(),
		Chat:     components.NewChat(1, 1, styles),
		Channels: components.NewChannels(1, 1, styles),
		Threads:  components.NewThreads(1, 1, styles),
		Mode:     components.NewMode(styles),
		Debug:    debug,
		Status:   &components.StatusBar{},
		styles:   styles,
	}
}

// Resize lays the panes out for a width x height terminal.
func (v *View) Resize(width, height int) Layout {
	v.width, v.height = width, height

	l := ComputeLayout(width, height, v.ShowThreads, v.ShowDebug)
	h := innerHeight(l.Height)

	v.Channels.SetSize(inner(l.Sidebar), h)
	v.Chat.SetSize(inner(l.Chat), h)
	if l.Threads > 0 {
		v.Threads.SetSize(inner(l.Threads), h)
	}
	if l.Debug > 0 {
		v.Debug.SetSize(inner(l.Debug), h)
	}
	return l
}

func (v *View) pane(outer, height int, content string) string {
	return lipgloss.NewStyle().
		Width(max(outer-2, 1)).
		Height(innerHeight(height)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(v.styles.Border).
		Padding(0, 1).
		Render(content)
}

// Render draws every visible pane and the footer.
func (v *View) Render() string {
	l := ComputeLayout(v.width, v.height, v.ShowThreads, v.ShowDebug)

	panes := []string{
		v.pane(l.Sidebar, l.Height, v.Channels.View()),
		v.pane(l.Chat, l.Height, v.Chat.View()),
	}
	if l.Threads > 0 {
		panes = append(panes, v.pane(l.Threads, l.Height, v.Threads.View()))
	}
	if l.Debug > 0 {
		panes = append(panes, v.pane(l.Debug, l.Height, v.Debug.View()))
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	prompt := lipgloss.NewStyle().
		Width(v.width).
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(
			lipgloss.Left,
			v.Mode.View(),
			v.styles.Muted.Render(" │ "),
			v.Input.View(),
		))

	status := lipgloss.NewStyle().
		Padding(0, 1).
		Render(v.Status.View(max(v.width-2, 0), v.styles))

	return lipgloss.JoinVertical(lipgloss.Left, main, status, prompt)
}
