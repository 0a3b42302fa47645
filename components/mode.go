package components

// Mode is the input mode shown at the left of the prompt.
type Mode struct {
	current string
	styles  Styles
}

const (
	CommandMode = "COMMAND"
	SearchMode  = "SEARCH"
	FilterMode  = "FILTER"
)

func NewMode(styles Styles) *Mode {
	return &Mode{current: CommandMode, styles: styles}
}

func (m *Mode) Set(mode string) {
	m.current = mode
}

func (m *Mode) Get() string {
	return m.current
}

func (m *Mode) View() string {
	return m.styles.Mode.Render(m.current)
}
