package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/erroneousboat/slackarchive-term/api"
	"github.com/erroneousboat/slackarchive-term/components"
	"github.com/erroneousboat/slackarchive-term/context"
	"github.com/erroneousboat/slackarchive-term/events"
	"github.com/erroneousboat/slackarchive-term/router"
	"github.com/erroneousboat/slackarchive-term/views"
)

var errNoChannels = errors.New("no channels available")

type model struct {
	ctx    *context.AppContext
	view   *views.View
	events <-chan events.Event

	// route is the deep link to open once the channels are known.
	route   router.Route
	channel components.ChannelItem
	current components.MessagePage

	focusThreads bool
	pendingFocus string
	ready        bool
	width        int
	height       int
}

func initialModel(ctx *context.AppContext, open string) (model, error) {
	route := router.Route{Name: router.Home}
	if open != "" {
		r, query, err := router.ParseURL(open)
		if err != nil {
			return model{}, errors.Wrap(err, "open")
		}
		route = r

		// Links copied from the front-end carry the team as a parameter.
		if team := query.Get("team"); team != "" {
			ctx.Config.Archive.Team = team
		}
	}

	view := views.CreateView(ctx.Styles, ctx.Debug)
	view.ShowDebug = ctx.DebugMode

	return model{
		ctx:    ctx,
		view:   view,
		events: ctx.Bus.Subscribe(),
		route:  route,
	}, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadTeamCmd(m.ctx),
		listenEventsCmd(m.events),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Resize(m.width, m.height)

		if !m.ready {
			m.ready = true
			if m.pendingFocus != "" {
				ts := m.pendingFocus
				m.pendingFocus = ""
				cmd := m.focus(ts)
				return m, cmd
			}
		}

	case components.FrameMsg:
		m.ctx.Frames.Flush()
		return m, m.ctx.Frames.Cmd()

	case teamLoadedMsg:
		name := msg.team.Name
		if name == "" {
			name = msg.team.Domain
		}
		m.view.Status.Team = name
		return m, loadChannelsCmd(m.ctx)

	case channelsLoadedMsg:
		log.Debug().Int("channels", len(msg.channels)).Msg("app: channels loaded")
		m.view.Channels.SetChannels(msg.channels)
		cmd := m.openRoute()
		return m, cmd

	case pageLoadedMsg:
		cmd := m.showPage(msg)
		return m, cmd

	case eventMsg:
		if !msg.ok {
			return m, nil
		}
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, listenEventsCmd(m.events))

	case errMsg:
		log.Error().Err(msg.err).Msg("app: request failed")
		m.view.Status.Err = msg.err
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.view.Mode.Get() {
	case components.SearchMode:
		switch msg.String() {
		case "esc":
			m.commandMode()
		case "enter":
			query := m.view.Input.Value()
			m.commandMode()
			return loadPageCmd(m.ctx, m.channel, query, 1, "")
		default:
			var cmd tea.Cmd
			m.view.Input, cmd = m.view.Input.Update(msg)
			return cmd
		}

	case components.FilterMode:
		switch msg.String() {
		case "esc":
			m.view.Channels.Filter("")
			m.commandMode()
		case "enter":
			m.commandMode()
		default:
			var cmd tea.Cmd
			m.view.Input, cmd = m.view.Input.Update(msg)
			m.view.Channels.Filter(m.view.Input.Value())
			return cmd
		}

	case components.CommandMode:
		switch msg.String() {
		case "q", "ctrl+c":
			return tea.Quit
		case "/":
			m.view.Mode.Set(components.SearchMode)
			m.view.Input.Prompt(components.SearchMode)
		case "f":
			m.view.Mode.Set(components.FilterMode)
			m.view.Input.Prompt(components.FilterMode)
		case "esc":
			// Leave a thread or search and go back to the channel.
			if m.current.Thread != "" || m.current.Query != "" {
				return loadPageCmd(m.ctx, m.channel, "", 1, "")
			}
		case "enter":
			if m.focusThreads && m.view.ShowThreads {
				if th := m.view.Threads.SelectedThread(); th != nil {
					return loadThreadCmd(m.ctx, m.channel, th.ID)
				}
				return nil
			}
			if ch := m.view.Channels.SelectedChannel(); ch != nil {
				return loadPageCmd(m.ctx, *ch, "", 1, "")
			}
		case "j", "down", "k", "up":
			var cmd tea.Cmd
			if m.focusThreads && m.view.ShowThreads {
				m.view.Threads, cmd = m.view.Threads.Update(msg)
			} else {
				m.view.Channels, cmd = m.view.Channels.Update(msg)
			}
			return cmd
		case "ctrl+f", "pgdown":
			m.view.Channels.List.Paginator.NextPage()
		case "ctrl+b", "pgup":
			m.view.Channels.List.Paginator.PrevPage()
		case "tab":
			if m.view.ShowThreads {
				m.focusThreads = !m.focusThreads
			}
		case "n":
			if m.current.Thread == "" && m.current.Page < m.current.Pages() {
				return loadPageCmd(m.ctx, m.channel, m.current.Query, m.current.Page+1, "")
			}
		case "p":
			if m.current.Thread == "" && m.current.Page > 1 {
				return loadPageCmd(m.ctx, m.channel, m.current.Query, m.current.Page-1, "")
			}
		case "ctrl+d":
			return m.scrollTo(m.view.Chat.HalfPage(1))
		case "ctrl+u":
			return m.scrollTo(m.view.Chat.HalfPage(-1))
		case "g":
			return m.scrollTo(m.view.Chat.Top())
		case "G":
			return m.scrollTo(m.view.Chat.Bottom())
		case "t":
			m.view.ShowThreads = !m.view.ShowThreads
			if !m.view.ShowThreads {
				m.focusThreads = false
			}
			m.view.Resize(m.width, m.height)
		case "d":
			m.view.ShowDebug = !m.view.ShowDebug
			m.view.Resize(m.width, m.height)
		}
	}

	return nil
}

func (m *model) commandMode() {
	m.view.Mode.Set(components.CommandMode)
	m.view.Input.Blur()
	m.view.Input.SetValue("")
}

// openRoute loads the deep link, or the first channel when there is none.
func (m *model) openRoute() tea.Cmd {
	route := m.route
	m.route = router.Route{Name: router.Home}

	if route.Name != router.Home {
		if ch, ok := m.ctx.Service.ChannelByName(route.Channel); ok {
			m.view.Channels.SelectByID(ch.ID)
			return loadPageCmd(m.ctx, ch, route.Search, max(route.Page, 1), route.ID)
		}
		log.Warn().Str("channel", route.Channel).Msg("app: deep link channel not found")
		m.view.Status.Err = errors.Errorf("channel %q not found", route.Channel)
	}

	ch := m.view.Channels.SelectedChannel()
	if ch == nil {
		return func() tea.Msg { return errMsg{err: errNoChannels} }
	}
	return loadPageCmd(m.ctx, *ch, "", 1, "")
}

func (m *model) showPage(msg pageLoadedMsg) tea.Cmd {
	page := msg.page

	m.channel = msg.channel
	m.current = page
	m.ctx.Animator.Cancel(m.view.Chat)
	m.view.Chat.SetMessages(page.Messages)
	m.view.Threads.SetThreads(page.Messages)
	m.view.Status.Channel = msg.channel.Name
	m.view.Status.SetPage(page)
	m.view.Channels.SetNotification(msg.channel.ID, false)

	id := msg.focus
	if page.Thread != "" {
		id = page.Thread
	}
	route := router.NewRoute(msg.channel.Name, page.Query, page.Page, id)
	m.view.Status.Path = route.Path()
	log.Debug().
		Str("path", route.Path()).
		Int("messages", len(page.Messages)).
		Msg("app: page shown")

	if page.Query == "" && page.Thread == "" && page.Page == 1 {
		m.ctx.Poller.Watch(msg.channel.ID, page.Total)
	}

	if msg.focus == "" {
		return nil
	}
	if !m.ready {
		m.pendingFocus = msg.focus
		return nil
	}
	return m.focus(msg.focus)
}

// focus highlights the message with timestamp ts and scrolls it into view.
func (m *model) focus(ts string) tea.Cmd {
	m.view.Chat.Highlight(ts)

	target, ok := m.view.Chat.TargetOf(ts)
	if !ok {
		log.Warn().Str("ts", ts).Msg("app: message not on this page")
		return nil
	}
	return m.scrollTo(target)
}

// scrollTo animates the chat to target and arms the next frame.
func (m *model) scrollTo(target float64) tea.Cmd {
	cfg := m.ctx.Config.Scroll

	_, err := m.ctx.Animator.Animate(m.view.Chat, target, cfg.Speed, cfg.Easing)
	if err != nil {
		log.Error().Err(err).Msg("app: scroll failed")
		m.view.Status.Err = err
		return nil
	}
	return m.ctx.Frames.Cmd()
}

func (m *model) handleEvent(ev events.Event) tea.Cmd {
	switch ev.Type {
	case events.NewMessages:
		log.Info().Str("channel", ev.ChannelID).Int64("count", ev.Count).Msg("app: new messages")

		onLatest := m.current.Page == 1 && m.current.Query == "" && m.current.Thread == ""
		if ev.ChannelID == m.channel.ID && onLatest {
			return loadPageCmd(m.ctx, m.channel, "", 1, "")
		}
		m.view.Channels.SetNotification(ev.ChannelID, true)

	case events.RefreshFailed:
		m.view.Status.Err = ev.Err
	}
	return nil
}

func (m model) View() string {
	if !m.ready {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7")).
			Bold(true).
			Render("⏳ Loading archive...")
	}
	return m.view.Render()
}

// Messages
type teamLoadedMsg struct {
	team api.Team
}

type channelsLoadedMsg struct {
	channels []components.ChannelItem
}

type pageLoadedMsg struct {
	channel components.ChannelItem
	page    components.MessagePage
	// focus is the timestamp to scroll to once the page is shown.
	focus string
}

type eventMsg struct {
	event events.Event
	ok    bool
}

type errMsg struct {
	err error
}

// Commands
func loadTeamCmd(ctx *context.AppContext) tea.Cmd {
	return func() tea.Msg {
		c, cancel := ctx.Request()
		defer cancel()

		team, err := ctx.Service.ResolveTeam(c)
		if err != nil {
			return errMsg{err: err}
		}
		return teamLoadedMsg{team: team}
	}
}

func loadChannelsCmd(ctx *context.AppContext) tea.Cmd {
	return func() tea.Msg {
		c, cancel := ctx.Request()
		defer cancel()

		channels, err := ctx.Service.GetChannels(c)
		if err != nil {
			return errMsg{err: err}
		}
		if len(channels) == 0 {
			return errMsg{err: errNoChannels}
		}
		return channelsLoadedMsg{channels: channels}
	}
}

func loadPageCmd(ctx *context.AppContext, ch components.ChannelItem, query string, page int, focus string) tea.Cmd {
	return func() tea.Msg {
		c, cancel := ctx.Request()
		defer cancel()

		var (
			p   components.MessagePage
			err error
		)
		if query != "" {
			p, err = ctx.Service.Search(c, ch.ID, query, page)
		} else {
			p, err = ctx.Service.GetMessages(c, ch.ID, page)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return pageLoadedMsg{channel: ch, page: p, focus: focus}
	}
}

func loadThreadCmd(ctx *context.AppContext, ch components.ChannelItem, threadTS string) tea.Cmd {
	return func() tea.Msg {
		c, cancel := ctx.Request()
		defer cancel()

		p, err := ctx.Service.GetThread(c, ch.ID, threadTS)
		if err != nil {
			return errMsg{err: err}
		}
		return pageLoadedMsg{channel: ch, page: p}
	}
}

// listenEventsCmd waits for the next background event. It is re-armed after
// every event.
func listenEventsCmd(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		return eventMsg{event: ev, ok: ok}
	}
}
