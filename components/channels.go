package components

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-runewidth"
)

const (
	IconChannel      = "#"
	IconGroup        = "☰"
	IconArchived     = "⌂"
	IconThread       = "↳"
	IconNotification = "*"
)

const (
	ChannelTypeChannel = "channel"
	ChannelTypeGroup   = "group"
	ChannelTypeThread  = "thread"
)

type ChannelItem struct {
	ID           string
	Name         string
	Topic        string
	Type         string
	Members      int
	Archived     bool
	Notification bool
}

func (c ChannelItem) Title() string       { return c.Name }
func (c ChannelItem) Description() string { return c.Topic }
func (c ChannelItem) FilterValue() string { return c.Name }

// ToString will set the label of the channel, how it will be displayed on
// screen. Based on the type, different icons are shown, as well as an
// optional notification icon.
func (c ChannelItem) ToString() string {
	prefix := " "
	if c.Notification {
		prefix = IconNotification
	}

	var icon string
	switch {
	case c.Archived:
		icon = IconArchived
	case c.Type == ChannelTypeGroup:
		icon = IconGroup
	case c.Type == ChannelTypeThread:
		icon = IconThread
	default:
		icon = IconChannel
	}

	return fmt.Sprintf("%s %s %s", prefix, icon, c.Name)
}

// Custom compact delegate
type channelDelegate struct {
	styles Styles
}

func (d channelDelegate) Height() int                               { return 1 }
func (d channelDelegate) Spacing() int                              { return 0 }
func (d channelDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d channelDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(ChannelItem)
	if !ok {
		return
	}

	label := c.ToString()
	if m.Width() > 0 {
		label = runewidth.Truncate(label, m.Width(), "…")
	}

	if index == m.Index() {
		fmt.Fprint(w, d.styles.Selected.Render(label))
		return
	}
	fmt.Fprint(w, d.styles.Muted.Render(label))
}

type Channels struct {
	List   list.Model
	all    []ChannelItem
	filter string
}

func NewChannels(width, height int, styles Styles) *Channels {
	l := list.New([]list.Item{}, channelDelegate{styles: styles}, width, height)
	l.Title = "Channels"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return &Channels{List: l}
}

func (c *Channels) SetChannels(channels []ChannelItem) {
	c.all = channels
	c.apply()
}

// Filter narrows the list to channels fuzzily matching query, best match
// first. An empty query shows every channel.
func (c *Channels) Filter(query string) {
	c.filter = query
	c.apply()
	c.List.Select(0)
}

func (c *Channels) FilterQuery() string { return c.filter }

func (c *Channels) apply() {
	visible := c.all
	if c.filter != "" {
		visible = FilterChannels(c.all, c.filter)
	}

	items := make([]list.Item, len(visible))
	for i, ch := range visible {
		items[i] = ch
	}
	c.List.SetItems(items)
}

// FilterChannels returns the channels whose name fuzzily matches query,
// ordered by match distance.
func FilterChannels(channels []ChannelItem, query string) []ChannelItem {
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]ChannelItem, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, channels[r.OriginalIndex])
	}
	return out
}

// SelectByID moves the cursor to the channel with id.
func (c *Channels) SelectByID(id string) bool {
	for i, item := range c.List.Items() {
		if ch, ok := item.(ChannelItem); ok && ch.ID == id {
			c.List.Select(i)
			return true
		}
	}
	return false
}

// SetNotification flags or clears the unread marker of a channel.
func (c *Channels) SetNotification(id string, on bool) {
	for i := range c.all {
		if c.all[i].ID == id {
			c.all[i].Notification = on
		}
	}
	index := c.List.Index()
	c.apply()
	c.List.Select(index)
}

func (c *Channels) Update(msg tea.Msg) (*Channels, tea.Cmd) {
	var cmd tea.Cmd
	c.List, cmd = c.List.Update(msg)
	return c, cmd
}

func (c *Channels) View() string {
	return c.List.View()
}

func (c *Channels) SetSize(width, height int) {
	c.List.SetSize(width, height)
}

func (c *Channels) SelectedChannel() *ChannelItem {
	if item, ok := c.List.SelectedItem().(ChannelItem); ok {
		return &item
	}
	return nil
}
