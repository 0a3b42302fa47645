package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const threadLabelWidth = 40

type Threads struct {
	List list.Model
}

func NewThreads(width, height int, styles Styles) *Threads {
	l := list.New([]list.Item{}, channelDelegate{styles: styles}, width, height)
	l.Title = "Threads"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return &Threads{List: l}
}

// SetThreads lists the thread parents found in msgs.
func (t *Threads) SetThreads(msgs []Message) {
	items := make([]list.Item, 0)
	for _, msg := range ThreadItems(msgs) {
		items = append(items, msg)
	}
	t.List.SetItems(items)
}

// ThreadItems turns thread parents into list items keyed by thread timestamp.
func ThreadItems(msgs []Message) []ChannelItem {
	var items []ChannelItem
	for _, msg := range msgs {
		if msg.Thread == "" {
			continue
		}
		label := strings.Join(strings.Fields(msg.Content), " ")
		items = append(items, ChannelItem{
			ID:      msg.Thread,
			Name:    runewidth.Truncate(msg.Name+": "+label, threadLabelWidth, "…"),
			Type:    ChannelTypeThread,
			Members: msg.Replies,
		})
	}
	return items
}

func (t *Threads) Len() int {
	return len(t.List.Items())
}

func (t *Threads) Update(msg tea.Msg) (*Threads, tea.Cmd) {
	var cmd tea.Cmd
	t.List, cmd = t.List.Update(msg)
	return t, cmd
}

func (t *Threads) View() string {
	return t.List.View()
}

func (t *Threads) SetSize(width, height int) {
	t.List.SetSize(width, height)
}

func (t *Threads) SelectedThread() *ChannelItem {
	if item, ok := t.List.SelectedItem().(ChannelItem); ok {
		return &item
	}
	return nil
}
