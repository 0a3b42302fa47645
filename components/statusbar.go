package components

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-runewidth"
)

// StatusBar summarizes what the chat pane shows.
type StatusBar struct {
	Team    string
	Channel string
	Query   string
	Thread  bool
	Page    int
	Pages   int
	Total   int64
	Err     error

	// Channels is the number of channels with search hits.
	Channels int
	// Path is the archive link of the shown page.
	Path string
}

// SetPage copies the position of page into the status bar.
func (s *StatusBar) SetPage(page MessagePage) {
	s.Query = page.Query
	s.Thread = page.Thread != ""
	s.Page = page.Page
	s.Pages = page.Pages()
	s.Total = page.Total
	s.Channels = 0
	if page.Query != "" {
		for _, n := range page.Buckets {
			if n > 0 {
				s.Channels++
			}
		}
	}
	s.Err = nil
}

// View renders the status text truncated to width.
func (s *StatusBar) View(width int, styles Styles) string {
	if s.Err != nil {
		return styles.Highlight.Render(runewidth.Truncate("error: "+s.Err.Error(), max(width, 0), "…"))
	}

	var parts []string
	if s.Team != "" {
		parts = append(parts, s.Team)
	}
	if s.Channel != "" {
		parts = append(parts, "#"+s.Channel)
	}
	if s.Thread {
		parts = append(parts, "thread")
	}
	if s.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.Query))
	}
	if s.Page > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", s.Page, max(s.Pages, 1)))
		total := humanize.Comma(s.Total) + " messages"
		if s.Channels > 0 {
			total += fmt.Sprintf(" in %d %s", s.Channels, english.PluralWord(s.Channels, "channel", ""))
		}
		parts = append(parts, total)
	}
	if s.Path != "" {
		parts = append(parts, s.Path)
	}

	text := strings.Join(parts, " · ")
	if width > 0 {
		text = runewidth.Truncate(text, width, "…")
	}
	return styles.Muted.Render(text)
}
