package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Message is a rendered-ready archive message. Attachments and files are
// carried as sub-messages.
type Message struct {
	ID       string
	Channel  string
	Time     time.Time
	Name     string
	Content  string
	Thread   string
	Replies  int
	// Matches are the search terms the archive highlighted in Content.
	Matches  []string
	Messages []Message
}

// MessagePage is one page of a channel's history or of search results,
// oldest message first.
type MessagePage struct {
	ChannelID string
	Query     string
	Thread    string
	Page      int
	Size      int
	Total     int64
	Messages  []Message
	Buckets   map[string]int64
}

// Pages returns the number of pages the result set spans, at least one.
func (p MessagePage) Pages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// FormatDate renders dt as "Jan 2, 2006 15:04", or "January 2, 2006" when
// full is set.
func FormatDate(dt time.Time, full bool) string {
	if full {
		return dt.Format("January 2, 2006")
	}
	return dt.Format("Jan 2, 2006 15:04")
}

// RenderMessage renders msg wrapped to width.
func RenderMessage(msg Message, width int, styles Styles, highlight bool) string {
	name := styles.Name
	if highlight {
		name = styles.Highlight
	}

	header := fmt.Sprintf("%s %s",
		styles.Time.Render("["+FormatDate(msg.Time, false)+"]"),
		name.Render("<"+msg.Name+">"),
	)

	body := wrap(highlightTerms(msg.Content, msg.Matches, styles.Highlight), width, styles.Text)
	if msg.Content == "" {
		body = ""
	}

	var b strings.Builder
	b.WriteString(header)
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}

	for _, sub := range msg.Messages {
		b.WriteString("\n")
		b.WriteString(wrap(IconThread+" "+highlightTerms(sub.Content, sub.Matches, styles.Highlight), width, styles.Muted))
	}

	if msg.Thread != "" && msg.Replies > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Muted.Render(fmt.Sprintf("%s %d replies", IconThread, msg.Replies)))
	}

	return b.String()
}

// highlightTerms renders every occurrence of terms in text with style.
func highlightTerms(text string, terms []string, style lipgloss.Style) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		text = strings.ReplaceAll(text, term, style.Render(term))
	}
	return text
}

func wrap(text string, width int, style lipgloss.Style) string {
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}
