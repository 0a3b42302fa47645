package components

import (
	"strings"
)

const (
	scrollbarThumb = "█"
	scrollbarTrack = "│"
)

// renderScrollbar creates a vertical scrollbar, one character per line.
// height: viewport height in lines
// totalLines: total content lines
// scrollOffset: line number at the top of the viewport
func renderScrollbar(height, totalLines, scrollOffset int, styles Styles) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, height)

	if totalLines <= height {
		for i := range lines {
			lines[i] = styles.Muted.Render(scrollbarTrack)
		}
		return strings.Join(lines, "\n")
	}

	// Thumb size is proportional to the visible share, minimum 1 line
	thumbSize := (height * height) / totalLines
	if thumbSize < 1 {
		thumbSize = 1
	}

	scrollRatio := float64(scrollOffset) / float64(totalLines-height)
	if scrollRatio < 0 {
		scrollRatio = 0
	}
	if scrollRatio > 1 {
		scrollRatio = 1
	}
	thumbPos := int(scrollRatio * float64(height-thumbSize))

	for i := range lines {
		if i >= thumbPos && i < thumbPos+thumbSize {
			lines[i] = styles.Text.Render(scrollbarThumb)
		} else {
			lines[i] = styles.Muted.Render(scrollbarTrack)
		}
	}

	return strings.Join(lines, "\n")
}
