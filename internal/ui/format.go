package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"chat-client/internal/models"
)

func formatTime(ts time.Time) string {
	return ts.Local().Format("3:04 PM")
}

// dayLabel renders the date header a message group sits under.
func dayLabel(ts time.Time, now time.Time) string {
	ts = ts.Local()
	today := now.Local().Truncate(24 * time.Hour)
	day := ts.Truncate(24 * time.Hour)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.Add(-24 * time.Hour)):
		return "Yesterday"
	case ts.Year() == now.Year():
		return ts.Format("Jan 2")
	default:
		return ts.Format("Jan 2 2006")
	}
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		runes := []rune(word)
		out = append(out, []rune(strings.ToUpper(string(runes[0])))...)
		if len(out) >= 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// renderContent produces the display line for a message body. Media
// messages show the descriptor instead of raw JSON.
func renderContent(msg models.Message, fileURL func(string) string) string {
	if !msg.IsMedia() {
		return tview.Escape(msg.Content)
	}
	info, err := msg.File()
	if err != nil {
		return tview.Escape(msg.Content)
	}
	label := fmt.Sprintf("[%s] %s (%s)", msg.Type, info.OriginalName, formatSize(info.Size))
	if fileURL != nil && info.Filename != "" {
		label += " " + fileURL(info.Filename)
	}
	return tview.Escape(label)
}
