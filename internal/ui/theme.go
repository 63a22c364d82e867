package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

var (
	ColorBg        = tcell.NewRGBColor(16, 16, 32)
	ColorFg        = tcell.NewRGBColor(208, 208, 208)
	ColorBorder    = tcell.NewRGBColor(80, 120, 200)
	ColorTitle     = tcell.ColorWhite
	ColorHighlight = tcell.NewRGBColor(120, 200, 255)
	ColorOnline    = tcell.ColorGreen
	ColorOffline   = tcell.NewRGBColor(128, 128, 128)
	ColorError     = tcell.ColorRed
)

// avatarPalette colors user initials; the pick is a stable hash of the
// user id so a user keeps their color across sessions.
var avatarPalette = []string{
	"blue", "green", "purple", "fuchsia", "navy",
	"red", "yellow", "teal", "orange", "aqua",
}

// colorTag renders a theme color as an inline tview color tag.
func colorTag(c tcell.Color) string {
	return fmt.Sprintf("[#%06x]", c.Hex())
}

func avatarColor(userID string) string {
	hash := 0
	for _, r := range userID {
		hash = int(r) + ((hash << 5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return avatarPalette[hash%len(avatarPalette)]
}
