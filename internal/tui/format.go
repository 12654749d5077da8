package tui

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var counts = message.NewPrinter(language.English)

// FormatRows renders a row count with thousands separators.
func FormatRows(n int64) string {
	return counts.Sprintf("%d", n)
}

// FormatElapsed rounds d for display.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
