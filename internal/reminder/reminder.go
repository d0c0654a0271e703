// Package reminder builds calendar links that schedule the next review.
package reminder

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

const (
	calendarBase = "https://www.google.com/calendar/render"
	// Title is the event title of every reminder.
	Title = "Revisar Flashcards: CheckCard Pro"
)

// Details returns the event description for a session result.
func Details(score, total int) string {
	return fmt.Sprintf("Hora de revisar! Na última sessão você acertou %d de %d cards.", score, total)
}

// CalendarURL returns a Google Calendar "create event" link for the result.
func CalendarURL(score, total int) string {
	return fmt.Sprintf("%s?action=TEMPLATE&text=%s&details=%s&sf=true&output=xml",
		calendarBase, escape(Title), escape(Details(score, total)))
}

// componentUnescaper restores the marks encodeURIComponent leaves as is.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escape percent-encodes s the way encodeURIComponent does.
func escape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Opener launches a URL in the user's browser.
type Opener func(ctx context.Context, link string) error

// Open launches link with the platform's default handler.
func Open(ctx context.Context, link string) error {
	name, args := openCommand(runtime.GOOS, link)
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	// The opener detaches; do not leave a zombie behind.
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(goos, link string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		return "xdg-open", []string{link}
	}
}
