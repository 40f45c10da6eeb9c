package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

// ANSI palette indexes used by Format.
const (
	ansiRed   = "1"
	ansiBlue  = "4"
	ansiCyan  = "6"
	ansiWhite = "7"
	ansiGray  = "8"
)

var (
	profileMu sync.RWMutex
	profile   = termenv.EnvColorProfile()
)

// SetProfile selects the color profile Format writes with. termenv.Ascii
// disables styling.
func SetProfile(p termenv.Profile) {
	profileMu.Lock()
	profile = p
	profileMu.Unlock()
}

// DisableColors turns styling off.
func DisableColors() { SetProfile(termenv.Ascii) }

// EnableColors restores the profile detected from the environment.
func EnableColors() { SetProfile(termenv.EnvColorProfile()) }

func currentProfile() termenv.Profile {
	profileMu.RLock()
	defer profileMu.RUnlock()
	return profile
}

// styler paints text for one profile.
type styler struct {
	p termenv.Profile
}

func (s styler) paint(text, color string, bold bool) string {
	st := s.p.String(text).Foreground(s.p.Color(color))
	if bold {
		st = st.Bold()
	}
	return st.String()
}

// Format returns a multi-line error message for terminal display.
func (e *LoomError) Format() string {
	s := styler{p: currentProfile()}
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(s.paint("ERROR ", ansiRed, true))
		b.WriteString(s.paint(e.Code+": ", ansiWhite, true))
	} else {
		b.WriteString(s.paint("ERROR: ", ansiRed, true))
	}
	b.WriteString(s.paint(e.Message, ansiWhite, false))
	if e.Op != "" {
		b.WriteString(s.paint(" ["+e.Op+"]", ansiGray, false))
	}
	b.WriteString("\n\n")

	for _, line := range wrapText(e.Detail, 70) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if e.Detail != "" {
		b.WriteString("\n")
	}

	section := func(label, color, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "  %s%s\n\n", s.paint(label, color, false), body)
	}
	if e.Wrapped != nil {
		section("Cause: ", ansiGray, e.Wrapped.Error())
	}
	section("Hint: ", ansiCyan, e.Suggestion)
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", s.paint("Learn more: ", ansiGray, false), s.paint(e.DocURL, ansiBlue, false))
	}
	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *LoomError) FormatCompact() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// wrapText splits text into lines of at most width bytes, breaking at
// spaces. A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// PrintError writes err to w, using the detailed format for LoomErrors.
func PrintError(w io.Writer, err error) {
	var le *LoomError
	if errors.As(err, &le) {
		fmt.Fprint(w, le.Format())
		return
	}
	s := styler{p: currentProfile()}
	fmt.Fprintf(w, "%s %s\n", s.paint("ERROR:", ansiRed, true), err)
}
