package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Terminal renders latency onto a single rewritten line of w. It serves as
// both the display target and the trigger of a command line sampler.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	prefix  string
	lastLen int
}

// NewTerminal creates a terminal surface; prefix is printed before each value
func NewTerminal(w io.Writer, prefix string) *Terminal {
	return &Terminal{w: w, prefix: prefix}
}

// Disable prints the trigger label on its own line
func (t *Terminal) Disable(label string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintln(t.w, label)
	return err
}

// Render overwrites the current line with text
func (t *Terminal) Render(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := t.prefix + text
	pad := ""
	if n := t.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	t.lastLen = len(line)

	_, err := fmt.Fprintf(t.w, "\r%s%s", line, pad)
	return err
}

// Close ends the current line so later output starts cleanly
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastLen == 0 {
		return nil
	}
	t.lastLen = 0
	_, err := fmt.Fprintln(t.w)
	return err
}
