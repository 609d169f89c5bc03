package hal

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Rows is the number of text lines on the panel display.
const Rows = 2

// Display renders the panel's text output.
type Display interface {
	// Show clears the screen and writes up to Rows lines.
	Show(lines ...string) error
	// Echo appends a single character on the current line, e.g. '*'.
	Echo(c byte) error
}

// clearScreen is the ANSI sequence for "clear and home".
const clearScreen = "\x1b[2J\x1b[H"

// TextDisplay renders the display on an io.Writer such as a terminal.
//
// Line endings are "\r\n" so output stays aligned when the terminal is in
// raw mode for the keypad.
type TextDisplay struct {
	mu   sync.Mutex
	w    io.Writer
	ansi bool
}

var _ Display = (*TextDisplay)(nil)

// NewTextDisplay creates a display on w. When ansi is true the screen is
// cleared before each Show; otherwise screens are separated by a rule.
func NewTextDisplay(w io.Writer, ansi bool) *TextDisplay {
	return &TextDisplay{w: w, ansi: ansi}
}

// Show implements Display.
func (d *TextDisplay) Show(lines ...string) error {
	if len(lines) > Rows {
		lines = lines[:Rows]
	}

	var b strings.Builder
	if d.ansi {
		b.WriteString(clearScreen)
	} else {
		b.WriteString("\r\n----------------\r\n")
	}
	b.WriteString(strings.Join(lines, "\r\n"))

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := io.WriteString(d.w, b.String()); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// Echo implements Display.
func (d *TextDisplay) Echo(c byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.w.Write([]byte{c}); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
