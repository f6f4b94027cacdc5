package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// KeyReader decodes key presses from a terminal in raw mode into the codes
// used by the bindings.
type KeyReader struct {
	r *bufio.Reader
}

// NewKeyReader reads from r.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: bufio.NewReader(r)}
}

// MakeRaw puts stdin into raw mode and returns the function restoring it.
func MakeRaw() (restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("cannot set terminal to raw mode: %w", err)
	}
	return func() { term.Restore(fd, old) }, nil
}

// ReadKey blocks for the next key and returns its code. Unknown escape
// sequences return an empty code.
func (k *KeyReader) ReadKey() (string, error) {
	b, err := k.r.ReadByte()
	if err != nil {
		return "", err
	}

	switch b {
	case 0x1b:
		return k.readEscape()
	case 3:
		return "ctrl_c", nil
	case '\r', '\n':
		return "enter", nil
	case '\t':
		return "tab", nil
	case ' ':
		return "space", nil
	case 127, 8:
		return "backspace", nil
	}
	if b >= 32 && b < 127 {
		return string(rune(b)), nil
	}
	return "", nil
}

// readEscape handles both CSI (ESC [) and SS3 (ESC O) arrow sequences. A
// lone ESC is the escape key.
func (k *KeyReader) readEscape() (string, error) {
	if k.r.Buffered() == 0 {
		return "escape", nil
	}
	b2, err := k.r.ReadByte()
	if err != nil {
		return "escape", nil
	}
	if b2 != '[' && b2 != 'O' {
		return "", nil
	}
	b3, err := k.r.ReadByte()
	if err != nil {
		return "", err
	}
	switch b3 {
	case 'A':
		return "arrow_up", nil
	case 'B':
		return "arrow_down", nil
	case 'C':
		return "arrow_right", nil
	case 'D':
		return "arrow_left", nil
	}
	// Discard the rest of a longer sequence such as ESC [ 1 ; 5 C
	for b3 >= '0' && b3 <= '9' || b3 == ';' {
		if b3, err = k.r.ReadByte(); err != nil {
			return "", err
		}
	}
	return "", nil
}

// LineEditor builds a line of text from key codes, for command consoles.
type LineEditor struct {
	buf []rune
}

// Feed applies one key code. Enter returns the finished line with done set,
// escape or Ctrl+C discard it with cancelled set.
func (e *LineEditor) Feed(code string) (line string, done, cancelled bool) {
	switch code {
	case "enter":
		line = string(e.buf)
		e.Reset()
		return line, true, false
	case "escape", "ctrl_c":
		e.Reset()
		return "", false, true
	case "backspace":
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
		}
	case "space":
		e.buf = append(e.buf, ' ')
	default:
		if r := []rune(code); len(r) == 1 {
			e.buf = append(e.buf, r[0])
		}
	}
	return "", false, false
}

// Text returns the line typed so far.
func (e *LineEditor) Text() string {
	return string(e.buf)
}

// Reset clears the line.
func (e *LineEditor) Reset() {
	e.buf = e.buf[:0]
}
