// Package scan provides a forward-only byte cursor over text that never
// returns a slice ending inside a multi-byte UTF-8 code point.
//
// Callers supply predicates over single bytes. Only ASCII bytes (< 0x80) are
// ever offered to a predicate, so a match can never land on a continuation
// byte. Every returned slice is still validated before it is handed back.
package scan

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when a consumed slice is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid unicode byte sequence")

// Scanner is a cursor over the bytes of a string.
type Scanner struct {
	remaining string
}

// New returns a Scanner positioned at the start of text.
func New(text string) *Scanner {
	return &Scanner{remaining: text}
}

// Done reports whether the input has been fully consumed.
func (s *Scanner) Done() bool {
	return len(s.remaining) == 0
}

// Remaining returns the number of unread bytes.
func (s *Scanner) Remaining() int {
	return len(s.remaining)
}

// ReadUntil consumes bytes until match returns true for an ASCII byte.
// The matching byte is included in the result when includeMatch is set,
// otherwise it is left unread. Without a match the rest of the input is
// consumed and returned.
func (s *Scanner) ReadUntil(match func(b byte) bool, includeMatch bool) (string, error) {
	for i := 0; i < len(s.remaining); i++ {
		b := s.remaining[i]
		if b >= utf8.RuneSelf || !match(b) {
			continue
		}
		end := i
		if includeMatch {
			end = i + 1
		}
		return s.take(end)
	}
	return s.take(len(s.remaining))
}

// ReadUntilByte consumes bytes up to, but not including, the next c.
func (s *Scanner) ReadUntilByte(c byte) (string, error) {
	return s.ReadUntil(func(b byte) bool { return b == c }, false)
}

// ReadLine consumes one line including its trailing newline, if any.
// An empty result means the input is exhausted.
func (s *Scanner) ReadLine() (string, error) {
	return s.ReadUntil(func(b byte) bool { return b == '\n' }, true)
}

// TryMatch consumes literal if the unread input starts with it.
func (s *Scanner) TryMatch(literal string) bool {
	if !strings.HasPrefix(s.remaining, literal) {
		return false
	}
	s.remaining = s.remaining[len(literal):]
	return true
}

// NextByte consumes a single byte. ok is false at end of input.
func (s *Scanner) NextByte() (b byte, ok bool) {
	if len(s.remaining) == 0 {
		return 0, false
	}
	b = s.remaining[0]
	s.remaining = s.remaining[1:]
	return b, true
}

func (s *Scanner) take(n int) (string, error) {
	read := s.remaining[:n]
	s.remaining = s.remaining[n:]
	if !utf8.ValidString(read) {
		return "", ErrInvalidUTF8
	}
	return read, nil
}
