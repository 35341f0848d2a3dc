// Package idformat renders ids as fixed width decimal strings for use as hash input.
package idformat

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MaxWidth is the number of decimal digits in the largest uint64.
const MaxWidth = 20

// Padding selects the character used to left pad an id up to the formatter width.
type Padding byte

const (
	PaddingZero  Padding = '0'
	PaddingSpace Padding = ' '
)

func (p Padding) String() string {
	switch p {
	case PaddingZero:
		return "zero"
	case PaddingSpace:
		return "space"
	default:
		return fmt.Sprintf("Padding(%q)", byte(p))
	}
}

// ParsePadding parses the names returned by Padding.String.
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(s) {
	case "zero", "":
		return PaddingZero, nil
	case "space":
		return PaddingSpace, nil
	default:
		return 0, errors.Errorf("unknown padding %q; valid values are zero and space", s)
	}
}

// ErrFormattingOverflow is returned when an id has more digits than the formatter width.
type ErrFormattingOverflow struct {
	Id    uint64
	Width int
}

func (err *ErrFormattingOverflow) Error() string {
	return fmt.Sprintf("id %d needs %d digits but the width is %d", err.Id, Digits(err.Id), err.Width)
}

// Formatter writes ids into a buffer it owns, so formatting allocates nothing after construction.
// A Formatter must not be shared between goroutines.
type Formatter struct {
	width   int
	padding Padding
	buf     [MaxWidth]byte
}

// New returns a Formatter producing exactly width characters. Width is clamped to [1, MaxWidth].
func New(width int, padding Padding) *Formatter {
	if width < 1 {
		width = 1
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	return &Formatter{width: width, padding: padding}
}

func (f *Formatter) Width() int {
	return f.width
}

// Format renders id left padded to the formatter width. The returned slice aliases the formatter's buffer and is
// only valid until the next call.
func (f *Formatter) Format(id uint64) ([]byte, error) {
	out := f.buf[:f.width]
	if err := f.FormatInto(out, id); err != nil {
		return nil, err
	}
	return out, nil
}

// FormatInto renders id into the first Width bytes of dst, which must be at least that long.
func (f *Formatter) FormatInto(dst []byte, id uint64) error {
	out := dst[:f.width]
	i := f.width
	n := id
	for {
		if i == 0 {
			return &ErrFormattingOverflow{Id: id, Width: f.width}
		}
		i--
		out[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	for i > 0 {
		i--
		out[i] = byte(f.padding)
	}
	return nil
}

// Digits returns the number of decimal digits needed to print id.
func Digits(id uint64) int {
	digits := 1
	for id >= 10 {
		id /= 10
		digits++
	}
	return digits
}
