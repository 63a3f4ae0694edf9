package nacha

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iho/achledger/internal/domain"
)

// RecordLength is the fixed width of every NACHA record.
const RecordLength = 94

// record accumulates fixed-width fields for one line.
type record struct {
	b        strings.Builder
	warnings *[]string
	err      error
}

func newRecord(warnings *[]string) *record {
	r := &record{warnings: warnings}
	r.b.Grow(RecordLength)
	return r
}

// raw appends s verbatim. Callers guarantee the width.
func (r *record) raw(s string) *record {
	r.b.WriteString(s)
	return r
}

// numeric appends v right-justified and zero-padded to width.
func (r *record) numeric(field string, v int64, width int) *record {
	if r.err != nil {
		return r
	}
	s, err := formatNumeric(v, width)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", field, err)
		return r
	}
	r.b.WriteString(s)
	return r
}

// digits appends a string of digits right-justified and zero-padded.
func (r *record) digits(field, v string, width int) *record {
	if r.err != nil {
		return r
	}
	if len(v) > width || (v != "" && !isDigits(v)) {
		r.err = fmt.Errorf("%w: %s must be at most %d digits", domain.ErrEncoding, field, width)
		return r
	}
	r.b.WriteString(strings.Repeat("0", width-len(v)))
	r.b.WriteString(v)
	return r
}

// alpha appends v left-justified and space-padded, truncating with a warning.
func (r *record) alpha(field, v string, width int) *record {
	v = sanitize(v)
	if len(v) > width {
		*r.warnings = append(*r.warnings, fmt.Sprintf("%s truncated to %d characters", field, width))
		v = v[:width]
	}
	r.b.WriteString(v)
	r.b.WriteString(strings.Repeat(" ", width-len(v)))
	return r
}

// blank appends width spaces.
func (r *record) blank(width int) *record {
	r.b.WriteString(strings.Repeat(" ", width))
	return r
}

func (r *record) String() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	s := r.b.String()
	if len(s) != RecordLength {
		return "", fmt.Errorf("%w: record %q has length %d", domain.ErrEncoding, s[:1], len(s))
	}
	return s, nil
}

func formatNumeric(v int64, width int) (string, error) {
	if v < 0 {
		return "", fmt.Errorf("%w: negative value %d", domain.ErrEncoding, v)
	}
	s := strconv.FormatInt(v, 10)
	if len(s) > width {
		return "", fmt.Errorf("%w: value %d overflows %d digits", domain.ErrEncoding, v, width)
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}

// sanitize upper-cases v and replaces anything outside printable ASCII
// with a space.
func sanitize(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, c := range strings.ToUpper(v) {
		if c < 0x20 || c > 0x7e {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
