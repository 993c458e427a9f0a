// Package rewrite applies span-indexed text corrections to a source buffer.
//
// Corrections replace byte ranges of the original buffer. Text outside the
// corrected spans is preserved byte for byte; nodes are never re-rendered.
package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/rmlint/internal/syntax"
)

var (
	// ErrSpanOutOfBounds means a correction does not fit the buffer, usually
	// because the tree was derived from a different buffer.
	ErrSpanOutOfBounds = errors.New("span out of bounds")
	// ErrOverlap means two corrections of one batch intersect.
	ErrOverlap = errors.New("overlapping corrections")
)

// SpanOutOfBoundsError reports the offending span and buffer size.
type SpanOutOfBoundsError struct {
	Span    syntax.Span
	BufSize int
}

func (e *SpanOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: %s in buffer of %d bytes", ErrSpanOutOfBounds, e.Span, e.BufSize)
}

func (e *SpanOutOfBoundsError) Unwrap() error { return ErrSpanOutOfBounds }

// OverlapError reports the first pair of intersecting corrections.
type OverlapError struct {
	First  Correction
	Second Correction
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: %s and %s", ErrOverlap, e.First.Span, e.Second.Span)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// Correction replaces Span with Replacement.
type Correction struct {
	Span        syntax.Span
	Replacement string
}

// Delta is the change in buffer length after applying c.
func (c Correction) Delta() int {
	return len(c.Replacement) - c.Span.Len()
}

// ApplyCorrection returns buf with c applied. buf itself is not modified.
func ApplyCorrection(buf string, c Correction) (string, error) {
	if !c.Span.Within(len(buf)) {
		return "", &SpanOutOfBoundsError{Span: c.Span, BufSize: len(buf)}
	}
	var sb strings.Builder
	sb.Grow(len(buf) + c.Delta())
	sb.WriteString(buf[:c.Span.Start])
	sb.WriteString(c.Replacement)
	sb.WriteString(buf[c.Span.End:])
	return sb.String(), nil
}

// ApplyAll applies every correction in one pass. Either all corrections are
// applied or, on the first invalid span or overlapping pair, none are and
// the error is returned. The input slice is left untouched.
func ApplyAll(buf string, corrections []Correction) (string, error) {
	if len(corrections) == 0 {
		return buf, nil
	}

	sorted, err := prepare(len(buf), corrections)
	if err != nil {
		return "", err
	}

	// descending start offset, so earlier offsets stay valid
	out := buf
	for _, c := range sorted {
		if out, err = ApplyCorrection(out, c); err != nil {
			return "", err
		}
	}
	return out, nil
}

// prepare validates the batch and returns it sorted by descending start.
func prepare(size int, corrections []Correction) ([]Correction, error) {
	for _, c := range corrections {
		if !c.Span.Within(size) {
			return nil, &SpanOutOfBoundsError{Span: c.Span, BufSize: size}
		}
	}

	// pairwise, so the reported pair follows input order
	for i := range corrections {
		for j := i + 1; j < len(corrections); j++ {
			if corrections[i].Span.Overlaps(corrections[j].Span) {
				return nil, &OverlapError{First: corrections[i], Second: corrections[j]}
			}
		}
	}

	sorted := make([]Correction, len(corrections))
	copy(sorted, corrections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start > sorted[j].Span.Start
		}
		// an insertion at the start of a replaced span goes in front of it
		return sorted[i].Span.End > sorted[j].Span.End
	})
	return sorted, nil
}
