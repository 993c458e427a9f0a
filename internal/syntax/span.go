package syntax

import (
	"fmt"
	"go/token"
	"sort"
)

// Span is a half-open byte range [Start, End) into a source buffer.
type Span struct {
	Start int
	End   int
}

// NewSpan builds a span. It does not validate its arguments.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Valid reports whether 0 <= Start <= End.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Within reports whether s is a valid span inside a buffer of size n.
func (s Span) Within(n int) bool {
	return s.Valid() && s.End <= n
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte. Two empty
// spans at the same offset are treated as overlapping, since both would
// insert text at the same place.
func (s Span) Overlaps(other Span) bool {
	if s.Len() == 0 && other.Len() == 0 {
		return s.Start == other.Start
	}
	return s.Start < other.End && other.Start < s.End
}

// Text slices src. The span must be within src.
func (s Span) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// LineIndex converts byte offsets into line/column positions.
type LineIndex struct {
	filename string
	lines    []int // offset of the first byte of each line
	size     int
}

// NewLineIndex indexes src.
func NewLineIndex(filename string, src []byte) *LineIndex {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &LineIndex{filename: filename, lines: lines, size: len(src)}
}

// Position returns the 1-based line and column for offset. Offsets past the
// end of the buffer are clamped.
func (li *LineIndex) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	line := sort.Search(len(li.lines), func(i int) bool {
		return li.lines[i] > offset
	}) - 1
	return token.Position{
		Filename: li.filename,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - li.lines[line] + 1,
	}
}

// LineCount returns the number of lines in the indexed buffer.
func (li *LineIndex) LineCount() int {
	return len(li.lines)
}
