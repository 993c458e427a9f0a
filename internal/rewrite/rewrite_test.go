package rewrite

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/rmlint/internal/syntax"
)

func corr(start, end int, text string) Correction {
	return Correction{Span: syntax.NewSpan(start, end), Replacement: text}
}

func TestApplyCorrection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		buf      string
		c        Correction
		expected string
	}{
		{
			name:     "replace call",
			buf:      `x = 1; FileUtils.rm_rf("tmp/build"); y = 2`,
			c:        corr(7, 35, `FileUtils.rm_r("tmp/build")`),
			expected: `x = 1; FileUtils.rm_r("tmp/build"); y = 2`,
		},
		{
			name:     "insert",
			buf:      "abc",
			c:        corr(1, 1, "X"),
			expected: "aXbc",
		},
		{
			name:     "delete",
			buf:      "abc",
			c:        corr(0, 2, ""),
			expected: "c",
		},
		{
			name:     "whole buffer",
			buf:      "abc",
			c:        corr(0, 3, "xyz!"),
			expected: "xyz!",
		},
		{
			name:     "empty buffer",
			buf:      "",
			c:        corr(0, 0, "x"),
			expected: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ApplyCorrection(tt.buf, tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApplyCorrectionOutOfBounds(t *testing.T) {
	t.Parallel()
	for _, c := range []Correction{corr(0, 4, ""), corr(-1, 1, ""), corr(3, 2, ""), corr(5, 5, "")} {
		_, err := ApplyCorrection("abc", c)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSpanOutOfBounds)

		var oob *SpanOutOfBoundsError
		require.True(t, errors.As(err, &oob))
		assert.Equal(t, 3, oob.BufSize)
	}
}

func TestApplyAllOverlap(t *testing.T) {
	t.Parallel()
	buf := strings.Repeat("x", 40)
	cs := []Correction{corr(10, 20, "a"), corr(15, 25, "b")}

	got, err := ApplyAll(buf, cs)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, ErrOverlap)

	var oe *OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, syntax.NewSpan(10, 20), oe.First.Span)
	assert.Equal(t, syntax.NewSpan(15, 25), oe.Second.Span)
}

func TestApplyAllIsAllOrNothing(t *testing.T) {
	t.Parallel()
	buf := "0123456789"
	_, err := ApplyAll(buf, []Correction{corr(0, 1, "a"), corr(8, 12, "b")})
	assert.ErrorIs(t, err, ErrSpanOutOfBounds)

	_, err = ApplyAll(buf, []Correction{corr(0, 1, "a"), corr(5, 7, "b"), corr(6, 6, "c")})
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Equal(t, "0123456789", buf)
}

func TestApplyAllSpanIntegrity(t *testing.T) {
	t.Parallel()
	buf := `FileUtils.rm_rf("a")` + "\n" + `puts 1` + "\n" + `Pathname.rmtree(dir)` + "\n"
	cs := []Correction{
		corr(21+7, 21+7+20, `FileUtils.rm(dir)`),
		corr(0, 20, `FileUtils.rm_r("a")`),
	}
	input := append([]Correction(nil), cs...)

	got, err := ApplyAll(buf, cs)
	require.NoError(t, err)
	assert.Equal(t, `FileUtils.rm_r("a")`+"\n"+`puts 1`+"\n"+`FileUtils.rm(dir)`+"\n", got)
	assert.Equal(t, input, cs, "input order must be preserved")

	removed, added := 0, 0
	for _, c := range cs {
		removed += c.Span.Len()
		added += len(c.Replacement)
	}
	assert.Equal(t, len(buf)-removed+added, len(got))
	assert.Contains(t, got, "\nputs 1\n")
}

func TestApplyAllAdjacentAndInsertions(t *testing.T) {
	t.Parallel()
	got, err := ApplyAll("abcdef", []Correction{
		corr(2, 4, "XY"),
		corr(0, 2, "__"),
		corr(4, 4, "+"),
		corr(6, 6, "!"),
	})
	require.NoError(t, err)
	assert.Equal(t, "__XY+ef!", got)

	got, err = ApplyAll("abc", []Correction{corr(1, 2, "B"), corr(1, 1, ">")})
	require.NoError(t, err)
	assert.Equal(t, "a>Bc", got)
}

func TestApplyAllEmpty(t *testing.T) {
	t.Parallel()
	got, err := ApplyAll("unchanged", nil)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", got)
}

func TestCorrector(t *testing.T) {
	t.Parallel()
	src := []byte(`FileUtils.rm_rf("tmp")`)
	call := &syntax.Call{
		Receiver:  &syntax.ConstantRef{Name: "FileUtils", Loc: syntax.NewSpan(0, 9)},
		Method:    "rm_rf",
		Arguments: []syntax.Node{&syntax.Literal{Text: `"tmp"`, Loc: syntax.NewSpan(16, 21)}},
		Loc:       syntax.NewSpan(0, 22),
	}

	c := NewCorrector(src)
	assert.Equal(t, `"tmp"`, c.Source(call.FirstArgument()))
	c.ReplaceNode(call, "FileUtils.rm_r("+c.Source(call.FirstArgument())+")")
	c.Insert(22, "\n")

	got, err := c.Apply()
	require.NoError(t, err)
	assert.Equal(t, "FileUtils.rm_r(\"tmp\")\n", got)
	assert.Len(t, c.Corrections(), 2)

	c.Remove(syntax.NewSpan(0, 5))
	_, err = c.Apply()
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Equal(t, `FileUtils.rm_rf("tmp")`, string(src))
}
