package fixer

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	headerStyle  = color.New(color.Bold)
	hunkStyle    = color.New(color.FgCyan)
	removedStyle = color.New(color.FgRed)
	addedStyle   = color.New(color.FgGreen)
)

// FormatDiff renders a colored unified diff between before and after.
// It returns "" when they are equal.
func FormatDiff(filename, before, after string) string {
	if before == after {
		return ""
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: filename,
		ToFile:   filename + " (fixed)",
		Context:  2,
	})
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			b.WriteString(headerStyle.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkStyle.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

// splitLines keeps the line terminators. A missing final newline is added
// so every diff line ends in one.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return lines
}
