// Package fixer writes rule corrections back to source files.
package fixer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gnolang/rmlint/internal/parse"
	"github.com/gnolang/rmlint/internal/rewrite"
	tt "github.com/gnolang/rmlint/internal/types"
)

// maxPasses bounds the relint loop for nested offences.
const maxPasses = 10

// ErrNotFixable is returned when none of the issues carries a correction.
var ErrNotFixable = errors.New("no correctable issues")

// RelintFunc lints an in-memory buffer. The fixer uses it to pick up
// corrections that were deferred because they overlapped another one.
type RelintFunc func(source []byte) ([]tt.Issue, error)

type Fixer struct {
	DryRun bool
	// Out receives dry-run diffs and status lines. Nil discards them.
	Out    io.Writer
	Relint RelintFunc
}

// Result summarises one Fix call.
type Result struct {
	Filename string
	Applied  int
	Skipped  int
	Passes   int
	Before   string
	After    string
}

// Changed reports whether the file content differs after fixing.
func (r Result) Changed() bool {
	return r.Before != r.After
}

func New(dryRun bool, out io.Writer) *Fixer {
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Fix applies every correction attached to issues to filename. Either all
// selected corrections are written, or on any error the file is left
// untouched.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (Result, error) {
	res := Result{Filename: filename}

	content, err := os.ReadFile(filename)
	if err != nil {
		return res, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		return res, fmt.Errorf("failed to stat file: %w", err)
	}
	res.Before = string(content)

	after, err := f.fixSource(&res, res.Before, issues)
	if err != nil {
		return res, fmt.Errorf("could not auto-fix %s: %w", filename, err)
	}
	res.After = after

	if !res.Changed() {
		return res, nil
	}

	if f.DryRun {
		f.printf("%s", FormatDiff(filename, res.Before, res.After))
		return res, nil
	}

	if err := os.WriteFile(filename, []byte(res.After), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("failed to write file: %w", err)
	}
	f.printf("Fixed %d issue(s) in %s\n", res.Applied, filename)
	return res, nil
}

// FixSource is Fix for an in-memory buffer.
func (f *Fixer) FixSource(source string, issues []tt.Issue) (Result, error) {
	res := Result{Before: source}
	after, err := f.fixSource(&res, source, issues)
	if err != nil {
		return res, err
	}
	res.After = after
	return res, nil
}

func (f *Fixer) fixSource(res *Result, source string, issues []tt.Issue) (string, error) {
	current := source
	for pass := 0; pass < maxPasses; pass++ {
		selected, deferred, skipped := selectCorrections(issues)
		if pass == 0 {
			res.Skipped = skipped
			if len(selected) == 0 {
				if len(issues) > 0 {
					return source, ErrNotFixable
				}
				return source, nil
			}
		}
		if len(selected) == 0 {
			break
		}

		var cs []rewrite.Correction
		for _, group := range selected {
			cs = append(cs, group...)
		}
		next, err := rewrite.ApplyAll(current, cs)
		if err != nil {
			return source, err
		}
		if err := parse.Check(context.Background(), []byte(next)); err != nil {
			return source, fmt.Errorf("corrected source does not parse: %w", err)
		}
		current = next
		res.Applied += len(selected)
		res.Passes = pass + 1

		if deferred == 0 || f.Relint == nil {
			break
		}
		issues, err = f.Relint([]byte(current))
		if err != nil {
			return source, fmt.Errorf("relint failed: %w", err)
		}
	}
	return current, nil
}

// selectCorrections picks, in source order, the corrections of every
// fixable issue that does not overlap one already picked. An issue's
// corrections are taken together or not at all.
func selectCorrections(issues []tt.Issue) (selected [][]rewrite.Correction, deferred, skipped int) {
	var fixable []tt.Issue
	for _, issue := range issues {
		if !issue.Fixable() {
			skipped++
			continue
		}
		fixable = append(fixable, issue)
	}
	sort.SliceStable(fixable, func(i, j int) bool {
		return fixable[i].Start.Offset < fixable[j].Start.Offset
	})

	var taken []rewrite.Correction
	for _, issue := range fixable {
		if overlapsAny(issue.Corrections, taken) {
			deferred++
			continue
		}
		selected = append(selected, issue.Corrections)
		taken = append(taken, issue.Corrections...)
	}
	return selected, deferred, skipped
}

func overlapsAny(cs, taken []rewrite.Correction) bool {
	for _, c := range cs {
		for _, t := range taken {
			if c.Span.Overlaps(t.Span) {
				return true
			}
		}
	}
	return false
}

// FixAll groups issues by file and fixes each file in name order. Errors
// are collected per file; other files are still fixed.
func (f *Fixer) FixAll(issues []tt.Issue) ([]Result, error) {
	byFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	names := make([]string, 0, len(byFile))
	for name := range byFile {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		results []Result
		errs    []error
	)
	for _, name := range names {
		res, err := f.Fix(name, byFile[name])
		if errors.Is(err, ErrNotFixable) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (f *Fixer) printf(format string, args ...any) {
	if f.Out == nil {
		return
	}
	fmt.Fprintf(f.Out, format, args...)
}
