// Package rules holds the explicit rule registry: each entry pairs a
// pattern with the callbacks that describe and correct a match.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/rmlint/internal/pattern"
	"github.com/gnolang/rmlint/internal/rewrite"
	"github.com/gnolang/rmlint/internal/syntax"
	tt "github.com/gnolang/rmlint/internal/types"
)

// ErrInvalidHandler is returned by Register for incomplete handlers.
var ErrInvalidHandler = errors.New("invalid rule handler")

// Context is what a handler sees of the file being checked.
type Context struct {
	File  *syntax.File
	Lines *syntax.LineIndex
}

// NewContext indexes f for position lookups.
func NewContext(f *syntax.File) *Context {
	return &Context{File: f, Lines: syntax.NewLineIndex(f.Name, f.Source)}
}

// Source returns the verbatim text of n.
func (c *Context) Source(n syntax.Node) string {
	return c.File.Text(n)
}

// Diagnostic is the human-facing part of an issue.
type Diagnostic struct {
	Message    string
	Suggestion string
	Note       string
}

// DiagnoseFunc describes a matched node.
type DiagnoseFunc func(ctx *Context, node syntax.Node, m pattern.Result) Diagnostic

// CorrectFunc schedules the fix for a matched node on c. Returning an error
// leaves the issue without a correction.
type CorrectFunc func(ctx *Context, node syntax.Node, m pattern.Result, c *rewrite.Corrector) error

// Handler is one registry entry.
type Handler struct {
	Rule     string
	Category string
	Severity tt.Severity
	Pattern  pattern.Pattern
	Diagnose DiagnoseFunc
	Correct  CorrectFunc // optional
}

// Registry is an ordered collection of handlers.
type Registry struct {
	handlers []Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends h.
func (r *Registry) Register(h Handler) error {
	switch {
	case h.Rule == "":
		return fmt.Errorf("%w: missing rule name", ErrInvalidHandler)
	case h.Pattern == nil:
		return fmt.Errorf("%w: rule %s has no pattern", ErrInvalidHandler, h.Rule)
	case h.Diagnose == nil:
		return fmt.Errorf("%w: rule %s has no diagnose callback", ErrInvalidHandler, h.Rule)
	}
	r.handlers = append(r.handlers, h)
	return nil
}

// Rules returns the distinct registered rule names, sorted.
func (r *Registry) Rules() []string {
	seen := make(map[string]struct{}, len(r.handlers))
	var names []string
	for _, h := range r.handlers {
		if _, ok := seen[h.Rule]; ok {
			continue
		}
		seen[h.Rule] = struct{}{}
		names = append(names, h.Rule)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Signature describes the handlers enabled under skip: rule, severity and
// pattern of each, in a stable order. Registries with equal signatures
// report the same issues.
func (r *Registry) Signature(skip func(rule string) bool) string {
	parts := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		if h.Severity == tt.SeverityOff || (skip != nil && skip(h.Rule)) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s|%s|%s", h.Rule, h.Severity, h.Pattern))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Run walks the tree once and evaluates every enabled handler on every
// node. skip, when non-nil, disables rules by name.
func (r *Registry) Run(ctx *Context, skip func(rule string) bool) []tt.Issue {
	var issues []tt.Issue
	syntax.Walk(ctx.File.Root, func(node syntax.Node) bool {
		for _, h := range r.handlers {
			if h.Severity == tt.SeverityOff || (skip != nil && skip(h.Rule)) {
				continue
			}
			m := pattern.Match(node, h.Pattern)
			if !m.Matched {
				continue
			}
			issues = append(issues, r.report(ctx, h, node, m))
		}
		return true
	})
	return issues
}

func (r *Registry) report(ctx *Context, h Handler, node syntax.Node, m pattern.Result) tt.Issue {
	d := h.Diagnose(ctx, node, m)
	issue := tt.Issue{
		Rule:       h.Rule,
		Category:   h.Category,
		Filename:   ctx.File.Name,
		Message:    d.Message,
		Suggestion: d.Suggestion,
		Note:       d.Note,
		Start:      ctx.Lines.Position(node.Span().Start),
		End:        ctx.Lines.Position(node.Span().End),
		Severity:   h.Severity,
	}
	if h.Correct == nil {
		return issue
	}

	corrector := rewrite.NewCorrector(ctx.File.Source)
	if err := h.Correct(ctx, node, m, corrector); err != nil {
		issue.FixError = err.Error()
		return issue
	}
	issue.Corrections = corrector.Corrections()
	if issue.Suggestion == "" && len(issue.Corrections) == 1 {
		issue.Suggestion = issue.Corrections[0].Replacement
	}
	return issue
}
