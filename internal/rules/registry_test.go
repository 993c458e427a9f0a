package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/rmlint/internal/parse"
	"github.com/gnolang/rmlint/internal/pattern"
	"github.com/gnolang/rmlint/internal/rewrite"
	"github.com/gnolang/rmlint/internal/syntax"
	tt "github.com/gnolang/rmlint/internal/types"
)

func describe(msg string) DiagnoseFunc {
	return func(*Context, syntax.Node, pattern.Result) Diagnostic {
		return Diagnostic{Message: msg}
	}
}

func parseContext(t *testing.T, src string) *Context {
	t.Helper()
	f, err := parse.Ruby(context.Background(), "test.rb", []byte(src))
	require.NoError(t, err)
	return NewContext(f)
}

func TestRegister(t *testing.T) {
	t.Parallel()
	p := pattern.MustCompile("(send nil? :puts ...)")

	tests := []struct {
		name    string
		handler Handler
		wantErr bool
	}{
		{"complete", Handler{Rule: "r", Pattern: p, Diagnose: describe("m")}, false},
		{"missing rule", Handler{Pattern: p, Diagnose: describe("m")}, true},
		{"missing pattern", Handler{Rule: "r", Diagnose: describe("m")}, true},
		{"missing diagnose", Handler{Rule: "r", Pattern: p}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := NewRegistry().Register(tc.handler)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHandler)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistryRules(t *testing.T) {
	t.Parallel()
	p := pattern.MustCompile("(send nil? :puts ...)")

	r := NewRegistry()
	require.NoError(t, r.Register(Handler{Rule: "b", Pattern: p, Diagnose: describe("1")}))
	require.NoError(t, r.Register(Handler{Rule: "a", Pattern: p, Diagnose: describe("2")}))
	require.NoError(t, r.Register(Handler{Rule: "b", Pattern: p, Diagnose: describe("3")}))

	assert.Equal(t, []string{"a", "b"}, r.Rules())
	assert.Equal(t, 3, r.Len())
}

func TestRegistryRun(t *testing.T) {
	t.Parallel()
	ctx := parseContext(t, "puts(1)\nwarn(2)\nputs()\n")

	r := NewRegistry()
	require.NoError(t, r.Register(Handler{
		Rule:     "no-puts",
		Category: "style",
		Severity: tt.SeverityWarning,
		Pattern:  pattern.MustCompile("(send nil? :puts $arg? ...)"),
		Diagnose: describe("avoid puts"),
		Correct: func(ctx *Context, node syntax.Node, m pattern.Result, c *rewrite.Corrector) error {
			arg, ok := m.Capture("arg")
			if !ok {
				return errors.New("no argument")
			}
			c.ReplaceNode(node, "logger.info("+ctx.Source(arg)+")")
			return nil
		},
	}))
	require.NoError(t, r.Register(Handler{
		Rule:     "no-warn",
		Pattern:  pattern.MustCompile("(send nil? :warn ...)"),
		Diagnose: describe("avoid warn"),
	}))

	issues := r.Run(ctx, nil)
	require.Len(t, issues, 3)

	first := issues[0]
	assert.Equal(t, "no-puts", first.Rule)
	assert.Equal(t, "style", first.Category)
	assert.Equal(t, "test.rb", first.Filename)
	assert.Equal(t, tt.SeverityWarning, first.Severity)
	assert.Equal(t, 1, first.Start.Line)
	assert.Equal(t, 1, first.Start.Column)
	assert.Equal(t, "logger.info(1)", first.Suggestion)
	require.Len(t, first.Corrections, 1)
	assert.Equal(t, syntax.NewSpan(0, 7), first.Corrections[0].Span)

	var warn, bare tt.Issue
	for _, issue := range issues[1:] {
		if issue.Rule == "no-warn" {
			warn = issue
		} else {
			bare = issue
		}
	}
	assert.Equal(t, 2, warn.Start.Line)
	assert.False(t, warn.Fixable())
	assert.Empty(t, warn.FixError)

	assert.Equal(t, 3, bare.Start.Line)
	assert.False(t, bare.Fixable())
	assert.Equal(t, "no argument", bare.FixError)
}

func TestRegistryRunSkip(t *testing.T) {
	t.Parallel()
	ctx := parseContext(t, "puts(1)\nwarn(2)\n")

	r := NewRegistry()
	require.NoError(t, r.Register(Handler{Rule: "no-puts", Pattern: pattern.MustCompile("(send nil? :puts ...)"), Diagnose: describe("p")}))
	require.NoError(t, r.Register(Handler{Rule: "no-warn", Pattern: pattern.MustCompile("(send nil? :warn ...)"), Diagnose: describe("w")}))
	require.NoError(t, r.Register(Handler{Rule: "off", Severity: tt.SeverityOff, Pattern: pattern.MustCompile("(send nil? :warn ...)"), Diagnose: describe("o")}))

	issues := r.Run(ctx, func(rule string) bool { return rule == "no-puts" })
	require.Len(t, issues, 1)
	assert.Equal(t, "no-warn", issues[0].Rule)
}

func TestRegistrySignature(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	require.NoError(t, r.Register(Handler{Rule: "no-warn", Severity: tt.SeverityWarning, Pattern: pattern.MustCompile("(send nil? :warn ...)"), Diagnose: describe("w")}))
	require.NoError(t, r.Register(Handler{Rule: "no-puts", Severity: tt.SeverityError, Pattern: pattern.MustCompile("(send nil? :puts ...)"), Diagnose: describe("p")}))
	require.NoError(t, r.Register(Handler{Rule: "off", Severity: tt.SeverityOff, Pattern: pattern.MustCompile("(send nil? :p ...)"), Diagnose: describe("o")}))

	all := r.Signature(nil)
	assert.Equal(t, "no-puts|ERROR|(send nil? :puts ...);no-warn|WARNING|(send nil? :warn ...)", all)

	skipped := r.Signature(func(rule string) bool { return rule == "no-puts" })
	assert.Equal(t, "no-warn|WARNING|(send nil? :warn ...)", skipped)
	assert.NotEqual(t, all, skipped)
}
