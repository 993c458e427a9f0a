package lints

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/rmlint/internal/pattern"
	"github.com/gnolang/rmlint/internal/rewrite"
	"github.com/gnolang/rmlint/internal/rules"
	"github.com/gnolang/rmlint/internal/syntax"
	tt "github.com/gnolang/rmlint/internal/types"
)

const (
	NoFileutilsRmrfRule = "no-fileutils-rmrf"

	noFileutilsRmrfMessage = "Use `FileUtils.rm` or `FileUtils.rm_r` instead of `FileUtils.rm_rf`, " +
		"`FileUtils.rm_f`, or `{FileUtils,Pathname}.rmtree`."
)

// ErrNoArgument means a flagged call has no argument to carry over into the
// safe replacement, so it must be fixed by hand.
var ErrNoArgument = errors.New("call has no argument to carry over")

var (
	// DefaultFileUtilsMethods are the force-remove methods flagged on FileUtils.
	DefaultFileUtilsMethods = []string{"rm_rf", "rm_f", "rmtree"}
	// DefaultPathnameMethods are the force-remove methods flagged on Pathname.
	DefaultPathnameMethods = []string{"rmtree"}
)

// recursiveRemovals map to FileUtils.rm_r; everything else maps to rm.
var recursiveRemovals = map[syntax.Symbol]bool{
	"rm_rf":  true,
	"rmtree": true,
}

// SafeMethod returns the non-forcing FileUtils method replacing method.
func SafeMethod(method syntax.Symbol) string {
	if recursiveRemovals[method] {
		return "rm_r"
	}
	return "rm"
}

// unsafeCallPattern is the node pattern for one receiver constant and its
// set of offending methods.
const unsafeCallPattern = `(send (const {nil? cbase} :%s) %s $%s? ...)`

// UnsafeRemovalPattern compiles
//
//	{(send (const {nil? cbase} :FileUtils) {fileutils...} $arg? ...)
//	 (send (const {nil? cbase} :Pathname) {pathname...} $arg? ...)}
//
// Either method list may be empty to drop that receiver, but not both.
func UnsafeRemovalPattern(fileutils, pathname []string) (pattern.Pattern, error) {
	var alts []string
	for _, recv := range []struct {
		name    string
		methods []string
	}{
		{"FileUtils", fileutils},
		{"Pathname", pathname},
	} {
		if len(recv.methods) == 0 {
			continue
		}
		methods, err := pattern.Symbols(recv.methods...)
		if err != nil {
			return nil, fmt.Errorf("%s pattern: %w", recv.name, err)
		}
		alts = append(alts, fmt.Sprintf(unsafeCallPattern, recv.name, methods, pattern.FirstArg))
	}

	src := "{" + strings.Join(alts, " ") + "}"
	if len(alts) == 1 {
		src = alts[0]
	}
	return pattern.Compile(src)
}

// NewNoFileutilsRmrf builds the handler for the no-fileutils-rmrf rule.
// cfg.Methods, when set, replaces the default FileUtils method list; the
// Pathname receiver keeps only the methods it actually defines.
func NewNoFileutilsRmrf(cfg tt.ConfigRule) ([]rules.Handler, error) {
	fileutils := DefaultFileUtilsMethods
	pathname := DefaultPathnameMethods
	if cfg.Methods != nil {
		fileutils = cfg.Methods
		pathname = intersect(cfg.Methods, DefaultPathnameMethods)
	}

	p, err := UnsafeRemovalPattern(fileutils, pathname)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NoFileutilsRmrfRule, err)
	}

	return []rules.Handler{{
		Rule:     NoFileutilsRmrfRule,
		Category: "style",
		Severity: cfg.Severity,
		Pattern:  p,
		Diagnose: diagnoseRmrf,
		Correct:  correctRmrf,
	}}, nil
}

func diagnoseRmrf(_ *rules.Context, node syntax.Node, m pattern.Result) rules.Diagnostic {
	d := rules.Diagnostic{Message: noFileutilsRmrfMessage}
	if _, ok := m.Capture(pattern.FirstArg); !ok {
		d.Note = fmt.Sprintf("`%s` has no target argument; it cannot be rewritten automatically", node.(*syntax.Call).Method)
	}
	return d
}

// correctRmrf replaces the whole call with FileUtils.<safe>(<first arg>),
// copying the argument's source text verbatim.
func correctRmrf(ctx *rules.Context, node syntax.Node, m pattern.Result, c *rewrite.Corrector) error {
	call, ok := node.(*syntax.Call)
	if !ok {
		return fmt.Errorf("expected a call, got %s", node.Kind())
	}
	arg, ok := m.Capture(pattern.FirstArg)
	if !ok {
		return ErrNoArgument
	}
	c.ReplaceNode(call, fmt.Sprintf("FileUtils.%s(%s)", SafeMethod(call.Method), ctx.Source(arg)))
	return nil
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, s := range b {
		in[s] = true
	}
	var out []string
	for _, s := range a {
		if in[s] {
			out = append(out, s)
		}
	}
	return out
}
