// Package pattern implements a declarative matcher over syntax trees.
//
// A Pattern is an immutable constraint tree: node-kind constraints,
// symbol-set constraints, alternatives, captures and argument wildcards.
// Patterns are built with the constructors in this package or compiled from
// the node-pattern DSL with Compile, so a malformed pattern is rejected
// before it can be used.
package pattern

import (
	"sort"
	"strings"

	"github.com/gnolang/rmlint/internal/syntax"
)

// FirstArg is the capture name reserved for a call's first argument.
const FirstArg = "arg"

// Pattern describes the shape of a node.
type Pattern interface {
	// match reports whether n satisfies the pattern, recording captures in b.
	// n is nil when the node is absent.
	match(n syntax.Node, b bindings) bool
	String() string
}

type bindings map[string]syntax.Node

// anyPattern matches every present node.
type anyPattern struct{}

// Any matches any present node (`_`).
func Any() Pattern { return anyPattern{} }

func (anyPattern) match(n syntax.Node, _ bindings) bool { return n != nil }
func (anyPattern) String() string                       { return "_" }

// nilPattern matches an absent node.
type nilPattern struct{}

// Nil matches an absent receiver or qualifier (`nil?`).
func Nil() Pattern { return nilPattern{} }

func (nilPattern) match(n syntax.Node, _ bindings) bool { return n == nil }
func (nilPattern) String() string                       { return "nil?" }

type rootPattern struct{}

// Root matches the explicit top-level marker (`cbase`).
func Root() Pattern { return rootPattern{} }

func (rootPattern) match(n syntax.Node, _ bindings) bool {
	return n != nil && n.Kind() == syntax.KindRoot
}
func (rootPattern) String() string { return "cbase" }

// SymbolSet is a non-empty set of method or constant names.
type SymbolSet struct {
	names map[syntax.Symbol]struct{}
}

// Symbols builds a symbol-set constraint. It fails on an empty set or an
// empty name.
func Symbols(names ...string) (SymbolSet, error) {
	if len(names) == 0 {
		return SymbolSet{}, malformed(-1, "empty symbol set")
	}
	set := make(map[syntax.Symbol]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return SymbolSet{}, malformed(-1, "empty symbol in set")
		}
		set[syntax.Symbol(name)] = struct{}{}
	}
	return SymbolSet{names: set}, nil
}

// MustSymbols is like Symbols but panics on error.
func MustSymbols(names ...string) SymbolSet {
	s, err := Symbols(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether sym is in the set.
func (s SymbolSet) Has(sym syntax.Symbol) bool {
	_, ok := s.names[sym]
	return ok
}

// Names returns the members in sorted order.
func (s SymbolSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, string(name))
	}
	sort.Strings(out)
	return out
}

func (s SymbolSet) empty() bool { return len(s.names) == 0 }

func (s SymbolSet) String() string {
	names := s.Names()
	if len(names) == 1 {
		return ":" + names[0]
	}
	return "{:" + strings.Join(names, " :") + "}"
}

type unionPattern struct {
	alts []Pattern
}

// Union matches when any alternative matches (`{a b}`). Alternatives are
// tried in order; captures from failed alternatives are discarded.
func Union(alts ...Pattern) (Pattern, error) {
	if len(alts) == 0 {
		return nil, malformed(-1, "empty union")
	}
	for _, alt := range alts {
		if alt == nil {
			return nil, malformed(-1, "nil alternative in union")
		}
		if isArgOnly(alt) {
			return nil, malformed(-1, "argument wildcard used as union alternative")
		}
	}
	return unionPattern{alts: append([]Pattern(nil), alts...)}, nil
}

func (u unionPattern) match(n syntax.Node, b bindings) bool {
	for _, alt := range u.alts {
		trial := b.clone()
		if alt.match(n, trial) {
			b.merge(trial)
			return true
		}
	}
	return false
}

func (u unionPattern) String() string {
	parts := make([]string, len(u.alts))
	for i, alt := range u.alts {
		parts[i] = alt.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

type constPattern struct {
	qualifier Pattern
	names     SymbolSet
}

// Const matches a constant reference whose qualifier matches qualifier and
// whose name is in names. Use Union(Nil(), Root()) to accept both FileUtils
// and ::FileUtils.
func Const(qualifier Pattern, names SymbolSet) (Pattern, error) {
	if qualifier == nil {
		return nil, malformed(-1, "const pattern without qualifier constraint")
	}
	if isArgOnly(qualifier) {
		return nil, malformed(-1, "argument wildcard used as const qualifier")
	}
	if names.empty() {
		return nil, malformed(-1, "const pattern with empty name set")
	}
	return constPattern{qualifier: qualifier, names: names}, nil
}

func (c constPattern) match(n syntax.Node, b bindings) bool {
	ref, ok := n.(*syntax.ConstantRef)
	if !ok || !c.names.Has(ref.Name) {
		return false
	}
	return c.qualifier.match(ref.Qualifier, b)
}

func (c constPattern) String() string {
	return "(const " + c.qualifier.String() + " " + c.names.String() + ")"
}

type capturePattern struct {
	name  string
	inner Pattern
}

// Capture binds the node matched by inner under name.
func Capture(name string, inner Pattern) (Pattern, error) {
	if name == "" {
		return nil, malformed(-1, "empty capture name")
	}
	if inner == nil {
		return nil, malformed(-1, "capture without inner pattern")
	}
	if isArgOnly(inner) {
		return nil, malformed(-1, "capture of an argument wildcard")
	}
	return capturePattern{name: name, inner: inner}, nil
}

func (c capturePattern) match(n syntax.Node, b bindings) bool {
	if !c.inner.match(n, b) {
		return false
	}
	if n != nil {
		b[c.name] = n
	}
	return true
}

func (c capturePattern) String() string {
	if _, ok := c.inner.(anyPattern); ok {
		return "$" + c.name
	}
	return "$" + c.name + ":" + c.inner.String()
}

func (b bindings) clone() bindings {
	out := make(bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (b bindings) merge(other bindings) {
	for k, v := range other {
		b[k] = v
	}
}
