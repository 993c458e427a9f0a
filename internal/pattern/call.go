package pattern

import (
	"strings"

	"github.com/gnolang/rmlint/internal/syntax"
)

type callPattern struct {
	receiver Pattern
	methods  SymbolSet
	args     []Pattern
}

// Call matches a call node whose receiver matches receiver, whose method is
// in methods and whose argument list matches args element by element.
// Argument patterns may include Optional and Rest; a call pattern with no
// argument patterns only matches calls without arguments. Safe-navigation
// calls (recv&.meth) never match.
func Call(receiver Pattern, methods SymbolSet, args ...Pattern) (Pattern, error) {
	if receiver == nil {
		return nil, malformed(-1, "call pattern without receiver constraint")
	}
	if isArgOnly(receiver) {
		return nil, malformed(-1, "argument wildcard used as call receiver")
	}
	if methods.empty() {
		return nil, malformed(-1, "call pattern with empty method set")
	}
	for _, arg := range args {
		if arg == nil {
			return nil, malformed(-1, "nil argument pattern")
		}
	}
	return callPattern{receiver: receiver, methods: methods, args: append([]Pattern(nil), args...)}, nil
}

func (c callPattern) match(n syntax.Node, b bindings) bool {
	call, ok := n.(*syntax.Call)
	if !ok || call.SafeNavigation || !c.methods.Has(call.Method) {
		return false
	}
	if !c.receiver.match(call.Receiver, b) {
		return false
	}
	return matchArgs(c.args, call.Arguments, b)
}

func (c callPattern) String() string {
	var sb strings.Builder
	sb.WriteString("(send ")
	sb.WriteString(c.receiver.String())
	sb.WriteString(" ")
	sb.WriteString(c.methods.String())
	for _, arg := range c.args {
		sb.WriteString(" ")
		sb.WriteString(arg.String())
	}
	sb.WriteString(")")
	return sb.String()
}

type restPattern struct{}

// Rest matches any number of remaining arguments, including none (`...`).
func Rest() Pattern { return restPattern{} }

// Rest is only meaningful inside an argument list.
func (restPattern) match(syntax.Node, bindings) bool { return false }
func (restPattern) String() string                   { return "..." }

type optionalPattern struct {
	inner Pattern
}

// Optional matches zero or one argument satisfying inner (`p?`).
func Optional(inner Pattern) (Pattern, error) {
	if inner == nil {
		return nil, malformed(-1, "optional without inner pattern")
	}
	if isArgOnly(inner) {
		return nil, malformed(-1, "nested argument quantifier")
	}
	return optionalPattern{inner: inner}, nil
}

func (optionalPattern) match(syntax.Node, bindings) bool { return false }
func (o optionalPattern) String() string                 { return o.inner.String() + "?" }

func isArgOnly(p Pattern) bool {
	switch p.(type) {
	case restPattern, optionalPattern:
		return true
	}
	return false
}

// matchArgs matches an argument list with backtracking over Rest and
// Optional. Bindings are only committed on a full match.
func matchArgs(patterns []Pattern, nodes []syntax.Node, b bindings) bool {
	if len(patterns) == 0 {
		return len(nodes) == 0
	}

	switch p := patterns[0].(type) {
	case restPattern:
		for k := 0; k <= len(nodes); k++ {
			trial := b.clone()
			if matchArgs(patterns[1:], nodes[k:], trial) {
				b.merge(trial)
				return true
			}
		}
		return false

	case optionalPattern:
		if len(nodes) > 0 {
			trial := b.clone()
			if p.inner.match(nodes[0], trial) && matchArgs(patterns[1:], nodes[1:], trial) {
				b.merge(trial)
				return true
			}
		}
		return matchArgs(patterns[1:], nodes, b)

	default:
		if len(nodes) == 0 {
			return false
		}
		trial := b.clone()
		if p.match(nodes[0], trial) && matchArgs(patterns[1:], nodes[1:], trial) {
			b.merge(trial)
			return true
		}
		return false
	}
}
