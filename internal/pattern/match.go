package pattern

import (
	"errors"
	"fmt"

	"github.com/gnolang/rmlint/internal/syntax"
)

// ErrMalformedPattern is returned when a pattern is empty or
// self-contradictory.
var ErrMalformedPattern = errors.New("malformed pattern")

// MalformedPatternError describes why a pattern was rejected. Pos is the
// byte offset in the DSL source, or -1 for patterns built in code.
type MalformedPatternError struct {
	Pos    int
	Reason string
}

func (e *MalformedPatternError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedPattern, e.Reason)
	}
	return fmt.Sprintf("%s at offset %d: %s", ErrMalformedPattern, e.Pos, e.Reason)
}

func (e *MalformedPatternError) Unwrap() error { return ErrMalformedPattern }

func malformed(pos int, reason string) error {
	return &MalformedPatternError{Pos: pos, Reason: reason}
}

// Result is the outcome of Match. The zero value is NoMatch.
type Result struct {
	Matched bool
	// Captures maps capture names to nodes of the matched tree. The nodes
	// are shared with the tree, never copied.
	Captures map[string]syntax.Node
}

// NoMatch is the result of a failed match.
var NoMatch = Result{}

// Capture returns the node captured under name, if any.
func (r Result) Capture(name string) (syntax.Node, bool) {
	n, ok := r.Captures[name]
	return n, ok
}

// Match evaluates p against node. It has no side effects.
func Match(node syntax.Node, p Pattern) Result {
	if p == nil {
		return NoMatch
	}
	b := make(bindings)
	if !p.match(node, b) {
		return NoMatch
	}
	return Result{Matched: true, Captures: b}
}
