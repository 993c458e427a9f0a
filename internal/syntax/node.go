// Package syntax holds the read-only tree model consumed by the matcher and
// the rewrite engine. Trees are produced by a parser frontend and never
// mutated afterwards.
package syntax

import "fmt"

// Symbol is a method or constant name.
type Symbol string

// Kind identifies the concrete node type.
type Kind int

const (
	KindCall Kind = iota + 1
	KindConstant
	KindRoot
	KindLiteral
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "send"
	case KindConstant:
		return "const"
	case KindRoot:
		return "cbase"
	case KindLiteral:
		return "literal"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Node is a single node of the syntax tree.
type Node interface {
	Kind() Kind
	Span() Span
	// Children returns the direct children in source order.
	// Absent optional children are omitted.
	Children() []Node
}

// Call is a method call, with or without an explicit receiver. An attached
// do/brace block is not part of the call: the frontend wraps both in an
// Other node of type "block", so Loc ends with the arguments.
type Call struct {
	Receiver  Node // nil for receiver-less calls
	Method    Symbol
	Arguments []Node
	// SafeNavigation is set for recv&.meth calls.
	SafeNavigation bool
	Loc            Span
}

func (c *Call) Kind() Kind { return KindCall }
func (c *Call) Span() Span { return c.Loc }

func (c *Call) Children() []Node {
	nodes := make([]Node, 0, len(c.Arguments)+1)
	if c.Receiver != nil {
		nodes = append(nodes, c.Receiver)
	}
	return append(nodes, c.Arguments...)
}

// FirstArgument returns the first argument or nil.
func (c *Call) FirstArgument() Node {
	if len(c.Arguments) == 0 {
		return nil
	}
	return c.Arguments[0]
}

func (c *Call) String() string {
	head := "send"
	if c.SafeNavigation {
		head = "csend"
	}
	return fmt.Sprintf("(%s %v :%s %d args)", head, c.Receiver, c.Method, len(c.Arguments))
}

// ConstantRef is a constant reference such as FileUtils, ::FileUtils or
// Foo::Bar.
type ConstantRef struct {
	Qualifier Node // nil when unqualified
	Name      Symbol
	Loc       Span
}

func (c *ConstantRef) Kind() Kind { return KindConstant }
func (c *ConstantRef) Span() Span { return c.Loc }

func (c *ConstantRef) Children() []Node {
	if c.Qualifier == nil {
		return nil
	}
	return []Node{c.Qualifier}
}

func (c *ConstantRef) String() string {
	if c.Qualifier == nil {
		return fmt.Sprintf("(const nil :%s)", c.Name)
	}
	return fmt.Sprintf("(const %v :%s)", c.Qualifier, c.Name)
}

// Root is the explicit top-level namespace marker, the leading "::" of
// ::FileUtils.
type Root struct {
	Loc Span
}

func (r *Root) Kind() Kind       { return KindRoot }
func (r *Root) Span() Span       { return r.Loc }
func (r *Root) Children() []Node { return nil }
func (r *Root) String() string   { return "(cbase)" }

// Literal is a leaf: strings, numbers, symbols, identifiers.
type Literal struct {
	Text string
	Loc  Span
}

func (l *Literal) Kind() Kind       { return KindLiteral }
func (l *Literal) Span() Span       { return l.Loc }
func (l *Literal) Children() []Node { return nil }
func (l *Literal) String() string   { return fmt.Sprintf("(lit %q)", l.Text) }

// Other is any construct the matcher has no dedicated kind for. It is kept
// so that nested calls stay reachable by Walk.
type Other struct {
	Type  string
	Nodes []Node
	Loc   Span
}

func (o *Other) Kind() Kind       { return KindOther }
func (o *Other) Span() Span       { return o.Loc }
func (o *Other) Children() []Node { return o.Nodes }
func (o *Other) String() string   { return fmt.Sprintf("(%s %d)", o.Type, len(o.Nodes)) }

// Comment is a source comment. Comments are not part of the node tree.
type Comment struct {
	Text string
	Loc  Span
}

// File bundles one parsed source buffer with its tree and comments.
type File struct {
	Name     string
	Source   []byte
	Root     Node
	Comments []Comment
}

// Text returns the verbatim source text covered by n.
func (f *File) Text(n Node) string {
	return n.Span().Text(f.Source)
}
