package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/rmlint/internal/syntax"
)

type converter struct {
	src      []byte
	comments []syntax.Comment
}

func (c *converter) convert(n *sitter.Node) syntax.Node {
	switch n.Type() {
	case "call":
		if call := c.convertCall(n); call != nil {
			block := n.ChildByFieldName("block")
			if block == nil {
				return call
			}
			return &syntax.Other{
				Type:  "block",
				Nodes: []syntax.Node{call, c.convert(block)},
				Loc:   span(n),
			}
		}
	case "constant":
		return &syntax.ConstantRef{Name: syntax.Symbol(c.text(n)), Loc: span(n)}
	case "scope_resolution":
		if ref := c.convertScope(n); ref != nil {
			return ref
		}
	}

	children := c.children(n)
	if n.Type() != "program" && len(children) == 0 && n.NamedChildCount() == 0 {
		return &syntax.Literal{Text: c.text(n), Loc: span(n)}
	}
	return &syntax.Other{Type: n.Type(), Nodes: children, Loc: span(n)}
}

// convertCall maps `recv.meth(args)`. The call's span stops at the end of
// the arguments, or of the method name without arguments, so an attached
// block stays outside of it. Calls without a method name (recv.()
// shorthand) are left to the generic path.
func (c *converter) convertCall(n *sitter.Node) *syntax.Call {
	method := n.ChildByFieldName("method")
	if method == nil {
		return nil
	}

	end := method.EndByte()
	call := &syntax.Call{Method: syntax.Symbol(c.text(method))}
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		call.Receiver = c.convert(recv)
	}
	call.SafeNavigation = c.safeNavigation(n, method)
	if args := n.ChildByFieldName("arguments"); args != nil {
		call.Arguments = c.children(args)
		end = args.EndByte()
	}
	call.Loc = syntax.NewSpan(int(n.StartByte()), int(end))
	return call
}

// safeNavigation reports whether the operator before the method is "&.".
func (c *converter) safeNavigation(n, method *sitter.Node) bool {
	if op := n.ChildByFieldName("operator"); op != nil {
		return c.text(op) == "&."
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.StartByte() >= method.StartByte() {
			break
		}
		if !child.IsNamed() && c.text(child) == "&." {
			return true
		}
	}
	return false
}

// convertScope maps Foo::Bar and ::Bar. Only constant names are handled;
// Foo::bar style method references stay generic.
func (c *converter) convertScope(n *sitter.Node) *syntax.ConstantRef {
	name := n.ChildByFieldName("name")
	if name == nil || name.Type() != "constant" {
		return nil
	}

	ref := &syntax.ConstantRef{Name: syntax.Symbol(c.text(name)), Loc: span(n)}
	if scope := n.ChildByFieldName("scope"); scope != nil {
		ref.Qualifier = c.convert(scope)
		return ref
	}

	// leading "::" with nothing before it
	ref.Qualifier = &syntax.Root{Loc: syntax.NewSpan(int(n.StartByte()), int(name.StartByte()))}
	return ref
}

func (c *converter) children(n *sitter.Node) []syntax.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	nodes := make([]syntax.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		nodes = append(nodes, c.convert(child))
	}
	return nodes
}

func (c *converter) collectComments(n *sitter.Node) {
	if n.Type() == "comment" {
		c.comments = append(c.comments, syntax.Comment{Text: c.text(n), Loc: span(n)})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.collectComments(n.Child(i))
	}
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func span(n *sitter.Node) syntax.Span {
	return syntax.NewSpan(int(n.StartByte()), int(n.EndByte()))
}
