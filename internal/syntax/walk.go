package syntax

import "fmt"

// Walk visits root and its descendants in pre-order. If fn returns false the
// children of the current node are skipped.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Children() {
		Walk(child, fn)
	}
}

// Calls collects every call node under root in source order.
func Calls(root Node) []*Call {
	var calls []*Call
	Walk(root, func(n Node) bool {
		if c, ok := n.(*Call); ok {
			calls = append(calls, c)
		}
		return true
	})
	return calls
}

// CheckSpans verifies the span invariants of a tree: every span is valid,
// children lie inside their parent and siblings are ordered left to right
// without overlapping.
func CheckSpans(root Node) error {
	var err error
	Walk(root, func(n Node) bool {
		if err != nil {
			return false
		}
		parent := n.Span()
		if !parent.Valid() {
			err = fmt.Errorf("invalid span %s on %v", parent, n)
			return false
		}
		prevEnd := parent.Start
		for _, child := range n.Children() {
			cs := child.Span()
			if !parent.Contains(cs) {
				err = fmt.Errorf("child span %s escapes parent %s", cs, parent)
				return false
			}
			if cs.Start < prevEnd {
				err = fmt.Errorf("child span %s overlaps previous sibling ending at %d", cs, prevEnd)
				return false
			}
			prevEnd = cs.End
		}
		return true
	})
	return err
}
