package nolint

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/rmlint/internal/syntax"
)

const nolintDirective = "nolint"

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope is an inclusive line range where nolint applies.
type nolintScope struct {
	rules     map[string]struct{}
	startLine int
	endLine   int
}

// ParseComments collects the nolint comments of a parsed file.
//
//	# nolint                      every rule
//	# nolint:rule1,rule2          listed rules only
//
// An inline comment covers its own line. A comment above the first
// statement and separated from it by a blank line covers the whole file.
// Any other standalone comment covers its own line and the statement
// starting on the next line.
func ParseComments(f *syntax.File) *Manager {
	manager := &Manager{}
	if f == nil {
		return manager
	}

	lines := syntax.NewLineIndex(f.Name, f.Source)
	stmtEnds := indexStatementsByLine(f.Root, lines)
	firstCodeLine := firstLineWithCode(stmtEnds)

	for _, comment := range f.Comments {
		ns, err := parseComment(comment, f.Source, lines, stmtEnds, firstCodeLine)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return manager
}

func parseComment(
	comment syntax.Comment,
	src []byte,
	lines *syntax.LineIndex,
	stmtEnds map[int]int,
	firstCodeLine int,
) (nolintScope, error) {
	var ns nolintScope

	rest, ok := directive(comment.Text)
	if !ok {
		return ns, fmt.Errorf("not a nolint comment")
	}

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	line := lines.Position(comment.Loc.Start).Line

	if isInlineComment(src, comment) {
		ns.startLine, ns.endLine = line, line
		return ns, nil
	}

	if firstCodeLine == 0 || (line < firstCodeLine && blankLineBetween(src, line, firstCodeLine)) {
		ns.startLine, ns.endLine = 1, lines.LineCount()
		return ns, nil
	}

	next := line + 1
	if line < firstCodeLine {
		// only comments lie between the directive and the first statement
		next = firstCodeLine
	}
	ns.startLine, ns.endLine = line, line
	if end, exists := stmtEnds[next]; exists {
		ns.endLine = end
	}
	return ns, nil
}

// blankLineBetween reports whether a whitespace-only line lies strictly
// between the 1-based lines from and to.
func blankLineBetween(src []byte, from, to int) bool {
	lines := strings.Split(string(src), "\n")
	for n := from + 1; n < to && n <= len(lines); n++ {
		if strings.TrimSpace(lines[n-1]) == "" {
			return true
		}
	}
	return false
}

// directive strips "#", optional spaces and the nolint keyword. The
// remainder is returned as-is.
func directive(text string) (string, bool) {
	if !strings.HasPrefix(text, "#") {
		return "", false
	}
	body := strings.TrimLeft(text[1:], " \t")
	if !strings.HasPrefix(body, nolintDirective) {
		return "", false
	}
	return strings.TrimRight(body[len(nolintDirective):], " \t\r"), true
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// statementContainers are the tree-sitter node types whose direct children
// are statements. The wrapper built for a call with a block is "block" too.
var statementContainers = map[string]bool{
	"program":                  true,
	"body_statement":           true,
	"block_body":               true,
	"block":                    true,
	"do_block":                 true,
	"begin":                    true,
	"then":                     true,
	"else":                     true,
	"do":                       true,
	"ensure":                   true,
	"parenthesized_statements": true,
}

// indexStatementsByLine maps the first line of each statement to its last
// line. Statements are the direct children of statement containers; the
// containers themselves are not statements.
func indexStatementsByLine(root syntax.Node, lines *syntax.LineIndex) map[int]int {
	ends := make(map[int]int)
	syntax.Walk(root, func(n syntax.Node) bool {
		if !isContainer(n) {
			return true
		}
		for _, stmt := range n.Children() {
			if isContainer(stmt) && !isBlockWrapper(stmt) || stmt.Span().Len() == 0 {
				continue
			}
			if o, ok := stmt.(*syntax.Other); ok && o.Type == "block_parameters" {
				continue
			}
			start := lines.Position(stmt.Span().Start).Line
			end := lines.Position(stmt.Span().End).Line
			if end > ends[start] {
				ends[start] = end
			}
		}
		return true
	})
	return ends
}

func isContainer(n syntax.Node) bool {
	o, ok := n.(*syntax.Other)
	return ok && statementContainers[o.Type]
}

// isBlockWrapper reports whether n is a call together with its attached
// block. It is a statement in its parent and a container of its parts.
func isBlockWrapper(n syntax.Node) bool {
	o, ok := n.(*syntax.Other)
	if !ok || o.Type != "block" || len(o.Nodes) == 0 {
		return false
	}
	_, isCall := o.Nodes[0].(*syntax.Call)
	return isCall
}

func firstLineWithCode(stmtEnds map[int]int) int {
	first := 0
	for line := range stmtEnds {
		if first == 0 || line < first {
			first = line
		}
	}
	return first
}

// isInlineComment reports whether non-blank source precedes the comment on
// its line.
func isInlineComment(src []byte, comment syntax.Comment) bool {
	for i := comment.Loc.Start - 1; i >= 0; i-- {
		switch src[i] {
		case '\n':
			return false
		case ' ', '\t', '\r':
			continue
		default:
			return true
		}
	}
	return false
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	for _, ns := range m.scopes {
		if pos.Line < ns.startLine || pos.Line > ns.endLine {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, ok := ns.rules[ruleName]; ok {
			return true
		}
	}
	return false
}
