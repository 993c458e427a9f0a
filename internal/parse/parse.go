// Package parse turns Ruby source into the syntax tree used by the lint
// rules. Parsing itself is delegated to tree-sitter; this package only maps
// tree-sitter nodes onto syntax nodes.
package parse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/gnolang/rmlint/internal/syntax"
)

// ErrSyntax is returned by Check when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Extensions lists the file extensions handled as Ruby.
var Extensions = map[string]bool{
	".rb":      true,
	".rake":    true,
	".gemspec": true,
	".ru":      true,
}

// Filenames lists extension-less files handled as Ruby.
var Filenames = map[string]bool{
	"Gemfile":  true,
	"Rakefile": true,
	"Brewfile": true,
}

// IsRubyFile reports whether path names a file the linter handles.
func IsRubyFile(path string) bool {
	return Extensions[filepath.Ext(path)] || Filenames[filepath.Base(path)]
}

// NewParser creates a tree-sitter parser configured for Ruby. Parsers are
// not safe for concurrent use; create one per goroutine.
func NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return p
}

// Ruby parses src and converts it into a syntax.File. Source with syntax
// errors still yields a tree; error regions become Other nodes.
func Ruby(ctx context.Context, filename string, src []byte) (*syntax.File, error) {
	p := NewParser()
	defer p.Close()

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	defer tree.Close()

	c := &converter{src: src}
	root := tree.RootNode()
	c.collectComments(root)

	return &syntax.File{
		Name:     filename,
		Source:   src,
		Root:     c.convert(root),
		Comments: c.comments,
	}, nil
}

// Check reports ErrSyntax when src contains parse errors.
func Check(ctx context.Context, src []byte) error {
	p := NewParser()
	defer p.Close()

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	if root := tree.RootNode(); root.HasError() {
		return fmt.Errorf("%w near offset %d", ErrSyntax, firstError(root))
	}
	return nil
}

func firstError(n *sitter.Node) int {
	if n.IsError() || n.IsMissing() {
		return int(n.StartByte())
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() {
			return firstError(child)
		}
	}
	return int(n.StartByte())
}
