package pattern

import "fmt"

// Parser builds a Pattern from tokens produced by Lexer.
//
// Grammar:
//
//	pattern   = term [ "?" ]
//	term      = "_" | "nil?" | "cbase" | "..." | capture | union | node
//	capture   = "$" ident [ ":" term ]
//	union     = "{" pattern { pattern } "}"
//	node      = "(" "send" pattern symbols { pattern } ")"
//	          | "(" "const" pattern symbols ")"
//	symbols   = symbol | "{" symbol { symbol } "}"
type Parser struct {
	tokens  []Token
	current int
}

// NewParser returns a parser over tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Compile lexes and parses src into a Pattern.
func Compile(src string) (Pattern, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// MustCompile is like Compile but panics on error. It is meant for
// package-level patterns, so a malformed pattern fails at init time.
func MustCompile(src string) Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("pattern.MustCompile(%q): %v", src, err))
	}
	return p
}

// Parse parses exactly one top-level pattern.
func (p *Parser) Parse() (Pattern, error) {
	if p.peek().Type == TokenEOF {
		return nil, malformed(p.peek().Position, "empty pattern")
	}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if isArgOnly(pat) {
		return nil, malformed(0, "argument wildcard outside an argument list")
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, malformed(tok.Position, fmt.Sprintf("unexpected %s after pattern", tok))
	}
	return pat, nil
}

func (p *Parser) parsePattern() (Pattern, error) {
	start := p.peek().Position
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenQuestion {
		return term, nil
	}
	p.advance()
	opt, err := Optional(term)
	return opt, at(start, err)
}

func (p *Parser) parseTerm() (Pattern, error) {
	tok := p.advance()
	switch tok.Type {
	case TokenIdent:
		switch tok.Value {
		case "_":
			return Any(), nil
		case "nil?":
			return Nil(), nil
		case "cbase":
			return Root(), nil
		}
		return nil, malformed(tok.Position, fmt.Sprintf("unknown predicate %q", tok.Value))

	case TokenEllipsis:
		return Rest(), nil

	case TokenDollar:
		return p.parseCapture(tok)

	case TokenLBrace:
		return p.parseUnion(tok)

	case TokenLParen:
		return p.parseNode(tok)

	case TokenSymbol:
		return nil, malformed(tok.Position, fmt.Sprintf("symbol :%s is only valid as a method or constant name", tok.Value))
	}
	return nil, malformed(tok.Position, fmt.Sprintf("unexpected %s", tok))
}

func (p *Parser) parseCapture(dollar Token) (Pattern, error) {
	name := p.advance()
	if name.Type != TokenIdent || name.Value == "_" {
		return nil, malformed(name.Position, "capture requires a name")
	}
	inner := Any()
	if p.peek().Type == TokenColon {
		p.advance()
		var err error
		if inner, err = p.parseTerm(); err != nil {
			return nil, err
		}
	}
	c, err := Capture(name.Value, inner)
	return c, at(dollar.Position, err)
}

func (p *Parser) parseUnion(open Token) (Pattern, error) {
	var alts []Pattern
	for p.peek().Type != TokenRBrace {
		if p.peek().Type == TokenEOF {
			return nil, malformed(open.Position, "unterminated '{'")
		}
		alt, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	p.advance()
	u, err := Union(alts...)
	return u, at(open.Position, err)
}

func (p *Parser) parseNode(open Token) (Pattern, error) {
	head := p.advance()
	if head.Type != TokenIdent {
		return nil, malformed(head.Position, "expected node type after '('")
	}

	switch head.Value {
	case "send":
		receiver, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		methods, err := p.parseSymbols()
		if err != nil {
			return nil, err
		}
		var args []Pattern
		for p.peek().Type != TokenRParen {
			if p.peek().Type == TokenEOF {
				return nil, malformed(open.Position, "unterminated '('")
			}
			arg, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		p.advance()
		c, err := Call(receiver, methods, args...)
		return c, at(open.Position, err)

	case "const":
		qualifier, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		names, err := p.parseSymbols()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		c, err := Const(qualifier, names)
		return c, at(open.Position, err)
	}

	return nil, malformed(head.Position, fmt.Sprintf("unknown node type %q", head.Value))
}

// parseSymbols reads a single :sym or a {:a :b} set.
func (p *Parser) parseSymbols() (SymbolSet, error) {
	tok := p.advance()
	switch tok.Type {
	case TokenSymbol:
		return Symbols(tok.Value)
	case TokenLBrace:
		var names []string
		for {
			next := p.advance()
			switch next.Type {
			case TokenSymbol:
				names = append(names, next.Value)
				continue
			case TokenRBrace:
				s, err := Symbols(names...)
				return s, at(tok.Position, err)
			}
			return SymbolSet{}, malformed(next.Position, fmt.Sprintf("expected symbol in set, got %s", next))
		}
	}
	return SymbolSet{}, malformed(tok.Position, fmt.Sprintf("expected symbol or symbol set, got %s", tok))
}

func (p *Parser) expect(t TokenType) error {
	tok := p.advance()
	if tok.Type != t {
		return malformed(tok.Position, fmt.Sprintf("expected %s, got %s", t, tok))
	}
	return nil
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

// at attaches a DSL offset to errors raised by the constructors.
func at(pos int, err error) error {
	if err == nil {
		return nil
	}
	if m, ok := err.(*MalformedPatternError); ok && m.Pos < 0 {
		return &MalformedPatternError{Pos: pos, Reason: m.Reason}
	}
	return err
}
