package pattern

import "fmt"

// TokenType identifies a lexical element of the node-pattern DSL.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenSymbol   // :name
	TokenIdent    // send, const, nil?, cbase, _
	TokenDollar   // $
	TokenColon    // ':' directly after a capture name
	TokenQuestion // ?
	TokenEllipsis // ...
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenSymbol:
		return "symbol"
	case TokenIdent:
		return "identifier"
	case TokenDollar:
		return "$"
	case TokenColon:
		return ":"
	case TokenQuestion:
		return "?"
	case TokenEllipsis:
		return "..."
	default:
		return "unknown"
	}
}

// Token is a single lexical element with its byte offset.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// Lexer scans a pattern source string into tokens.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans the whole input. The last token is always TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]
		switch {
		case isSpace(c):
			l.position++
		case c == '#':
			// comment until end of line
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.position++
			}
		case c == '(':
			l.emit(TokenLParen, "", start, 1)
		case c == ')':
			l.emit(TokenRParen, "", start, 1)
		case c == '{':
			l.emit(TokenLBrace, "", start, 1)
		case c == '}':
			l.emit(TokenRBrace, "", start, 1)
		case c == '$':
			l.emit(TokenDollar, "", start, 1)
		case c == '?':
			l.emit(TokenQuestion, "", start, 1)
		case c == '.':
			if len(l.input)-start < 3 || l.input[start:start+3] != "..." {
				return nil, malformed(start, "unexpected '.'")
			}
			l.emit(TokenEllipsis, "", start, 3)
		case c == ':':
			if start > 0 && isIdentChar(l.input[start-1]) {
				l.emit(TokenColon, "", start, 1)
				continue
			}
			if err := l.lexSymbol(start); err != nil {
				return nil, err
			}
		case isIdentStart(c):
			l.lexIdent(start)
		default:
			return nil, malformed(start, fmt.Sprintf("unexpected character %q", c))
		}
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Position: l.position})
	return l.tokens, nil
}

func (l *Lexer) emit(t TokenType, value string, start, width int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Position: start})
	l.position = start + width
}

// lexSymbol reads :name, allowing a trailing ! ? or = like Ruby method names.
func (l *Lexer) lexSymbol(start int) error {
	pos := start + 1
	if pos >= len(l.input) || !isIdentStart(l.input[pos]) {
		return malformed(start, "symbol without a name")
	}
	for pos < len(l.input) && isIdentChar(l.input[pos]) {
		pos++
	}
	if pos < len(l.input) && (l.input[pos] == '!' || l.input[pos] == '?' || l.input[pos] == '=') {
		pos++
	}
	l.tokens = append(l.tokens, Token{Type: TokenSymbol, Value: l.input[start+1 : pos], Position: start})
	l.position = pos
	return nil
}

// lexIdent reads a bare word. The predicate keyword nil? keeps its '?'.
func (l *Lexer) lexIdent(start int) {
	pos := start
	for pos < len(l.input) && isIdentChar(l.input[pos]) {
		pos++
	}
	word := l.input[start:pos]
	if word == "nil" && pos < len(l.input) && l.input[pos] == '?' {
		pos++
		word = "nil?"
	}
	l.tokens = append(l.tokens, Token{Type: TokenIdent, Value: word, Position: start})
	l.position = pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
