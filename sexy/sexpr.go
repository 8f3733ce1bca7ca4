package sexy

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeList
	NodeMap
	NodeArray
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeList:
		return "list"
	case NodeMap:
		return "map"
	case NodeArray:
		return "array"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is one datum read from an S-expression.
type Node struct {
	Type NodeType

	Text string // NodeSymbol, NodeString, NodeInteger

	Items []*Node  // NodeList, NodeArray, NodeMap
	Keys  []string // NodeMap - parallel to Items

	// Metadata attached to a list with ^{key: value}.
	MetaKeys  []string
	MetaItems []*Node

	// Line is the 1-based source line the datum starts on.
	Line int
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeList:
		var parts []string
		if len(n.MetaKeys) > 0 {
			parts = append(parts, "^"+formatPairs(n.MetaKeys, n.MetaItems))
		}
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	case NodeMap:
		return formatPairs(n.Keys, n.Items)
	case NodeArray:
		var parts []string
		for _, item := range n.Items {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func formatPairs(keys []string, items []*Node) string {
	var parts []string
	for i, key := range keys {
		if i < len(items) {
			parts = append(parts, fmt.Sprintf("%s: %s", key, items[i].String()))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(value int64) *Node {
	return &Node{Type: NodeInteger, Text: strconv.FormatInt(value, 10)}
}

func NewList(items ...*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

func NewMap(keys []string, items []*Node) *Node {
	return &Node{Type: NodeMap, Keys: keys, Items: items}
}

func NewArray(items ...*Node) *Node {
	return &Node{Type: NodeArray, Items: items}
}

// WithMeta sets a metadata entry on a list and returns the list. A later
// value for the same key replaces the earlier one.
func (n *Node) WithMeta(key string, value *Node) *Node {
	for i, k := range n.MetaKeys {
		if k == key {
			n.MetaItems[i] = value
			return n
		}
	}
	n.MetaKeys = append(n.MetaKeys, key)
	n.MetaItems = append(n.MetaItems, value)
	return n
}

// Meta returns the metadata value stored under key, or nil.
func (n *Node) Meta(key string) *Node {
	for i, k := range n.MetaKeys {
		if k == key && i < len(n.MetaItems) {
			return n.MetaItems[i]
		}
	}
	return nil
}

// Head returns the symbol naming a list such as (call "f"), or "".
func (n *Node) Head() string {
	if n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Int returns the value of an integer datum.
func (n *Node) Int() (int64, error) {
	if n.Type != NodeInteger {
		return 0, fmt.Errorf("line %d: expected integer but got %s", n.Line, n.Type)
	}
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func (n *Node) IsAtom() bool {
	return n.Type == NodeSymbol || n.Type == NodeString || n.Type == NodeInteger
}

type parser struct {
	lexer        *lexer
	currentToken token
	peekToken    token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()

	result, err := p.parseDatum()
	if p.lexer.err != nil {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, p.lexer.err
	}
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != tokenEOF {
		return nil, p.errorf("expected EOF but got %s", p.currentToken.Type)
	}
	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.nextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.currentToken.Line, fmt.Sprintf(format, args...))
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.currentToken
	var node *Node
	var err error
	switch tok.Type {
	case tokenSymbol:
		node = NewSymbol(tok.Value)
		p.nextToken()
	case tokenString:
		node = NewString(tok.Value)
		p.nextToken()
	case tokenInteger:
		node = &Node{Type: NodeInteger, Text: tok.Value}
		p.nextToken()
	case tokenLParen:
		node, err = p.parseList()
	case tokenLBrace:
		node, err = p.parseMap()
	case tokenLBracket:
		node, err = p.parseArray()
	default:
		return nil, p.errorf("unexpected token: %s", tok.Type)
	}
	if err != nil {
		return nil, err
	}
	node.Line = tok.Line
	return node, nil
}

func (p *parser) parseList() (*Node, error) {
	list := NewList()
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type == tokenCaret {
			p.nextToken()
			if p.currentToken.Type != tokenLBrace {
				return nil, p.errorf("expected '{' after '^' but got %s", p.currentToken.Type)
			}
			meta, err := p.parseMap()
			if err != nil {
				return nil, err
			}
			for i, key := range meta.Keys {
				list.WithMeta(key, meta.Items[i])
			}
			continue
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}

	if p.currentToken.Type != tokenRParen {
		return nil, p.errorf("expected ')' but got %s", p.currentToken.Type)
	}
	p.nextToken()
	return list, nil
}

func (p *parser) parseMap() (*Node, error) {
	m := NewMap(nil, nil)
	p.nextToken() // consume '{'

	for p.currentToken.Type != tokenRBrace && p.currentToken.Type != tokenEOF {
		if p.currentToken.Type != tokenSymbol {
			return nil, p.errorf("expected symbol for map key but got %s", p.currentToken.Type)
		}
		m.Keys = append(m.Keys, p.currentToken.Value)
		p.nextToken()

		if p.currentToken.Type != tokenColon {
			return nil, p.errorf("expected ':' after map key but got %s", p.currentToken.Type)
		}
		p.nextToken()

		value, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, value)

		if p.currentToken.Type == tokenComma {
			p.nextToken()
		} else if p.currentToken.Type != tokenRBrace {
			return nil, p.errorf("expected ',' or '}' in map but got %s", p.currentToken.Type)
		}
	}

	if p.currentToken.Type != tokenRBrace {
		return nil, p.errorf("expected '}' but got %s", p.currentToken.Type)
	}
	p.nextToken()
	return m, nil
}

func (p *parser) parseArray() (*Node, error) {
	arr := NewArray()
	p.nextToken() // consume '['

	for p.currentToken.Type != tokenRBracket && p.currentToken.Type != tokenEOF {
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
	}

	if p.currentToken.Type != tokenRBracket {
		return nil, p.errorf("expected ']' but got %s", p.currentToken.Type)
	}
	p.nextToken()
	return arr, nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenLBracket
	tokenRBracket
	tokenColon
	tokenComma
	tokenCaret
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBrace:
		return "'{'"
	case tokenRBrace:
		return "'}'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenColon:
		return "':'"
	case tokenComma:
		return "','"
	case tokenCaret:
		return "'^'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type  tokenType
	Value string
	Line  int
}

type lexer struct {
	input    string
	position int
	current  rune
	line     int
	err      error
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
	}
	if l.position >= len(l.input) {
		l.current = 0
	} else {
		l.current = rune(l.input[l.position])
	}
	l.position++
}

func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) fail(format string, args ...any) token {
	if l.err == nil {
		l.err = fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
	}
	return token{Type: tokenEOF, Line: l.line}
}

func (l *lexer) readWhile(pred func(rune) bool) string {
	start := l.position - 1
	for pred(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) readString() (string, error) {
	var sb strings.Builder
	l.readChar() // skip opening quote

	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.readChar()
			switch l.current {
			case '"', '\\':
				sb.WriteRune(l.current)
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", l.current)
			}
		} else {
			sb.WriteRune(l.current)
		}
		l.readChar()
	}

	if l.current != '"' {
		return "", fmt.Errorf("unterminated string")
	}
	l.readChar()
	return sb.String(), nil
}

func (l *lexer) nextToken() token {
	for {
		for unicode.IsSpace(l.current) {
			l.readChar()
		}

		line := l.line
		single := func(t tokenType) token {
			v := string(l.current)
			l.readChar()
			return token{Type: t, Value: v, Line: line}
		}

		switch l.current {
		case 0:
			return token{Type: tokenEOF, Line: line}
		case ';':
			for l.current != '\n' && l.current != 0 {
				l.readChar()
			}
			continue
		case '(':
			return single(tokenLParen)
		case ')':
			return single(tokenRParen)
		case '{':
			return single(tokenLBrace)
		case '}':
			return single(tokenRBrace)
		case '[':
			return single(tokenLBracket)
		case ']':
			return single(tokenRBracket)
		case ':':
			return single(tokenColon)
		case ',':
			return single(tokenComma)
		case '^':
			return single(tokenCaret)
		case '"':
			str, err := l.readString()
			if err != nil {
				return l.fail("%s", err)
			}
			return token{Type: tokenString, Value: str, Line: line}
		}

		switch {
		case unicode.IsLetter(l.current) || l.current == '_':
			return token{Type: tokenSymbol, Value: l.readWhile(isSymbolChar), Line: line}
		case unicode.IsDigit(l.current),
			(l.current == '-' || l.current == '+') && unicode.IsDigit(l.peekChar()):
			start := l.position - 1
			l.readChar()
			l.readWhile(unicode.IsDigit)
			return token{Type: tokenInteger, Value: l.input[start : l.position-1], Line: line}
		default:
			return l.fail("unexpected character '%c'", l.current)
		}
	}
}

func isSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
