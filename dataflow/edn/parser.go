package edn

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// Character validation for symbols
	symbolChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.*+!-_?$%&=<>/#"

	intPattern = regexp.MustCompile(`^[+-]?\d+$`)
)

// Parser parses EDN tokens into an AST
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse parses the input into a single Node
func Parse(input string) (*Node, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}

	parser := NewParser(lexer)
	return parser.Parse()
}

// Parse reads a single value
func (p *Parser) Parse() (*Node, error) {
	return p.readNode()
}

// ParseAll reads all values until EOF
func (p *Parser) ParseAll() ([]Node, error) {
	var nodes []Node

	for {
		token := p.lexer.PeekToken()
		if token.Type == TokenEOF {
			break
		}

		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	return nodes, nil
}

// readNode reads a single node
func (p *Parser) readNode() (*Node, error) {
	token := p.lexer.PeekToken()

	switch token.Type {
	case TokenEOF:
		return nil, fmt.Errorf("unexpected EOF at %d:%d", token.Line, token.Col)

	case TokenString:
		p.lexer.NextToken()
		return &Node{
			Type:  NodeString,
			Value: token.Value,
			Line:  token.Line,
			Col:   token.Col,
		}, nil

	case TokenAtom:
		return p.readAtom()

	case TokenLeftParen:
		return p.readCollection(NodeList, TokenRightParen, "list")

	case TokenLeftBracket:
		return p.readCollection(NodeVector, TokenRightBracket, "vector")

	case TokenLeftBrace:
		return p.readMap()

	default:
		return nil, fmt.Errorf("unexpected token %v at %d:%d", token.Type, token.Line, token.Col)
	}
}

// readAtom reads and classifies an atom
func (p *Parser) readAtom() (*Node, error) {
	token := p.lexer.NextToken()
	value := token.Value

	switch value {
	case "nil":
		return &Node{Type: NodeNil, Line: token.Line, Col: token.Col}, nil
	case "true", "false":
		return &Node{Type: NodeBool, Value: value, Line: token.Line, Col: token.Col}, nil
	}

	if strings.HasPrefix(value, ":") {
		if err := validateKeyword(value); err != nil {
			return nil, fmt.Errorf("%v at %d:%d", err, token.Line, token.Col)
		}
		return &Node{Type: NodeKeyword, Value: value, Line: token.Line, Col: token.Col}, nil
	}

	if intPattern.MatchString(value) {
		return &Node{Type: NodeInt, Value: value, Line: token.Line, Col: token.Col}, nil
	}

	if err := validateSymbol(value); err != nil {
		return nil, fmt.Errorf("%v at %d:%d", err, token.Line, token.Col)
	}

	return &Node{Type: NodeSymbol, Value: value, Line: token.Line, Col: token.Col}, nil
}

// readCollection reads a delimited sequence of nodes
func (p *Parser) readCollection(nodeType NodeType, closing TokenType, name string) (*Node, error) {
	startToken := p.lexer.NextToken() // consume opening delimiter

	var nodes []Node
	for {
		token := p.lexer.PeekToken()
		if token.Type == closing {
			p.lexer.NextToken() // consume closing delimiter
			break
		}
		if token.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated %s starting at %d:%d", name, startToken.Line, startToken.Col)
		}

		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	return &Node{
		Type:  nodeType,
		Nodes: nodes,
		Line:  startToken.Line,
		Col:   startToken.Col,
	}, nil
}

// readMap reads a map {...}
func (p *Parser) readMap() (*Node, error) {
	startToken := p.lexer.NextToken() // consume {

	var nodes []Node
	for {
		token := p.lexer.PeekToken()
		if token.Type == TokenRightBrace {
			p.lexer.NextToken() // consume }
			break
		}
		if token.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated map starting at %d:%d", startToken.Line, startToken.Col)
		}

		key, err := p.readNode()
		if err != nil {
			return nil, err
		}

		token = p.lexer.PeekToken()
		if token.Type == TokenRightBrace || token.Type == TokenEOF {
			return nil, fmt.Errorf("map missing value for key at %d:%d", key.Line, key.Col)
		}

		value, err := p.readNode()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, *key, *value)
	}

	return &Node{
		Type:  NodeMap,
		Nodes: nodes,
		Line:  startToken.Line,
		Col:   startToken.Col,
	}, nil
}

// Validation functions

func validateSymbol(s string) error {
	if s == "" {
		return fmt.Errorf("empty symbol")
	}

	if unicode.IsDigit(rune(s[0])) {
		return fmt.Errorf("symbol cannot start with digit: %s", s)
	}

	upper := strings.ToUpper(s)
	for _, ch := range upper {
		if !strings.ContainsRune(symbolChars, ch) {
			return fmt.Errorf("invalid character '%c' in symbol: %s", ch, s)
		}
	}

	return nil
}

func validateKeyword(s string) error {
	if !strings.HasPrefix(s, ":") {
		return fmt.Errorf("keyword must start with colon: %s", s)
	}

	if len(s) == 1 {
		return fmt.Errorf("empty keyword")
	}

	return validateSymbol(s[1:])
}
