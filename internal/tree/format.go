package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Write serializes n in the textual tagged-tree form used to pass a tree
// between pipeline stages on disk or over a pipe:
//
//	(tag attr="value" attr2="value2" (child ...) (child2 ...))
//
// Attribute values are always double-quoted using Go string-literal
// escaping (strconv.Quote), which is sufficient for the identifiers,
// numbers and source text the passes ever put in an attribute.
func Write(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	b.WriteByte('(')
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(a.Val))
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		writeNode(b, c)
	}
	b.WriteByte(')')
}

// Parse reads the textual tagged-tree form produced by Write.
func Parse(s string) (*Node, error) {
	sc := newScanner(s)
	tok, err := sc.next()
	if err != nil {
		return nil, err
	}
	n, tok, err := parseNode(sc, tok)
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, fmt.Errorf("tree: trailing input at line %d", tok.line)
	}
	return n, nil
}

func parseNode(sc *scanner, tok token) (*Node, token, error) {
	if tok.kind != tokLParen {
		return nil, tok, fmt.Errorf("tree: expected '(' at line %d", tok.line)
	}
	tok, err := sc.next()
	if err != nil {
		return nil, tok, err
	}
	if tok.kind != tokIdent {
		return nil, tok, fmt.Errorf("tree: expected tag at line %d", tok.line)
	}
	n := New(tok.text)
	tok, err = sc.next()
	if err != nil {
		return nil, tok, err
	}
	for tok.kind == tokIdent {
		key := tok.text
		tok, err = sc.next()
		if err != nil {
			return nil, tok, err
		}
		if tok.kind != tokEquals {
			return nil, tok, fmt.Errorf("tree: expected '=' after %q at line %d", key, tok.line)
		}
		tok, err = sc.next()
		if err != nil {
			return nil, tok, err
		}
		if tok.kind != tokString {
			return nil, tok, fmt.Errorf("tree: expected attribute value at line %d", tok.line)
		}
		n.Set(key, tok.text)
		tok, err = sc.next()
		if err != nil {
			return nil, tok, err
		}
	}
	for tok.kind == tokLParen {
		var child *Node
		child, tok, err = parseNode(sc, tok)
		if err != nil {
			return nil, tok, err
		}
		n.Append(child)
	}
	if tok.kind != tokRParen {
		return nil, tok, fmt.Errorf("tree: expected ')' at line %d", tok.line)
	}
	tok, err = sc.next()
	if err != nil {
		return nil, tok, err
	}
	return n, tok, nil
}
