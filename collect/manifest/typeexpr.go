package manifest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/teranos/namedargs/errors"
)

// typeSyntax is a parsed type string before name resolution.
type typeSyntax struct {
	name     string // dotted name as written
	args     []typeSyntax
	nullable bool
}

func (t typeSyntax) String() string {
	var sb strings.Builder
	sb.WriteString(t.name)
	if len(t.args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('>')
	}
	if t.nullable {
		sb.WriteByte('?')
	}
	return sb.String()
}

// parseType parses a type string such as "kotlin.collections.Map<String, T?>?"
// or "(Int, String) -> Boolean". Function types become kotlin.FunctionN.
func parseType(s string) (typeSyntax, error) {
	p := &typeParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return typeSyntax{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return typeSyntax{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return errors.Newf("type %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) consume(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) parseType() (typeSyntax, error) {
	var t typeSyntax
	var err error

	if p.peek() == '(' {
		t, err = p.parseFunction()
	} else {
		t, err = p.parseNamed()
	}
	if err != nil {
		return typeSyntax{}, err
	}
	if p.consume('?') {
		t.nullable = true
	}
	return t, nil
}

func (p *typeParser) parseNamed() (typeSyntax, error) {
	var segments []string
	for {
		ident := p.ident()
		if ident == "" {
			return typeSyntax{}, p.errorf("expected type name")
		}
		segments = append(segments, ident)
		if !p.consume('.') {
			break
		}
	}
	t := typeSyntax{name: strings.Join(segments, ".")}

	if p.consume('<') {
		for {
			arg, err := p.parseType()
			if err != nil {
				return typeSyntax{}, err
			}
			t.args = append(t.args, arg)
			if p.consume(',') {
				continue
			}
			if p.consume('>') {
				break
			}
			return typeSyntax{}, p.errorf("expected ',' or '>'")
		}
	}
	return t, nil
}

// parseFunction parses "(A, B) -> R", or a parenthesized type "(A)?" when no
// arrow follows.
func (p *typeParser) parseFunction() (typeSyntax, error) {
	p.consume('(')
	var params []typeSyntax
	if !p.consume(')') {
		for {
			param, err := p.parseType()
			if err != nil {
				return typeSyntax{}, err
			}
			params = append(params, param)
			if p.consume(',') {
				continue
			}
			if p.consume(')') {
				break
			}
			return typeSyntax{}, p.errorf("expected ',' or ')'")
		}
	}

	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], "->") {
		if len(params) == 1 {
			return params[0], nil
		}
		return typeSyntax{}, p.errorf("expected '->'")
	}
	p.pos += 2

	ret, err := p.parseType()
	if err != nil {
		return typeSyntax{}, err
	}
	return typeSyntax{
		name: fmt.Sprintf("kotlin.Function%d", len(params)),
		args: append(params, ret),
	}, nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && unicode.IsDigit(r)) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}
