// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of CORPQ.
//
//  CORPQ is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CORPQ is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CORPQ.  If not, see <https://www.gnu.org/licenses/>.

package cql

import (
	"corpq/corpus"
	"corpq/merror"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
)

type Option func(p *Parser)

// WithLiteralMode makes all the values compared literally
// even if they contain regular expression metacharacters.
func WithLiteralMode() Option {
	return func(p *Parser) {
		p.literalMode = true
	}
}

func WithCaseSensitive() Option {
	return func(p *Parser) {
		p.caseSensitive = true
	}
}

func WithRegexpCache(cache *RegexpCache) Option {
	return func(p *Parser) {
		p.cache = cache
	}
}

// Parser converts query text into Query. It has no mutable state
// except for the optional regexp cache which is safe to share.
type Parser struct {
	cache         *RegexpCache
	literalMode   bool
	caseSensitive bool
}

func NewParser(opts ...Option) *Parser {
	ans := &Parser{}
	for _, opt := range opts {
		opt(ans)
	}
	return ans
}

// Parse is a shortcut for NewParser(opts...).Parse(text)
func Parse(text string, opts ...Option) (*Query, error) {
	return NewParser(opts...).Parse(text)
}

func (p *Parser) Parse(text string) (*Query, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &merror.QuerySyntaxError{
			Code: merror.CodeEmptyQuery,
			Msg:  "query is empty",
		}
	}
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	st := &parserState{parser: p, text: text, tokens: tokens}
	return st.parseQuery()
}

// -------------------

type parserState struct {
	parser *Parser
	text   string
	tokens []Token
	pos    int
}

func (st *parserState) peek() Token {
	return st.tokens[st.pos]
}

func (st *parserState) next() Token {
	tok := st.tokens[st.pos]
	if tok.Kind != TokenEOF {
		st.pos++
	}
	return tok
}

func (st *parserState) fragmentFrom(start int) string {
	end := st.peek().Position
	if end <= start {
		end = len(st.text)
	}
	return strings.TrimSpace(st.text[start:end])
}

func (st *parserState) syntaxError(code merror.QuerySyntaxCode, tok Token, msg string, args ...any) error {
	frag := tok.Raw
	if tok.Kind == TokenEOF {
		frag = ""
	}
	return &merror.QuerySyntaxError{
		Code:     code,
		Fragment: frag,
		Position: tok.Position,
		Msg:      fmt.Sprintf(msg, args...),
	}
}

func (st *parserState) unsupported(tok Token, construct string) error {
	return &merror.UnsupportedPatternError{
		Construct: construct,
		Position:  tok.Position,
	}
}

// unsupportedFor maps tokens which start a recognized but
// unsupported construct. Nil is returned for other tokens.
func (st *parserState) unsupportedFor(tok Token) error {
	switch tok.Kind {
	case TokenLBrace:
		return st.unsupported(tok, "{m,n} repetition")
	case TokenQuantifier:
		return st.unsupported(tok, tok.Raw+" quantifier")
	case TokenPipe:
		return st.unsupported(tok, "| alternative")
	case TokenNot, TokenNotEq:
		return st.unsupported(tok, tok.Raw+" negation")
	case TokenLParen, TokenRParen:
		return st.unsupported(tok, "() group")
	case TokenIdent:
		kw := strings.ToLower(tok.Value)
		if kw == "within" || kw == "containing" {
			return st.unsupported(tok, kw)
		}
	}
	return nil
}

func (st *parserState) parseQuery() (*Query, error) {
	ans := &Query{Text: st.text, Constraints: make([]TokenConstraint, 0, 4)}
	for {
		tok := st.next()
		switch tok.Kind {
		case TokenEOF:
			return ans, nil
		case TokenLBracket:
			tc, err := st.parseConstraint(tok)
			if err != nil {
				return nil, err
			}
			ans.Constraints = append(ans.Constraints, *tc)
		case TokenRBracket:
			return nil, st.syntaxError(
				merror.CodeUnbalancedBracket, tok, "closing bracket without a matching opening one")
		case TokenString:
			return nil, st.syntaxError(
				merror.CodeUnexpectedToken, tok, "values must be enclosed in a token specification [attr=\"value\"]")
		default:
			if err := st.unsupportedFor(tok); err != nil {
				return nil, err
			}
			return nil, st.syntaxError(merror.CodeUnexpectedToken, tok, "unexpected `%s`", tok.Raw)
		}
	}
}

// parseConstraint parses the inside of a [...] specification;
// the opening bracket has been already consumed.
func (st *parserState) parseConstraint(open Token) (*TokenConstraint, error) {
	ans := &TokenConstraint{Position: open.Position}
	if st.peek().Kind == TokenRBracket {
		st.next()
		return ans, nil
	}
	seen := make(map[corpus.Attr]bool)
	for {
		pred, err := st.parsePredicate(open)
		if err != nil {
			return nil, err
		}
		if seen[pred.Attr] {
			return nil, &merror.QuerySyntaxError{
				Code:     merror.CodeDuplicateAttribute,
				Fragment: st.fragmentFrom(open.Position),
				Position: open.Position,
				Msg:      fmt.Sprintf("attribute `%s` is used more than once in a single token specification", pred.Attr),
			}
		}
		seen[pred.Attr] = true
		ans.Predicates = append(ans.Predicates, *pred)

		tok := st.next()
		switch tok.Kind {
		case TokenAmp:
			continue
		case TokenRBracket:
			return ans, nil
		case TokenEOF, TokenLBracket:
			return nil, &merror.QuerySyntaxError{
				Code:     merror.CodeUnbalancedBracket,
				Fragment: strings.TrimSpace(st.text[open.Position:tok.Position]),
				Position: open.Position,
				Msg:      "missing closing bracket",
			}
		default:
			if err := st.unsupportedFor(tok); err != nil {
				return nil, err
			}
			return nil, st.syntaxError(
				merror.CodeUnexpectedToken, tok, "expected `&` or `]`, found `%s`", tok.Raw)
		}
	}
}

func (st *parserState) parsePredicate(open Token) (*Predicate, error) {
	attrTok := st.next()
	switch attrTok.Kind {
	case TokenIdent:
	case TokenEOF:
		return nil, &merror.QuerySyntaxError{
			Code:     merror.CodeUnbalancedBracket,
			Fragment: strings.TrimSpace(st.text[open.Position:]),
			Position: open.Position,
			Msg:      "missing closing bracket",
		}
	default:
		if err := st.unsupportedFor(attrTok); err != nil {
			return nil, err
		}
		return nil, st.syntaxError(
			merror.CodeUnexpectedToken, attrTok, "expected an attribute name, found `%s`", attrTok.Raw)
	}
	attr, ok := corpus.ParseAttr(attrTok.Value)
	if !ok {
		return nil, st.syntaxError(
			merror.CodeUnknownAttribute, attrTok,
			"unknown attribute `%s` (supported: word, lemma, pos)", attrTok.Value)
	}

	eqTok := st.next()
	switch eqTok.Kind {
	case TokenEq:
	case TokenNotEq:
		return nil, st.unsupportedFor(eqTok)
	default:
		return nil, &merror.QuerySyntaxError{
			Code:     merror.CodeMissingEquals,
			Fragment: strings.TrimSpace(st.text[attrTok.Position:eqTok.Position] + eqTok.Raw),
			Position: attrTok.Position,
			Msg:      fmt.Sprintf("missing `=` after attribute `%s`", attrTok.Value),
		}
	}

	valTok := st.next()
	if valTok.Kind != TokenString {
		return nil, &merror.QuerySyntaxError{
			Code:     merror.CodeMissingQuotes,
			Fragment: strings.TrimSpace(st.text[attrTok.Position:valTok.Position] + valTok.Raw),
			Position: valTok.Position,
			Msg:      fmt.Sprintf("value of attribute `%s` must be a quoted string", attrTok.Value),
		}
	}
	if valTok.Value == "" {
		return nil, &merror.QuerySyntaxError{
			Code:     merror.CodeEmptyValue,
			Fragment: st.text[attrTok.Position : valTok.Position+len(valTok.Raw)],
			Position: valTok.Position,
			Msg:      fmt.Sprintf("empty value of attribute `%s`", attrTok.Value),
		}
	}
	pred, err := st.parser.compilePredicate(attr, valTok.Value)
	if err != nil {
		return nil, &merror.QuerySyntaxError{
			Code:     merror.CodeInvalidRegex,
			Fragment: valTok.Raw,
			Position: valTok.Position,
			Msg:      fmt.Sprintf("invalid regular expression for attribute `%s`: %s", attr, err),
		}
	}
	return pred, nil
}

// compilePredicate decides whether the value is a literal or
// a regular expression. Regular expressions are anchored to match
// the whole attribute value.
func (p *Parser) compilePredicate(attr corpus.Attr, value string) (*Predicate, error) {
	ans := &Predicate{
		Attr:          attr,
		Value:         value,
		CaseSensitive: p.caseSensitive,
	}
	if p.literalMode || regexp.QuoteMeta(value) == value {
		ans.Kind = PredicateLiteral
		return ans, nil
	}
	// the value must be a well formed expression on its own,
	// otherwise it could escape the anchoring group
	if _, err := syntax.Parse(value, syntax.Perl); err != nil {
		return nil, err
	}
	expr := "^(?:" + value + ")$"
	if !p.caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := p.cache.Compile(expr)
	if err != nil {
		return nil, err
	}
	ans.Kind = PredicateRegex
	ans.re = re
	return ans, nil
}
