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
	"corpq/merror"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenKind represents a lexical category of a query fragment
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenLBracket
	TokenRBracket
	TokenIdent
	TokenEq
	TokenNotEq
	TokenNot
	TokenAmp
	TokenPipe
	TokenString
	TokenLBrace
	TokenRBrace
	TokenQuantifier
	TokenLParen
	TokenRParen
	TokenComma
	TokenNumber
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:        "end of query",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenIdent:      "identifier",
	TokenEq:         "=",
	TokenNotEq:      "!=",
	TokenNot:        "!",
	TokenAmp:        "&",
	TokenPipe:       "|",
	TokenString:     "string",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenQuantifier: "quantifier",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenComma:      ",",
	TokenNumber:     "number",
}

func (k TokenKind) String() string {
	return tokenKindNames[k]
}

// Token is a lexical unit of a query. For strings, Value contains
// the unquoted content while Raw keeps the original text.
type Token struct {
	Kind     TokenKind
	Value    string
	Raw      string
	Position int
}

// Lexer splits a query into tokens. Whitespace is not
// significant and is skipped.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0, len(input)/3+1),
	}
}

// Tokenize processes the whole input. The last token is
// always TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.position++
		case c == '[':
			l.addSimple(TokenLBracket, start, 1)
		case c == ']':
			l.addSimple(TokenRBracket, start, 1)
		case c == '=':
			l.addSimple(TokenEq, start, 1)
		case c == '!':
			if l.peekByte(1) == '=' {
				l.addSimple(TokenNotEq, start, 2)

			} else {
				l.addSimple(TokenNot, start, 1)
			}
		case c == '&':
			l.addSimple(TokenAmp, start, 1)
		case c == '|':
			l.addSimple(TokenPipe, start, 1)
		case c == '{':
			l.addSimple(TokenLBrace, start, 1)
		case c == '}':
			l.addSimple(TokenRBrace, start, 1)
		case c == '(':
			l.addSimple(TokenLParen, start, 1)
		case c == ')':
			l.addSimple(TokenRParen, start, 1)
		case c == ',':
			l.addSimple(TokenComma, start, 1)
		case c == '?' || c == '*' || c == '+':
			l.addSimple(TokenQuantifier, start, 1)
		case c == '"' || c == '\'':
			if err := l.lexString(c); err != nil {
				return nil, err
			}
		case c >= '0' && c <= '9':
			l.lexWhile(TokenNumber, func(r rune) bool { return r >= '0' && r <= '9' })
		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.position:])
			if !isIdentRune(r) {
				return nil, &merror.QuerySyntaxError{
					Code:     merror.CodeUnexpectedToken,
					Fragment: string(r),
					Position: start,
					Msg:      fmt.Sprintf("unexpected character `%c`", r),
				}
			}
			l.lexWhile(TokenIdent, isIdentRune)
		}
	}
	l.tokens = append(l.tokens, Token{Kind: TokenEOF, Position: len(l.input)})
	return l.tokens, nil
}

func (l *Lexer) peekByte(offset int) byte {
	if l.position+offset < len(l.input) {
		return l.input[l.position+offset]
	}
	return 0
}

func (l *Lexer) addSimple(kind TokenKind, start, size int) {
	raw := l.input[start : start+size]
	l.tokens = append(l.tokens, Token{Kind: kind, Value: raw, Raw: raw, Position: start})
	l.position += size
}

func (l *Lexer) lexWhile(kind TokenKind, pred func(r rune) bool) {
	start := l.position
	for l.position < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		if !pred(r) {
			break
		}
		l.position += size
	}
	raw := l.input[start:l.position]
	l.tokens = append(l.tokens, Token{Kind: kind, Value: raw, Raw: raw, Position: start})
}

// lexString reads a quoted value. Only an escaped quote character
// is unescaped, other backslash sequences are kept verbatim
// so they keep their regular expression meaning.
func (l *Lexer) lexString(quote byte) error {
	start := l.position
	l.position++
	value := make([]byte, 0, 16)
	for l.position < len(l.input) {
		c := l.input[l.position]
		if c == '\\' && l.position+1 < len(l.input) {
			next := l.input[l.position+1]
			if next == quote {
				value = append(value, quote)

			} else {
				value = append(value, c, next)
			}
			l.position += 2
			continue
		}
		if c == quote {
			l.position++
			l.tokens = append(l.tokens, Token{
				Kind:     TokenString,
				Value:    string(value),
				Raw:      l.input[start:l.position],
				Position: start,
			})
			return nil
		}
		value = append(value, c)
		l.position++
	}
	return &merror.QuerySyntaxError{
		Code:     merror.CodeUnterminatedString,
		Fragment: l.input[start:],
		Position: start,
		Msg:      "missing closing quote",
	}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' || r == ':'
}
