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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerTokenize(t *testing.T) {
	tokens, err := NewLexer(`[word="a\"b" & pos!="X"]{1,2}`).Tokenize()
	require.NoError(t, err)
	kinds := make([]TokenKind, len(tokens))
	for i, tk := range tokens {
		kinds[i] = tk.Kind
	}
	assert.Equal(
		t,
		[]TokenKind{
			TokenLBracket, TokenIdent, TokenEq, TokenString, TokenAmp, TokenIdent,
			TokenNotEq, TokenString, TokenRBracket, TokenLBrace, TokenNumber,
			TokenComma, TokenNumber, TokenRBrace, TokenEOF,
		},
		kinds,
	)
	assert.Equal(t, `a"b`, tokens[3].Value)
	assert.Equal(t, 13, tokens[4].Position)
}

func TestLexerKeepsRegexpEscapes(t *testing.T) {
	tokens, err := NewLexer(`"a\.b"`).Tokenize()
	require.NoError(t, err)
	assert.Equal(t, `a\.b`, tokens[0].Value)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := NewLexer(`[word="abc]`).Tokenize()
	var synErr *merror.QuerySyntaxError
	require.True(t, errors.As(err, &synErr))
	assert.Equal(t, merror.CodeUnterminatedString, synErr.Code)
	assert.Equal(t, 6, synErr.Position)
}

func TestParseSequence(t *testing.T) {
	q, err := Parse(`[pos="ADJ"] [lemma="kitap" & word="kitaplar"][]`)
	require.NoError(t, err)
	require.Equal(t, 3, q.Len())
	assert.Len(t, q.Constraints[0].Predicates, 1)
	assert.Equal(t, corpus.AttrPos, q.Constraints[0].Predicates[0].Attr)
	assert.Len(t, q.Constraints[1].Predicates, 2)
	assert.True(t, q.Constraints[2].IsWildcard())
	assert.Equal(t, `[pos="ADJ"] [lemma="kitap" & word="kitaplar"] []`, q.String())
}

func TestParseNoWhitespaceBetweenSpecs(t *testing.T) {
	q, err := Parse(`[pos="NOUN"][pos="NOUN"]`)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Len())
}

func TestPredicateKindDecidedAtParseTime(t *testing.T) {
	q, err := Parse(`[word="kitap"] [word="kitap.*"] [word="a.b"]`)
	require.NoError(t, err)
	assert.Equal(t, PredicateLiteral, q.Constraints[0].Predicates[0].Kind)
	assert.Equal(t, PredicateRegex, q.Constraints[1].Predicates[0].Kind)
	assert.Equal(t, PredicateRegex, q.Constraints[2].Predicates[0].Kind)

	q, err = Parse(`[word="a.b"]`, WithLiteralMode())
	require.NoError(t, err)
	assert.Equal(t, PredicateLiteral, q.Constraints[0].Predicates[0].Kind)
	assert.True(t, q.Constraints[0].Match(&corpus.Token{Form: "A.B"}))
	assert.False(t, q.Constraints[0].Match(&corpus.Token{Form: "axb"}))
}

func TestPredicateMatching(t *testing.T) {
	cases := []struct {
		query string
		form  string
		match bool
	}{
		{`[word="Kitap"]`, "kitap", true},
		{`[word="kitap"]`, "kitaplar", false},
		{`[word="kitap.*"]`, "KITAPLAR", true},
		{`[word="ki"]`, "kitap", false},
		{`[word="ki.*|ev"]`, "ev", true},
		{`[word="ki.*|ev"]`, "evler", false},
		{`[word="[0-9]+"]`, "2024", true},
		{`[word="güzel"]`, "GÜZEL", true},
	}
	for _, tc := range cases {
		t.Run(tc.query+"/"+tc.form, func(t *testing.T) {
			q, err := Parse(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.match, q.Constraints[0].Match(&corpus.Token{Form: tc.form}))
		})
	}
}

func TestCaseSensitiveOption(t *testing.T) {
	q, err := Parse(`[word="Kitap"] [word="Ev.*"]`, WithCaseSensitive())
	require.NoError(t, err)
	assert.False(t, q.Constraints[0].Match(&corpus.Token{Form: "kitap"}))
	assert.True(t, q.Constraints[0].Match(&corpus.Token{Form: "Kitap"}))
	assert.False(t, q.Constraints[1].Match(&corpus.Token{Form: "evler"}))
	assert.True(t, q.Constraints[1].Match(&corpus.Token{Form: "Evler"}))
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := []struct {
		query    string
		code     merror.QuerySyntaxCode
		fragment string
	}{
		{"", merror.CodeEmptyQuery, ""},
		{"   ", merror.CodeEmptyQuery, ""},
		{`[word="a"`, merror.CodeUnbalancedBracket, `[word="a"`},
		{`[word="a" [pos="X"]`, merror.CodeUnbalancedBracket, `[word="a"`},
		{`[word="a"]]`, merror.CodeUnbalancedBracket, "]"},
		{`[word "a"]`, merror.CodeMissingEquals, `word "a"`},
		{`[word=a]`, merror.CodeMissingQuotes, "word=a"},
		{`[tag="NN"]`, merror.CodeUnknownAttribute, "tag"},
		{`[word="a" & word="b"]`, merror.CodeDuplicateAttribute, `[word="a" & word="b"`},
		{`[word="a(b"]`, merror.CodeInvalidRegex, `"a(b"`},
		{`[word="a)|(b"]`, merror.CodeInvalidRegex, `"a)|(b"`},
		{`[word=""]`, merror.CodeEmptyValue, `word=""`},
		{`"kitap"`, merror.CodeUnexpectedToken, `"kitap"`},
		{`[word="a" pos="b"]`, merror.CodeUnexpectedToken, "pos"},
		{`[word="a"] #`, merror.CodeUnexpectedToken, "#"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			_, err := Parse(tc.query)
			var synErr *merror.QuerySyntaxError
			require.True(t, errors.As(err, &synErr), "unexpected error %v", err)
			assert.Equal(t, tc.code, synErr.Code)
			assert.Equal(t, tc.fragment, synErr.Fragment)
			assert.NotEmpty(t, synErr.Msg)
		})
	}
}

func TestParseUnsupportedConstructs(t *testing.T) {
	for _, query := range []string{
		`[word="a"] []{0,2} [word="b"]`,
		`[word="a"]?`,
		`[word="a"]+`,
		`[word="a" | word="b"]`,
		`[!word="a"]`,
		`[word!="a"]`,
		`([word="a"] [word="b"])`,
		`[word="a"] within s`,
	} {
		t.Run(query, func(t *testing.T) {
			q, err := Parse(query)
			assert.Nil(t, q)
			var unsErr *merror.UnsupportedPatternError
			assert.True(t, errors.As(err, &unsErr), "unexpected error %v", err)
		})
	}
}

func TestRegexpCacheIsShared(t *testing.T) {
	cache, err := NewRegexpCache(10)
	require.NoError(t, err)
	p := NewParser(WithRegexpCache(cache))
	q1, err := p.Parse(`[word="ab.*"]`)
	require.NoError(t, err)
	q2, err := p.Parse(`[lemma="ab.*"]`)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Same(t, q1.Constraints[0].Predicates[0].re, q2.Constraints[0].Predicates[0].re)
}

func TestValidate(t *testing.T) {
	ok, msg := Validate(`[pos="NOUN"]`)
	assert.True(t, ok)
	assert.Empty(t, msg)
	ok, msg = Validate(`[pos=NOUN]`)
	assert.False(t, ok)
	assert.Contains(t, msg, "MISSING_QUOTES")
}

func TestDescribe(t *testing.T) {
	info := Describe(`[pos="ADJ"] [lemma="kitap" & pos="NOUN"]`)
	assert.True(t, info.Valid)
	assert.Equal(t, 2, info.TokenCount)
	assert.Equal(t, []string{"lemma", "pos"}, info.AttributesUsed)
	assert.True(t, info.IsSequence)
	assert.False(t, info.HasRegex)

	info = Describe(`[foo="x"]`)
	assert.False(t, info.Valid)
	assert.Equal(t, "UNKNOWN_ATTRIBUTE", info.ErrorCode)

	info = Describe(`[word="a"]{2}`)
	assert.False(t, info.Valid)
	assert.Equal(t, "UNSUPPORTED_PATTERN", info.ErrorCode)
}

func TestParseIsIdempotent(t *testing.T) {
	q1, err := Parse(`[word="a.*"] [pos="NOUN"]`)
	require.NoError(t, err)
	q2, err := Parse(q1.String())
	require.NoError(t, err)
	assert.Equal(t, q1.String(), q2.String())
}
