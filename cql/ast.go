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
	"regexp"
	"sort"
	"strings"
)

type PredicateKind int

const (
	PredicateLiteral PredicateKind = iota + 1
	PredicateRegex
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateLiteral:
		return "literal"
	case PredicateRegex:
		return "regex"
	}
	return "unknown"
}

// Predicate tests a single attribute of a token. Whether it is
// a literal comparison or a regular expression match is decided
// once when the query is parsed.
type Predicate struct {
	Attr          corpus.Attr
	Kind          PredicateKind
	Value         string
	CaseSensitive bool
	re            *regexp.Regexp
}

func (p *Predicate) Match(tok *corpus.Token) bool {
	v := p.Attr.Value(tok)
	switch p.Kind {
	case PredicateLiteral:
		if p.CaseSensitive {
			return v == p.Value
		}
		return strings.EqualFold(v, p.Value)
	case PredicateRegex:
		return p.re.MatchString(v)
	}
	return false
}

func (p *Predicate) String() string {
	return p.Attr.String() + `="` + strings.ReplaceAll(p.Value, `"`, `\"`) + `"`
}

// TokenConstraint is a conjunction of predicates applied
// to a single token. A constraint with no predicates matches
// any token.
type TokenConstraint struct {
	Predicates []Predicate
	Position   int
}

func (tc *TokenConstraint) IsWildcard() bool {
	return len(tc.Predicates) == 0
}

func (tc *TokenConstraint) Match(tok *corpus.Token) bool {
	for i := range tc.Predicates {
		if !tc.Predicates[i].Match(tok) {
			return false
		}
	}
	return true
}

func (tc *TokenConstraint) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range tc.Predicates {
		if i > 0 {
			sb.WriteString(" & ")
		}
		sb.WriteString(tc.Predicates[i].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Query is a parsed fixed-length sequence of token constraints.
// A match is a span of len(Constraints) contiguous tokens where
// i-th token satisfies i-th constraint.
type Query struct {
	Text        string
	Constraints []TokenConstraint
}

func (q *Query) Len() int {
	return len(q.Constraints)
}

// MatchAt tests whether the query matches tokens starting
// at the position start.
func (q *Query) MatchAt(tokens []corpus.Token, start int) bool {
	if start < 0 || start+len(q.Constraints) > len(tokens) {
		return false
	}
	for i := range q.Constraints {
		if !q.Constraints[i].Match(&tokens[start+i]) {
			return false
		}
	}
	return true
}

// AttributesUsed returns a sorted list of unique attributes
// the query refers to.
func (q *Query) AttributesUsed() []corpus.Attr {
	seen := make(map[corpus.Attr]bool)
	for _, c := range q.Constraints {
		for _, p := range c.Predicates {
			seen[p.Attr] = true
		}
	}
	ans := make([]corpus.Attr, 0, len(seen))
	for a := range seen {
		ans = append(ans, a)
	}
	sort.Slice(ans, func(i, j int) bool { return ans[i].String() < ans[j].String() })
	return ans
}

// String returns a normalized form of the query
func (q *Query) String() string {
	parts := make([]string, len(q.Constraints))
	for i := range q.Constraints {
		parts[i] = q.Constraints[i].String()
	}
	return strings.Join(parts, " ")
}
