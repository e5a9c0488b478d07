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

package deps

import (
	"corpq/corpus"
	"corpq/merror"
	"fmt"
	"strings"
)

// Edge is a dependency relation between two tokens
// of the same sentence.
type Edge struct {
	Head      int    `json:"head"`
	Dependent int    `json:"dependent"`
	Deprel    string `json:"deprel"`
}

// Pair is a head token together with one of its dependents
type Pair struct {
	Head      *corpus.Token
	Dependent *corpus.Token
	Deprel    string
}

// PairFilter specifies which head-dependent pairs to select.
// Empty fields match anything. Lemmas are compared
// case-insensitively, POS tags and relations exactly.
type PairFilter struct {
	HeadLemma      string `json:"headLemma,omitempty"`
	HeadPos        string `json:"headPos,omitempty"`
	Deprel         string `json:"deprel,omitempty"`
	DependentLemma string `json:"dependentLemma,omitempty"`
	DependentPos   string `json:"dependentPos,omitempty"`
}

func (f PairFilter) IsEmpty() bool {
	return f == PairFilter{}
}

func (f PairFilter) matches(head, dep *corpus.Token) bool {
	if f.HeadLemma != "" && !strings.EqualFold(head.Lemma, f.HeadLemma) {
		return false
	}
	if f.HeadPos != "" && head.UPOS != f.HeadPos {
		return false
	}
	if f.Deprel != "" && dep.Deprel != f.Deprel {
		return false
	}
	if f.DependentLemma != "" && !strings.EqualFold(dep.Lemma, f.DependentLemma) {
		return false
	}
	if f.DependentPos != "" && dep.UPOS != f.DependentPos {
		return false
	}
	return true
}

// ParsePattern converts the `HEADPOS:deprel>DEPPOS` shorthand into
// a PairFilter. The left side always describes the head and the right
// side the dependent, e.g. `VERB:obj>NOUN` selects nouns being objects
// of verbs. Any part can be `*` (or empty) to match anything. The relation
// may contain a subtype (`NOUN:nmod:poss>PRON`).
func ParsePattern(pattern string) (PairFilter, error) {
	mkErr := func(msg string) error {
		return &merror.QuerySyntaxError{
			Code:     merror.CodeInvalidDepPattern,
			Fragment: pattern,
			Msg:      msg,
		}
	}
	left, depPos, ok := strings.Cut(strings.TrimSpace(pattern), ">")
	if !ok {
		return PairFilter{}, mkErr("missing `>` separating head and dependent")
	}
	headPos, deprel, ok := strings.Cut(left, ":")
	if !ok {
		return PairFilter{}, mkErr("missing `:` separating head POS and relation")
	}
	if strings.Contains(depPos, ">") {
		return PairFilter{}, mkErr("only a single `>` is allowed")
	}
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "*" {
			return ""
		}
		return s
	}
	ans := PairFilter{
		HeadPos:      norm(headPos),
		Deprel:       norm(deprel),
		DependentPos: norm(depPos),
	}
	return ans, nil
}

// FormatPattern is the inverse of ParsePattern
func FormatPattern(f PairFilter) string {
	star := func(s string) string {
		if s == "" {
			return "*"
		}
		return s
	}
	return fmt.Sprintf("%s:%s>%s", star(f.HeadPos), star(f.Deprel), star(f.DependentPos))
}
