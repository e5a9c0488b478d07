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

package corpus

import (
	"fmt"
	"strings"

	"corpq/merror"
)

// Token is a single annotated word of a sentence as produced
// by an offline annotation pipeline (CoNLL-U compatible).
type Token struct {

	// Index is a 1-based position of the token within its sentence
	Index int `json:"index"`

	Form   string            `json:"form"`
	Lemma  string            `json:"lemma"`
	UPOS   string            `json:"upos"`
	XPOS   string            `json:"xpos,omitempty"`
	Feats  map[string]string `json:"feats,omitempty"`

	// Head is an index of the syntactic parent, 0 means root
	Head   int               `json:"head"`
	Deprel string            `json:"deprel"`
	Misc   map[string]string `json:"misc,omitempty"`
}

// SpaceAfter tells whether the token should be followed
// by a space when rendering running text.
func (t *Token) SpaceAfter() bool {
	return t.Misc["SpaceAfter"] != "No"
}

func (t *Token) IsPunct() bool {
	return t.UPOS == PunctPOS
}

func (t *Token) IsRoot() bool {
	return t.Head == 0
}

// DepDistance returns an absolute distance between the token
// and its head. For the root, 0 is returned.
func (t *Token) DepDistance() int {
	if t.Head == 0 {
		return 0
	}
	if t.Head > t.Index {
		return t.Head - t.Index
	}
	return t.Index - t.Head
}

// ------------------------

type Sentence struct {
	ID     string  `json:"id"`
	Tokens []Token `json:"tokens"`
}

// TokenAt returns a token with the 1-based index idx
// or nil if there is no such token.
func (s *Sentence) TokenAt(idx int) *Token {
	if idx < 1 || idx > len(s.Tokens) {
		return nil
	}
	return &s.Tokens[idx-1]
}

// Root returns the index of the root token or 0 if there is
// no unique root.
func (s *Sentence) Root() int {
	var ans int
	for _, t := range s.Tokens {
		if t.Head == 0 {
			if ans > 0 {
				return 0
			}
			ans = t.Index
		}
	}
	return ans
}

// Text renders the sentence as running text, respecting
// the SpaceAfter=No annotation.
func (s *Sentence) Text() string {
	var sb strings.Builder
	for i, t := range s.Tokens {
		sb.WriteString(t.Form)
		if i < len(s.Tokens)-1 && t.SpaceAfter() {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Validate tests the structural invariants of the sentence:
// contiguous 1..N indices, valid head references, a single root
// and acyclic head chains.
// The docID argument is used only to identify the sentence in
// a possible error.
func (s *Sentence) Validate(docID string) error {
	mkErr := func(kind merror.IntegrityKind, tokIdx int, msg string, args ...any) error {
		return &merror.CorpusIntegrityError{
			Kind:       kind,
			DocID:      docID,
			SentenceID: s.ID,
			TokenIndex: tokIdx,
			Msg:        fmt.Sprintf(msg, args...),
		}
	}
	if len(s.Tokens) == 0 {
		return mkErr(merror.IntegrityEmptySentence, 0, "sentence has no tokens")
	}
	var numRoots int
	for i, t := range s.Tokens {
		if t.Index != i+1 {
			return mkErr(
				merror.IntegrityIndexGap, t.Index,
				"token at position %d has index %d (expected %d)", i, t.Index, i+1)
		}
		if t.Head < 0 || t.Head > len(s.Tokens) || t.Head == t.Index {
			return mkErr(
				merror.IntegrityInvalidHead, t.Index,
				"token %d refers to invalid head %d", t.Index, t.Head)
		}
		if t.Head == 0 {
			numRoots++
		}
	}
	if numRoots == 0 {
		return mkErr(merror.IntegrityNoRoot, 0, "sentence has no root token")
	}
	if numRoots > 1 {
		return mkErr(merror.IntegrityMultipleRoots, 0, "sentence has %d root tokens", numRoots)
	}
	if idx := s.findCycle(); idx > 0 {
		return mkErr(merror.IntegrityHeadCycle, idx, "head chain of token %d forms a cycle", idx)
	}
	return nil
}

// findCycle returns an index of a token lying on a head cycle
// or 0 if all the head chains reach the root.
// Head references must be already known to be in range.
func (s *Sentence) findCycle() int {
	const (
		unseen = iota
		onPath
		done
	)
	state := make([]uint8, len(s.Tokens)+1)
	path := make([]int, 0, 16)
	for _, t := range s.Tokens {
		path = path[:0]
		curr := t.Index
		for curr != 0 && state[curr] == unseen {
			state[curr] = onPath
			path = append(path, curr)
			curr = s.Tokens[curr-1].Head
		}
		if curr != 0 && state[curr] == onPath {
			return curr
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return 0
}

// ------------------------

type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Sentences []Sentence        `json:"sentences"`
}

func (d *Document) NumTokens() int {
	var ans int
	for _, s := range d.Sentences {
		ans += len(s.Tokens)
	}
	return ans
}

func (d *Document) SentenceByID(id string) *Sentence {
	for i := range d.Sentences {
		if d.Sentences[i].ID == id {
			return &d.Sentences[i]
		}
	}
	return nil
}
