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

package conc

import (
	"corpq/corpus"
	"corpq/cql"
)

// MatchResult is a single occurrence of a query within a sentence.
// Start is a 0-based position of the first matched token within
// the sentence. Token slices share memory with the source sentence
// and must not be modified.
type MatchResult struct {
	DocID      string         `json:"docId,omitempty"`
	SentenceID string         `json:"sentenceId,omitempty"`
	Start      int            `json:"start"`
	Matched    []corpus.Token `json:"matched"`
	Left       []corpus.Token `json:"left"`
	Right      []corpus.Token `json:"right"`

	// Props contains metadata of the document the match comes from
	Props map[string]string `json:"props,omitempty"`
}

// FindMatches tests the query at each position of tokens
// and reports all the matches (including overlapping ones)
// ordered by their start position. Context is limited by
// the token slice boundaries.
func FindMatches(q *cql.Query, tokens []corpus.Token, contextSize int) []MatchResult {
	k := q.Len()
	if k == 0 || k > len(tokens) {
		return []MatchResult{}
	}
	if contextSize < 0 {
		contextSize = 0
	}
	ans := make([]MatchResult, 0, 8)
	for p := 0; p <= len(tokens)-k; p++ {
		if !q.MatchAt(tokens, p) {
			continue
		}
		lft := max(0, p-contextSize)
		rgt := min(len(tokens), p+k+contextSize)
		ans = append(ans, MatchResult{
			Start:   p,
			Matched: tokens[p : p+k : p+k],
			Left:    tokens[lft:p:p],
			Right:   tokens[p+k : rgt : rgt],
		})
	}
	return ans
}
