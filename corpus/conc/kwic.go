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
	"fmt"
	"strings"

	"github.com/czcorpus/mquery-common/concordance"
)

// LineAttrs lists token attributes attached to concordance
// tokens (in the order they are presented)
var LineAttrs = []string{"lemma", "pos", "deprel"}

// KWICLine is a Key-Word-In-Context record of a match.
// The embedded line contains all the tokens (left context,
// KWIC, right context) with KWIC tokens marked as strong.
type KWICLine struct {
	concordance.Line
	DocID      string `json:"docId"`
	SentenceID string `json:"sentenceId"`
	Position   int    `json:"position"`
	Left       string `json:"left"`
	KWIC       string `json:"kwic"`
	Right      string `json:"right"`
}

// JoinForms renders tokens as running text. Tokens are separated
// by a single space unless annotated with SpaceAfter=No.
func JoinForms(tokens []corpus.Token) string {
	var sb strings.Builder
	for i := range tokens {
		sb.WriteString(tokens[i].Form)
		if i < len(tokens)-1 && tokens[i].SpaceAfter() {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func exportToken(t *corpus.Token, kwic, withAttrs bool) *concordance.Token {
	ans := &concordance.Token{Word: t.Form, Strong: kwic}
	if kwic {
		ans.MatchType = concordance.MatchTypeKWIC
	}
	if withAttrs {
		ans.Attrs = map[string]string{
			"lemma":  t.Lemma,
			"pos":    t.UPOS,
			"deprel": t.Deprel,
		}
	}
	return ans
}

// MatchRef creates a reference to the first token of a match
// in the form docId/sentenceId:position
func MatchRef(m MatchResult) string {
	return fmt.Sprintf("%s/%s:%d", m.DocID, m.SentenceID, m.Start)
}

// Format converts a match into a KWIC record. With withAttrs,
// each token carries its lemma, part of speech and deprel.
func Format(m MatchResult, withAttrs bool) KWICLine {
	text := make(concordance.TokenSlice, 0, len(m.Left)+len(m.Matched)+len(m.Right))
	for i := range m.Left {
		text = append(text, exportToken(&m.Left[i], false, withAttrs))
	}
	for i := range m.Matched {
		text = append(text, exportToken(&m.Matched[i], true, withAttrs))
	}
	for i := range m.Right {
		text = append(text, exportToken(&m.Right[i], false, withAttrs))
	}
	return KWICLine{
		Line: concordance.Line{
			Text:  text,
			Ref:   MatchRef(m),
			Props: m.Props,
		},
		DocID:      m.DocID,
		SentenceID: m.SentenceID,
		Position:   m.Start,
		Left:       JoinForms(m.Left),
		KWIC:       JoinForms(m.Matched),
		Right:      JoinForms(m.Right),
	}
}

func FormatAll(matches []MatchResult, withAttrs bool) []KWICLine {
	ans := make([]KWICLine, len(matches))
	for i, m := range matches {
		ans[i] = Format(m, withAttrs)
	}
	return ans
}
