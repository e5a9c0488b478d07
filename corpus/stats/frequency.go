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

// Package stats provides streaming frequency, n-gram and
// collocation statistics over a corpus source. All the
// accumulators keep only counters (bounded by the vocabulary
// size), never copies of sentences.
package stats

import (
	"corpq/corpus"
	"sort"
	"strings"
)

// ValueExtractor turns tokens into the values the statistics
// are computed from.
type ValueExtractor struct {
	Attr       corpus.Attr `json:"attr"`
	IgnoreCase bool        `json:"ignoreCase"`
	SkipPunct  bool        `json:"skipPunct"`
}

func (ve ValueExtractor) attr() corpus.Attr {
	if ve.Attr == 0 {
		return corpus.AttrWord
	}
	return ve.Attr
}

// Value returns the token's value and false if the token
// should be ignored.
func (ve ValueExtractor) Value(tok *corpus.Token) (string, bool) {
	if ve.SkipPunct && tok.IsPunct() {
		return "", false
	}
	v := ve.attr().Value(tok)
	if ve.IgnoreCase {
		v = strings.ToLower(v)
	}
	return v, true
}

// Normalize applies the same case handling as Value
// to a value provided by a user.
func (ve ValueExtractor) Normalize(v string) string {
	if ve.IgnoreCase {
		return strings.ToLower(v)
	}
	return v
}

func (ve ValueExtractor) sentenceValues(sent *corpus.Sentence, buff []string) []string {
	buff = buff[:0]
	for i := range sent.Tokens {
		if v, ok := ve.Value(&sent.Tokens[i]); ok {
			buff = append(buff, v)
		}
	}
	return buff
}

// --------------------------

type FreqItem struct {
	Value string `json:"value"`
	Freq  int    `json:"freq"`

	// Percentage is the share of the item in all the counted tokens
	Percentage float64 `json:"percentage"`
	IPM        float64 `json:"ipm"`
}

type FrequencyResult struct {
	Attr             corpus.Attr `json:"attr"`
	Items            []FreqItem  `json:"items"`
	TotalTokens      int         `json:"totalTokens"`
	UniqueCount      int         `json:"uniqueCount"`
	TypeTokenRatio   float64     `json:"typeTokenRatio"`
	SkippedSentences int         `json:"skippedSentences"`
}

// Counts returns the items as a map value => frequency
func (res *FrequencyResult) Counts() map[string]int {
	ans := make(map[string]int, len(res.Items))
	for _, item := range res.Items {
		ans[item.Value] = item.Freq
	}
	return ans
}

// FreqCounter counts attribute values of tokens
type FreqCounter struct {
	extractor ValueExtractor
	counts    map[string]int
	total     int
}

func (fc *FreqCounter) AddToken(tok *corpus.Token) {
	if v, ok := fc.extractor.Value(tok); ok {
		fc.counts[v]++
		fc.total++
	}
}

func (fc *FreqCounter) AddSentence(sent *corpus.Sentence) {
	for i := range sent.Tokens {
		fc.AddToken(&sent.Tokens[i])
	}
}

func (fc *FreqCounter) Total() int {
	return fc.total
}

// Freq returns the number of occurrences of the (normalized) value
func (fc *FreqCounter) Freq(value string) int {
	return fc.counts[value]
}

// Result returns items sorted by frequency (and value for equal
// frequencies). With maxItems > 0, the list is cut accordingly;
// the type-token ratio is always computed from all the items.
func (fc *FreqCounter) Result(maxItems int) *FrequencyResult {
	ans := &FrequencyResult{
		Attr:        fc.extractor.attr(),
		Items:       make([]FreqItem, 0, len(fc.counts)),
		TotalTokens: fc.total,
		UniqueCount: len(fc.counts),
	}
	if fc.total > 0 {
		ans.TypeTokenRatio = float64(len(fc.counts)) / float64(fc.total)
	}
	for v, f := range fc.counts {
		item := FreqItem{Value: v, Freq: f}
		if fc.total > 0 {
			item.Percentage = float64(f) / float64(fc.total) * 100
			item.IPM = float64(f) / float64(fc.total) * 1e6
		}
		ans.Items = append(ans.Items, item)
	}
	sort.Slice(ans.Items, func(i, j int) bool {
		if ans.Items[i].Freq != ans.Items[j].Freq {
			return ans.Items[i].Freq > ans.Items[j].Freq
		}
		return ans.Items[i].Value < ans.Items[j].Value
	})
	if maxItems > 0 && len(ans.Items) > maxItems {
		ans.Items = ans.Items[:maxItems]
	}
	return ans
}

func NewFreqCounter(extractor ValueExtractor) *FreqCounter {
	return &FreqCounter{
		extractor: extractor,
		counts:    make(map[string]int),
	}
}

// CountTokens is a convenience function for computing frequencies
// of an already available token list.
func CountTokens(tokens []corpus.Token, extractor ValueExtractor) *FrequencyResult {
	fc := NewFreqCounter(extractor)
	for i := range tokens {
		fc.AddToken(&tokens[i])
	}
	return fc.Result(0)
}
