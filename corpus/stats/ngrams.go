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

package stats

import (
	"corpq/corpus"
	"corpq/merror"
	"fmt"
	"sort"
	"strings"
)

const (
	ngramKeySep = "\x1f"
)

type Ngram struct {
	Values []string `json:"values"`
	Freq   int      `json:"freq"`
}

func (ng Ngram) String() string {
	return strings.Join(ng.Values, " ")
}

type NgramResult struct {
	N                int         `json:"n"`
	Attr             corpus.Attr `json:"attr"`
	Items            []Ngram     `json:"items"`
	TotalNgrams      int         `json:"totalNgrams"`
	UniqueCount      int         `json:"uniqueCount"`
	SkippedSentences int         `json:"skippedSentences"`
}

// NgramCounter counts n-grams within sentences. N-grams
// never cross sentence boundaries.
type NgramCounter struct {
	n         int
	extractor ValueExtractor
	counts    map[string]int
	total     int
	buff      []string
}

func (nc *NgramCounter) AddSentence(sent *corpus.Sentence) {
	nc.buff = nc.extractor.sentenceValues(sent, nc.buff)
	for i := 0; i+nc.n <= len(nc.buff); i++ {
		nc.counts[strings.Join(nc.buff[i:i+nc.n], ngramKeySep)]++
		nc.total++
	}
}

// Result returns n-grams with frequency at least minFreq sorted
// by frequency and then lexicographically.
func (nc *NgramCounter) Result(minFreq, maxItems int) *NgramResult {
	ans := &NgramResult{
		N:           nc.n,
		Attr:        nc.extractor.attr(),
		Items:       make([]Ngram, 0, len(nc.counts)/4+1),
		TotalNgrams: nc.total,
		UniqueCount: len(nc.counts),
	}
	keys := make([]string, 0, len(nc.counts))
	for k, f := range nc.counts {
		if f >= minFreq {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		fi, fj := nc.counts[keys[i]], nc.counts[keys[j]]
		if fi != fj {
			return fi > fj
		}
		return keys[i] < keys[j]
	})
	if maxItems > 0 && len(keys) > maxItems {
		keys = keys[:maxItems]
	}
	for _, k := range keys {
		ans.Items = append(ans.Items, Ngram{Values: strings.Split(k, ngramKeySep), Freq: nc.counts[k]})
	}
	return ans
}

func NewNgramCounter(n int, extractor ValueExtractor) (*NgramCounter, error) {
	if n < 1 {
		return nil, merror.InputError{Msg: fmt.Sprintf("invalid n-gram size %d, must be at least 1", n)}
	}
	return &NgramCounter{
		n:         n,
		extractor: extractor,
		counts:    make(map[string]int),
	}, nil
}
