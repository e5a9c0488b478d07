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
	"math"
	"sort"
)

const (
	DfltDistributionSize = 10
)

type DistItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Statistics summarizes dependency annotation of a set
// of sentences
type Statistics struct {
	SentenceCount         int        `json:"sentenceCount"`
	TokenCount            int        `json:"tokenCount"`
	AvgSentenceLength     float64    `json:"avgSentenceLength"`
	AvgDependencyDistance float64    `json:"avgDependencyDistance"`
	PosDistribution       []DistItem `json:"posDistribution"`
	DeprelDistribution    []DistItem `json:"deprelDistribution"`
	SkippedSentences      int        `json:"skippedSentences"`
}

// StatsAccumulator collects dependency statistics sentence
// by sentence. Only counters are kept.
type StatsAccumulator struct {
	numSentences int
	numTokens    int
	distSum      int
	numDeps      int
	pos          map[string]int
	deprel       map[string]int
}

func (acc *StatsAccumulator) Add(sent *corpus.Sentence) {
	acc.numSentences++
	for i := range sent.Tokens {
		tok := &sent.Tokens[i]
		acc.numTokens++
		acc.pos[tok.UPOS]++
		acc.deprel[tok.Deprel]++
		if tok.Head != 0 {
			acc.distSum += tok.DepDistance()
			acc.numDeps++
		}
	}
}

// Result returns accumulated statistics with distributions limited
// to topN most frequent items (0 means no limit).
func (acc *StatsAccumulator) Result(topN int) Statistics {
	ans := Statistics{
		SentenceCount:      acc.numSentences,
		TokenCount:         acc.numTokens,
		PosDistribution:    topItems(acc.pos, topN),
		DeprelDistribution: topItems(acc.deprel, topN),
	}
	if acc.numSentences > 0 {
		ans.AvgSentenceLength = round2(float64(acc.numTokens) / float64(acc.numSentences))
	}
	if acc.numDeps > 0 {
		ans.AvgDependencyDistance = round2(float64(acc.distSum) / float64(acc.numDeps))
	}
	return ans
}

func NewStatsAccumulator() *StatsAccumulator {
	return &StatsAccumulator{
		pos:    make(map[string]int),
		deprel: make(map[string]int),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func topItems(counts map[string]int, topN int) []DistItem {
	ans := make([]DistItem, 0, len(counts))
	for k, v := range counts {
		ans = append(ans, DistItem{Value: k, Count: v})
	}
	sort.Slice(ans, func(i, j int) bool {
		if ans[i].Count != ans[j].Count {
			return ans[i].Count > ans[j].Count
		}
		return ans[i].Value < ans[j].Value
	})
	if topN > 0 && len(ans) > topN {
		ans = ans[:topN]
	}
	return ans
}
