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
	"math"
	"sort"
	"strings"
)

type Bigram struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Freq   int    `json:"freq"`
	AssocScores
}

func (bg *Bigram) Score(m Measure) float64 {
	switch m {
	case MeasureMI:
		return bg.MI
	case MeasureTScore:
		return bg.TScore
	case MeasureDice:
		return bg.Dice
	case MeasureLogLikelihood:
		return bg.LogLikelihood
	case MeasureFreq:
		return float64(bg.Freq)
	}
	return math.NaN()
}

type BigramResult struct {
	Attr             corpus.Attr `json:"attr"`
	SortBy           Measure     `json:"sortBy"`
	TotalTokens      int         `json:"totalTokens"`
	TotalBigrams     int         `json:"totalBigrams"`
	Items            []Bigram    `json:"items"`
	SkippedSentences int         `json:"skippedSentences"`
}

// BigramCounter ranks all adjacent pairs of values by an association
// measure. The first and the second member of a bigram play the role
// of the keyword and the collocate in the contingency table.
type BigramCounter struct {
	sortBy  Measure
	freqs   *FreqCounter
	bigrams *NgramCounter
}

func NewBigramCounter(extractor ValueExtractor, sortBy Measure) (*BigramCounter, error) {
	if sortBy == "" {
		sortBy = MeasureMI
	}
	if err := sortBy.Validate(); err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	bigrams, err := NewNgramCounter(2, extractor)
	if err != nil {
		return nil, err
	}
	return &BigramCounter{
		sortBy:  sortBy,
		freqs:   NewFreqCounter(extractor),
		bigrams: bigrams,
	}, nil
}

func (bc *BigramCounter) AddSentence(sent *corpus.Sentence) {
	bc.freqs.AddSentence(sent)
	bc.bigrams.AddSentence(sent)
}

// Result scores bigrams occurring at least minFreq times
// and sorts them by the selected measure (ties are ordered
// lexicographically).
func (bc *BigramCounter) Result(minFreq, maxItems int) *BigramResult {
	n := float64(bc.freqs.Total())
	ans := &BigramResult{
		Attr:         bc.freqs.extractor.attr(),
		SortBy:       bc.sortBy,
		TotalTokens:  bc.freqs.Total(),
		TotalBigrams: bc.bigrams.total,
		Items:        make([]Bigram, 0, len(bc.bigrams.counts)/4+1),
	}
	for k, f := range bc.bigrams.counts {
		if f < minFreq {
			continue
		}
		first, second, _ := strings.Cut(k, ngramKeySep)
		table := ContingencyTable{
			N:  n,
			Fw: float64(bc.freqs.Freq(first)),
			Fc: float64(bc.freqs.Freq(second)),
			O:  float64(f),
		}
		ans.Items = append(ans.Items, Bigram{
			First:       first,
			Second:      second,
			Freq:        f,
			AssocScores: table.Scores(),
		})
	}
	sort.Slice(ans.Items, func(i, j int) bool {
		si, sj := ans.Items[i].Score(bc.sortBy), ans.Items[j].Score(bc.sortBy)
		if si != sj {
			return si > sj
		}
		if ans.Items[i].First != ans.Items[j].First {
			return ans.Items[i].First < ans.Items[j].First
		}
		return ans.Items[i].Second < ans.Items[j].Second
	})
	if maxItems > 0 && len(ans.Items) > maxItems {
		ans.Items = ans.Items[:maxItems]
	}
	return ans
}
