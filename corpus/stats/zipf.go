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

import "corpq/corpus"

const (
	DfltZipfSize = 100
)

// ZipfItem compares an observed frequency with the one
// predicted by Zipf's law from the most frequent item
type ZipfItem struct {
	Rank     int     `json:"rank"`
	Value    string  `json:"value"`
	Freq     int     `json:"freq"`
	Expected float64 `json:"expected"`
}

type ZipfResult struct {
	Attr             corpus.Attr `json:"attr"`
	Items            []ZipfItem  `json:"items"`
	TotalTokens      int         `json:"totalTokens"`
	SkippedSentences int         `json:"skippedSentences"`
}

// Zipf returns topN most frequent values with their ranks
// and expected frequencies f(1) / rank. Values with equal
// frequency get distinct ranks in the order of Result().
func (fc *FreqCounter) Zipf(topN int) *ZipfResult {
	if topN <= 0 {
		topN = DfltZipfSize
	}
	freqs := fc.Result(topN)
	ans := &ZipfResult{
		Attr:        freqs.Attr,
		Items:       make([]ZipfItem, len(freqs.Items)),
		TotalTokens: freqs.TotalTokens,
	}
	for i, item := range freqs.Items {
		rank := i + 1
		ans.Items[i] = ZipfItem{
			Rank:     rank,
			Value:    item.Value,
			Freq:     item.Freq,
			Expected: float64(freqs.Items[0].Freq) / float64(rank),
		}
	}
	return ans
}
