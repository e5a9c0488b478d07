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
	"math"
	"sort"
)

const (
	DfltCollWindow = 5
)

// Measure identifies an association measure used
// to sort collocates
type Measure string

const (
	MeasureMI            Measure = "mi"
	MeasureTScore        Measure = "t"
	MeasureDice          Measure = "dice"
	MeasureLogLikelihood Measure = "ll"
	MeasureFreq          Measure = "freq"
)

func (m Measure) Validate() error {
	switch m {
	case MeasureMI, MeasureTScore, MeasureDice, MeasureLogLikelihood, MeasureFreq:
		return nil
	}
	return fmt.Errorf("unknown association measure `%s`", m)
}

type CollOptions struct {
	ValueExtractor
	Keyword string `json:"keyword"`

	// Window is the maximum distance (in tokens) of a collocate
	// from the keyword on each side
	Window int `json:"window"`

	// MinFreq filters out collocates co-occurring less often
	MinFreq int     `json:"minFreq"`
	SortBy  Measure `json:"sortBy"`
}

type Collocate struct {
	Value         string  `json:"value"`
	Freq          int     `json:"freq"`
	CoFreq        int     `json:"coFreq"`
	LeftCount     int     `json:"leftCount"`
	RightCount    int     `json:"rightCount"`
	AssocScores
}

func (c *Collocate) Score(m Measure) float64 {
	switch m {
	case MeasureMI:
		return c.MI
	case MeasureTScore:
		return c.TScore
	case MeasureDice:
		return c.Dice
	case MeasureLogLikelihood:
		return c.LogLikelihood
	case MeasureFreq:
		return float64(c.CoFreq)
	}
	return math.NaN()
}

type CollResult struct {
	Keyword          string      `json:"keyword"`
	Attr             corpus.Attr `json:"attr"`
	KeywordFreq      int         `json:"keywordFreq"`
	CorpusSize       int         `json:"corpusSize"`
	Window           int         `json:"window"`
	SortBy           Measure     `json:"sortBy"`
	Items            []Collocate `json:"items"`
	SkippedSentences int         `json:"skippedSentences"`
}

type coCounts struct {
	left  int
	right int
}

// CollCounter collects data for collocation analysis of a single
// keyword. Co-occurrences are counted per pair of a keyword token
// and a collocate token within the same sentence, which makes
// the observed count symmetric with respect to swapping the keyword
// and the collocate.
type CollCounter struct {
	opts    CollOptions
	keyword string
	freqs   *FreqCounter
	co      map[string]*coCounts
	buff    []string
}

func NewCollCounter(opts CollOptions) (*CollCounter, error) {
	if opts.Keyword == "" {
		return nil, merror.InputError{Msg: "missing keyword"}
	}
	if opts.Window < 1 {
		return nil, merror.InputError{Msg: fmt.Sprintf("invalid window size %d, must be at least 1", opts.Window)}
	}
	if opts.SortBy == "" {
		opts.SortBy = MeasureLogLikelihood
	}
	if err := opts.SortBy.Validate(); err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	return &CollCounter{
		opts:    opts,
		keyword: opts.Normalize(opts.Keyword),
		freqs:   NewFreqCounter(opts.ValueExtractor),
		co:      make(map[string]*coCounts),
	}, nil
}

func (cc *CollCounter) AddSentence(sent *corpus.Sentence) {
	cc.freqs.AddSentence(sent)
	cc.buff = cc.opts.sentenceValues(sent, cc.buff)
	for i, v := range cc.buff {
		if v != cc.keyword {
			continue
		}
		from := max(0, i-cc.opts.Window)
		to := min(len(cc.buff)-1, i+cc.opts.Window)
		for j := from; j <= to; j++ {
			c := cc.buff[j]
			if j == i || c == cc.keyword {
				continue
			}
			item, ok := cc.co[c]
			if !ok {
				item = &coCounts{}
				cc.co[c] = item
			}
			if j < i {
				item.left++

			} else {
				item.right++
			}
		}
	}
}

func (cc *CollCounter) Result(maxItems int) *CollResult {
	fw := cc.freqs.Freq(cc.keyword)
	n := cc.freqs.Total()
	ans := &CollResult{
		Keyword:     cc.keyword,
		Attr:        cc.opts.attr(),
		KeywordFreq: fw,
		CorpusSize:  n,
		Window:      cc.opts.Window,
		SortBy:      cc.opts.SortBy,
		Items:       make([]Collocate, 0, len(cc.co)),
	}
	for c, counts := range cc.co {
		o := counts.left + counts.right
		if o < cc.opts.MinFreq {
			continue
		}
		fc := cc.freqs.Freq(c)
		table := ContingencyTable{N: float64(n), Fw: float64(fw), Fc: float64(fc), O: float64(o)}
		ans.Items = append(ans.Items, Collocate{
			Value:       c,
			Freq:        fc,
			CoFreq:      o,
			LeftCount:   counts.left,
			RightCount:  counts.right,
			AssocScores: table.Scores(),
		})
	}
	sort.Slice(ans.Items, func(i, j int) bool {
		si, sj := ans.Items[i].Score(cc.opts.SortBy), ans.Items[j].Score(cc.opts.SortBy)
		if si != sj {
			return si > sj
		}
		return ans.Items[i].Value < ans.Items[j].Value
	})
	if maxItems > 0 && len(ans.Items) > maxItems {
		ans.Items = ans.Items[:maxItems]
	}
	return ans
}
