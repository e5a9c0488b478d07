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

package rdb

import (
	"corpq/corpus/deps"
	"corpq/corpus/stats"
)

const (
	FuncConcordance  = "concordance"
	FuncFreqs        = "freqs"
	FuncNgrams       = "ngrams"
	FuncCollocations = "collocations"
	FuncBigrams      = "bigrams"
	FuncZipf         = "zipf"
	FuncDepsDeprel   = "depsDeprel"
	FuncDepsFeatures = "depsFeatures"
	FuncDepsPairs    = "depsPairs"
	FuncDepsTree     = "depsTree"
	FuncDepsStats    = "depsStats"
)

type ConcordanceArgs struct {
	CorpusID             string `json:"corpusId"`
	Query                string `json:"query"`
	ContextSize          int    `json:"contextSize"`
	CrossSentenceContext bool   `json:"crossSentenceContext"`
	CaseSensitive        bool   `json:"caseSensitive"`
	MaxItems             int    `json:"maxItems"`
	WithTokens           bool   `json:"withTokens"`
}

type FreqsArgs struct {
	CorpusID  string               `json:"corpusId"`
	Extractor stats.ValueExtractor `json:"extractor"`
	MaxItems  int                  `json:"maxItems"`
}

type NgramsArgs struct {
	CorpusID  string               `json:"corpusId"`
	N         int                  `json:"n"`
	Extractor stats.ValueExtractor `json:"extractor"`
	MinFreq   int                  `json:"minFreq"`
	MaxItems  int                  `json:"maxItems"`
}

type CollocationsArgs struct {
	CorpusID string            `json:"corpusId"`
	Options  stats.CollOptions `json:"options"`
	MaxItems int               `json:"maxItems"`
}

type BigramsArgs struct {
	CorpusID  string               `json:"corpusId"`
	Extractor stats.ValueExtractor `json:"extractor"`
	SortBy    stats.Measure        `json:"sortBy"`
	MinFreq   int                  `json:"minFreq"`
	MaxItems  int                  `json:"maxItems"`
}

type ZipfArgs struct {
	CorpusID  string               `json:"corpusId"`
	Extractor stats.ValueExtractor `json:"extractor"`
	TopN      int                  `json:"topN"`
}

// DepsTokensArgs covers both the search by a relation
// and the search by morphological features
type DepsTokensArgs struct {
	CorpusID string            `json:"corpusId"`
	Deprel   string            `json:"deprel,omitempty"`
	Feats    map[string]string `json:"feats,omitempty"`
	UPOS     string            `json:"upos,omitempty"`
	MaxItems int               `json:"maxItems"`
}

type DepsPairsArgs struct {
	CorpusID string          `json:"corpusId"`
	Filter   deps.PairFilter `json:"filter"`
	MaxItems int             `json:"maxItems"`
}

type DepsTreeArgs struct {
	CorpusID   string `json:"corpusId"`
	DocID      string `json:"docId"`
	SentenceID string `json:"sentenceId"`
}

type DepsStatsArgs struct {
	CorpusID string `json:"corpusId"`
	TopN     int    `json:"topN"`
}
