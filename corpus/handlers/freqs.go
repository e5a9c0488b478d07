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

package handlers

import (
	"corpq/corpus"
	"corpq/corpus/stats"
	"corpq/rdb"
	"corpq/rdb/results"
	"net/http"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	DefaultNgramSize = 2
	DefaultMinFreq   = 1
)

func valueExtractorOrFail(ctx *gin.Context) (stats.ValueExtractor, bool) {
	attr, ok := getAttrArgOrFail(ctx, "attr", corpus.AttrWord)
	if !ok {
		return stats.ValueExtractor{}, false
	}
	return stats.ValueExtractor{
		Attr:       attr,
		IgnoreCase: getBoolArg(ctx, "ignoreCase"),
		SkipPunct:  getBoolArg(ctx, "skipPunct"),
	}, true
}

// FreqDistrib godoc
// @Summary      FreqDistrib
// @Description  Calculate a frequency distribution of a token attribute over the whole corpus along with the type-token ratio.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        attr query string false "a token attribute the values are taken from" enums(word, lemma, pos) default(word)
// @Param        ignoreCase query int false "1 to lowercase values" enums(0, 1)
// @Param        skipPunct query int false "1 to ignore punctuation tokens" enums(0, 1)
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.FreqsResponse
// @Router       /freqs/{corpusId} [get]
func (a *Actions) FreqDistrib(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	extractor, ok := valueExtractorOrFail(ctx)
	if !ok {
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.Freqs](
		ctx,
		a,
		rdb.FuncFreqs,
		rdb.FreqsArgs{
			CorpusID:  corpusConf.ID,
			Extractor: extractor,
			MaxItems:  maxItems,
		},
	)
}

// Ngrams godoc
// @Summary      Ngrams
// @Description  Extract n-grams of attribute values within single sentences along with their frequencies.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        attr query string false "a token attribute the values are taken from" enums(word, lemma, pos) default(word)
// @Param        ignoreCase query int false "1 to lowercase values" enums(0, 1)
// @Param        skipPunct query int false "1 to ignore punctuation tokens" enums(0, 1)
// @Param        n query int false "n-gram size" minimum(1) default(2)
// @Param        minFreq query int false "minimum frequency of result items" minimum(0) default(1)
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.NgramsResponse
// @Router       /ngrams/{corpusId} [get]
func (a *Actions) Ngrams(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	extractor, ok := valueExtractorOrFail(ctx)
	if !ok {
		return
	}
	n, ok := unireq.GetURLIntArgOrFail(ctx, "n", DefaultNgramSize)
	if !ok {
		return
	}
	minFreq, ok := getNonNegIntArgOrFail(ctx, "minFreq", DefaultMinFreq)
	if !ok {
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.Ngrams](
		ctx,
		a,
		rdb.FuncNgrams,
		rdb.NgramsArgs{
			CorpusID:  corpusConf.ID,
			N:         n,
			Extractor: extractor,
			MinFreq:   minFreq,
			MaxItems:  maxItems,
		},
	)
}

// Bigrams godoc
// @Summary      Bigrams
// @Description  Score all pairs of adjacent attribute values by an association measure. Values are sorted in descending order by the score.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        attr query string false "a token attribute the values are taken from" enums(word, lemma, pos) default(word)
// @Param        ignoreCase query int false "1 to lowercase values" enums(0, 1)
// @Param        skipPunct query int false "1 to ignore punctuation tokens" enums(0, 1)
// @Param        measure query string false "an association measure" enums(mi, t, dice, ll, freq) default(mi)
// @Param        minFreq query int false "minimum bigram frequency" minimum(0) default(1)
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.BigramsResponse
// @Router       /bigrams/{corpusId} [get]
func (a *Actions) Bigrams(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	extractor, ok := valueExtractorOrFail(ctx)
	if !ok {
		return
	}
	measure := stats.Measure(ctx.DefaultQuery("measure", string(stats.MeasureMI)))
	if err := measure.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	minFreq, ok := getNonNegIntArgOrFail(ctx, "minFreq", DefaultMinFreq)
	if !ok {
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.Bigrams](
		ctx,
		a,
		rdb.FuncBigrams,
		rdb.BigramsArgs{
			CorpusID:  corpusConf.ID,
			Extractor: extractor,
			SortBy:    measure,
			MinFreq:   minFreq,
			MaxItems:  maxItems,
		},
	)
}

// Zipf godoc
// @Summary      Zipf
// @Description  Compare frequencies of the most frequent values with the ones predicted by Zipf's law.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        attr query string false "a token attribute the values are taken from" enums(word, lemma, pos) default(word)
// @Param        ignoreCase query int false "1 to lowercase values" enums(0, 1)
// @Param        skipPunct query int false "1 to ignore punctuation tokens" enums(0, 1)
// @Param        topN query int false "number of ranks" minimum(0) default(100)
// @Success      200 {object} results.ZipfResponse
// @Router       /zipf/{corpusId} [get]
func (a *Actions) Zipf(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	extractor, ok := valueExtractorOrFail(ctx)
	if !ok {
		return
	}
	topN, ok := getNonNegIntArgOrFail(ctx, "topN", stats.DfltZipfSize)
	if !ok {
		return
	}
	runTyped[results.Zipf](
		ctx,
		a,
		rdb.FuncZipf,
		rdb.ZipfArgs{
			CorpusID:  corpusConf.ID,
			Extractor: extractor,
			TopN:      topN,
		},
	)
}
