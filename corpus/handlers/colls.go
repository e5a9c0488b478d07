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
	"corpq/corpus/stats"
	"corpq/rdb"
	"corpq/rdb/results"
	"errors"
	"net/http"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// Collocations godoc
// @Summary      Collocations
// @Description  Find words co-occurring with a keyword within a window and score them by an association measure.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        keyword query string true "the keyword (compared with the `attr` values)"
// @Param        attr query string false "a token attribute the collocates are taken from" enums(word, lemma, pos) default(word)
// @Param        window query int false "number of tokens on each side of the keyword" default(5)
// @Param        measure query string false "an association measure" enums(mi, t, dice, ll, freq) default(ll)
// @Param        minFreq query int false "minimum co-occurrence frequency" minimum(0) default(1)
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.CollocationsResponse
// @Router       /collocations/{corpusId} [get]
func (a *Actions) Collocations(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	keyword := ctx.Query("keyword")
	if keyword == "" {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `keyword` argument"), http.StatusBadRequest)
		return
	}
	extractor, ok := valueExtractorOrFail(ctx)
	if !ok {
		return
	}
	measure := stats.Measure(ctx.DefaultQuery("measure", string(stats.MeasureLogLikelihood)))
	if err := measure.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	window, ok := unireq.GetURLIntArgOrFail(ctx, "window", stats.DfltCollWindow)
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
	runTyped[results.Collocations](
		ctx,
		a,
		rdb.FuncCollocations,
		rdb.CollocationsArgs{
			CorpusID: corpusConf.ID,
			Options: stats.CollOptions{
				ValueExtractor: extractor,
				Keyword:        keyword,
				Window:         window,
				MinFreq:        minFreq,
				SortBy:         measure,
			},
			MaxItems: maxItems,
		},
	)
}
