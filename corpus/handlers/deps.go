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
	"corpq/corpus/deps"
	"corpq/rdb"
	"corpq/rdb/results"
	"errors"
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// DepsDeprel godoc
// @Summary      DepsDeprel
// @Description  Find tokens attached to their heads by a dependency relation.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        deprel path string true "a dependency relation (e.g. `nsubj`)"
// @Param        pos query string false "universal part of speech of the dependents"
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.DepsTokensResponse
// @Router       /deps/{corpusId}/deprel/{deprel} [get]
func (a *Actions) DepsDeprel(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.DepsTokens](
		ctx,
		a,
		rdb.FuncDepsDeprel,
		rdb.DepsTokensArgs{
			CorpusID: corpusConf.ID,
			Deprel:   ctx.Param("deprel"),
			UPOS:     ctx.Query("pos"),
			MaxItems: maxItems,
		},
	)
}

// DepsFeatures finds tokens with all the morphological features
// specified in the `feats` argument (e.g. `Case=Acc|Number=Sing`).
func (a *Actions) DepsFeatures(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	feats := corpus.ParseFeats(ctx.Query("feats"))
	if len(feats) == 0 {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing or empty `feats` argument"), http.StatusBadRequest)
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.DepsTokens](
		ctx,
		a,
		rdb.FuncDepsFeatures,
		rdb.DepsTokensArgs{
			CorpusID: corpusConf.ID,
			Feats:    feats,
			UPOS:     ctx.Query("pos"),
			MaxItems: maxItems,
		},
	)
}

func (a *Actions) runDepsPairs(ctx *gin.Context, corpusID string, filter deps.PairFilter) {
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	runTyped[results.DepsPairs](
		ctx,
		a,
		rdb.FuncDepsPairs,
		rdb.DepsPairsArgs{
			CorpusID: corpusID,
			Filter:   filter,
			MaxItems: maxItems,
		},
	)
}

// DepsPairs godoc
// @Summary      DepsPairs
// @Description  Find head-dependent pairs. All the filter arguments are optional.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        headLemma query string false " "
// @Param        headPos query string false " "
// @Param        deprel query string false " "
// @Param        dependentLemma query string false " "
// @Param        dependentPos query string false " "
// @Param        maxItems query int false "maximum number of result items"
// @Success      200 {object} results.DepsPairsResponse
// @Router       /deps/{corpusId}/pairs [get]
func (a *Actions) DepsPairs(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	a.runDepsPairs(
		ctx,
		corpusConf.ID,
		deps.PairFilter{
			HeadLemma:      ctx.Query("headLemma"),
			HeadPos:        ctx.Query("headPos"),
			Deprel:         ctx.Query("deprel"),
			DependentLemma: ctx.Query("dependentLemma"),
			DependentPos:   ctx.Query("dependentPos"),
		},
	)
}

// DepsPattern finds head-dependent pairs matching the `HEADPOS:deprel>DEPPOS`
// pattern. The pattern is validated before the job is sent.
func (a *Actions) DepsPattern(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	filter, err := deps.ParsePattern(ctx.Query("p"))
	if err != nil {
		respondQueryError(ctx, err)
		return
	}
	a.runDepsPairs(ctx, corpusConf.ID, filter)
}

// DepsTree godoc
// @Summary      DepsTree
// @Description  Return the dependency tree of a single sentence.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        docId path string true "document ID"
// @Param        sentId path string true "sentence ID"
// @Success      200 {object} results.DepsTreeResponse
// @Router       /deps/{corpusId}/tree/{docId}/{sentId} [get]
func (a *Actions) DepsTree(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	runTyped[results.DepsTree](
		ctx,
		a,
		rdb.FuncDepsTree,
		rdb.DepsTreeArgs{
			CorpusID:   corpusConf.ID,
			DocID:      ctx.Param("docId"),
			SentenceID: ctx.Param("sentId"),
		},
	)
}

// DepsStats godoc
// @Summary      DepsStats
// @Description  Provide corpus-wide syntactic statistics (part of speech and relation distributions, average dependency distance).
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        topN query int false "size of the distributions" minimum(0) default(10)
// @Success      200 {object} results.DepsStatsResponse
// @Router       /deps/{corpusId}/stats [get]
func (a *Actions) DepsStats(ctx *gin.Context) {
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	topN, ok := getNonNegIntArgOrFail(ctx, "topN", deps.DfltDistributionSize)
	if !ok {
		return
	}
	runTyped[results.DepsStats](
		ctx,
		a,
		rdb.FuncDepsStats,
		rdb.DepsStatsArgs{
			CorpusID: corpusConf.ID,
			TopN:     topN,
		},
	)
}
