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
	"corpq/corpus/transform"
	"corpq/rdb"
	"corpq/rdb/results"
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	concFormatJSON     concFormat = "json"
	concFormatMarkdown concFormat = "markdown"
)

type concFormat string

func (cf concFormat) Validate() error {
	if cf == concFormatJSON || cf == concFormatMarkdown {
		return nil
	}
	return fmt.Errorf("unknown concordance format type: %s", cf)
}

// Concordance godoc
// @Summary      Concordance
// @Description  Search for a CQL query and return KWIC lines with document and sentence references.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        q query string true "The CQL query"
// @Param        contextWidth query int false "number of tokens on each side of a match" default(5)
// @Param        format query string false "response format" enums(json, markdown) default(json)
// @Param        maxItems query int false "maximum number of lines"
// @Param        matchCase query int false " " enums(0, 1)
// @Param        crossSentence query int false "allow context to reach neighbouring sentences" enums(0, 1)
// @Param        showTokens query int false "attach token annotations to each line" enums(0, 1)
// @Param        textProps query int false "add a document metadata column (markdown only)" enums(0, 1)
// @Success      200 {object} results.ConcordanceResponse
// @Router       /concordance/{corpusId} [get]
func (a *Actions) Concordance(ctx *gin.Context) {
	format := concFormat(ctx.DefaultQuery("format", "json"))
	if err := format.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			err,
			http.StatusBadRequest,
		)
		return
	}
	queryProps := DetermineQueryProps(ctx, a.conf, a.parser)
	if queryProps.hasError() {
		respondQueryPropsError(ctx, queryProps)
		return
	}
	contextWidth, ok := unireq.GetURLIntArgOrFail(ctx, "contextWidth", corpus.DfltContextSize)
	if !ok {
		return
	}
	if contextWidth < 0 || contextWidth > queryProps.corpusConf.MaximumContextSize {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf(
				"invalid contextWidth - allowed values are 0..%d",
				queryProps.corpusConf.MaximumContextSize,
			),
			http.StatusBadRequest,
		)
		return
	}
	maxItems, ok := getNonNegIntArgOrFail(ctx, "maxItems", 0)
	if !ok {
		return
	}
	rawResult, ok := a.publishAndWait(
		ctx,
		rdb.FuncConcordance,
		rdb.ConcordanceArgs{
			CorpusID:             queryProps.corpus,
			Query:                queryProps.query,
			ContextSize:          contextWidth,
			CrossSentenceContext: getBoolArg(ctx, "crossSentence"),
			CaseSensitive:        getBoolArg(ctx, "matchCase"),
			MaxItems:             maxItems,
			WithTokens:           getBoolArg(ctx, "showTokens"),
		},
	)
	if !ok {
		return
	}
	result, ok := TypedOrRespondError[results.Concordance](ctx, rawResult)
	if !ok {
		return
	}
	if format == concFormatMarkdown {
		md := transform.ConcToMarkdown(
			result.Lines, getBoolArg(ctx, "showTokens"), getBoolArg(ctx, "textProps"))
		ctx.Header("content-type", "text/markdown; charset=utf-8")
		ctx.Writer.WriteString(md)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, result)
}
