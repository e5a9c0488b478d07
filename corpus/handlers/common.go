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
	"corpq/cql"
	"corpq/merror"
	"corpq/rdb"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type queryProps struct {
	corpus     string
	query      string
	err        error
	corpusConf *corpus.CorpusSetup
	status     int
}

func (qp queryProps) hasError() bool {
	return qp.err != nil
}

// queryErrorResponse provides machine readable details
// about a rejected query
type queryErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Position int    `json:"position"`
	Fragment string `json:"fragment,omitempty"`
}

func respondQueryError(ctx *gin.Context, err error) {
	ans := queryErrorResponse{Error: err.Error(), Position: -1}
	var synErr *merror.QuerySyntaxError
	var unsErr *merror.UnsupportedPatternError
	if errors.As(err, &synErr) {
		ans.Code = string(synErr.Code)
		ans.Position = synErr.Position
		ans.Fragment = synErr.Fragment

	} else if errors.As(err, &unsErr) {
		ans.Code = "UNSUPPORTED_PATTERN"
		ans.Position = unsErr.Position
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, ans)
}

func (a *Actions) corpusConfOrFail(ctx *gin.Context) (*corpus.CorpusSetup, bool) {
	corpusID := ctx.Param("corpusId")
	corpusConf := a.conf.GetCorp(corpusID)
	if corpusConf == nil {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("corpus %s not found", corpusID),
			http.StatusNotFound,
		)
		return nil, false
	}
	return corpusConf, true
}

// DetermineQueryProps searches for common arguments
// required for query actions (currently the concordance).
// The query `q` is parsed here so syntax errors are reported
// without involving a worker.
func DetermineQueryProps(ctx *gin.Context, cConf *corpus.CorporaSetup, parser *cql.Parser) queryProps {
	var ans queryProps
	ans.corpus = ctx.Param("corpusId")
	corpusConf := cConf.GetCorp(ans.corpus)
	if corpusConf == nil {
		ans.err = fmt.Errorf("corpus %s not found", ans.corpus)
		ans.status = http.StatusNotFound
		return ans
	}
	ans.corpusConf = corpusConf
	ans.query = ctx.Query("q")
	if ans.query == "" {
		ans.err = errors.New("missing `q` argument")
		ans.status = http.StatusBadRequest
		return ans
	}
	if _, err := parser.Parse(ans.query); err != nil {
		ans.err = err
		ans.status = http.StatusBadRequest
	}
	return ans
}

func respondQueryPropsError(ctx *gin.Context, qp queryProps) {
	if merror.IsUserError(qp.err) {
		respondQueryError(ctx, qp.err)
		return
	}
	uniresp.RespondWithErrorJSON(ctx, qp.err, qp.status)
}

func getBoolArg(ctx *gin.Context, name string) bool {
	v := ctx.Query(name)
	return v == "1" || v == "true"
}

// getAttrArgOrFail parses a positional attribute name (word, lemma, pos...)
func getAttrArgOrFail(ctx *gin.Context, name string, dflt corpus.Attr) (corpus.Attr, bool) {
	v := ctx.Query(name)
	if v == "" {
		return dflt, true
	}
	attr, ok := corpus.ParseAttr(v)
	if !ok {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("unknown attribute `%s`", v),
			http.StatusBadRequest,
		)
		return 0, false
	}
	return attr, true
}

func getNonNegIntArgOrFail(ctx *gin.Context, name string, dflt int) (int, bool) {
	if !ctx.Request.URL.Query().Has(name) {
		return dflt, true
	}
	value, err := strconv.Atoi(ctx.Query(name))
	if err != nil || value < 0 {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("invalid value of `%s`", name),
			http.StatusBadRequest,
		)
		return 0, false
	}
	return value, true
}

func TypedOrRespondError[T any](ctx *gin.Context, w rdb.WorkerResult) (T, bool) {
	if w.Value == nil {
		var ans T
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("empty worker result"),
			http.StatusInternalServerError,
		)
		return ans, false
	}
	vt, ok := w.Value.(T)
	if !ok {
		var n T
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf(
				"unexpected type for %s: %s",
				reflect.TypeOf(n), reflect.TypeOf(w.Value)),
			http.StatusInternalServerError,
		)
		return n, false
	}
	return vt, true
}

// HandleWorkerError writes an error response in case the result
// carries an error. The status code depends on the error kind.
func HandleWorkerError(ctx *gin.Context, result rdb.WorkerResult) bool {
	err := result.Err()
	if err == nil {
		return true
	}
	if result.HasUserError {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusBadRequest,
		)

	} else if result.HasTimeout {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusGatewayTimeout,
		)

	} else {
		log.Error().Err(err).Str("func", result.Func).Msg("worker job failed")
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusInternalServerError,
		)
	}
	return false
}

// publishAndWait sends a job to workers and waits for the result.
// In case of an error, a response is written and false is returned.
func (a *Actions) publishAndWait(ctx *gin.Context, fn string, args any) (rdb.WorkerResult, bool) {
	query, err := rdb.NewQuery(fn, args)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusInternalServerError,
		)
		return rdb.WorkerResult{}, false
	}
	wait, err := a.radapter.PublishQueryCached(query)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusInternalServerError,
		)
		return rdb.WorkerResult{}, false
	}
	rawResult := <-wait
	if ok := HandleWorkerError(ctx, rawResult); !ok {
		return rawResult, false
	}
	return rawResult, true
}

// runTyped publishes a job and writes its typed result as JSON
func runTyped[T rdb.FuncResult](ctx *gin.Context, a *Actions, fn string, args any) {
	rawResult, ok := a.publishAndWait(ctx, fn, args)
	if !ok {
		return
	}
	result, ok := TypedOrRespondError[T](ctx, rawResult)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, result)
}
