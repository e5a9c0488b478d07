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
	"errors"
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type validationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateQuery tests whether the query `q` can be parsed.
// No corpus is involved so the action does not use workers.
func (a *Actions) ValidateQuery(ctx *gin.Context) {
	if !ctx.Request.URL.Query().Has("q") {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `q` argument"), http.StatusBadRequest)
		return
	}
	valid, msg := a.parser.Validate(ctx.Query("q"))
	uniresp.WriteJSONResponse(ctx.Writer, validationResponse{Valid: valid, Error: msg})
}

// DescribeQuery provides structural information about the query `q`
// (number of tokens, attributes used, regex usage, normalized form).
func (a *Actions) DescribeQuery(ctx *gin.Context) {
	if !ctx.Request.URL.Query().Has("q") {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `q` argument"), http.StatusBadRequest)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, a.parser.Describe(ctx.Query("q")))
}
