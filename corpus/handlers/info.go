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
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type corpusCompactInfo struct {
	ID          string   `json:"id"`
	FullName    string   `json:"fullName"`
	Description string   `json:"description"`
	Flags       []string `json:"flags"`
}

type corplistResponse struct {
	Corpora []corpusCompactInfo `json:"corpora"`
	Locale  string              `json:"locale"`
}

type corpusInfo struct {
	ID                 string              `json:"id"`
	FullName           string              `json:"fullName"`
	Description        string              `json:"description"`
	Format             corpus.SourceFormat `json:"format"`
	MaximumRecords     int                 `json:"maximumRecords"`
	MaximumContextSize int                 `json:"maximumContextSize"`
	Flags              []string            `json:"flags"`
	WebURL             string              `json:"webUrl,omitempty"`
}

type corpusInfoResponse struct {
	Corpus corpusInfo `json:"corpus"`
	Locale string     `json:"locale"`
}

func (a *Actions) localeOrFail(ctx *gin.Context) (string, bool) {
	lang := ctx.DefaultQuery("lang", a.locales.DefaultLocale())
	if !a.locales.SupportsLocale(lang) {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("unsupported locale `%s`", lang),
			http.StatusUnprocessableEntity,
		)
		return "", false
	}
	return lang, true
}

func nonNilFlags(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// CorpusInfo godoc
// @Summary      CorpusInfo
// @Description  Provide basic information about a corpus.
// @Produce      json
// @Param        corpusId path string true "An ID of a corpus to search in"
// @Param        lang query string false "a language code for localized descriptions"
// @Success      200 {object} corpusInfoResponse
// @Router       /info/{corpusId} [get]
func (a *Actions) CorpusInfo(ctx *gin.Context) {
	lang, ok := a.localeOrFail(ctx)
	if !ok {
		return
	}
	corpusConf, ok := a.corpusConfOrFail(ctx)
	if !ok {
		return
	}
	ans := &corpusInfoResponse{
		Locale: lang,
		Corpus: corpusInfo{
			ID:                 corpusConf.ID,
			FullName:           corpusConf.LocaleFullName(lang),
			Description:        corpusConf.LocaleDescription(lang),
			Format:             corpusConf.Format,
			MaximumRecords:     corpusConf.MaximumRecords,
			MaximumContextSize: corpusConf.MaximumContextSize,
			Flags:              nonNilFlags(corpusConf.SrchKeywords),
			WebURL:             corpusConf.WebURL,
		},
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// Corplist lists available corpora. An optional `q` argument
// filters corpora by their ID.
func (a *Actions) Corplist(ctx *gin.Context) {
	lang, ok := a.localeOrFail(ctx)
	if !ok {
		return
	}
	allCorpora := a.conf.GetAllCorpora(ctx.Query("q"))
	corplist := make([]corpusCompactInfo, len(allCorpora))
	for i, v := range allCorpora {
		corplist[i] = corpusCompactInfo{
			ID:          v.ID,
			FullName:    v.LocaleFullName(lang),
			Description: v.LocaleDescription(lang),
			Flags:       nonNilFlags(v.SrchKeywords),
		}
	}
	ans := &corplistResponse{
		Corpora: corplist,
		Locale:  lang,
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
