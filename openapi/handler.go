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

package openapi

import (
	"corpq/cnf"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

func findHTTPProtocol(req *http.Request) string {
	if prot := req.Header.Get("x-forwarded-proto"); prot != "" {
		return prot
	}
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

func findHTTPServer(req *http.Request) string {
	if serv := req.Header.Get("x-forwarded-host"); serv != "" {
		return serv
	}
	return req.Host
}

// findCurrentPublicURL returns the configured public URL in case
// the request was sent through it. Otherwise, the URL is derived
// from the request (with proxy headers respected).
func findCurrentPublicURL(conf *cnf.Conf, req *http.Request) string {
	base := fmt.Sprintf("%s://%s", findHTTPProtocol(req), findHTTPServer(req))
	if conf.PublicURL != "" {
		curr, err := url.JoinPath(base, req.URL.Path)
		if err == nil && strings.HasPrefix(curr, conf.PublicURL) {
			return conf.PublicURL
		}
	}
	return base
}

func MkHandleRequest(conf *cnf.Conf, ver string) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		ans := NewResponse(ver, findCurrentPublicURL(conf, ctx.Request))
		uniresp.WriteJSONResponse(ctx.Writer, ans)
	}
}
