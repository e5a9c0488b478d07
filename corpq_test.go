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

package main

import (
	"corpq/cnf"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func mkTestEngine(conf *cnf.Conf) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware(conf))
	engine.Group("/monitoring").Use(AuthRequired(conf)).GET(
		"/func-stats",
		func(ctx *gin.Context) { ctx.String(http.StatusOK, "ok") },
	)
	return engine
}

func TestAuthRequired(t *testing.T) {
	conf := &cnf.Conf{AuthHeaderName: "X-Api-Key", AuthTokens: []string{"secret"}}
	engine := mkTestEngine(conf)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring/func-stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitoring/func-stats", nil)
	req.Header.Set("X-Api-Key", "secret")
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	conf := &cnf.Conf{CorsAllowedOrigins: []string{"https://example.org"}}
	engine := mkTestEngine(conf)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/monitoring/func-stats", nil)
	req.Header.Set("Origin", "https://example.org")
	engine.ServeHTTP(w, req)
	assert.Equal(t, "https://example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/monitoring/func-stats", nil)
	req.Header.Set("Origin", "https://elsewhere.org")
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/monitoring/func-stats", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
