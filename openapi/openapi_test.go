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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

func TestNewResponse(t *testing.T) {
	resp := NewResponse("1.0.0", "https://corpq.example.org")
	assert.Equal(t, "1.0.0", resp.Info.Version)
	for _, path := range []string{
		"/concordance/{corpusId}",
		"/freqs/{corpusId}",
		"/ngrams/{corpusId}",
		"/collocations/{corpusId}",
		"/bigrams/{corpusId}",
		"/zipf/{corpusId}",
		"/deps/{corpusId}/pattern",
		"/deps/{corpusId}/tree/{docId}/{sentId}",
		"/query/describe",
	} {
		methods, ok := resp.Paths[path]
		require.True(t, ok, path)
		require.NotNil(t, methods.Get, path)
		assert.NotEmpty(t, methods.Get.OperationID, path)
		assert.Contains(t, methods.Get.Responses, 200, path)
	}
	conc := resp.Paths["/concordance/{corpusId}"].Get
	assert.Contains(t, conc.Responses[200].Content, "text/markdown")
}

func TestFindCurrentPublicURL(t *testing.T) {
	conf := &cnf.Conf{PublicURL: "https://corpq.example.org/api"}
	req := httptest.NewRequest(http.MethodGet, "/api/openapi", nil)
	req.Host = "corpq.example.org"
	req.Header.Set("x-forwarded-proto", "https")
	assert.Equal(t, "https://corpq.example.org/api", findCurrentPublicURL(conf, req))

	req = httptest.NewRequest(http.MethodGet, "/openapi", nil)
	req.Host = "localhost:8989"
	assert.Equal(t, "http://localhost:8989", findCurrentPublicURL(conf, req))
}

func TestHandleRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/openapi", MkHandleRequest(&cnf.Conf{}, "0.1.0"))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apiVersion, resp.OpenAPI)
	assert.Equal(t, "0.1.0", resp.Info.Version)
}

func TestSwaggerDocs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterSwaggerDoc("0.2.0", "https://corpq.example.org")
	RegisterSwaggerDoc("0.3.0", "https://other.example.org")

	doc, err := swag.ReadDoc()
	require.NoError(t, err)
	var resp APIResponse
	require.NoError(t, sonic.UnmarshalString(doc, &resp))
	assert.Equal(t, swaggerUIAPIVersion, resp.OpenAPI)
	assert.Equal(t, "0.2.0", resp.Info.Version)
	assert.Contains(t, resp.Paths, "/bigrams/{corpusId}")

	engine := gin.New()
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/zipf/{corpusId}")
}
