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
	"corpq/cnf"
	"corpq/corpus"
	"corpq/corpus/conc"
	"corpq/corpus/stats"
	"corpq/merror"
	"corpq/rdb"
	"corpq/rdb/results"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	queries []rdb.Query
	result  rdb.WorkerResult
}

func (fp *fakePublisher) PublishQueryCached(query rdb.Query) (<-chan rdb.WorkerResult, error) {
	fp.queries = append(fp.queries, query)
	ans := make(chan rdb.WorkerResult, 1)
	ans <- fp.result
	close(ans)
	return ans, nil
}

func resultOf(value rdb.FuncResult) rdb.WorkerResult {
	var ans rdb.WorkerResult
	ans.AttachValue(value)
	return ans
}

func setupRouter(pub *fakePublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	setup := &corpus.CorporaSetup{
		Resources: corpus.Resources{
			&corpus.CorpusSetup{
				ID:                 "tr",
				FullName:           map[string]string{"en": "Turkish sample"},
				Format:             corpus.FormatJSONL,
				MaximumRecords:     50,
				MaximumContextSize: 10,
			},
		},
	}
	actions := NewActions(setup, pub, cnf.LocalesConf{{Name: "en", IsDefault: true}}, nil)
	engine := gin.New()
	engine.GET("/concordance/:corpusId", actions.Concordance)
	engine.GET("/freqs/:corpusId", actions.FreqDistrib)
	engine.GET("/ngrams/:corpusId", actions.Ngrams)
	engine.GET("/collocations/:corpusId", actions.Collocations)
	engine.GET("/bigrams/:corpusId", actions.Bigrams)
	engine.GET("/zipf/:corpusId", actions.Zipf)
	engine.GET("/deps/:corpusId/pattern", actions.DepsPattern)
	engine.GET("/deps/:corpusId/features", actions.DepsFeatures)
	engine.GET("/deps/:corpusId/tree/:docId/:sentId", actions.DepsTree)
	engine.GET("/query/validate", actions.ValidateQuery)
	engine.GET("/query/describe", actions.DescribeQuery)
	engine.GET("/corplist", actions.Corplist)
	return engine
}

func doGet(engine *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestConcordanceSyntaxErrorNotPublished(t *testing.T) {
	pub := &fakePublisher{}
	w := doGet(setupRouter(pub), `/concordance/tr?q=[word="a"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp queryErrorResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(merror.CodeUnbalancedBracket), resp.Code)
	assert.Empty(t, pub.queries)
}

func TestConcordanceUnsupportedConstruct(t *testing.T) {
	pub := &fakePublisher{}
	w := doGet(setupRouter(pub), `/concordance/tr?q=[word="a"]{2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp queryErrorResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_PATTERN", resp.Code)
	assert.Empty(t, pub.queries)
}

func TestConcordanceArgsErrors(t *testing.T) {
	pub := &fakePublisher{}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusNotFound, doGet(engine, `/concordance/xx?q=[word="a"]`).Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, `/concordance/tr`).Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, `/concordance/tr?q=[word="a"]&contextWidth=11`).Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, `/concordance/tr?q=[word="a"]&format=xml`).Code)
	assert.Empty(t, pub.queries)
}

func TestConcordance(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Concordance{
			Lines: []conc.KWICLine{
				{DocID: "d1", SentenceID: "s1", Position: 2, Left: "Ali", KWIC: "güzel kitap", Right: "okudu ."},
			},
			ConcSize: 1,
		}),
	}
	w := doGet(
		setupRouter(pub),
		`/concordance/tr?q=[pos="ADJ"][pos="NOUN"]&contextWidth=3&matchCase=1`,
	)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.queries, 1)
	assert.Equal(t, rdb.FuncConcordance, pub.queries[0].Func)
	var args rdb.ConcordanceArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, "tr", args.CorpusID)
	assert.Equal(t, 3, args.ContextSize)
	assert.True(t, args.CaseSensitive)
	assert.False(t, args.CrossSentenceContext)

	var resp results.ConcordanceResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ConcSize)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "güzel kitap", resp.Lines[0].KWIC)
}

func TestConcordanceMarkdown(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Concordance{
			Lines: conc.FormatAll(
				[]conc.MatchResult{{
					DocID:   "d1",
					Left:    []corpus.Token{{Index: 1, Form: "Ali"}},
					Matched: []corpus.Token{{Index: 2, Form: "kitap"}},
					Right:   []corpus.Token{{Index: 3, Form: "okudu"}},
					Props:   map[string]string{"genre": "fiction"},
				}},
				false,
			),
		}),
	}
	w := doGet(setupRouter(pub), `/concordance/tr?q=[word="kitap"]&format=markdown`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("content-type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "| … Ali | **kitap** | okudu …|")

	w = doGet(setupRouter(pub), `/concordance/tr?q=[word="kitap"]&format=markdown&textProps=1`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "| okudu … | **genre**: fiction|")
}

func TestWorkerErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{merror.InputError{Msg: "invalid n"}, http.StatusBadRequest},
		{merror.TimeoutError{Msg: "too slow"}, http.StatusGatewayTimeout},
		{merror.InternalError{Msg: "broken"}, http.StatusInternalServerError},
		{&merror.CorpusIntegrityError{Kind: merror.IntegrityNoRoot, Msg: "no root"}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		pub := &fakePublisher{
			result: resultOf(rdb.ErrorResult{Func: rdb.FuncNgrams, Error: tc.err}),
		}
		w := doGet(setupRouter(pub), "/ngrams/tr?n=2")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestUnexpectedResultType(t *testing.T) {
	pub := &fakePublisher{result: resultOf(results.Ngrams{})}
	w := doGet(setupRouter(pub), "/freqs/tr")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFreqsArgs(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Freqs{Data: &stats.FrequencyResult{}}),
	}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/freqs/tr?attr=tag").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/freqs/tr?maxItems=-1").Code)
	assert.Empty(t, pub.queries)

	w := doGet(engine, "/freqs/tr?attr=lemma&ignoreCase=1&skipPunct=true&maxItems=10")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.queries, 1)
	var args rdb.FreqsArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, corpus.AttrLemma, args.Extractor.Attr)
	assert.True(t, args.Extractor.IgnoreCase)
	assert.True(t, args.Extractor.SkipPunct)
	assert.Equal(t, 10, args.MaxItems)
}

func TestCollocationsArgs(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Collocations{Data: &stats.CollResult{}}),
	}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/collocations/tr").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/collocations/tr?keyword=ev&measure=xyz").Code)
	assert.Empty(t, pub.queries)

	w := doGet(engine, "/collocations/tr?keyword=ev&measure=mi&window=3")
	require.Equal(t, http.StatusOK, w.Code)
	var args rdb.CollocationsArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, "ev", args.Options.Keyword)
	assert.Equal(t, 3, args.Options.Window)
	assert.Equal(t, stats.MeasureMI, args.Options.SortBy)
	assert.Equal(t, DefaultMinFreq, args.Options.MinFreq)
}

func TestBigramsArgs(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Bigrams{Data: &stats.BigramResult{}}),
	}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/bigrams/tr?measure=pmi").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/bigrams/tr?minFreq=x").Code)
	assert.Equal(t, http.StatusNotFound, doGet(engine, "/bigrams/xx").Code)
	assert.Empty(t, pub.queries)

	w := doGet(engine, "/bigrams/tr?attr=lemma&measure=t&minFreq=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.queries, 1)
	assert.Equal(t, rdb.FuncBigrams, pub.queries[0].Func)
	var args rdb.BigramsArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, corpus.AttrLemma, args.Extractor.Attr)
	assert.Equal(t, stats.MeasureTScore, args.SortBy)
	assert.Equal(t, 2, args.MinFreq)

	doGet(engine, "/bigrams/tr")
	require.NoError(t, pub.queries[1].DecodeArgs(&args))
	assert.Equal(t, stats.MeasureMI, args.SortBy)
}

func TestZipfArgs(t *testing.T) {
	pub := &fakePublisher{
		result: resultOf(results.Zipf{Data: &stats.ZipfResult{}}),
	}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/zipf/tr?topN=-5").Code)
	assert.Empty(t, pub.queries)

	w := doGet(engine, "/zipf/tr")
	require.Equal(t, http.StatusOK, w.Code)
	var args rdb.ZipfArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, stats.DfltZipfSize, args.TopN)
	assert.Equal(t, corpus.AttrWord, args.Extractor.Attr)
}

func TestDepsPattern(t *testing.T) {
	pub := &fakePublisher{result: resultOf(results.DepsPairs{})}
	engine := setupRouter(pub)
	w := doGet(engine, "/deps/tr/pattern?p=VERB>NOUN")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp queryErrorResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(merror.CodeInvalidDepPattern), resp.Code)
	assert.Empty(t, pub.queries)

	w = doGet(engine, "/deps/tr/pattern?p=VERB:obj>NOUN")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.queries, 1)
	assert.Equal(t, rdb.FuncDepsPairs, pub.queries[0].Func)
	var args rdb.DepsPairsArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, "VERB", args.Filter.HeadPos)
	assert.Equal(t, "obj", args.Filter.Deprel)
	assert.Equal(t, "NOUN", args.Filter.DependentPos)
}

func TestDepsFeatures(t *testing.T) {
	pub := &fakePublisher{result: resultOf(results.DepsTokens{})}
	engine := setupRouter(pub)
	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/deps/tr/features").Code)

	w := doGet(engine, "/deps/tr/features?feats=Case%3DAcc%7CNumber%3DSing&pos=NOUN")
	require.Equal(t, http.StatusOK, w.Code)
	var args rdb.DepsTokensArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, map[string]string{"Case": "Acc", "Number": "Sing"}, args.Feats)
	assert.Equal(t, "NOUN", args.UPOS)
}

func TestDepsTreeArgs(t *testing.T) {
	pub := &fakePublisher{result: resultOf(results.DepsTree{DocID: "d1", SentenceID: "s2"})}
	w := doGet(setupRouter(pub), "/deps/tr/tree/d1/s2")
	require.Equal(t, http.StatusOK, w.Code)
	var args rdb.DepsTreeArgs
	require.NoError(t, pub.queries[0].DecodeArgs(&args))
	assert.Equal(t, rdb.DepsTreeArgs{CorpusID: "tr", DocID: "d1", SentenceID: "s2"}, args)
}

func TestValidateAndDescribeQuery(t *testing.T) {
	engine := setupRouter(&fakePublisher{})
	w := doGet(engine, `/query/validate?q=[pos="NOUN"]`)
	require.Equal(t, http.StatusOK, w.Code)
	var vresp validationResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &vresp))
	assert.True(t, vresp.Valid)

	w = doGet(engine, `/query/validate?q=[pos=NOUN]`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &vresp))
	assert.False(t, vresp.Valid)
	assert.NotEmpty(t, vresp.Error)

	assert.Equal(t, http.StatusBadRequest, doGet(engine, "/query/validate").Code)

	w = doGet(engine, `/query/describe?q=[pos="ADJ"][lemma="kitap"]`)
	require.Equal(t, http.StatusOK, w.Code)
	var dresp struct {
		Valid      bool `json:"valid"`
		TokenCount int  `json:"tokenCount"`
		IsSequence bool `json:"isSequence"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &dresp))
	assert.True(t, dresp.Valid)
	assert.Equal(t, 2, dresp.TokenCount)
	assert.True(t, dresp.IsSequence)
}

func TestCorplist(t *testing.T) {
	engine := setupRouter(&fakePublisher{})
	w := doGet(engine, "/corplist")
	require.Equal(t, http.StatusOK, w.Code)
	var resp corplistResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Locale)
	require.Len(t, resp.Corpora, 1)
	assert.Equal(t, "Turkish sample", resp.Corpora[0].FullName)

	assert.Equal(t, http.StatusUnprocessableEntity, doGet(engine, "/corplist?lang=cs").Code)
}
