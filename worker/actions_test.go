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

package worker

import (
	"context"
	"corpq/corpus"
	"corpq/corpus/deps"
	"corpq/corpus/stats"
	"corpq/corpus/store"
	"corpq/cql"
	"corpq/merror"
	"corpq/rdb"
	"corpq/rdb/results"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/czcorpus/mquery-common/concordance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(idx int, form, lemma, pos string, head int, deprel string) corpus.Token {
	return corpus.Token{Index: idx, Form: form, Lemma: lemma, UPOS: pos, Head: head, Deprel: deprel}
}

func testDocument() *corpus.Document {
	return &corpus.Document{
		ID: "d1",
		Sentences: []corpus.Sentence{
			{
				ID: "s1",
				Tokens: []corpus.Token{
					tok(1, "Ali", "Ali", "PROPN", 4, "nsubj"),
					tok(2, "güzel", "güzel", "ADJ", 3, "amod"),
					tok(3, "kitap", "kitap", "NOUN", 4, "obj"),
					tok(4, "okudu", "oku", "VERB", 0, "root"),
					tok(5, ".", ".", "PUNCT", 4, "punct"),
				},
			},
			{
				ID: "s2",
				Tokens: []corpus.Token{
					tok(1, "bir", "bir", "DET", 3, "det"),
					tok(2, "güzel", "güzel", "ADJ", 3, "amod"),
					tok(3, "ev", "ev", "NOUN", 0, "root"),
					tok(4, ".", ".", "PUNCT", 3, "punct"),
				},
			},
			{
				ID: "broken",
				Tokens: []corpus.Token{
					tok(1, "güzel", "güzel", "ADJ", 0, "root"),
					tok(2, "ev", "ev", "NOUN", 0, "root"),
				},
			},
		},
	}
}

func newTestWorker(t *testing.T) *Worker {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "tr.jsonl"))
	require.NoError(t, err)
	require.NoError(t, store.WriteJSONL(f, testDocument()))
	require.NoError(t, f.Close())

	corpora := &corpus.CorporaSetup{
		DataDir: dir,
		Resources: corpus.Resources{
			{
				ID:       "tr",
				FullName: map[string]string{"en": "Turkish sample"},
				Format:   corpus.FormatJSONL,
				DataPath: "tr.jsonl",
			},
		},
		IntegrityPolicy: corpus.IntegritySkip,
		Parallelism:     2,
	}
	require.NoError(t, corpora.ValidateAndDefaults("corpora"))
	rc, err := cql.NewRegexpCache(10)
	require.NoError(t, err)
	sc, err := NewStatsCache()
	require.NoError(t, err)
	return &Worker{
		ID:          "test",
		corpora:     corpora,
		regexpCache: rc,
		statsCache:  sc,
		jobTimeout:  time.Minute,
	}
}

func TestConcordance(t *testing.T) {
	w := newTestWorker(t)
	ans := w.concordance(context.Background(), rdb.ConcordanceArgs{
		CorpusID:    "tr",
		Query:       `[pos="ADJ"] [pos="NOUN"]`,
		ContextSize: 1,
	})
	require.NoError(t, ans.Err())
	require.Len(t, ans.Lines, 2)
	assert.Equal(t, 2, ans.ConcSize)
	assert.Equal(t, 1, ans.SkippedSentences)
	assert.Equal(t, "güzel kitap", ans.Lines[0].KWIC)
	assert.Equal(t, "Ali", ans.Lines[0].Left)
	assert.Equal(t, "okudu", ans.Lines[0].Right)
	assert.Equal(t, "güzel ev", ans.Lines[1].KWIC)
	require.NotEmpty(t, ans.Lines[0].Text)
	assert.Nil(t, ans.Lines[0].Text.Tokens()[0].Attrs)
	assert.False(t, ans.Partial)
}

func TestConcordanceWithTokensAndLimit(t *testing.T) {
	w := newTestWorker(t)
	ans := w.concordance(context.Background(), rdb.ConcordanceArgs{
		CorpusID:   "tr",
		Query:      `[lemma="güzel"]`,
		MaxItems:   1,
		WithTokens: true,
	})
	require.NoError(t, ans.Err())
	require.Len(t, ans.Lines, 1)
	assert.True(t, ans.Truncated)
	var kwic []*concordance.Token
	for _, tk := range ans.Lines[0].Text.Tokens() {
		if tk.Strong {
			kwic = append(kwic, tk)
		}
	}
	require.Len(t, kwic, 1)
	assert.Equal(t, concordance.MatchTypeKWIC, kwic[0].MatchType)
	assert.Equal(t, "amod", kwic[0].Attrs["deprel"])
	assert.Equal(t, "güzel", kwic[0].Attrs["lemma"])
}

func TestConcordanceErrors(t *testing.T) {
	w := newTestWorker(t)
	ans := w.concordance(context.Background(), rdb.ConcordanceArgs{CorpusID: "tr", Query: `[pos="ADJ"`})
	var synErr *merror.QuerySyntaxError
	require.True(t, errors.As(ans.Err(), &synErr))
	assert.Equal(t, merror.CodeUnbalancedBracket, synErr.Code)
	assert.True(t, merror.IsUserError(ans.Err()))

	ans = w.concordance(context.Background(), rdb.ConcordanceArgs{CorpusID: "xx", Query: `[pos="ADJ"]`})
	var inpErr merror.InputError
	assert.True(t, errors.As(ans.Err(), &inpErr))

	ans = w.concordance(context.Background(), rdb.ConcordanceArgs{CorpusID: "tr", Query: `[pos="ADJ"]`, ContextSize: -1})
	assert.True(t, errors.As(ans.Err(), &inpErr))
}

func TestFreqs(t *testing.T) {
	w := newTestWorker(t)
	ans := w.freqs(context.Background(), rdb.FreqsArgs{
		CorpusID:  "tr",
		Extractor: stats.ValueExtractor{Attr: corpus.AttrLemma, SkipPunct: true},
	})
	require.NoError(t, ans.Err())
	assert.Equal(t, 7, ans.Data.TotalTokens)
	assert.Equal(t, 2, ans.Data.Counts()["güzel"])
	assert.Equal(t, 1, ans.Data.SkippedSentences)
}

func TestNgramsInvalidSize(t *testing.T) {
	w := newTestWorker(t)
	ans := w.ngrams(context.Background(), rdb.NgramsArgs{CorpusID: "tr", N: 0})
	assert.True(t, merror.IsUserError(ans.Err()))

	ans = w.ngrams(context.Background(), rdb.NgramsArgs{CorpusID: "tr", N: 2, MinFreq: 1})
	require.NoError(t, ans.Err())
	assert.Equal(t, 7, ans.Data.TotalNgrams)
	assert.Equal(t, []string{"Ali", "güzel"}, ans.Data.Items[0].Values)
}

func TestCollocations(t *testing.T) {
	w := newTestWorker(t)
	ans := w.collocations(context.Background(), rdb.CollocationsArgs{
		CorpusID: "tr",
		Options:  stats.CollOptions{Keyword: "güzel", Window: 1, SortBy: stats.MeasureFreq},
	})
	require.NoError(t, ans.Err())
	values := make([]string, len(ans.Data.Items))
	for i, item := range ans.Data.Items {
		values[i] = item.Value
	}
	assert.ElementsMatch(t, []string{"Ali", "kitap", "bir", "ev"}, values)
}

func TestBigrams(t *testing.T) {
	w := newTestWorker(t)
	ans := w.bigrams(context.Background(), rdb.BigramsArgs{
		CorpusID:  "tr",
		Extractor: stats.ValueExtractor{Attr: corpus.AttrLemma, SkipPunct: true},
		SortBy:    stats.MeasureFreq,
		MinFreq:   1,
	})
	require.NoError(t, ans.Err())
	assert.Equal(t, 5, ans.Data.TotalBigrams)
	assert.Equal(t, 1, ans.Data.SkippedSentences)
	require.Len(t, ans.Data.Items, 5)
	assert.Equal(t, "Ali", ans.Data.Items[0].First)
	assert.Equal(t, "güzel", ans.Data.Items[0].Second)

	ans = w.bigrams(context.Background(), rdb.BigramsArgs{CorpusID: "tr", SortBy: "xx"})
	assert.True(t, merror.IsUserError(ans.Err()))
}

func TestZipf(t *testing.T) {
	w := newTestWorker(t)
	ans := w.zipf(context.Background(), rdb.ZipfArgs{
		CorpusID:  "tr",
		Extractor: stats.ValueExtractor{Attr: corpus.AttrLemma, SkipPunct: true},
		TopN:      3,
	})
	require.NoError(t, ans.Err())
	require.Len(t, ans.Data.Items, 3)
	assert.Equal(t, stats.ZipfItem{Rank: 1, Value: "güzel", Freq: 2, Expected: 2}, ans.Data.Items[0])
	assert.Equal(t, stats.ZipfItem{Rank: 2, Value: "Ali", Freq: 1, Expected: 1}, ans.Data.Items[1])
	assert.Equal(t, 7, ans.Data.TotalTokens)
}

func TestDepsTokens(t *testing.T) {
	w := newTestWorker(t)
	ans := w.depsTokens(context.Background(), rdb.FuncDepsDeprel, rdb.DepsTokensArgs{CorpusID: "tr", Deprel: "amod"})
	require.NoError(t, ans.Err())
	require.Len(t, ans.Data.Items, 2)
	assert.Equal(t, "kitap", ans.Data.Items[0].HeadForm)
	assert.Equal(t, "ev", ans.Data.Items[1].HeadForm)

	ans = w.depsTokens(context.Background(), rdb.FuncDepsFeatures, rdb.DepsTokensArgs{CorpusID: "tr"})
	assert.True(t, merror.IsUserError(ans.Err()))
}

func TestDepsPairs(t *testing.T) {
	w := newTestWorker(t)
	ans := w.depsPairs(context.Background(), rdb.DepsPairsArgs{
		CorpusID: "tr",
		Filter:   deps.PairFilter{HeadPos: "NOUN", Deprel: "amod"},
	})
	require.NoError(t, ans.Err())
	assert.Equal(t, "NOUN:amod>*", ans.Pattern)
	require.Len(t, ans.Data.Items, 2)
	assert.Equal(t, "güzel", ans.Data.Items[0].Dependent.Form)
}

func TestDepsTree(t *testing.T) {
	w := newTestWorker(t)
	ans := w.depsTree(context.Background(), rdb.DepsTreeArgs{CorpusID: "tr", DocID: "d1", SentenceID: "s1"})
	require.NoError(t, ans.Err())
	assert.Equal(t, "okudu", ans.Root.Token.Form)
	assert.Equal(t, "Ali güzel kitap okudu .", ans.Text)

	ans = w.depsTree(context.Background(), rdb.DepsTreeArgs{CorpusID: "tr", DocID: "d1", SentenceID: "s9"})
	assert.True(t, merror.IsUserError(ans.Err()))

	ans = w.depsTree(context.Background(), rdb.DepsTreeArgs{CorpusID: "tr", DocID: "d1", SentenceID: "broken"})
	var intErr *merror.CorpusIntegrityError
	assert.True(t, errors.As(ans.Err(), &intErr))
}

func TestDepsStatsCached(t *testing.T) {
	w := newTestWorker(t)
	ans := w.depsStats(context.Background(), rdb.DepsStatsArgs{CorpusID: "tr"})
	require.NoError(t, ans.Err())
	assert.Equal(t, 2, ans.Data.SentenceCount)
	assert.Equal(t, 9, ans.Data.TokenCount)
	assert.Equal(t, 1, ans.Data.SkippedSentences)

	cached, ok := w.statsCache.Get("tr", deps.DfltDistributionSize)
	require.True(t, ok)
	assert.Equal(t, *ans.Data, cached)
}

func TestRunQueryDispatch(t *testing.T) {
	w := newTestWorker(t)
	query, err := rdb.NewQuery(rdb.FuncFreqs, rdb.FreqsArgs{CorpusID: "tr"})
	require.NoError(t, err)
	ans := w.runQueryProtected(context.Background(), query)
	require.NoError(t, ans.Err())
	assert.Equal(t, rdb.ResultTypeFreqs, ans.Type())
	_, ok := ans.(results.Freqs)
	assert.True(t, ok)

	ans = w.runQueryProtected(context.Background(), rdb.Query{Func: "foo"})
	assert.Equal(t, rdb.ResultTypeError, ans.Type())
	assert.True(t, merror.IsUserError(ans.Err()))

	ans = w.runQueryProtected(context.Background(), rdb.Query{Func: rdb.FuncFreqs, Args: []byte("{")})
	assert.Equal(t, rdb.ResultTypeError, ans.Type())
	assert.True(t, merror.IsUserError(ans.Err()))
}

func TestJobError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	var tErr merror.TimeoutError
	assert.True(t, errors.As(jobError(ctx.Err()), &tErr))
	assert.Nil(t, jobError(nil))
}
