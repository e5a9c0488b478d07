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

package results

import (
	"corpq/corpus"
	"corpq/corpus/conc"
	"corpq/corpus/deps"
	"corpq/corpus/stats"
	"corpq/merror"
	"corpq/rdb"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, value rdb.FuncResult) rdb.WorkerResult {
	wr := rdb.WorkerResult{
		ID:        "corpqResults:1",
		WorkerID:  "w1",
		Func:      "test",
		ProcBegin: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		ProcEnd:   time.Date(2025, 3, 1, 10, 0, 2, 0, time.UTC),
	}
	wr.AttachValue(value)
	data, err := sonic.Marshal(wr)
	require.NoError(t, err)
	var ans rdb.WorkerResult
	require.NoError(t, sonic.Unmarshal(data, &ans))
	return ans
}

func TestConcordanceRoundTrip(t *testing.T) {
	ans := roundTrip(t, Concordance{
		Lines: conc.FormatAll(
			[]conc.MatchResult{{
				DocID:      "d1",
				SentenceID: "s1",
				Start:      1,
				Left:       []corpus.Token{{Index: 1, Form: "bir", Lemma: "bir", UPOS: "DET"}},
				Matched: []corpus.Token{
					{Index: 2, Form: "güzel", Lemma: "güzel", UPOS: "ADJ"},
					{Index: 3, Form: "kitap", Lemma: "kitap", UPOS: "NOUN"},
				},
			}},
			true,
		),
		ConcSize:  1,
		Truncated: true,
	})
	assert.Equal(t, "w1", ans.WorkerID)
	assert.Equal(t, 2*time.Second, ans.ToJobLog().TimeSpent())
	res, ok := ans.Value.(Concordance)
	require.True(t, ok)
	assert.NoError(t, res.Err())
	assert.Equal(t, 1, res.ConcSize)
	assert.True(t, res.Truncated)
	assert.Equal(t, "güzel kitap", res.Lines[0].KWIC)
	assert.Equal(t, "d1/s1:1", res.Lines[0].Ref)
	toks := res.Lines[0].Text.Tokens()
	require.Len(t, toks, 3)
	assert.False(t, toks[0].Strong)
	assert.True(t, toks[2].Strong)
	assert.Equal(t, "NOUN", toks[2].Attrs["pos"])
}

func TestErrorRoundTrip(t *testing.T) {
	ans := roundTrip(t, Freqs{Error: merror.InputError{Msg: "invalid attr"}})
	assert.True(t, ans.HasUserError)
	assert.False(t, ans.HasTimeout)
	res, ok := ans.Value.(Freqs)
	require.True(t, ok)
	assert.EqualError(t, res.Err(), "invalid attr")
	assert.Nil(t, res.Data)

	ans = roundTrip(t, rdb.ErrorResult{Func: "x", Error: merror.TimeoutError{Msg: "too slow"}})
	assert.True(t, ans.HasTimeout)
	assert.False(t, ans.HasUserError)
	assert.EqualError(t, ans.Err(), "too slow")
}

func TestStatsResultsRoundTrip(t *testing.T) {
	fc := stats.NewFreqCounter(stats.ValueExtractor{Attr: corpus.AttrLemma})
	fc.AddToken(&corpus.Token{Index: 1, Form: "Ve", Lemma: "ve"})
	ans := roundTrip(t, Freqs{Data: fc.Result(0)})
	res, ok := ans.Value.(Freqs)
	require.True(t, ok)
	assert.Equal(t, corpus.AttrLemma, res.Data.Attr)
	assert.Equal(t, map[string]int{"ve": 1}, res.Data.Counts())

	ans = roundTrip(t, DepsStats{Data: &deps.Statistics{SentenceCount: 3, AvgDependencyDistance: 1.33}})
	dres, ok := ans.Value.(DepsStats)
	require.True(t, ok)
	assert.Equal(t, 3, dres.Data.SentenceCount)
	assert.Equal(t, 1.33, dres.Data.AvgDependencyDistance)
}

func TestDepsTreeRoundTrip(t *testing.T) {
	root := &deps.TreeNode{
		Token: corpus.Token{Index: 2, Form: "okudu", Head: 0, Deprel: "root"},
		Children: []*deps.TreeNode{
			{Token: corpus.Token{Index: 1, Form: "Ali", Head: 2, Deprel: "nsubj"}, Children: []*deps.TreeNode{}},
		},
	}
	ans := roundTrip(t, DepsTree{DocID: "d1", SentenceID: "s1", Text: "Ali okudu", Root: root})
	res, ok := ans.Value.(DepsTree)
	require.True(t, ok)
	assert.Equal(t, 2, res.Root.Size())
	assert.Equal(t, "Ali", res.Root.Children[0].Token.Form)
}

func TestConcordanceJSONShape(t *testing.T) {
	data, err := sonic.Marshal(Concordance{})
	require.NoError(t, err)
	var tmp map[string]any
	require.NoError(t, sonic.Unmarshal(data, &tmp))
	assert.Equal(t, "conc", tmp["resultType"])
	assert.Equal(t, []any{}, tmp["lines"])
	_, hasErr := tmp["error"]
	assert.False(t, hasErr)
}
