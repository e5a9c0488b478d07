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

package stats

import (
	"context"
	"corpq/corpus"
	"corpq/merror"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkSentence(id, text string) corpus.Sentence {
	ans := corpus.Sentence{ID: id}
	for i, w := range strings.Fields(text) {
		pos := "X"
		if w == "." || w == "," {
			pos = corpus.PunctPOS
		}
		head := 1
		if i == 0 {
			head = 0
		}
		ans.Tokens = append(ans.Tokens, corpus.Token{
			Index: i + 1, Form: w, Lemma: strings.ToLower(w), UPOS: pos, Head: head, Deprel: "dep"})
	}
	return ans
}

func mkSource(sentences ...string) corpus.SliceSource {
	doc := &corpus.Document{ID: "d1"}
	for i, s := range sentences {
		doc.Sentences = append(doc.Sentences, mkSentence(string(rune('a'+i)), s))
	}
	return corpus.SliceSource{doc}
}

func TestFrequencyScenario(t *testing.T) {
	sent := mkSentence("s1", "ve bir ve bu")
	res := CountTokens(sent.Tokens, ValueExtractor{Attr: corpus.AttrWord})
	assert.Equal(t, map[string]int{"ve": 2, "bir": 1, "bu": 1}, res.Counts())
	assert.Equal(t, 0.75, res.TypeTokenRatio)
	assert.Equal(t, 4, res.TotalTokens)
	assert.Equal(t, "ve", res.Items[0].Value)
	assert.Equal(t, 50.0, res.Items[0].Percentage)
	assert.Equal(t, []string{"ve", "bir", "bu"}, []string{res.Items[0].Value, res.Items[1].Value, res.Items[2].Value})
}

func TestFrequencyOptions(t *testing.T) {
	src := mkSource("Ve bir ve .", "VE bu .")
	res, err := Frequency(
		context.Background(), src, corpus.IntegritySkip,
		ValueExtractor{Attr: corpus.AttrWord, IgnoreCase: true, SkipPunct: true}, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ve": 3, "bir": 1, "bu": 1}, res.Counts())
	assert.Equal(t, 5, res.TotalTokens)

	res, err = Frequency(
		context.Background(), src, corpus.IntegritySkip, ValueExtractor{Attr: corpus.AttrPos}, 1)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, "X", res.Items[0].Value)
	assert.Equal(t, 2, res.UniqueCount)
}

func TestFrequencyEmpty(t *testing.T) {
	res := CountTokens(nil, ValueExtractor{})
	assert.Empty(t, res.Items)
	assert.Equal(t, 0.0, res.TypeTokenRatio)
}

func TestNgramsDoNotCrossSentences(t *testing.T) {
	src := mkSource("a b c", "d a b")
	res, err := Ngrams(context.Background(), src, corpus.IntegritySkip, 2, ValueExtractor{}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalNgrams)
	assert.Equal(t, []Ngram{
		{Values: []string{"a", "b"}, Freq: 2},
		{Values: []string{"b", "c"}, Freq: 1},
		{Values: []string{"d", "a"}, Freq: 1},
	}, res.Items)
}

func TestNgramsMinFreqAndPunct(t *testing.T) {
	src := mkSource("a , b c", "a b .")
	res, err := Ngrams(
		context.Background(), src, corpus.IntegritySkip, 2, ValueExtractor{SkipPunct: true}, 2, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a b", res.Items[0].String())
	assert.Equal(t, 2, res.Items[0].Freq)
}

func TestNgramsUnigramsAndLongerThanSentence(t *testing.T) {
	src := mkSource("a b", "a")
	res, err := Ngrams(context.Background(), src, corpus.IntegritySkip, 1, ValueExtractor{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []Ngram{{Values: []string{"a"}, Freq: 2}}, res.Items)

	res, err = Ngrams(context.Background(), src, corpus.IntegritySkip, 3, ValueExtractor{}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestNgramsInvalidN(t *testing.T) {
	_, err := Ngrams(context.Background(), mkSource("a"), corpus.IntegritySkip, 0, ValueExtractor{}, 1, 0)
	var inpErr merror.InputError
	assert.True(t, errors.As(err, &inpErr))
}

func TestContingencyTable(t *testing.T) {
	ct := ContingencyTable{N: 100, Fw: 10, Fc: 20, O: 5}
	assert.Equal(t, 2.0, ct.Expected())
	assert.InDelta(t, 1.3219281, ct.MI(), 1e-6)
	assert.InDelta(t, 1.3416408, ct.TScore(), 1e-6)
	assert.InDelta(t, 0.3333333, ct.Dice(), 1e-6)
	assert.InDelta(t, 5.1165235, ct.LogLikelihood(), 1e-6)
	assert.InDelta(t, 0.0236990, ct.PValue(), 1e-6)
}

func TestContingencyTableClamping(t *testing.T) {
	ct := ContingencyTable{N: 10, Fw: 2, Fc: 3, O: 4}
	cells := ct.Cells()
	assert.Equal(t, 0.0, cells[0][1])
	assert.Equal(t, 0.0, cells[1][0])
	assert.False(t, math.IsNaN(ct.LogLikelihood()))
	assert.False(t, math.IsInf(ct.LogLikelihood(), 0))
}

func collSource() corpus.SliceSource {
	return mkSource("a b c a d", "b a e", "c b")
}

func findColl(res *CollResult, value string) *Collocate {
	for i := range res.Items {
		if res.Items[i].Value == value {
			return &res.Items[i]
		}
	}
	return nil
}

func TestCollocationCounts(t *testing.T) {
	res, err := Collocations(
		context.Background(), collSource(), corpus.IntegritySkip,
		CollOptions{Keyword: "a", Window: 1, SortBy: MeasureFreq}, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, res.CorpusSize)
	assert.Equal(t, 3, res.KeywordFreq)
	assert.Nil(t, findColl(res, "a"))
	b := findColl(res, "b")
	require.NotNil(t, b)
	assert.Equal(t, 2, b.CoFreq)
	assert.Equal(t, 1, b.LeftCount)
	assert.Equal(t, 1, b.RightCount)
	assert.Equal(t, 3, b.Freq)
	assert.Equal(t, "b", res.Items[0].Value)
	assert.Len(t, res.Items, 4)
}

func TestCollocationSymmetry(t *testing.T) {
	for _, window := range []int{1, 2, 3} {
		resA, err := Collocations(
			context.Background(), collSource(), corpus.IntegritySkip,
			CollOptions{Keyword: "a", Window: window}, 0)
		require.NoError(t, err)
		resB, err := Collocations(
			context.Background(), collSource(), corpus.IntegritySkip,
			CollOptions{Keyword: "b", Window: window}, 0)
		require.NoError(t, err)
		ab := findColl(resA, "b")
		ba := findColl(resB, "a")
		require.NotNil(t, ab)
		require.NotNil(t, ba)
		assert.Equal(t, ab.CoFreq, ba.CoFreq)
		assert.InDelta(t, ab.MI, ba.MI, 1e-12)
		assert.InDelta(t, ab.Dice, ba.Dice, 1e-12)
		assert.InDelta(t, ab.TScore, ba.TScore, 1e-12)
		assert.InDelta(t, ab.LogLikelihood, ba.LogLikelihood, 1e-12)
	}
}

func TestCollocationMinFreqAndLimit(t *testing.T) {
	res, err := Collocations(
		context.Background(), collSource(), corpus.IntegritySkip,
		CollOptions{Keyword: "a", Window: 1, MinFreq: 2}, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "b", res.Items[0].Value)

	res, err = Collocations(
		context.Background(), collSource(), corpus.IntegritySkip,
		CollOptions{Keyword: "a", Window: 2, SortBy: MeasureMI}, 2)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.GreaterOrEqual(t, res.Items[0].MI, res.Items[1].MI)
}

func TestCollocationIgnoreCase(t *testing.T) {
	src := mkSource("A b", "a B")
	res, err := Collocations(
		context.Background(), src, corpus.IntegritySkip,
		CollOptions{ValueExtractor: ValueExtractor{IgnoreCase: true}, Keyword: "A", Window: 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.KeywordFreq)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Items[0].CoFreq)
}

func TestCollocationInvalidOptions(t *testing.T) {
	for _, opts := range []CollOptions{
		{Window: 1},
		{Keyword: "a"},
		{Keyword: "a", Window: 1, SortBy: "foo"},
	} {
		_, err := NewCollCounter(opts)
		var inpErr merror.InputError
		assert.True(t, errors.As(err, &inpErr))
	}
}

func bigramKeys(items []Bigram) []string {
	ans := make([]string, len(items))
	for i, item := range items {
		ans[i] = item.First + " " + item.Second
	}
	return ans
}

func TestBigramsRankedByMI(t *testing.T) {
	src := mkSource("new york is big", "new york new york", "is big")
	res, err := Bigrams(context.Background(), src, corpus.IntegritySkip, ValueExtractor{}, MeasureMI, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, res.TotalTokens)
	assert.Equal(t, 7, res.TotalBigrams)
	assert.Equal(t, []string{"is big", "new york", "york is", "york new"}, bigramKeys(res.Items))
	assert.InDelta(t, math.Log2(5), res.Items[0].MI, 1e-9)

	ny := res.Items[1]
	assert.Equal(t, 3, ny.Freq)
	assert.InDelta(t, 0.9, ny.Expected, 1e-9)
	assert.InDelta(t, math.Log2(3/0.9), ny.MI, 1e-9)
	assert.InDelta(t, (3-0.9)/math.Sqrt(3), ny.TScore, 1e-9)
}

func TestBigramsSortAndMinFreq(t *testing.T) {
	src := mkSource("new york is big", "new york new york", "is big")
	res, err := Bigrams(context.Background(), src, corpus.IntegritySkip, ValueExtractor{}, MeasureFreq, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"new york", "is big", "york is", "york new"}, bigramKeys(res.Items))

	res, err = Bigrams(context.Background(), src, corpus.IntegritySkip, ValueExtractor{}, MeasureTScore, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new york"}, bigramKeys(res.Items))

	_, err = Bigrams(context.Background(), src, corpus.IntegritySkip, ValueExtractor{}, "pmi", 1, 0)
	var inpErr merror.InputError
	assert.True(t, errors.As(err, &inpErr))
}

func TestZipf(t *testing.T) {
	res, err := Zipf(context.Background(), mkSource("a a b c", "a a b"), corpus.IntegritySkip, ValueExtractor{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalTokens)
	assert.Equal(t, []ZipfItem{
		{Rank: 1, Value: "a", Freq: 4, Expected: 4},
		{Rank: 2, Value: "b", Freq: 2, Expected: 2},
		{Rank: 3, Value: "c", Freq: 1, Expected: 4.0 / 3.0},
	}, res.Items)

	fc := NewFreqCounter(ValueExtractor{})
	for _, s := range mkSource("a a b c", "a a b")[0].Sentences {
		fc.AddSentence(&s)
	}
	assert.Len(t, fc.Zipf(2).Items, 2)
	assert.Empty(t, NewFreqCounter(ValueExtractor{}).Zipf(10).Items)
}
