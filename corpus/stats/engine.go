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
)

// SentenceAccumulator is implemented by all the counters
// of this package
type SentenceAccumulator interface {
	AddSentence(sent *corpus.Sentence)
}

// Accumulate streams all the valid sentences of the source
// into the accumulator.
func Accumulate(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	acc SentenceAccumulator,
) (corpus.WalkStats, error) {
	return corpus.Walk(ctx, src, policy, func(doc *corpus.Document, sent *corpus.Sentence) error {
		acc.AddSentence(sent)
		return nil
	})
}

func Frequency(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	extractor ValueExtractor,
	maxItems int,
) (*FrequencyResult, error) {
	fc := NewFreqCounter(extractor)
	stats, err := Accumulate(ctx, src, policy, fc)
	if err != nil {
		return nil, err
	}
	ans := fc.Result(maxItems)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}

func Ngrams(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	n int,
	extractor ValueExtractor,
	minFreq, maxItems int,
) (*NgramResult, error) {
	nc, err := NewNgramCounter(n, extractor)
	if err != nil {
		return nil, err
	}
	stats, err := Accumulate(ctx, src, policy, nc)
	if err != nil {
		return nil, err
	}
	ans := nc.Result(minFreq, maxItems)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}

func Collocations(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	opts CollOptions,
	maxItems int,
) (*CollResult, error) {
	cc, err := NewCollCounter(opts)
	if err != nil {
		return nil, err
	}
	stats, err := Accumulate(ctx, src, policy, cc)
	if err != nil {
		return nil, err
	}
	ans := cc.Result(maxItems)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}

func Bigrams(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	extractor ValueExtractor,
	sortBy Measure,
	minFreq, maxItems int,
) (*BigramResult, error) {
	bc, err := NewBigramCounter(extractor, sortBy)
	if err != nil {
		return nil, err
	}
	stats, err := Accumulate(ctx, src, policy, bc)
	if err != nil {
		return nil, err
	}
	ans := bc.Result(minFreq, maxItems)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}

func Zipf(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	extractor ValueExtractor,
	topN int,
) (*ZipfResult, error) {
	fc := NewFreqCounter(extractor)
	stats, err := Accumulate(ctx, src, policy, fc)
	if err != nil {
		return nil, err
	}
	ans := fc.Zipf(topN)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}
