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

package deps

import (
	"context"
	"corpq/corpus"
	"errors"
	"fmt"
)

const (
	rootLabel = "ROOT"
)

// TokenHit is a token found by a corpus-wide dependency query
type TokenHit struct {
	DocID        string       `json:"docId"`
	SentenceID   string       `json:"sentenceId"`
	Token        corpus.Token `json:"token"`
	HeadForm     string       `json:"headForm"`
	HeadLemma    string       `json:"headLemma"`
	HeadPos      string       `json:"headPos"`
	SentenceText string       `json:"sentenceText"`
}

// PairHit is a head-dependent pair found by a corpus-wide query
type PairHit struct {
	DocID        string       `json:"docId"`
	SentenceID   string       `json:"sentenceId"`
	Head         corpus.Token `json:"head"`
	Dependent    corpus.Token `json:"dependent"`
	Deprel       string       `json:"deprel"`
	SentenceText string       `json:"sentenceText"`
}

type HitList[T any] struct {
	Items     []T              `json:"items"`
	Stats     corpus.WalkStats `json:"stats"`
	Truncated bool             `json:"truncated"`
}

func newTokenHit(doc *corpus.Document, sent *corpus.Sentence, tok *corpus.Token) TokenHit {
	ans := TokenHit{
		DocID:        doc.ID,
		SentenceID:   sent.ID,
		Token:        *tok,
		HeadForm:     rootLabel,
		HeadLemma:    rootLabel,
		HeadPos:      rootLabel,
		SentenceText: sent.Text(),
	}
	if head := sent.TokenAt(tok.Head); head != nil {
		ans.HeadForm = head.Form
		ans.HeadLemma = head.Lemma
		ans.HeadPos = head.UPOS
	}
	return ans
}

// ForEachIndex walks through valid sentences of the source
// and calls fn with a dependency index of each of them.
func ForEachIndex(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	fn func(doc *corpus.Document, idx *Index) error,
) (corpus.WalkStats, error) {
	return corpus.Walk(ctx, src, policy, func(doc *corpus.Document, sent *corpus.Sentence) error {
		return fn(doc, NewIndex(doc.ID, sent))
	})
}

func collectTokens(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	limit int,
	find func(idx *Index) []*corpus.Token,
) (*HitList[TokenHit], error) {
	ans := &HitList[TokenHit]{Items: make([]TokenHit, 0, 20)}
	stats, err := ForEachIndex(ctx, src, policy, func(doc *corpus.Document, idx *Index) error {
		for _, tok := range find(idx) {
			if limit > 0 && len(ans.Items) >= limit {
				ans.Truncated = true
				return corpus.ErrStopIteration
			}
			ans.Items = append(ans.Items, newTokenHit(doc, idx.Sentence(), tok))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ans.Stats = stats
	return ans, nil
}

// SearchDeprel finds tokens attached by the relation deprel in all
// the documents of the source. With limit > 0, the search stops once
// the limit is exceeded.
func SearchDeprel(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	deprel, upos string,
	limit int,
) (*HitList[TokenHit], error) {
	return collectTokens(ctx, src, policy, limit, func(idx *Index) []*corpus.Token {
		return idx.FindByDeprel(deprel, upos)
	})
}

func SearchFeatures(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	feats map[string]string,
	upos string,
	limit int,
) (*HitList[TokenHit], error) {
	return collectTokens(ctx, src, policy, limit, func(idx *Index) []*corpus.Token {
		return idx.FindByFeatures(feats, upos)
	})
}

func SearchPairs(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	filter PairFilter,
	limit int,
) (*HitList[PairHit], error) {
	ans := &HitList[PairHit]{Items: make([]PairHit, 0, 20)}
	stats, err := ForEachIndex(ctx, src, policy, func(doc *corpus.Document, idx *Index) error {
		for _, p := range idx.FindHeadDependentPairs(filter) {
			if limit > 0 && len(ans.Items) >= limit {
				ans.Truncated = true
				return corpus.ErrStopIteration
			}
			ans.Items = append(ans.Items, PairHit{
				DocID:        doc.ID,
				SentenceID:   idx.Sentence().ID,
				Head:         *p.Head,
				Dependent:    *p.Dependent,
				Deprel:       p.Deprel,
				SentenceText: idx.Sentence().Text(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ans.Stats = stats
	return ans, nil
}

// SearchPattern is SearchPairs with a filter given
// by the `HEADPOS:deprel>DEPPOS` shorthand.
func SearchPattern(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	pattern string,
	limit int,
) (*HitList[PairHit], error) {
	filter, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return SearchPairs(ctx, src, policy, filter, limit)
}

// ErrSentenceNotFound is returned by FindTree for unknown
// document or sentence IDs
var ErrSentenceNotFound = errors.New("sentence not found")

// FindTree returns the dependency tree of a specific sentence.
// The sentence is always validated, an invalid one produces
// a CorpusIntegrityError.
func FindTree(ctx context.Context, src corpus.Source, docID, sentenceID string) (*TreeNode, error) {
	var ans *TreeNode
	var found bool
	err := src.ForEachDocument(ctx, func(doc *corpus.Document) error {
		if doc.ID != docID {
			return nil
		}
		sent := doc.SentenceByID(sentenceID)
		if sent == nil {
			return corpus.ErrStopIteration
		}
		found = true
		if err := sent.Validate(doc.ID); err != nil {
			return err
		}
		var err error
		ans, err = NewIndex(doc.ID, sent).Tree()
		if err != nil {
			return err
		}
		return corpus.ErrStopIteration
	})
	if err != nil && !errors.Is(err, corpus.ErrStopIteration) {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s/%s", ErrSentenceNotFound, docID, sentenceID)
	}
	return ans, nil
}

// ComputeStatistics streams through the source and summarizes
// its dependency annotation.
func ComputeStatistics(
	ctx context.Context,
	src corpus.Source,
	policy corpus.IntegrityPolicy,
	topN int,
) (Statistics, error) {
	acc := NewStatsAccumulator()
	stats, err := corpus.Walk(ctx, src, policy, func(doc *corpus.Document, sent *corpus.Sentence) error {
		acc.Add(sent)
		return nil
	})
	if err != nil {
		return Statistics{}, err
	}
	ans := acc.Result(topN)
	ans.SkippedSentences = stats.SkippedSentences
	return ans, nil
}
