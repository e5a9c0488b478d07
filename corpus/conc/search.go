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

package conc

import (
	"context"
	"corpq/corpus"
	"corpq/cql"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	DfltParallelism = 4
)

type SearchOptions struct {
	ContextSize int

	// CrossSentenceContext allows context to continue
	// into neighbouring sentences of the same document.
	// Matches themselves never cross sentence boundaries.
	CrossSentenceContext bool

	// Parallelism limits the number of documents searched
	// at the same time
	Parallelism int

	// MaxMatches stops the search once the number of matches
	// reaches the value. Zero means no limit.
	MaxMatches int

	Policy corpus.IntegrityPolicy
}

func (opts SearchOptions) policy() corpus.IntegrityPolicy {
	if opts.Policy == "" {
		return corpus.IntegritySkip
	}
	return opts.Policy
}

type SearchResult struct {
	Matches []MatchResult    `json:"matches"`
	Stats   corpus.WalkStats `json:"stats"`

	// Partial is set when the search was cancelled before all
	// the documents were processed. Matches from finished
	// documents are still valid.
	Partial bool `json:"partial"`

	// Truncated is set when the search stopped due to
	// the MaxMatches limit
	Truncated bool `json:"truncated"`
}

// SearchDocument matches the query against each sentence
// of the document. Sentences rejected by the integrity policy
// are neither searched nor used as cross-sentence context.
func SearchDocument(q *cql.Query, doc *corpus.Document, opts SearchOptions) ([]MatchResult, corpus.WalkStats, error) {
	stats := corpus.WalkStats{Documents: 1}
	policy := opts.policy()
	valid := make([]bool, len(doc.Sentences))
	for i := range doc.Sentences {
		ok, err := policy.CheckSentence(doc, &doc.Sentences[i])
		if err != nil {
			return nil, stats, err
		}
		valid[i] = ok
		if ok {
			stats.Sentences++

		} else {
			stats.SkippedSentences++
		}
	}
	ans := make([]MatchResult, 0, 8)
	for i := range doc.Sentences {
		if !valid[i] {
			continue
		}
		sent := &doc.Sentences[i]
		for _, m := range FindMatches(q, sent.Tokens, opts.ContextSize) {
			m.DocID = doc.ID
			m.SentenceID = sent.ID
			m.Props = doc.Metadata
			if opts.CrossSentenceContext {
				extendContext(&m, doc, valid, i, opts.ContextSize)
			}
			ans = append(ans, m)
		}
	}
	return ans, stats, nil
}

// extendContext fills missing context from the preceding
// and following valid sentences
func extendContext(m *MatchResult, doc *corpus.Document, valid []bool, sentIdx, contextSize int) {
	if missing := contextSize - len(m.Left); missing > 0 {
		var prefix []corpus.Token
		for j := sentIdx - 1; j >= 0 && missing > 0; j-- {
			if !valid[j] {
				continue
			}
			toks := doc.Sentences[j].Tokens
			from := max(0, len(toks)-missing)
			prefix = append(append([]corpus.Token{}, toks[from:]...), prefix...)
			missing -= len(toks) - from
		}
		m.Left = append(prefix, m.Left...)
	}
	if missing := contextSize - len(m.Right); missing > 0 {
		suffix := make([]corpus.Token, 0, contextSize)
		suffix = append(suffix, m.Right...)
		for j := sentIdx + 1; j < len(doc.Sentences) && missing > 0; j++ {
			if !valid[j] {
				continue
			}
			toks := doc.Sentences[j].Tokens
			to := min(len(toks), missing)
			suffix = append(suffix, toks[:to]...)
			missing -= to
		}
		m.Right = suffix
	}
}

// Search runs the query over all the documents of the source.
// Documents are searched in parallel, the result keeps the order
// of documents as provided by the source. Cancelling ctx stops
// issuing new documents and produces a partial result.
func Search(ctx context.Context, q *cql.Query, src corpus.Source, opts SearchOptions) (*SearchResult, error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DfltParallelism
	}
	var (
		mu       sync.Mutex
		perDoc   [][]MatchResult
		stats    corpus.WalkStats
		numFound atomic.Int64
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)
	srcErr := src.ForEachDocument(egCtx, func(doc *corpus.Document) error {
		if opts.MaxMatches > 0 && numFound.Load() >= int64(opts.MaxMatches) {
			return corpus.ErrStopIteration
		}
		mu.Lock()
		slot := len(perDoc)
		perDoc = append(perDoc, nil)
		mu.Unlock()
		eg.Go(func() error {
			matches, docStats, err := SearchDocument(q, doc, opts)
			if err != nil {
				return err
			}
			numFound.Add(int64(len(matches)))
			mu.Lock()
			perDoc[slot] = matches
			stats.Add(docStats)
			mu.Unlock()
			return nil
		})
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	ans := &SearchResult{Stats: stats}
	switch {
	case srcErr == nil:
	case errors.Is(srcErr, corpus.ErrStopIteration):
		ans.Truncated = true
	case ctx.Err() != nil:
		ans.Partial = true
	default:
		return nil, srcErr
	}
	total := 0
	for _, m := range perDoc {
		total += len(m)
	}
	ans.Matches = make([]MatchResult, 0, total)
	for _, m := range perDoc {
		ans.Matches = append(ans.Matches, m...)
	}
	if opts.MaxMatches > 0 && len(ans.Matches) > opts.MaxMatches {
		ans.Matches = ans.Matches[:opts.MaxMatches]
		ans.Truncated = true
	}
	return ans, nil
}
