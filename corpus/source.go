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

package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrStopIteration can be returned by a callback passed to
// ForEachDocument or Walk to finish the iteration early without
// reporting an error.
var ErrStopIteration = errors.New("stop iteration")

// Source is a streaming provider of corpus documents.
// Implementations must call fn with one document at a time
// in a stable order and must stop as soon as fn returns an error
// or the context is cancelled.
type Source interface {
	ForEachDocument(ctx context.Context, fn func(doc *Document) error) error
}

// SliceSource is an in-memory Source
type SliceSource []*Document

func (src SliceSource) ForEachDocument(ctx context.Context, fn func(doc *Document) error) error {
	for _, doc := range src {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// --------------------

// IntegrityPolicy specifies what to do with sentences
// violating structural invariants.
type IntegrityPolicy string

const (

	// IntegritySkip logs the problem and ignores the sentence
	IntegritySkip IntegrityPolicy = "skip"

	// IntegrityFail aborts the whole operation
	IntegrityFail IntegrityPolicy = "fail"
)

func (p IntegrityPolicy) Validate() error {
	if p != IntegritySkip && p != IntegrityFail {
		return fmt.Errorf("invalid integrity policy `%s`", p)
	}
	return nil
}

// CheckSentence applies the policy to a single sentence. It returns
// true if the sentence can be processed. An error is returned only
// with the IntegrityFail policy.
func (p IntegrityPolicy) CheckSentence(doc *Document, sent *Sentence) (bool, error) {
	err := sent.Validate(doc.ID)
	if err == nil {
		return true, nil
	}
	if p == IntegrityFail {
		return false, err
	}
	log.Warn().
		Err(err).
		Str("docId", doc.ID).
		Str("sentenceId", sent.ID).
		Msg("skipping invalid sentence")
	return false, nil
}

// WalkStats summarizes a finished walk through a corpus.
type WalkStats struct {
	Documents        int `json:"documents"`
	Sentences        int `json:"sentences"`
	SkippedSentences int `json:"skippedSentences"`
}

func (ws *WalkStats) Add(other WalkStats) {
	ws.Documents += other.Documents
	ws.Sentences += other.Sentences
	ws.SkippedSentences += other.SkippedSentences
}

// Walk iterates over all valid sentences of the source. Invalid
// sentences are handled according to the policy.
// Returning ErrStopIteration from fn finishes the walk with no error.
func Walk(
	ctx context.Context,
	src Source,
	policy IntegrityPolicy,
	fn func(doc *Document, sent *Sentence) error,
) (WalkStats, error) {
	var stats WalkStats
	err := src.ForEachDocument(ctx, func(doc *Document) error {
		stats.Documents++
		for i := range doc.Sentences {
			sent := &doc.Sentences[i]
			ok, err := policy.CheckSentence(doc, sent)
			if err != nil {
				return err
			}
			if !ok {
				stats.SkippedSentences++
				continue
			}
			stats.Sentences++
			if err := fn(doc, sent); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrStopIteration) {
		return stats, nil
	}
	return stats, err
}
