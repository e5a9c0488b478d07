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
	"corpq/corpus/conc"
	"corpq/corpus/deps"
	"corpq/corpus/stats"
	"corpq/corpus/store"
	"corpq/cql"
	"corpq/merror"
	"corpq/rdb"
	"corpq/rdb/results"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// jobError converts errors caused by the job deadline
// and by unknown items into the respective merror types
func jobError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return merror.TimeoutError{Msg: fmt.Sprintf("job timed out: %s", err)}

	} else if errors.Is(err, deps.ErrSentenceNotFound) {
		return merror.InputError{Msg: err.Error()}
	}
	return err
}

func (w *Worker) openSource(corpusID string) (*corpus.CorpusSetup, store.Source, error) {
	setup := w.corpora.GetCorp(corpusID)
	if setup == nil {
		return nil, nil, merror.InputError{Msg: fmt.Sprintf("corpus %s not found", corpusID)}
	}
	src, err := store.Open(setup)
	if err != nil {
		return nil, nil, merror.InternalError{Msg: err.Error()}
	}
	return setup, src, nil
}

func closeSource(src store.Source) {
	if err := src.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close corpus source")
	}
}

// limitItems applies the corpus-configured maximum number
// of records to a requested number of items
func limitItems(setup *corpus.CorpusSetup, requested int) int {
	if requested <= 0 || requested > setup.MaximumRecords {
		return setup.MaximumRecords
	}
	return requested
}

func (w *Worker) concordance(ctx context.Context, args rdb.ConcordanceArgs) results.Concordance {
	var ans results.Concordance
	if args.ContextSize < 0 {
		ans.Error = merror.InputError{Msg: "context size must not be negative"}
		return ans
	}
	opts := []cql.Option{cql.WithRegexpCache(w.regexpCache)}
	if args.CaseSensitive {
		opts = append(opts, cql.WithCaseSensitive())
	}
	query, err := cql.Parse(args.Query, opts...)
	if err != nil {
		ans.Error = err
		return ans
	}
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)

	ctxSize := args.ContextSize
	if ctxSize > setup.MaximumContextSize {
		log.Debug().
			Int("requested", ctxSize).
			Int("maximum", setup.MaximumContextSize).
			Msg("context size exceeds corpus limit, clipping")
		ctxSize = setup.MaximumContextSize
	}
	res, err := conc.Search(ctx, query, src, conc.SearchOptions{
		ContextSize:          ctxSize,
		CrossSentenceContext: args.CrossSentenceContext,
		Parallelism:          w.corpora.Parallelism,
		MaxMatches:           limitItems(setup, args.MaxItems),
		Policy:               w.corpora.IntegrityPolicy,
	})
	if err != nil {
		ans.Error = jobError(err)
		return ans
	}
	ans.Lines = conc.FormatAll(res.Matches, args.WithTokens)
	ans.ConcSize = len(res.Matches)
	ans.SkippedSentences = res.Stats.SkippedSentences
	ans.Partial = res.Partial
	ans.Truncated = res.Truncated
	return ans
}

func (w *Worker) freqs(ctx context.Context, args rdb.FreqsArgs) results.Freqs {
	var ans results.Freqs
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Data, err = stats.Frequency(
		ctx, src, w.corpora.IntegrityPolicy, args.Extractor, limitItems(setup, args.MaxItems))
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) ngrams(ctx context.Context, args rdb.NgramsArgs) results.Ngrams {
	var ans results.Ngrams
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Data, err = stats.Ngrams(
		ctx,
		src,
		w.corpora.IntegrityPolicy,
		args.N,
		args.Extractor,
		args.MinFreq,
		limitItems(setup, args.MaxItems),
	)
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) collocations(ctx context.Context, args rdb.CollocationsArgs) results.Collocations {
	var ans results.Collocations
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Data, err = stats.Collocations(
		ctx, src, w.corpora.IntegrityPolicy, args.Options, limitItems(setup, args.MaxItems))
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) bigrams(ctx context.Context, args rdb.BigramsArgs) results.Bigrams {
	var ans results.Bigrams
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Data, err = stats.Bigrams(
		ctx,
		src,
		w.corpora.IntegrityPolicy,
		args.Extractor,
		args.SortBy,
		args.MinFreq,
		limitItems(setup, args.MaxItems),
	)
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) zipf(ctx context.Context, args rdb.ZipfArgs) results.Zipf {
	var ans results.Zipf
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	topN := args.TopN
	if topN <= 0 {
		topN = stats.DfltZipfSize
	}
	if topN > setup.MaximumRecords {
		topN = setup.MaximumRecords
	}
	ans.Data, err = stats.Zipf(ctx, src, w.corpora.IntegrityPolicy, args.Extractor, topN)
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) depsTokens(ctx context.Context, fn string, args rdb.DepsTokensArgs) results.DepsTokens {
	var ans results.DepsTokens
	if fn == rdb.FuncDepsDeprel && args.Deprel == "" {
		ans.Error = merror.InputError{Msg: "missing dependency relation"}
		return ans

	} else if fn == rdb.FuncDepsFeatures && len(args.Feats) == 0 {
		ans.Error = merror.InputError{Msg: "missing morphological features"}
		return ans
	}
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	limit := limitItems(setup, args.MaxItems)
	if fn == rdb.FuncDepsDeprel {
		ans.Data, err = deps.SearchDeprel(
			ctx, src, w.corpora.IntegrityPolicy, args.Deprel, args.UPOS, limit)

	} else {
		ans.Data, err = deps.SearchFeatures(
			ctx, src, w.corpora.IntegrityPolicy, args.Feats, args.UPOS, limit)
	}
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) depsPairs(ctx context.Context, args rdb.DepsPairsArgs) results.DepsPairs {
	ans := results.DepsPairs{Pattern: deps.FormatPattern(args.Filter)}
	setup, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Data, err = deps.SearchPairs(
		ctx, src, w.corpora.IntegrityPolicy, args.Filter, limitItems(setup, args.MaxItems))
	ans.Error = jobError(err)
	return ans
}

func (w *Worker) depsTree(ctx context.Context, args rdb.DepsTreeArgs) results.DepsTree {
	ans := results.DepsTree{DocID: args.DocID, SentenceID: args.SentenceID}
	_, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	ans.Root, err = deps.FindTree(ctx, src, args.DocID, args.SentenceID)
	if err != nil {
		ans.Error = jobError(err)
		return ans
	}
	ans.Text = conc.JoinForms(ans.Root.Tokens())
	return ans
}

func (w *Worker) depsStats(ctx context.Context, args rdb.DepsStatsArgs) results.DepsStats {
	var ans results.DepsStats
	topN := args.TopN
	if topN <= 0 {
		topN = deps.DfltDistributionSize
	}
	if w.statsCache != nil {
		if cached, ok := w.statsCache.Get(args.CorpusID, topN); ok {
			log.Debug().
				Str("corpus", args.CorpusID).
				Int("topN", topN).
				Msg("dependency stats cache hit")
			ans.Data = &cached
			return ans
		}
	}
	_, src, err := w.openSource(args.CorpusID)
	if err != nil {
		ans.Error = err
		return ans
	}
	defer closeSource(src)
	data, err := deps.ComputeStatistics(ctx, src, w.corpora.IntegrityPolicy, topN)
	if err != nil {
		ans.Error = jobError(err)
		return ans
	}
	if w.statsCache != nil {
		w.statsCache.Set(args.CorpusID, topN, data)
	}
	ans.Data = &data
	return ans
}
