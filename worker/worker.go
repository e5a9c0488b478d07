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
	"corpq/cql"
	"corpq/merror"
	"corpq/rdb"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
	DefaultJobTimeout     = 60 * time.Second
)

type Worker struct {
	ID          string
	messages    <-chan *redis.Message
	radapter    *rdb.Adapter
	corpora     *corpus.CorporaSetup
	regexpCache *cql.RegexpCache
	statsCache  *StatsCache
	jobTimeout  time.Duration
	ticker      *time.Ticker
}

func (w *Worker) publishResult(
	res rdb.FuncResult,
	query rdb.Query,
	procBegin time.Time,
) error {
	ans := &rdb.WorkerResult{
		ID:        query.Channel,
		WorkerID:  w.ID,
		Func:      query.Func,
		ProcBegin: procBegin,
		ProcEnd:   time.Now(),
	}
	ans.AttachValue(res)
	if err := res.Err(); err != nil {
		log.Error().
			Err(err).
			Str("func", query.Func).
			Bool("userError", ans.HasUserError).
			Msg("job finished with error")
	}
	return w.radapter.PublishResult(query.Channel, ans)
}

func (w *Worker) runQuery(ctx context.Context, query rdb.Query) rdb.FuncResult {
	var ans rdb.FuncResult
	var err error
	switch query.Func {
	case rdb.FuncConcordance:
		var args rdb.ConcordanceArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.concordance(ctx, args)
		}
	case rdb.FuncFreqs:
		var args rdb.FreqsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.freqs(ctx, args)
		}
	case rdb.FuncNgrams:
		var args rdb.NgramsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.ngrams(ctx, args)
		}
	case rdb.FuncCollocations:
		var args rdb.CollocationsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.collocations(ctx, args)
		}
	case rdb.FuncBigrams:
		var args rdb.BigramsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.bigrams(ctx, args)
		}
	case rdb.FuncZipf:
		var args rdb.ZipfArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.zipf(ctx, args)
		}
	case rdb.FuncDepsDeprel, rdb.FuncDepsFeatures:
		var args rdb.DepsTokensArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.depsTokens(ctx, query.Func, args)
		}
	case rdb.FuncDepsPairs:
		var args rdb.DepsPairsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.depsPairs(ctx, args)
		}
	case rdb.FuncDepsTree:
		var args rdb.DepsTreeArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.depsTree(ctx, args)
		}
	case rdb.FuncDepsStats:
		var args rdb.DepsStatsArgs
		if err = query.DecodeArgs(&args); err == nil {
			ans = w.depsStats(ctx, args)
		}
	default:
		err = merror.InputError{Msg: fmt.Sprintf("unknown query function: %s", query.Func)}
	}
	if err != nil {
		return rdb.ErrorResult{Func: query.Func, Error: err}
	}
	return ans
}

func (w *Worker) runQueryProtected(ctx context.Context, query rdb.Query) (ans rdb.FuncResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("func", query.Func).
				Any("panic", r).
				Msg("worker recovered from panic")
			ans = rdb.ErrorResult{
				Func:  query.Func,
				Error: merror.RecoveredError{Msg: merror.PanicValueToErr(r).Error()},
			}
		}
	}()
	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()
	return w.runQuery(jobCtx, query)
}

func (w *Worker) tryNextQuery(ctx context.Context) error {
	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.radapter.DequeueQuery()
	if errors.Is(err, rdb.ErrorEmptyQueue) {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		RawJSON("args", query.Args).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}
	procBegin := time.Now()
	ans := w.runQueryProtected(ctx, query)
	return w.publishResult(ans, query, procBegin)
}

func (w *Worker) handleNextQuery(ctx context.Context) {
	if err := w.tryNextQuery(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process query")
	}
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go func() {
		for {
			select {
			case <-w.ticker.C:
				w.handleNextQuery(ctx)
			case <-ctx.Done():
				log.Info().Msg("worker exiting")
				return
			case msg := <-w.messages:
				if msg != nil && msg.Payload == rdb.MsgNewQuery {
					w.handleNextQuery(ctx)
				}
			}
		}
	}()
}

func (w *Worker) Stop(ctx context.Context) error {
	log.Warn().Str("workerId", w.ID).Msg("stopping worker")
	w.ticker.Stop()
	return nil
}

func NewWorker(
	workerID string,
	radapter *rdb.Adapter,
	messages <-chan *redis.Message,
	corpora *corpus.CorporaSetup,
	regexpCache *cql.RegexpCache,
	statsCache *StatsCache,
	jobTimeout time.Duration,
) *Worker {
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	return &Worker{
		ID:          workerID,
		radapter:    radapter,
		messages:    messages,
		corpora:     corpora,
		regexpCache: regexpCache,
		statsCache:  statsCache,
		jobTimeout:  jobTimeout,
		ticker:      time.NewTicker(DefaultTickerInterval),
	}
}
