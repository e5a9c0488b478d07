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
	"corpq/corpus/deps"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	statsCacheNumCounters = 10000
	statsCacheMaxCost     = 1000
	statsCacheBufferItems = 64
	statsCacheTTL         = 30 * time.Minute
)

// StatsCache keeps recently computed dependency statistics
// of whole corpora. As the statistics require a full pass through
// a corpus, repeated requests are served from the cache. Each item
// has the cost of 1.
type StatsCache struct {
	cache *ristretto.Cache
}

func (sc *StatsCache) mkKey(corpusID string, topN int) string {
	return fmt.Sprintf("%s#%d", corpusID, topN)
}

func (sc *StatsCache) Get(corpusID string, topN int) (deps.Statistics, bool) {
	v, ok := sc.cache.Get(sc.mkKey(corpusID, topN))
	if !ok {
		return deps.Statistics{}, false
	}
	tv, ok := v.(deps.Statistics)
	return tv, ok
}

func (sc *StatsCache) Set(corpusID string, topN int, value deps.Statistics) {
	sc.cache.SetWithTTL(sc.mkKey(corpusID, topN), value, 1, statsCacheTTL)
	sc.cache.Wait()
}

func NewStatsCache() (*StatsCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: statsCacheNumCounters,
		MaxCost:     statsCacheMaxCost,
		BufferItems: statsCacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stats cache: %w", err)
	}
	return &StatsCache{cache: cache}, nil
}
