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

package rdb

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// partialResult is implemented by results which may be
// incomplete (e.g. due to a job timeout). Such results
// are never cached.
type partialResult interface {
	IsPartial() bool
}

func (a *Adapter) cacheFilePath(query Query) string {
	hashKey := sha1.Sum(append([]byte(query.Func+"\n"), query.Args...))
	return filepath.Join(a.cachePath, query.Func+"-"+hex.EncodeToString(hashKey[:]))
}

func (a *Adapter) loadCachedResult(path string) (WorkerResult, bool) {
	var ans WorkerResult
	isf, err := fs.IsFile(path)
	if err != nil || !isf {
		return ans, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Err(err).Str("path", path).Msg("failed to read cache file")
		return ans, false
	}
	if err := sonic.Unmarshal(content, &ans); err != nil {
		log.Err(err).Str("path", path).Msg("failed to decode cache file, ignoring")
		return ans, false
	}
	return ans, true
}

func storeCachedResult(path string, result WorkerResult) {
	if result.Value == nil || result.Value.Err() != nil {
		return
	}
	if p, ok := result.Value.(partialResult); ok && p.IsPartial() {
		return
	}
	data, err := sonic.Marshal(result)
	if err != nil {
		log.Err(err).Str("path", path).Msg("failed to serialize result for caching")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Err(err).Str("path", path).Msg("failed to write cache file")
	}
}

// CacheResult wraps a query publishing function fn and stores
// successful results in the cache directory. In case a result
// for the same function and arguments is already cached, fn
// is not called at all.
func (a *Adapter) CacheResult(
	fn func(Query) (<-chan WorkerResult, error),
	query Query,
) (<-chan WorkerResult, error) {
	if len(a.cachePath) == 0 {
		return fn(query)
	}
	path := a.cacheFilePath(query)
	ans := make(chan WorkerResult, 1)
	if cached, ok := a.loadCachedResult(path); ok {
		log.Debug().Str("func", query.Func).Str("path", path).Msg("using cached result")
		ans <- cached
		close(ans)
		return ans, nil
	}

	wr, err := fn(query)
	if err != nil {
		return nil, err
	}
	go func() {
		defer close(ans)
		rawResult := <-wr
		storeCachedResult(path, rawResult)
		ans <- rawResult
	}()
	return ans, nil
}

// PublishQueryCached is PublishQuery with results cached
// (if a cache directory is configured)
func (a *Adapter) PublishQueryCached(query Query) (<-chan WorkerResult, error) {
	return a.CacheResult(a.PublishQuery, query)
}
