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

package monitoring

import (
	"corpq/rdb"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/hltscl"
)

type Conf struct {
	DB hltscl.PgConf `json:"db"`
}

// ---

type WorkerLoad struct {
	NumJobs       int
	TotalTimeSecs float64
	NumErrors     int
	FirstUpdate   time.Time
	LastUpdate    time.Time
	NumWorkers    int
}

func (wl *WorkerLoad) add(rec rdb.JobLog) {
	if wl.FirstUpdate.IsZero() || rec.Begin.Before(wl.FirstUpdate) {
		wl.FirstUpdate = rec.Begin
	}
	if rec.End.After(wl.LastUpdate) {
		wl.LastUpdate = rec.End
	}
	wl.NumJobs++
	if rec.Err != nil {
		wl.NumErrors++
	}
	wl.TotalTimeSecs += rec.TimeSpent().Seconds()
}

// TotalSpan returns time span covered by the load info
func (wl WorkerLoad) TotalSpan() time.Duration {
	return wl.LastUpdate.Sub(wl.FirstUpdate)
}

// AvgLoad returns the ratio of time spent by processing jobs
// to the total time span (per worker)
func (wl WorkerLoad) AvgLoad() float64 {
	span := wl.TotalSpan().Seconds()
	if wl.TotalTimeSecs == 0 || span == 0 || wl.NumWorkers == 0 {
		return 0
	}
	return wl.TotalTimeSecs / span / float64(wl.NumWorkers)
}

func (wl WorkerLoad) MarshalJSON() ([]byte, error) {
	var t0, t1 *time.Time
	if !wl.FirstUpdate.IsZero() {
		t0 = &wl.FirstUpdate
	}
	if !wl.LastUpdate.IsZero() {
		t1 = &wl.LastUpdate
	}
	return sonic.Marshal(
		struct {
			NumJobs       int        `json:"numJobs"`
			TotalTimeSecs float64    `json:"totalTimeSecs"`
			NumErrors     int        `json:"numErrors"`
			FirstUpdate   *time.Time `json:"firstUpdate,omitempty"`
			LastUpdate    *time.Time `json:"lastUpdate,omitempty"`
			NumWorkers    int        `json:"numWorkers"`
			AvgLoad       float64    `json:"avgLoad"`
		}{
			NumJobs:       wl.NumJobs,
			TotalTimeSecs: wl.TotalTimeSecs,
			NumErrors:     wl.NumErrors,
			FirstUpdate:   t0,
			LastUpdate:    t1,
			NumWorkers:    wl.NumWorkers,
			AvgLoad:       wl.AvgLoad(),
		},
	)
}

// WorkersLoad maps worker IDs to their total load
type WorkersLoad map[string]WorkerLoad

// SumLoad merges loads of all the workers
func (wl WorkersLoad) SumLoad() WorkerLoad {
	var ans WorkerLoad
	for _, v := range wl {
		if ans.FirstUpdate.IsZero() || v.FirstUpdate.Before(ans.FirstUpdate) {
			ans.FirstUpdate = v.FirstUpdate
		}
		if v.LastUpdate.After(ans.LastUpdate) {
			ans.LastUpdate = v.LastUpdate
		}
		ans.NumJobs += v.NumJobs
		ans.NumErrors += v.NumErrors
		ans.TotalTimeSecs += v.TotalTimeSecs
	}
	ans.NumWorkers = len(wl)
	return ans
}

func (wl WorkersLoad) cleanOldRecords(now time.Time) {
	for k, v := range wl {
		if now.Sub(v.LastUpdate) > StaleWorkerLoadTTL {
			delete(wl, k)
		}
	}
}

// ---

// FuncStats summarizes jobs of a single worker function
// (concordance, freqs, depsTree etc.)
type FuncStats struct {
	Func          string  `json:"func"`
	NumCalls      int     `json:"numCalls"`
	NumErrors     int     `json:"numErrors"`
	AvgTimeSecs   float64 `json:"avgTimeSecs"`
	MaxTimeSecs   float64 `json:"maxTimeSecs"`
	totalTimeSecs float64
}

func sortedFuncStats(data map[string]*FuncStats) []FuncStats {
	ans := make([]FuncStats, 0, len(data))
	for _, v := range data {
		item := *v
		if item.NumCalls > 0 {
			item.AvgTimeSecs = item.totalTimeSecs / float64(item.NumCalls)
		}
		ans = append(ans, item)
	}
	sort.Slice(ans, func(i, j int) bool {
		if ans[i].NumCalls != ans[j].NumCalls {
			return ans[i].NumCalls > ans[j].NumCalls
		}
		return ans[i].Func < ans[j].Func
	})
	return ans
}
