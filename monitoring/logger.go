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
	"context"
	"corpq/rdb"
	"errors"
	"sync"
	"time"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

const (
	StaleWorkerLoadTTL = time.Hour * 24
	cleanupInterval    = 10 * time.Minute
	recentLogSize      = 100
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
)

type StatusWriter interface {
	Write(rec rdb.JobLog)
}

type NullStatusWriter struct{}

func (n *NullStatusWriter) Write(rec rdb.JobLog) {}

// WorkerJobLogger collects information about jobs processed
// by workers. It is fed by the API server which receives
// all the worker results.
type WorkerJobLogger struct {
	loadData     WorkersLoad
	funcStats    map[string]*FuncStats
	dataLock     sync.RWMutex
	recentLog    *collections.CircularList[rdb.JobLog]
	tz           *time.Location
	statusWriter StatusWriter
}

func (w *WorkerJobLogger) Log(rec rdb.JobLog) {
	w.dataLock.Lock()
	defer w.dataLock.Unlock()

	entry := w.loadData[rec.WorkerID]
	entry.add(rec)
	entry.NumWorkers = 1
	w.loadData[rec.WorkerID] = entry

	fs, ok := w.funcStats[rec.Func]
	if !ok {
		fs = &FuncStats{Func: rec.Func}
		w.funcStats[rec.Func] = fs
	}
	fs.NumCalls++
	if rec.Err != nil {
		fs.NumErrors++
	}
	secs := rec.TimeSpent().Seconds()
	fs.totalTimeSecs += secs
	if secs > fs.MaxTimeSecs {
		fs.MaxTimeSecs = secs
	}
	w.recentLog.Append(rec)
	w.statusWriter.Write(rec)
}

func (w *WorkerJobLogger) TotalLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	return w.loadData.SumLoad()
}

func (w *WorkerJobLogger) RecentLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	var ans WorkerLoad
	workers := collections.NewSet[string]()
	w.recentLog.ForEach(func(i int, item rdb.JobLog) bool {
		workers.Add(item.WorkerID)
		ans.add(item)
		return true
	})
	ans.NumWorkers = workers.Size()
	return ans
}

func (w *WorkerJobLogger) RecentRecords() []rdb.JobLog {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans := make([]rdb.JobLog, 0, w.recentLog.Len())
	w.recentLog.ForEach(func(i int, item rdb.JobLog) bool {
		ans = append(ans, item)
		return true
	})
	return ans
}

func (w *WorkerJobLogger) TotalWorkerLoad(workerID string) (WorkerLoad, error) {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans, ok := w.loadData[workerID]
	if !ok {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

func (w *WorkerJobLogger) RecentWorkerLoad(workerID string) (WorkerLoad, error) {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	var ans WorkerLoad
	w.recentLog.ForEach(func(i int, item rdb.JobLog) bool {
		if item.WorkerID == workerID {
			ans.add(item)
		}
		return true
	})
	if ans.NumJobs > 0 {
		ans.NumWorkers = 1
		return ans, nil
	}
	return ans, ErrWorkerNotFound
}

// FuncStats returns statistics of all the worker functions
// called so far, most frequent first
func (w *WorkerJobLogger) FuncStats() []FuncStats {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	return sortedFuncStats(w.funcStats)
}

func (w *WorkerJobLogger) Start(ctx context.Context) {
	log.Info().Msg("starting worker job logger")
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requesting worker job logger stop")
				return
			case <-ticker.C:
				w.dataLock.Lock()
				w.loadData.cleanOldRecords(time.Now().In(w.tz))
				w.dataLock.Unlock()
			}
		}
	}()
}

func (w *WorkerJobLogger) Stop(ctx context.Context) error {
	log.Info().Msg("shutting down worker job logger")
	return nil
}

func NewWorkerJobLogger(
	statusWriter StatusWriter,
	tz *time.Location,
) *WorkerJobLogger {
	if statusWriter == nil {
		statusWriter = &NullStatusWriter{}
	}
	if tz == nil {
		tz = time.Local
	}
	return &WorkerJobLogger{
		loadData:     make(WorkersLoad),
		funcStats:    make(map[string]*FuncStats),
		recentLog:    collections.NewCircularList[rdb.JobLog](recentLogSize),
		statusWriter: statusWriter,
		tz:           tz,
	}
}
