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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	records []rdb.JobLog
}

func (rw *recordingWriter) Write(rec rdb.JobLog) {
	rw.records = append(rw.records, rec)
}

func mkJob(worker, fn string, beginSec, endSec int, err error) rdb.JobLog {
	t0 := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return rdb.JobLog{
		WorkerID: worker,
		Func:     fn,
		Begin:    t0.Add(time.Duration(beginSec) * time.Second),
		End:      t0.Add(time.Duration(endSec) * time.Second),
		Err:      err,
	}
}

func TestWorkerJobLogger(t *testing.T) {
	writer := &recordingWriter{}
	logger := NewWorkerJobLogger(writer, time.UTC)
	logger.Log(mkJob("w1", rdb.FuncConcordance, 0, 2, nil))
	logger.Log(mkJob("w2", rdb.FuncFreqs, 1, 2, nil))
	logger.Log(mkJob("w1", rdb.FuncConcordance, 4, 8, errors.New("failed")))

	assert.Len(t, writer.records, 3)

	total := logger.TotalLoad()
	assert.Equal(t, 3, total.NumJobs)
	assert.Equal(t, 1, total.NumErrors)
	assert.Equal(t, 2, total.NumWorkers)
	assert.Equal(t, 7.0, total.TotalTimeSecs)
	assert.Equal(t, 8*time.Second, total.TotalSpan())
	assert.InDelta(t, 7.0/8.0/2.0, total.AvgLoad(), 1e-9)

	w1, err := logger.TotalWorkerLoad("w1")
	require.NoError(t, err)
	assert.Equal(t, 2, w1.NumJobs)
	assert.Equal(t, 6.0, w1.TotalTimeSecs)

	recent, err := logger.RecentWorkerLoad("w2")
	require.NoError(t, err)
	assert.Equal(t, 1, recent.NumJobs)

	_, err = logger.TotalWorkerLoad("w9")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	_, err = logger.RecentWorkerLoad("w9")
	assert.ErrorIs(t, err, ErrWorkerNotFound)

	assert.Equal(t, 2, logger.RecentLoad().NumWorkers)
	assert.Len(t, logger.RecentRecords(), 3)
}

func TestFuncStats(t *testing.T) {
	logger := NewWorkerJobLogger(nil, nil)
	logger.Log(mkJob("w1", rdb.FuncDepsTree, 0, 1, nil))
	logger.Log(mkJob("w1", rdb.FuncConcordance, 0, 2, nil))
	logger.Log(mkJob("w1", rdb.FuncConcordance, 0, 4, errors.New("x")))

	fs := logger.FuncStats()
	require.Len(t, fs, 2)
	assert.Equal(t, rdb.FuncConcordance, fs[0].Func)
	assert.Equal(t, 2, fs[0].NumCalls)
	assert.Equal(t, 1, fs[0].NumErrors)
	assert.Equal(t, 3.0, fs[0].AvgTimeSecs)
	assert.Equal(t, 4.0, fs[0].MaxTimeSecs)
	assert.Equal(t, rdb.FuncDepsTree, fs[1].Func)
}

func TestWorkerLoadEmpty(t *testing.T) {
	var wl WorkerLoad
	assert.Equal(t, 0.0, wl.AvgLoad())
	data, err := wl.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "firstUpdate")
}

func TestCleanOldRecords(t *testing.T) {
	wl := WorkersLoad{
		"old": {LastUpdate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		"new": {LastUpdate: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	wl.cleanOldRecords(time.Date(2025, 1, 3, 1, 0, 0, 0, time.UTC))
	assert.Len(t, wl, 1)
	_, ok := wl["new"]
	assert.True(t, ok)
}
