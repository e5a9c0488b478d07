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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"corpq/merror"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeConcordance  ResultType = "conc"
	ResultTypeFreqs        ResultType = "freqs"
	ResultTypeNgrams       ResultType = "ngrams"
	ResultTypeCollocations ResultType = "colls"
	ResultTypeBigrams      ResultType = "bigrams"
	ResultTypeZipf         ResultType = "zipf"
	ResultTypeDepsTokens   ResultType = "depsTokens"
	ResultTypeDepsPairs    ResultType = "depsPairs"
	ResultTypeDepsTree     ResultType = "depsTree"
	ResultTypeDepsStats    ResultType = "depsStats"
	ResultTypeError        ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// ----------------

type FuncResult interface {
	Err() error
	Type() ResultType
}

type resultDecoder func(data []byte) (FuncResult, error)

var (
	decoders     = make(map[ResultType]resultDecoder)
	decodersLock sync.RWMutex
)

// RegisterResultType makes a result type decodable from
// the JSON data sent by workers. T is expected to be a value
// type whose pointer implements json.Unmarshaler (or is decodable
// as is).
func RegisterResultType[T FuncResult](rt ResultType) {
	decodersLock.Lock()
	defer decodersLock.Unlock()
	decoders[rt] = func(data []byte) (FuncResult, error) {
		var v T
		if err := sonic.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func decodeValue(rt ResultType, data []byte) (FuncResult, error) {
	decodersLock.RLock()
	dec, ok := decoders[rt]
	decodersLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown result type `%s`", rt)
	}
	return dec(data)
}

func ErrToStr(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

// StrToErr is an inverse function to ErrToStr. Please note
// that the original error type cannot be restored.
func StrToErr(s string) error {
	if s == "" {
		return nil
	}
	return errors.New(s)
}

// ----------------

// ErrorResult is a general result describing a failed job
// in case no type-specific result can be created
type ErrorResult struct {
	Func  string
	Error error
}

func (res ErrorResult) Err() error {
	return res.Error
}

func (res ErrorResult) Type() ResultType {
	return ResultTypeError
}

func (res ErrorResult) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Func       string     `json:"func"`
		ResultType ResultType `json:"resultType"`
		Error      string     `json:"error"`
	}{
		Func:       res.Func,
		ResultType: res.Type(),
		Error:      ErrToStr(res.Error),
	})
}

func (res *ErrorResult) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Func  string `json:"func"`
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Func = tmp.Func
	res.Error = StrToErr(tmp.Error)
	return nil
}

// ----------------

// WorkerResult is an envelope of any result sent from a worker
// back to the API server.
type WorkerResult struct {
	ID           string
	WorkerID     string
	Func         string
	Value        FuncResult
	HasUserError bool
	HasTimeout   bool
	ProcBegin    time.Time
	ProcEnd      time.Time
}

type workerResultJSON struct {
	ID           string          `json:"id"`
	WorkerID     string          `json:"workerId"`
	Func         string          `json:"func"`
	ResultType   ResultType      `json:"resultType"`
	Value        json.RawMessage `json:"value"`
	HasUserError bool            `json:"hasUserError"`
	HasTimeout   bool            `json:"hasTimeout"`
	ProcBegin    time.Time       `json:"procBegin"`
	ProcEnd      time.Time       `json:"procEnd"`
}

// AttachValue sets the result value and also derives
// the error flags from the value's error.
func (wr *WorkerResult) AttachValue(value FuncResult) {
	wr.Value = value
	if err := value.Err(); err != nil {
		var tErr merror.TimeoutError
		wr.HasUserError = merror.IsUserError(err)
		wr.HasTimeout = errors.As(err, &tErr)
	}
}

func (wr *WorkerResult) Err() error {
	if wr.Value == nil {
		return fmt.Errorf("empty worker result")
	}
	return wr.Value.Err()
}

func (wr *WorkerResult) ToJobLog() JobLog {
	ans := JobLog{
		WorkerID: wr.WorkerID,
		Func:     wr.Func,
		Begin:    wr.ProcBegin,
		End:      wr.ProcEnd,
	}
	if wr.Value != nil {
		ans.Err = wr.Value.Err()
	}
	return ans
}

func (wr WorkerResult) MarshalJSON() ([]byte, error) {
	if wr.Value == nil {
		return nil, fmt.Errorf("cannot serialize worker result without a value")
	}
	value, err := sonic.Marshal(wr.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize result value: %w", err)
	}
	return sonic.Marshal(workerResultJSON{
		ID:           wr.ID,
		WorkerID:     wr.WorkerID,
		Func:         wr.Func,
		ResultType:   wr.Value.Type(),
		Value:        value,
		HasUserError: wr.HasUserError,
		HasTimeout:   wr.HasTimeout,
		ProcBegin:    wr.ProcBegin,
		ProcEnd:      wr.ProcEnd,
	})
}

func (wr *WorkerResult) UnmarshalJSON(data []byte) error {
	var tmp workerResultJSON
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	value, err := decodeValue(tmp.ResultType, tmp.Value)
	if err != nil {
		return fmt.Errorf("failed to decode worker result: %w", err)
	}
	wr.ID = tmp.ID
	wr.WorkerID = tmp.WorkerID
	wr.Func = tmp.Func
	wr.Value = value
	wr.HasUserError = tmp.HasUserError
	wr.HasTimeout = tmp.HasTimeout
	wr.ProcBegin = tmp.ProcBegin
	wr.ProcEnd = tmp.ProcEnd
	return nil
}

// ----------------

type JobLog struct {
	WorkerID string    `json:"workerId"`
	Func     string    `json:"func"`
	Begin    time.Time `json:"begin"`
	End      time.Time `json:"end"`
	Err      error     `json:"error"`
}

func (jl JobLog) TimeSpent() time.Duration {
	return jl.End.Sub(jl.Begin)
}

func (jl JobLog) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		WorkerID  string    `json:"workerId"`
		Func      string    `json:"func"`
		Begin     time.Time `json:"begin"`
		End       time.Time `json:"end"`
		TimeSpent float64   `json:"timeSpentSecs"`
		Err       string    `json:"error,omitempty"`
	}{
		WorkerID:  jl.WorkerID,
		Func:      jl.Func,
		Begin:     jl.Begin,
		End:       jl.End,
		TimeSpent: NormRound(jl.TimeSpent().Seconds()),
		Err:       ErrToStr(jl.Err),
	})
}

// NormRound performs a normalized rounding to
// the three decimal places so we can provide
// consistent rounding across all the results
func NormRound(val float64) float64 {
	return math.Round(val*1000) / 1000
}

func init() {
	RegisterResultType[ErrorResult](ResultTypeError)
}
