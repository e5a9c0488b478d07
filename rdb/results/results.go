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

package results

import (
	"corpq/corpus/conc"
	"corpq/corpus/deps"
	"corpq/corpus/stats"
	"corpq/rdb"

	"github.com/bytedance/sonic"
)

// ----

type ConcordanceResponse struct {
	Lines            []conc.KWICLine `json:"lines"`
	ConcSize         int             `json:"concSize"`
	SkippedSentences int             `json:"skippedSentences"`
	Partial          bool            `json:"partial"`
	Truncated        bool            `json:"truncated"`
	ResultType       rdb.ResultType  `json:"resultType"`
	Error            string          `json:"error,omitempty"`
}

type Concordance struct {
	Lines []conc.KWICLine

	// ConcSize is the number of matches found. With Truncated,
	// the real size may be larger.
	ConcSize         int
	SkippedSentences int
	Partial          bool
	Truncated        bool
	Error            error
}

func (res Concordance) Err() error {
	return res.Error
}

func (res Concordance) Type() rdb.ResultType {
	return rdb.ResultTypeConcordance
}

func (res Concordance) IsPartial() bool {
	return res.Partial
}

func (res Concordance) MarshalJSON() ([]byte, error) {
	lines := res.Lines
	if lines == nil {
		lines = []conc.KWICLine{}
	}
	return sonic.Marshal(
		ConcordanceResponse{
			Lines:            lines,
			ConcSize:         res.ConcSize,
			SkippedSentences: res.SkippedSentences,
			Partial:          res.Partial,
			Truncated:        res.Truncated,
			ResultType:       res.Type(),
			Error:            rdb.ErrToStr(res.Error),
		},
	)
}

func (res *Concordance) UnmarshalJSON(data []byte) error {
	var tmp ConcordanceResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Lines = tmp.Lines
	res.ConcSize = tmp.ConcSize
	res.SkippedSentences = tmp.SkippedSentences
	res.Partial = tmp.Partial
	res.Truncated = tmp.Truncated
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type FreqsResponse struct {
	*stats.FrequencyResult
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type Freqs struct {
	Data  *stats.FrequencyResult
	Error error
}

func (res Freqs) Err() error {
	return res.Error
}

func (res Freqs) Type() rdb.ResultType {
	return rdb.ResultTypeFreqs
}

func (res Freqs) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(FreqsResponse{
		FrequencyResult: res.Data,
		ResultType:      res.Type(),
		Error:           rdb.ErrToStr(res.Error),
	})
}

func (res *Freqs) UnmarshalJSON(data []byte) error {
	var tmp FreqsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.FrequencyResult
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type NgramsResponse struct {
	*stats.NgramResult
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type Ngrams struct {
	Data  *stats.NgramResult
	Error error
}

func (res Ngrams) Err() error {
	return res.Error
}

func (res Ngrams) Type() rdb.ResultType {
	return rdb.ResultTypeNgrams
}

func (res Ngrams) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(NgramsResponse{
		NgramResult: res.Data,
		ResultType:  res.Type(),
		Error:       rdb.ErrToStr(res.Error),
	})
}

func (res *Ngrams) UnmarshalJSON(data []byte) error {
	var tmp NgramsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.NgramResult
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type CollocationsResponse struct {
	*stats.CollResult
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type Collocations struct {
	Data  *stats.CollResult
	Error error
}

func (res Collocations) Err() error {
	return res.Error
}

func (res Collocations) Type() rdb.ResultType {
	return rdb.ResultTypeCollocations
}

func (res Collocations) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(CollocationsResponse{
		CollResult: res.Data,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *Collocations) UnmarshalJSON(data []byte) error {
	var tmp CollocationsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.CollResult
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type BigramsResponse struct {
	*stats.BigramResult
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type Bigrams struct {
	Data  *stats.BigramResult
	Error error
}

func (res Bigrams) Err() error {
	return res.Error
}

func (res Bigrams) Type() rdb.ResultType {
	return rdb.ResultTypeBigrams
}

func (res Bigrams) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(BigramsResponse{
		BigramResult: res.Data,
		ResultType:   res.Type(),
		Error:        rdb.ErrToStr(res.Error),
	})
}

func (res *Bigrams) UnmarshalJSON(data []byte) error {
	var tmp BigramsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.BigramResult
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type ZipfResponse struct {
	*stats.ZipfResult
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type Zipf struct {
	Data  *stats.ZipfResult
	Error error
}

func (res Zipf) Err() error {
	return res.Error
}

func (res Zipf) Type() rdb.ResultType {
	return rdb.ResultTypeZipf
}

func (res Zipf) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(ZipfResponse{
		ZipfResult: res.Data,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *Zipf) UnmarshalJSON(data []byte) error {
	var tmp ZipfResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.ZipfResult
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type DepsTokensResponse struct {
	*deps.HitList[deps.TokenHit]
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type DepsTokens struct {
	Data  *deps.HitList[deps.TokenHit]
	Error error
}

func (res DepsTokens) Err() error {
	return res.Error
}

func (res DepsTokens) Type() rdb.ResultType {
	return rdb.ResultTypeDepsTokens
}

func (res DepsTokens) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(DepsTokensResponse{
		HitList:    res.Data,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *DepsTokens) UnmarshalJSON(data []byte) error {
	var tmp DepsTokensResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.HitList
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type DepsPairsResponse struct {
	*deps.HitList[deps.PairHit]
	Pattern    string         `json:"pattern"`
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type DepsPairs struct {
	Data *deps.HitList[deps.PairHit]

	// Pattern is a normalized `HEADPOS:deprel>DEPPOS` form
	// of the filter used
	Pattern string
	Error   error
}

func (res DepsPairs) Err() error {
	return res.Error
}

func (res DepsPairs) Type() rdb.ResultType {
	return rdb.ResultTypeDepsPairs
}

func (res DepsPairs) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(DepsPairsResponse{
		HitList:    res.Data,
		Pattern:    res.Pattern,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *DepsPairs) UnmarshalJSON(data []byte) error {
	var tmp DepsPairsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.HitList
	res.Pattern = tmp.Pattern
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type DepsTreeResponse struct {
	DocID      string         `json:"docId"`
	SentenceID string         `json:"sentenceId"`
	Text       string         `json:"text"`
	Root       *deps.TreeNode `json:"root"`
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type DepsTree struct {
	DocID      string
	SentenceID string
	Text       string
	Root       *deps.TreeNode
	Error      error
}

func (res DepsTree) Err() error {
	return res.Error
}

func (res DepsTree) Type() rdb.ResultType {
	return rdb.ResultTypeDepsTree
}

func (res DepsTree) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(DepsTreeResponse{
		DocID:      res.DocID,
		SentenceID: res.SentenceID,
		Text:       res.Text,
		Root:       res.Root,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *DepsTree) UnmarshalJSON(data []byte) error {
	var tmp DepsTreeResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.DocID = tmp.DocID
	res.SentenceID = tmp.SentenceID
	res.Text = tmp.Text
	res.Root = tmp.Root
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

// ----

type DepsStatsResponse struct {
	*deps.Statistics
	ResultType rdb.ResultType `json:"resultType"`
	Error      string         `json:"error,omitempty"`
}

type DepsStats struct {
	Data  *deps.Statistics
	Error error
}

func (res DepsStats) Err() error {
	return res.Error
}

func (res DepsStats) Type() rdb.ResultType {
	return rdb.ResultTypeDepsStats
}

func (res DepsStats) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(DepsStatsResponse{
		Statistics: res.Data,
		ResultType: res.Type(),
		Error:      rdb.ErrToStr(res.Error),
	})
}

func (res *DepsStats) UnmarshalJSON(data []byte) error {
	var tmp DepsStatsResponse
	if err := sonic.Unmarshal(data, &tmp); err != nil {
		return err
	}
	res.Data = tmp.Statistics
	res.Error = rdb.StrToErr(tmp.Error)
	return nil
}

func init() {
	rdb.RegisterResultType[Concordance](rdb.ResultTypeConcordance)
	rdb.RegisterResultType[Freqs](rdb.ResultTypeFreqs)
	rdb.RegisterResultType[Ngrams](rdb.ResultTypeNgrams)
	rdb.RegisterResultType[Collocations](rdb.ResultTypeCollocations)
	rdb.RegisterResultType[Bigrams](rdb.ResultTypeBigrams)
	rdb.RegisterResultType[Zipf](rdb.ResultTypeZipf)
	rdb.RegisterResultType[DepsTokens](rdb.ResultTypeDepsTokens)
	rdb.RegisterResultType[DepsPairs](rdb.ResultTypeDepsPairs)
	rdb.RegisterResultType[DepsTree](rdb.ResultTypeDepsTree)
	rdb.RegisterResultType[DepsStats](rdb.ResultTypeDepsStats)
}
