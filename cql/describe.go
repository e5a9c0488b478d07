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

package cql

import (
	"corpq/merror"
	"errors"
)

// QueryInfo provides information about a query without
// executing it.
type QueryInfo struct {
	Valid          bool     `json:"valid"`
	Error          string   `json:"error,omitempty"`
	ErrorCode      string   `json:"errorCode,omitempty"`
	TokenCount     int      `json:"tokenCount"`
	AttributesUsed []string `json:"attributesUsed"`
	IsSequence     bool     `json:"isSequence"`
	HasRegex       bool     `json:"hasRegex"`
	Normalized     string   `json:"normalized,omitempty"`
}

// Validate tests whether the query can be parsed.
// For invalid queries, a human readable message is returned.
func (p *Parser) Validate(text string) (bool, string) {
	if _, err := p.Parse(text); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (p *Parser) Describe(text string) QueryInfo {
	q, err := p.Parse(text)
	if err != nil {
		ans := QueryInfo{Error: err.Error(), AttributesUsed: []string{}}
		var synErr *merror.QuerySyntaxError
		var unsErr *merror.UnsupportedPatternError
		if errors.As(err, &synErr) {
			ans.ErrorCode = string(synErr.Code)

		} else if errors.As(err, &unsErr) {
			ans.ErrorCode = "UNSUPPORTED_PATTERN"
		}
		return ans
	}
	attrs := q.AttributesUsed()
	ans := QueryInfo{
		Valid:          true,
		TokenCount:     q.Len(),
		AttributesUsed: make([]string, len(attrs)),
		IsSequence:     q.Len() > 1,
		Normalized:     q.String(),
	}
	for i, a := range attrs {
		ans.AttributesUsed[i] = a.String()
	}
	for _, c := range q.Constraints {
		for _, pr := range c.Predicates {
			if pr.Kind == PredicateRegex {
				ans.HasRegex = true
			}
		}
	}
	return ans
}

func Validate(text string) (bool, string) {
	return NewParser().Validate(text)
}

func Describe(text string) QueryInfo {
	return NewParser().Describe(text)
}
