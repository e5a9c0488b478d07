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

package merror

import (
	"encoding/json"
	"errors"
	"fmt"
)

type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ---------------------------

type RecoveredError struct {
	Msg string
}

func (err RecoveredError) Error() string {
	return err.Msg
}

func (err RecoveredError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ---------------------------

type TimeoutError struct {
	Msg string
}

func (err TimeoutError) Error() string {
	return err.Msg
}

func (err TimeoutError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ---------------------------

// QuerySyntaxCode is a machine readable identifier
// of a query parsing problem.
type QuerySyntaxCode string

const (
	CodeEmptyQuery         QuerySyntaxCode = "EMPTY_QUERY"
	CodeUnbalancedBracket  QuerySyntaxCode = "UNBALANCED_BRACKET"
	CodeMissingEquals      QuerySyntaxCode = "MISSING_EQUALS"
	CodeMissingQuotes      QuerySyntaxCode = "MISSING_QUOTES"
	CodeUnterminatedString QuerySyntaxCode = "UNTERMINATED_STRING"
	CodeUnknownAttribute   QuerySyntaxCode = "UNKNOWN_ATTRIBUTE"
	CodeDuplicateAttribute QuerySyntaxCode = "DUPLICATE_ATTRIBUTE"
	CodeInvalidRegex       QuerySyntaxCode = "INVALID_REGEX"
	CodeUnexpectedToken    QuerySyntaxCode = "UNEXPECTED_TOKEN"
	CodeEmptyValue         QuerySyntaxCode = "EMPTY_VALUE"
	CodeInvalidDepPattern  QuerySyntaxCode = "INVALID_DEP_PATTERN"
)

// QuerySyntaxError describes a query which could not be parsed.
// Position is a 0-based byte offset of the Fragment within the query.
type QuerySyntaxError struct {
	Code     QuerySyntaxCode `json:"code"`
	Fragment string          `json:"fragment"`
	Position int             `json:"position"`
	Msg      string          `json:"message"`
}

func (err *QuerySyntaxError) Error() string {
	if err.Fragment != "" {
		return fmt.Sprintf("%s: %s (near `%s` at %d)", err.Code, err.Msg, err.Fragment, err.Position)
	}
	return fmt.Sprintf("%s: %s", err.Code, err.Msg)
}

// ---------------------------

// UnsupportedPatternError is returned for query constructs
// which are recognized but not supported (gaps, quantifiers, negation,
// alternatives, groups, structural restrictions).
type UnsupportedPatternError struct {
	Construct string `json:"construct"`
	Position  int    `json:"position"`
}

func (err *UnsupportedPatternError) Error() string {
	return fmt.Sprintf("unsupported query construct `%s` at %d", err.Construct, err.Position)
}

// ---------------------------

type IntegrityKind string

const (
	IntegrityEmptySentence IntegrityKind = "EMPTY_SENTENCE"
	IntegrityIndexGap      IntegrityKind = "INDEX_GAP"
	IntegrityInvalidHead   IntegrityKind = "INVALID_HEAD"
	IntegrityNoRoot        IntegrityKind = "NO_ROOT"
	IntegrityMultipleRoots IntegrityKind = "MULTIPLE_ROOTS"
	IntegrityHeadCycle     IntegrityKind = "HEAD_CYCLE"
)

// CorpusIntegrityError reports a sentence violating structural
// invariants of the token store.
type CorpusIntegrityError struct {
	Kind       IntegrityKind `json:"kind"`
	DocID      string        `json:"docId"`
	SentenceID string        `json:"sentenceId"`
	TokenIndex int           `json:"tokenIndex,omitempty"`
	Msg        string        `json:"message"`
}

func (err *CorpusIntegrityError) Error() string {
	return fmt.Sprintf(
		"corpus integrity error %s in doc %s, sentence %s: %s",
		err.Kind, err.DocID, err.SentenceID, err.Msg,
	)
}

// -----------------

// IsUserError tests whether the error is caused by invalid
// user input (as opposed to a server-side problem)
func IsUserError(err error) bool {
	var inpErr InputError
	var synErr *QuerySyntaxError
	var unsErr *UnsupportedPatternError
	return errors.As(err, &inpErr) || errors.As(err, &synErr) || errors.As(err, &unsErr)
}

func marshalMsg(msg string) ([]byte, error) {
	if msg != "" {
		return json.Marshal(msg)
	}
	return json.Marshal(nil)
}

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = fmt.Errorf("recovered panic: %w", tr)
	case string:
		err = fmt.Errorf("recovered panic: %s", tr)
	default:
		err = fmt.Errorf("recovered panic from an error of type %T", v)
	}
	return
}
