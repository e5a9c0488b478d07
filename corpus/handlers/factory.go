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

package handlers

import (
	"corpq/cnf"
	"corpq/corpus"
	"corpq/cql"
	"corpq/rdb"
)

// queryPublisher hands jobs over to workers
type queryPublisher interface {
	PublishQueryCached(query rdb.Query) (<-chan rdb.WorkerResult, error)
}

type Actions struct {
	conf     *corpus.CorporaSetup
	radapter queryPublisher
	locales  cnf.LocalesConf

	// parser validates queries before they are sent
	// to workers
	parser *cql.Parser
}

func NewActions(
	conf *corpus.CorporaSetup,
	radapter queryPublisher,
	locales cnf.LocalesConf,
	regexpCache *cql.RegexpCache,
) *Actions {
	return &Actions{
		conf:     conf,
		radapter: radapter,
		locales:  locales,
		parser:   cql.NewParser(cql.WithRegexpCache(regexpCache)),
	}
}
