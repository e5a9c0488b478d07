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

package store

import (
	"corpq/corpus"
	"fmt"
)

// Source is a corpus.Source holding some resources
// which must be released after use.
type Source interface {
	corpus.Source
	Close() error
}

// Open creates a token source based on a corpus configuration.
func Open(setup *corpus.CorpusSetup) (Source, error) {
	switch setup.Format {
	case corpus.FormatJSONL:
		return NewJSONLSource(setup.DataPath), nil
	case corpus.FormatSQLite:
		return OpenSQLiteSource(setup.DataPath)
	default:
		return nil, fmt.Errorf("cannot open corpus %s: unsupported format `%s`", setup.ID, setup.Format)
	}
}
