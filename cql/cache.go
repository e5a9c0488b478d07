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
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DfltRegexpCacheSize = 1000
)

// RegexpCache keeps compiled regular expressions keyed by
// their source text. It is safe for concurrent use.
type RegexpCache struct {
	items *lru.Cache[string, *regexp.Regexp]
}

func (rc *RegexpCache) Compile(expr string) (*regexp.Regexp, error) {
	if rc == nil {
		return regexp.Compile(expr)
	}
	if re, ok := rc.items.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	rc.items.Add(expr, re)
	return re, nil
}

func (rc *RegexpCache) Len() int {
	if rc == nil {
		return 0
	}
	return rc.items.Len()
}

func NewRegexpCache(size int) (*RegexpCache, error) {
	if size <= 0 {
		size = DfltRegexpCacheSize
	}
	items, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create regexp cache: %w", err)
	}
	return &RegexpCache{items: items}, nil
}
