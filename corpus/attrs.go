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

package corpus

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	PunctPOS = "PUNCT"
)

// Attr is a closed set of token attributes queries
// and statistics can refer to.
type Attr int

const (
	AttrWord Attr = iota + 1
	AttrLemma
	AttrPos
)

var attrNames = map[Attr]string{
	AttrWord:  "word",
	AttrLemma: "lemma",
	AttrPos:   "pos",
}

func (a Attr) String() string {
	if v, ok := attrNames[a]; ok {
		return v
	}
	return fmt.Sprintf("Attr(%d)", int(a))
}

func (a Attr) Validate() error {
	if _, ok := attrNames[a]; !ok {
		return fmt.Errorf("invalid attribute %d", int(a))
	}
	return nil
}

// Value returns the attribute value of the token.
// The `pos` attribute maps to the universal POS tag.
func (a Attr) Value(t *Token) string {
	switch a {
	case AttrWord:
		return t.Form
	case AttrLemma:
		return t.Lemma
	case AttrPos:
		return t.UPOS
	}
	panic(fmt.Sprintf("unhandled attribute %d", int(a)))
}

// MarshalJSON encodes an unset attribute as an empty string
func (a Attr) MarshalJSON() ([]byte, error) {
	if a == 0 {
		return []byte(`""`), nil
	}
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Attr) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == "" {
		*a = 0
		return nil
	}
	v, ok := ParseAttr(name)
	if !ok {
		return fmt.Errorf("unknown attribute `%s`", name)
	}
	*a = v
	return nil
}

// ParseAttr converts an attribute name into Attr.
// The `form` is accepted as an alias of `word`.
func ParseAttr(name string) (Attr, bool) {
	switch name {
	case "word", "form":
		return AttrWord, true
	case "lemma":
		return AttrLemma, true
	case "pos", "upos":
		return AttrPos, true
	}
	return 0, false
}

// ----------------------

// ParseFeats parses a CoNLL-U FEATS/MISC style column
// (e.g. `Case=Nom|Number=Sing`). The `_` value means no features.
func ParseFeats(src string) map[string]string {
	if src == "" || src == "_" {
		return nil
	}
	ans := make(map[string]string)
	for _, item := range strings.Split(src, "|") {
		k, v, ok := strings.Cut(item, "=")
		if !ok || k == "" {
			continue
		}
		ans[k] = v
	}
	return ans
}

// FormatFeats is the inverse of ParseFeats. Keys are sorted
// to keep the output stable.
func FormatFeats(feats map[string]string) string {
	if len(feats) == 0 {
		return "_"
	}
	keys := make([]string, 0, len(feats))
	for k := range feats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(feats[k])
	}
	return sb.String()
}
