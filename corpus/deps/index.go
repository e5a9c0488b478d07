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

package deps

import (
	"corpq/corpus"
	"corpq/merror"
	"fmt"
	"slices"
)

// Index provides access to dependency relations of a single
// sentence. It is built once per sentence and never modifies it.
type Index struct {
	docID    string
	sent     *corpus.Sentence
	byDeprel map[string][]int
	byHead   map[int][]int
}

// NewIndex builds an index of the sentence. Head references
// outside the sentence are ignored here (see corpus.Sentence.Validate).
func NewIndex(docID string, sent *corpus.Sentence) *Index {
	ans := &Index{
		docID:    docID,
		sent:     sent,
		byDeprel: make(map[string][]int),
		byHead:   make(map[int][]int),
	}
	for _, t := range sent.Tokens {
		ans.byDeprel[t.Deprel] = append(ans.byDeprel[t.Deprel], t.Index)
		if t.Head >= 0 && t.Head <= len(sent.Tokens) {
			ans.byHead[t.Head] = append(ans.byHead[t.Head], t.Index)
		}
	}
	return ans
}

func (idx *Index) Sentence() *corpus.Sentence {
	return idx.sent
}

// ByDeprel returns indices of tokens attached by the relation
func (idx *Index) ByDeprel(deprel string) []int {
	return idx.byDeprel[deprel]
}

// ByHead returns indices of direct dependents of the head.
// Use 0 to obtain the root(s).
func (idx *Index) ByHead(head int) []int {
	return idx.byHead[head]
}

func (idx *Index) Edges() []Edge {
	ans := make([]Edge, 0, len(idx.sent.Tokens))
	for _, t := range idx.sent.Tokens {
		if t.Head > 0 {
			ans = append(ans, Edge{Head: t.Head, Dependent: t.Index, Deprel: t.Deprel})
		}
	}
	return ans
}

// FindByDeprel returns tokens attached to their heads by the relation.
// An optional upos restricts the result to a part of speech.
func (idx *Index) FindByDeprel(deprel, upos string) []*corpus.Token {
	ans := make([]*corpus.Token, 0, len(idx.byDeprel[deprel]))
	for _, ti := range idx.byDeprel[deprel] {
		tok := idx.sent.TokenAt(ti)
		if upos == "" || tok.UPOS == upos {
			ans = append(ans, tok)
		}
	}
	return ans
}

// FindHeadDependentPairs returns all non-root edges passing the filter
// ordered by the dependent position.
func (idx *Index) FindHeadDependentPairs(filter PairFilter) []Pair {
	ans := make([]Pair, 0, 4)
	for i := range idx.sent.Tokens {
		dep := &idx.sent.Tokens[i]
		head := idx.sent.TokenAt(dep.Head)
		if head == nil {
			continue
		}
		if filter.matches(head, dep) {
			ans = append(ans, Pair{Head: head, Dependent: dep, Deprel: dep.Deprel})
		}
	}
	return ans
}

// FindByPattern evaluates the `HEADPOS:deprel>DEPPOS` shorthand
// (see ParsePattern).
func (idx *Index) FindByPattern(pattern string) ([]Pair, error) {
	filter, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return idx.FindHeadDependentPairs(filter), nil
}

// FindByFeatures returns tokens having all the provided morphological
// features (and the part of speech if upos is not empty).
func (idx *Index) FindByFeatures(feats map[string]string, upos string) []*corpus.Token {
	ans := make([]*corpus.Token, 0, 4)
	for i := range idx.sent.Tokens {
		tok := &idx.sent.Tokens[i]
		if upos != "" && tok.UPOS != upos {
			continue
		}
		matches := true
		for k, v := range feats {
			if tv, ok := tok.Feats[k]; !ok || tv != v {
				matches = false
				break
			}
		}
		if matches {
			ans = append(ans, tok)
		}
	}
	return ans
}

// -------------------------

// TreeNode is a token with its (recursively expanded) dependents
type TreeNode struct {
	Token    corpus.Token `json:"token"`
	Children []*TreeNode  `json:"children"`
}

// Size returns the number of tokens in the (sub)tree
func (tn *TreeNode) Size() int {
	ans := 1
	for _, ch := range tn.Children {
		ans += ch.Size()
	}
	return ans
}

// Indices returns token indices of the (sub)tree in pre-order
func (tn *TreeNode) Indices() []int {
	ans := []int{tn.Token.Index}
	for _, ch := range tn.Children {
		ans = append(ans, ch.Indices()...)
	}
	return ans
}

// Tokens returns tokens of the (sub)tree in the sentence order
func (tn *TreeNode) Tokens() []corpus.Token {
	ans := make([]corpus.Token, 0, 8)
	stack := []*TreeNode{tn}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ans = append(ans, node.Token)
		stack = append(stack, node.Children...)
	}
	slices.SortFunc(ans, func(a, b corpus.Token) int { return a.Index - b.Index })
	return ans
}

func (idx *Index) cycleError(tokIdx int) error {
	return &merror.CorpusIntegrityError{
		Kind:       merror.IntegrityHeadCycle,
		DocID:      idx.docID,
		SentenceID: idx.sent.ID,
		TokenIndex: tokIdx,
		Msg:        fmt.Sprintf("head chain of token %d forms a cycle", tokIdx),
	}
}

// Subtree collects the token with the index rootIndex and all the tokens
// whose head chain reaches it. Children are ordered by their position.
func (idx *Index) Subtree(rootIndex int) (*TreeNode, error) {
	rootTok := idx.sent.TokenAt(rootIndex)
	if rootTok == nil {
		return nil, fmt.Errorf("token %d not found in sentence %s", rootIndex, idx.sent.ID)
	}
	visited := make(map[int]bool)
	visited[rootIndex] = true
	root := &TreeNode{Token: *rootTok}
	stack := []*TreeNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := slices.Clone(idx.byHead[node.Token.Index])
		slices.Sort(children)
		node.Children = make([]*TreeNode, 0, len(children))
		for _, ci := range children {
			if visited[ci] {
				return nil, idx.cycleError(ci)
			}
			visited[ci] = true
			child := &TreeNode{Token: *idx.sent.TokenAt(ci)}
			node.Children = append(node.Children, child)
			stack = append(stack, child)
		}
	}
	return root, nil
}

// Tree returns the whole dependency tree of the sentence. The tree
// must cover all the sentence tokens, otherwise an integrity error
// is returned.
func (idx *Index) Tree() (*TreeNode, error) {
	roots := idx.byHead[0]
	if len(roots) != 1 {
		kind := merror.IntegrityMultipleRoots
		if len(roots) == 0 {
			kind = merror.IntegrityNoRoot
		}
		return nil, &merror.CorpusIntegrityError{
			Kind:       kind,
			DocID:      idx.docID,
			SentenceID: idx.sent.ID,
			Msg:        fmt.Sprintf("expected a single root, found %d", len(roots)),
		}
	}
	ans, err := idx.Subtree(roots[0])
	if err != nil {
		return nil, err
	}
	if size := ans.Size(); size != len(idx.sent.Tokens) {
		reached := make(map[int]bool, size)
		for _, ti := range ans.Indices() {
			reached[ti] = true
		}
		for _, t := range idx.sent.Tokens {
			if !reached[t.Index] {
				return nil, idx.cycleError(t.Index)
			}
		}
	}
	return ans, nil
}
