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
	"bufio"
	"bytes"
	"context"
	"corpq/corpus"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
)

const (
	dfltMaxLineSize = 64 * 1024 * 1024
)

// JSONLSource reads documents stored as JSON lines, one
// document per line. The file is reopened for each iteration
// so a single instance can be shared by concurrent readers.
type JSONLSource struct {
	path        string
	maxLineSize int
}

func (src *JSONLSource) ForEachDocument(ctx context.Context, fn func(doc *corpus.Document) error) error {
	f, err := os.Open(src.path)
	if err != nil {
		return fmt.Errorf("failed to open JSONL source: %w", err)
	}
	defer f.Close()
	return ReadJSONL(ctx, f, src.maxLineSize, fn)
}

func (src *JSONLSource) Close() error {
	return nil
}

func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{path: path, maxLineSize: dfltMaxLineSize}
}

// ReadJSONL decodes documents from JSON lines read from r.
// Empty lines are ignored.
func ReadJSONL(ctx context.Context, r io.Reader, maxLineSize int, fn func(doc *corpus.Document) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var doc corpus.Document
		if err := sonic.Unmarshal(line, &doc); err != nil {
			return fmt.Errorf("failed to decode document at line %d: %w", lineNum, err)
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read JSONL source: %w", err)
	}
	return nil
}

// WriteJSONL encodes documents as JSON lines.
func WriteJSONL(w io.Writer, docs ...*corpus.Document) error {
	for _, doc := range docs {
		data, err := sonic.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}
