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
	"context"
	"corpq/corpus"
	"database/sql"
	"fmt"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	ord INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS sentences (
	doc_id TEXT NOT NULL,
	id TEXT NOT NULL,
	ord INTEGER NOT NULL,
	PRIMARY KEY (doc_id, id)
);
CREATE TABLE IF NOT EXISTS tokens (
	doc_id TEXT NOT NULL,
	sent_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	form TEXT NOT NULL,
	lemma TEXT NOT NULL DEFAULT '',
	upos TEXT NOT NULL DEFAULT '',
	xpos TEXT NOT NULL DEFAULT '',
	feats TEXT NOT NULL DEFAULT '_',
	head INTEGER NOT NULL,
	deprel TEXT NOT NULL DEFAULT '',
	misc TEXT NOT NULL DEFAULT '_',
	PRIMARY KEY (doc_id, sent_id, idx)
);
CREATE INDEX IF NOT EXISTS documents_ord_idx ON documents(ord);
`

type docHeader struct {
	id       string
	title    string
	metadata string
}

// SQLiteSource reads documents from an SQLite database.
// Only the list of document headers is loaded at once,
// tokens are fetched document by document.
type SQLiteSource struct {
	db *sql.DB
}

func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite source: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite source: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource wraps an already opened database
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func (src *SQLiteSource) Close() error {
	return src.db.Close()
}

func (src *SQLiteSource) loadHeaders(ctx context.Context) ([]docHeader, error) {
	rows, err := src.db.QueryContext(
		ctx, "SELECT id, title, metadata FROM documents ORDER BY ord, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ans := make([]docHeader, 0, 100)
	for rows.Next() {
		var h docHeader
		if err := rows.Scan(&h.id, &h.title, &h.metadata); err != nil {
			return nil, err
		}
		ans = append(ans, h)
	}
	return ans, rows.Err()
}

func (src *SQLiteSource) loadDocument(ctx context.Context, h docHeader) (*corpus.Document, error) {
	doc := &corpus.Document{ID: h.id, Title: h.title}
	if h.metadata != "" && h.metadata != "{}" {
		if err := sonic.UnmarshalString(h.metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata of document %s: %w", h.id, err)
		}
	}
	// sentences without tokens must still reach the integrity check
	rows, err := src.db.QueryContext(
		ctx,
		"SELECT s.id, t.idx, t.form, t.lemma, t.upos, t.xpos, t.feats, t.head, t.deprel, t.misc "+
			"FROM sentences AS s LEFT JOIN tokens AS t ON t.doc_id = s.doc_id AND t.sent_id = s.id "+
			"WHERE s.doc_id = ? ORDER BY s.ord, t.idx",
		h.id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var curr *corpus.Sentence
	for rows.Next() {
		var sentID string
		var idx, head sql.NullInt64
		var form, lemma, upos, xpos, feats, deprel, misc sql.NullString
		err := rows.Scan(
			&sentID, &idx, &form, &lemma, &upos, &xpos, &feats, &head, &deprel, &misc)
		if err != nil {
			return nil, err
		}
		if curr == nil || curr.ID != sentID {
			doc.Sentences = append(doc.Sentences, corpus.Sentence{ID: sentID})
			curr = &doc.Sentences[len(doc.Sentences)-1]
		}
		if !idx.Valid {
			continue
		}
		curr.Tokens = append(curr.Tokens, corpus.Token{
			Index:  int(idx.Int64),
			Form:   form.String,
			Lemma:  lemma.String,
			UPOS:   upos.String,
			XPOS:   xpos.String,
			Feats:  corpus.ParseFeats(feats.String),
			Head:   int(head.Int64),
			Deprel: deprel.String,
			Misc:   corpus.ParseFeats(misc.String),
		})
	}
	return doc, rows.Err()
}

func (src *SQLiteSource) ForEachDocument(ctx context.Context, fn func(doc *corpus.Document) error) error {
	headers, err := src.loadHeaders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	for _, h := range headers {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := src.loadDocument(ctx, h)
		if err != nil {
			return fmt.Errorf("failed to load document %s: %w", h.id, err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// CreateSchema prepares tables for storing documents
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create token store schema: %w", err)
	}
	return nil
}

// InsertDocument stores a document with its sentences
// and tokens in a single transaction. The ord argument
// defines the document's position within the corpus.
func InsertDocument(ctx context.Context, db *sql.DB, ord int, doc *corpus.Document) error {
	meta := "{}"
	if len(doc.Metadata) > 0 {
		var err error
		meta, err = sonic.MarshalString(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata of document %s: %w", doc.ID, err)
		}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(
		ctx, "INSERT INTO documents (id, ord, title, metadata) VALUES (?, ?, ?, ?)",
		doc.ID, ord, doc.Title, meta)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	for i, sent := range doc.Sentences {
		_, err := tx.ExecContext(
			ctx, "INSERT INTO sentences (doc_id, id, ord) VALUES (?, ?, ?)", doc.ID, sent.ID, i)
		if err != nil {
			return fmt.Errorf("failed to insert sentence %s: %w", sent.ID, err)
		}
		for _, tok := range sent.Tokens {
			_, err := tx.ExecContext(
				ctx,
				"INSERT INTO tokens (doc_id, sent_id, idx, form, lemma, upos, xpos, feats, head, deprel, misc) "+
					"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				doc.ID, sent.ID, tok.Index, tok.Form, tok.Lemma, tok.UPOS, tok.XPOS,
				corpus.FormatFeats(tok.Feats), tok.Head, tok.Deprel, corpus.FormatFeats(tok.Misc),
			)
			if err != nil {
				return fmt.Errorf("failed to insert token %s/%d: %w", sent.ID, tok.Index, err)
			}
		}
	}
	return tx.Commit()
}
