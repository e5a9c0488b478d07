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
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// SourceFormat identifies a physical representation
// of a token store.
type SourceFormat string

const (
	FormatJSONL  SourceFormat = "jsonl"
	FormatSQLite SourceFormat = "sqlite"
)

func (sf SourceFormat) Validate() error {
	if sf != FormatJSONL && sf != FormatSQLite {
		return fmt.Errorf("unsupported source format `%s`", sf)
	}
	return nil
}

// Single corpus configuration types
// ----------------------------------------

type CorpusSetup struct {
	ID          string            `json:"id"`
	FullName    map[string]string `json:"fullName"`
	Description map[string]string `json:"description"`
	Format      SourceFormat      `json:"format"`

	// DataPath is a path of the token store file. If relative,
	// the `corpora.dataDir` is used as a base.
	DataPath string `json:"dataPath"`

	MaximumRecords int `json:"maximumRecords"`

	// MaximumContextSize is the largest number of tokens allowed
	// on each side of a KWIC
	MaximumContextSize int      `json:"maximumContextSize"`
	SrchKeywords       []string `json:"srchKeywords"`
	WebURL             string   `json:"webUrl"`
}

func (cs *CorpusSetup) LocaleDescription(lang string) string {
	d := cs.Description[lang]
	if d != "" {
		return d
	}
	return cs.Description["en"]
}

func (cs *CorpusSetup) LocaleFullName(lang string) string {
	d := cs.FullName[lang]
	if d != "" {
		return d
	}
	return cs.FullName["en"]
}

func (cs *CorpusSetup) ValidateAndDefaults(dataDir string) error {
	if len(cs.FullName) == 0 || cs.FullName["en"] == "" {
		return fmt.Errorf("missing corpus `fullName`, at least `en` value must be set")
	}
	if err := cs.Format.Validate(); err != nil {
		return err
	}
	if cs.DataPath == "" {
		return fmt.Errorf("missing `dataPath`")
	}
	if !filepath.IsAbs(cs.DataPath) {
		cs.DataPath = filepath.Join(dataDir, cs.DataPath)
	}
	isFile, err := fs.IsFile(cs.DataPath)
	if err != nil {
		return fmt.Errorf("failed to test `dataPath`: %w", err)
	}
	if !isFile {
		return fmt.Errorf("`dataPath` %s is not a file", cs.DataPath)
	}
	if cs.MaximumRecords == 0 {
		cs.MaximumRecords = DfltMaximumRecords
		log.Warn().
			Str("corpus", cs.ID).
			Int("value", cs.MaximumRecords).
			Msg("missing or zero `maximumRecords`, using default")
	}
	if cs.MaximumContextSize == 0 {
		cs.MaximumContextSize = DfltMaximumContextSize
		log.Warn().
			Str("corpus", cs.ID).
			Int("value", cs.MaximumContextSize).
			Msg("`maximumContextSize` not specified, using default")
	}
	return nil
}

// Multiple corpora configuration types
// -------------------------------------

type Resources []*CorpusSetup

func (rscs *Resources) Load(directory string) error {
	files, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("failed to load corpora configs: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		confPath := filepath.Join(directory, f.Name())
		tmp, err := os.ReadFile(confPath)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid corpus configuration file, skipping")
			continue
		}
		var conf CorpusSetup
		err = sonic.Unmarshal(tmp, &conf)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid corpus configuration file, skipping")
			continue
		}
		*rscs = append(*rscs, &conf)
		log.Info().Str("name", conf.ID).Msg("loaded corpus configuration file")
	}
	return nil
}

func (rscs Resources) Get(name string) *CorpusSetup {
	for _, v := range rscs {
		if v.ID == name {
			return v
		}
	}
	return nil
}
