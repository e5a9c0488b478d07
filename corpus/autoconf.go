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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var dataFileSuffixes = map[string]SourceFormat{
	".jsonl":  FormatJSONL,
	".sqlite": FormatSQLite,
	".db":     FormatSQLite,
}

// splitDataFileName returns a corpus ID and a source format
// inferred from a token store file name. For unsupported files,
// an empty format is returned.
func splitDataFileName(name string) (string, SourceFormat) {
	ext := filepath.Ext(name)
	format, ok := dataFileSuffixes[strings.ToLower(ext)]
	if !ok {
		return "", ""
	}
	return strings.TrimSuffix(name, ext), format
}

// AutogenerateConf generates a corpus configuration based
// on a token store file found in the data directory.
func AutogenerateConf(dataDir, corpusID string) *CorpusSetup {
	files, err := os.ReadDir(dataDir)
	if err != nil {
		log.Error().Err(err).Str("corpus", corpusID).Msg("failed to autogenerate corpus config")
		return nil
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		id, format := splitDataFileName(f.Name())
		if format == "" || id != corpusID {
			continue
		}
		newConf := &CorpusSetup{
			ID:       corpusID,
			FullName: map[string]string{"en": corpusID},
			Format:   format,
			DataPath: filepath.Join(dataDir, f.Name()),
		}
		if err := newConf.ValidateAndDefaults(dataDir); err != nil {
			log.Error().Err(err).Str("corpus", corpusID).Msg("failed to validate corpus autoconfiguration; corpus won't be available")
			return nil
		}
		return newConf
	}
	log.Warn().Str("corpus", corpusID).Msg("no data file found for corpus autoconfiguration")
	return nil
}
