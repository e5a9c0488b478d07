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
	"strings"
	"sync"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

const (
	DfltMaximumRecords     = 50
	DfltMaximumContextSize = 20
	DfltContextSize        = 5
	DfltIntegrityPolicy    = IntegritySkip
)

// CorporaSetup defines a root configuration of corpora
type CorporaSetup struct {

	// DataDir is a directory containing token store files
	// (`*.jsonl` or `*.sqlite`). Relative `dataPath` values
	// of individual corpora are resolved against it.
	DataDir string `json:"dataDir"`

	// ConfFilesDir is an optional directory with per-corpus
	// JSON configuration files
	ConfFilesDir    string    `json:"confFilesDir"`
	Resources       Resources `json:"resources"`
	ZeroConfCorpora bool      `json:"zeroConfCorpora"`

	// IntegrityPolicy specifies how to treat sentences violating
	// structural invariants (`skip` or `fail`)
	IntegrityPolicy IntegrityPolicy `json:"integrityPolicy"`

	// Parallelism limits the number of documents searched
	// concurrently within a single query
	Parallelism int `json:"parallelism"`

	autoConfCache map[string]*CorpusSetup
	autoConfLock  sync.Mutex
}

// GetCorp returns a corpus configuration.
// If zeroConfCorpora is enabled, a missing configuration
// is inferred from files found in the data directory.
func (cs *CorporaSetup) GetCorp(corpusID string) *CorpusSetup {
	if c := cs.Resources.Get(corpusID); c != nil {
		return c
	}
	if !cs.ZeroConfCorpora {
		return nil
	}
	cs.autoConfLock.Lock()
	defer cs.autoConfLock.Unlock()
	if cs.autoConfCache == nil {
		cs.autoConfCache = make(map[string]*CorpusSetup)
	}
	autoConf, ok := cs.autoConfCache[corpusID]
	if ok {
		return autoConf
	}
	autoConf = AutogenerateConf(cs.DataDir, corpusID)
	if autoConf != nil {
		cs.autoConfCache[corpusID] = autoConf
	}
	return autoConf
}

func (cs *CorporaSetup) GetAllCorpora(substrFilter string) []*CorpusSetup {
	ans := make([]*CorpusSetup, 0, len(cs.Resources))
	known := make(map[string]bool)
	for _, v := range cs.Resources {
		known[v.ID] = true
		if substrFilter == "" || strings.Contains(strings.ToLower(v.ID), strings.ToLower(substrFilter)) {
			ans = append(ans, v)
		}
	}
	if !cs.ZeroConfCorpora {
		return ans
	}
	files, err := os.ReadDir(cs.DataDir)
	if err != nil {
		log.Error().Err(err).Str("dataDir", cs.DataDir).Msg("failed to list data directory")
		return ans
	}
	for _, f := range files {
		corpusID, format := splitDataFileName(f.Name())
		if format == "" || known[corpusID] {
			continue
		}
		if substrFilter == "" || strings.Contains(strings.ToLower(corpusID), strings.ToLower(substrFilter)) {
			if item := cs.GetCorp(corpusID); item != nil {
				ans = append(ans, item)
			}
		}
	}
	return ans
}

func (cs *CorporaSetup) ValidateAndDefaults(confContext string) error {
	if cs == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if cs.DataDir == "" {
		return fmt.Errorf("missing `%s.dataDir`", confContext)
	}
	isDir, err := fs.IsDir(cs.DataDir)
	if err != nil {
		return fmt.Errorf("failed to test `%s.dataDir`: %w", confContext, err)
	}
	if !isDir {
		return fmt.Errorf("`%s.dataDir` is not a directory", confContext)
	}
	if cs.ConfFilesDir != "" {
		if err := cs.Resources.Load(cs.ConfFilesDir); err != nil {
			return fmt.Errorf("failed to process `%s.confFilesDir`: %w", confContext, err)
		}
	}
	if cs.IntegrityPolicy == "" {
		cs.IntegrityPolicy = DfltIntegrityPolicy
		log.Warn().
			Str("value", string(cs.IntegrityPolicy)).
			Msgf("`%s.integrityPolicy` not set, using default", confContext)
	}
	if err := cs.IntegrityPolicy.Validate(); err != nil {
		return fmt.Errorf("failed to validate `%s.integrityPolicy`: %w", confContext, err)
	}
	if cs.Parallelism <= 0 {
		cs.Parallelism = 4
		log.Warn().
			Int("value", cs.Parallelism).
			Msgf("`%s.parallelism` not set, using default", confContext)
	}
	for _, v := range cs.Resources {
		if err := v.ValidateAndDefaults(cs.DataDir); err != nil {
			return fmt.Errorf("invalid corpus `%s`: %w", v.ID, err)
		}
	}
	return nil
}
