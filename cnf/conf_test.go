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

package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportsLocale(t *testing.T) {
	locales := LocalesConf{{Name: "en", IsDefault: true}, {Name: "tr"}}
	assert.True(t, locales.SupportsLocale("tr"))
	assert.True(t, locales.SupportsLocale("tr-TR"))
	assert.True(t, locales.SupportsLocale("en_US"))
	assert.False(t, locales.SupportsLocale("cs"))
	assert.Equal(t, "en", locales.DefaultLocale())
	assert.Equal(t, "en", LocalesConf{}.DefaultLocale())
}

func writeConf(t *testing.T, data string) string {
	confPath := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(confPath, []byte(data), 0644))
	return confPath
}

func TestLoadAndValidate(t *testing.T) {
	dataDir := t.TempDir()
	confPath := writeConf(t, `{
		"listenAddress": "127.0.0.1",
		"listenPort": 8989,
		"corpora": {"dataDir": "`+dataDir+`", "zeroConfCorpora": true},
		"redis": {"host": "localhost"},
		"timeZone": "UTC",
		"logging": {"level": "debug"}
	}`)
	conf := LoadConfig(confPath)
	require.NoError(t, conf.Validate())
	assert.Equal(t, confPath, conf.GetSourcePath())
	assert.Equal(t, "http://127.0.0.1:8989", conf.PublicURL)
	assert.Equal(t, dfltJobTimeoutSecs, conf.JobTimeoutSecs)
	assert.Equal(t, 6379, conf.Redis.Port)
	assert.Equal(t, "en", conf.Locales.DefaultLocale())
	assert.Equal(t, dfltServerReadTimeoutSecs, conf.ServerReadTimeoutSecs)
	assert.True(t, conf.RegexpCacheSize > 0)
	assert.True(t, conf.IsDebugMode())
	assert.Nil(t, conf.Monitoring)
}

func TestValidateErrors(t *testing.T) {
	dataDir := t.TempDir()
	tests := []string{
		`{"corpora": {"dataDir": "` + dataDir + `"}, "redis": {"host": "localhost"}, "timeZone": "UTC"}`,
		`{"listenPort": 8989, "redis": {"host": "localhost"}, "timeZone": "UTC"}`,
		`{"listenPort": 8989, "corpora": {"dataDir": "` + dataDir + `"}, "timeZone": "UTC"}`,
		`{"listenPort": 8989, "corpora": {"dataDir": "` + dataDir + `"}, "redis": {"host": "localhost"}, "timeZone": "Nowhere/Atlantis"}`,
		`{"listenPort": 8989, "corpora": {"dataDir": "` + dataDir + `"}, "redis": {"host": "localhost"}, "timeZone": "UTC", "authTokens": ["abc"]}`,
		`{"listenPort": 8989, "corpora": {"dataDir": "` + dataDir + `"}, "redis": {"host": "localhost"}, "timeZone": "UTC", "locales": [{"name": "en"}, {"name": "tr"}]}`,
	}
	for _, tc := range tests {
		conf := LoadConfig(writeConf(t, tc))
		assert.Error(t, conf.Validate(), tc)
	}
}
