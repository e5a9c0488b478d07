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
	"corpq/corpus"
	"corpq/cql"
	"corpq/monitoring"
	"corpq/rdb"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltServerReadTimeoutSecs  = 10
	dfltLanguage               = "en"
	dfltTimeZone               = "Europe/Prague"
	dfltJobTimeoutSecs         = 60
)

type LocaleConf struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

type LocalesConf []LocaleConf

func (conf LocalesConf) SupportsLocale(name string) bool {
	var elms []string
	if strings.Contains(name, "-") {
		elms = strings.Split(name, "-")

	} else if strings.Contains(name, "_") {
		elms = strings.Split(name, "_")

	} else {
		elms = []string{name}
	}
	for _, locConf := range conf {
		if locConf.Name == elms[0] {
			return true
		}
	}
	return false
}

func (conf LocalesConf) DefaultLocale() string {
	for _, v := range conf {
		if v.IsDefault {
			return v.Name
		}
	}
	return dfltLanguage
}

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string               `json:"listenAddress"`
	PublicURL              string               `json:"publicUrl"`
	ListenPort             int                  `json:"listenPort"`
	ServerReadTimeoutSecs  int                  `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                  `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string             `json:"corsAllowedOrigins"`
	CorporaSetup           *corpus.CorporaSetup `json:"corpora"`
	Redis                  *rdb.Conf            `json:"redis"`
	Logging                logging.LoggingConf  `json:"logging"`
	Locales                LocalesConf          `json:"locales"`
	TimeZone               string               `json:"timeZone"`
	AuthHeaderName         string               `json:"authHeaderName"`
	AuthTokens             []string             `json:"authTokens"`

	// JobTimeoutSecs limits processing time of a single worker job.
	// Concordance searches hitting the limit return partial results.
	JobTimeoutSecs int `json:"jobTimeoutSecs"`

	// RegexpCacheSize is the number of compiled regular expressions
	// kept by each worker
	RegexpCacheSize int `json:"regexpCacheSize"`

	// Monitoring is optional. If set, worker jobs are logged
	// into a TimescaleDB database.
	Monitoring *monitoring.Conf `json:"monitoring"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.Logging.Level.IsDebugMode()
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call c.Validate()
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

func (conf *Conf) JobTimeout() time.Duration {
	return time.Duration(conf.JobTimeoutSecs) * time.Second
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = sonic.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

// Validate checks the configuration and sets default values
// where needed. All the problems are reported via the returned
// error.
func (conf *Conf) Validate() error {
	if conf.ListenPort == 0 {
		return fmt.Errorf("missing `listenPort`")
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s:%d", conf.ListenAddress, conf.ListenPort)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}

	// check locales conf.
	if len(conf.Locales) == 0 {
		conf.Locales = []LocaleConf{{
			Name:      dfltLanguage,
			IsDefault: true,
		}}
		log.Warn().Msgf("language not specified, using default: %s", conf.Locales.DefaultLocale())

	} else if !conf.Locales.SupportsLocale(dfltLanguage) {
		log.Warn().Msgf("missing `en` locale - adding")
		conf.Locales = append(conf.Locales, LocaleConf{
			Name: dfltLanguage,
		})
	}
	var numDefaults int
	for _, v := range conf.Locales {
		if v.IsDefault {
			numDefaults++
		}
	}
	if numDefaults != 1 {
		return fmt.Errorf("exactly one locale must be set as default")
	}

	if err := conf.CorporaSetup.ValidateAndDefaults("corpora"); err != nil {
		return err
	}
	if err := conf.Redis.ValidateAndDefaults(); err != nil {
		return err
	}
	if conf.JobTimeoutSecs <= 0 {
		conf.JobTimeoutSecs = dfltJobTimeoutSecs
		log.Warn().
			Int("value", conf.JobTimeoutSecs).
			Msg("jobTimeoutSecs not specified, using default")
	}
	if conf.JobTimeoutSecs > conf.Redis.QueryTimeoutSecs {
		log.Warn().
			Int("jobTimeoutSecs", conf.JobTimeoutSecs).
			Int("queryTimeoutSecs", conf.Redis.QueryTimeoutSecs).
			Msg("job timeout is longer than the API wait timeout, partial results may be lost")
	}
	if conf.RegexpCacheSize <= 0 {
		conf.RegexpCacheSize = cql.DfltRegexpCacheSize
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	if len(conf.AuthTokens) > 0 && conf.AuthHeaderName == "" {
		return fmt.Errorf("`authTokens` set but `authHeaderName` missing")
	}
	return nil
}

func ValidateAndDefaults(conf *Conf) {
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
}
