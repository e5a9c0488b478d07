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

package rdb

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	dfltPort             = 6379
	dfltQueryTimeoutSecs = 60
)

type Conf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DB       int    `json:"db"`
	Password string `json:"password"`

	ChannelQuery        string `json:"channelQuery"`
	ChannelResultPrefix string `json:"channelResultPrefix"`
	QueueKey            string `json:"queueKey"`

	// QueryTimeoutSecs specifies how long an API handler waits
	// for a worker result
	QueryTimeoutSecs int `json:"queryTimeoutSecs"`

	// CachePath is an optional directory for caching
	// worker results
	CachePath string `json:"cachePath"`
}

func (conf *Conf) ServerInfo() string {
	return fmt.Sprintf("%s:%d/%d", conf.Host, conf.Port, conf.DB)
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf == nil {
		return fmt.Errorf("missing `redis` configuration section")
	}
	if conf.Host == "" {
		return fmt.Errorf("missing `redis.host`")
	}
	if conf.Port == 0 {
		conf.Port = dfltPort
		log.Warn().Int("value", conf.Port).Msg("`redis.port` not set, using default")
	}
	if conf.QueueKey == "" {
		conf.QueueKey = DefaultQueueKey
	}
	if conf.ChannelQuery == "" {
		conf.ChannelQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", conf.ChannelQuery).
			Msg("Redis channel for queries not specified, using default")
	}
	if conf.ChannelResultPrefix == "" {
		conf.ChannelResultPrefix = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", conf.ChannelResultPrefix).
			Msg("Redis channel for results not specified, using default")
	}
	if conf.QueryTimeoutSecs <= 0 {
		conf.QueryTimeoutSecs = dfltQueryTimeoutSecs
		log.Warn().
			Int("value", conf.QueryTimeoutSecs).
			Msg("`redis.queryTimeoutSecs` not set, using default")
	}
	return nil
}
