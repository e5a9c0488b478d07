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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"corpq/merror"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MsgNewQuery                = "newQuery"
	DefaultQueueKey            = "corpqQueue"
	DefaultResultChannelPrefix = "corpqResults"
	DefaultQueryChannel        = "corpqQueries"
	DefaultResultExpiration    = 10 * time.Minute
	connectionTestInterval     = 2 * time.Second
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// DecodeArgs unmarshals query arguments into a respective
// args type
func (q Query) DecodeArgs(v any) error {
	if err := sonic.Unmarshal(q.Args, v); err != nil {
		return merror.InputError{Msg: fmt.Sprintf("invalid arguments for %s: %s", q.Func, err)}
	}
	return nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.Unmarshal([]byte(q), &ans)
	return ans, err
}

// NewQuery creates a query for a worker function with
// the provided arguments
func NewQuery(fn string, args any) (Query, error) {
	data, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to serialize args of %s: %w", fn, err)
	}
	return Query{Func: fn, Args: data}, nil
}

type jobLogger interface {
	Log(rec JobLog)
}

// Adapter provides access to the Redis-based job queue
// for both the API server (publishing queries, waiting for
// results) and workers (dequeuing queries, publishing results).
type Adapter struct {
	ctx                 context.Context
	c                   *redis.Client
	conf                *Conf
	channelQuery        string
	channelResultPrefix string
	queueKey            string
	queryTimeout        time.Duration
	cachePath           string
	jobLogger           jobLogger
}

// TestConnection tries to ping the Redis server repeatedly
// until it succeeds or the timeout is reached.
func (a *Adapter) TestConnection(timeout time.Duration) error {
	tick := time.NewTicker(connectionTestInterval)
	defer tick.Stop()
	timeoutCh := time.After(timeout)
	for {
		err := a.c.Ping(a.ctx).Err()
		if err == nil {
			log.Info().Str("server", a.conf.ServerInfo()).Msg("Redis connection OK")
			return nil
		}
		log.Error().
			Err(err).
			Str("server", a.conf.ServerInfo()).
			Msg("failed to connect to Redis, will try again")
		select {
		case <-timeoutCh:
			return fmt.Errorf("failed to connect to the Redis server at %s", a.conf.ServerInfo())
		case <-a.ctx.Done():
			return a.ctx.Err()
		case <-tick.C:
		}
	}
}

func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

func (a *Adapter) mkErrorResult(query Query, err error) WorkerResult {
	ans := WorkerResult{Func: query.Func}
	ans.AttachValue(ErrorResult{Func: query.Func, Error: err})
	return ans
}

// PublishQuery publishes a new query and returns a channel
// which provides the result once a worker is done. In case
// no result arrives within the configured timeout, the channel
// provides a result with merror.TimeoutError.
func (a *Adapter) PublishQuery(query Query) (<-chan WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.channelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		RawJSON("args", query.Args).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	sub := a.c.Subscribe(a.ctx, query.Channel)
	// make sure the subscription is active before the query
	// can be processed
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, a.queueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, err
	}
	ans := make(chan WorkerResult, 1)

	go func() {
		defer close(ans)
		defer sub.Close()
		var result WorkerResult
		select {
		case item := <-sub.Channel():
			cmd := a.c.Get(a.ctx, item.Payload)
			if cmd.Err() != nil {
				result = a.mkErrorResult(query, merror.InternalError{Msg: cmd.Err().Error()})

			} else if err := sonic.Unmarshal([]byte(cmd.Val()), &result); err != nil {
				result = a.mkErrorResult(query, merror.InternalError{Msg: err.Error()})

			} else if a.jobLogger != nil {
				a.jobLogger.Log(result.ToJobLog())
			}
		case <-time.After(a.queryTimeout):
			result = a.mkErrorResult(
				query,
				merror.TimeoutError{
					Msg: fmt.Sprintf("no result for %s within %v", query.Func, a.queryTimeout)},
			)
		case <-a.ctx.Done():
			result = a.mkErrorResult(query, a.ctx.Err())
		}
		ans <- result
	}()
	return ans, a.c.Publish(a.ctx, a.channelQuery, MsgNewQuery).Err()
}

func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, a.queueKey)
	if errors.Is(cmd.Err(), redis.Nil) {
		return Query{}, ErrorEmptyQueue

	} else if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.Value.Type().String()).
		Msg("publishing result")
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := a.c.Set(a.ctx, channelName, string(data), DefaultResultExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

// Subscribe returns a channel of notifications about
// new queries
func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.channelQuery)
	return sub.Channel()
}

// SetJobLogger sets a logger receiving information about
// all the jobs finished by workers
func (a *Adapter) SetJobLogger(logger jobLogger) {
	a.jobLogger = logger
}

func NewAdapter(conf *Conf, ctx context.Context) *Adapter {
	ans := &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:                 ctx,
		conf:                conf,
		channelQuery:        conf.ChannelQuery,
		channelResultPrefix: conf.ChannelResultPrefix,
		queueKey:            conf.QueueKey,
		queryTimeout:        time.Duration(conf.QueryTimeoutSecs) * time.Second,
		cachePath:           conf.CachePath,
	}
	return ans
}
