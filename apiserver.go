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

package main

import (
	"context"
	"corpq/cnf"
	corpusActions "corpq/corpus/handlers"
	"corpq/cql"
	"corpq/monitoring"
	monitoringActions "corpq/monitoring/handlers"
	"corpq/openapi"
	"corpq/rdb"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type serverInfoResponse struct {
	Name       string      `json:"name"`
	Version    VersionInfo `json:"version"`
	PublicURL  string      `json:"publicUrl"`
	NumCorpora int         `json:"numCorpora"`
}

func mkServerInfo(conf *cnf.Conf, version VersionInfo) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			serverInfoResponse{
				Name:       "CORPQ - corpus query and statistics server",
				Version:    version,
				PublicURL:  conf.PublicURL,
				NumCorpora: len(conf.CorporaSetup.GetAllCorpora("")),
			},
		)
	}
}

type apiServer struct {
	server      *http.Server
	conf        *cnf.Conf
	version     VersionInfo
	radapter    *rdb.Adapter
	jobLogger   *monitoring.WorkerJobLogger
	regexpCache *cql.RegexpCache
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(CORSMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	ceActions := corpusActions.NewActions(
		api.conf.CorporaSetup, api.radapter, api.conf.Locales, api.regexpCache)

	engine.GET("/", mkServerInfo(api.conf, api.version))

	openapi.RegisterSwaggerDoc(api.version.Version, api.conf.PublicURL)
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.GET("/openapi", openapi.MkHandleRequest(api.conf, api.version.Version))

	engine.GET(
		"/info/:corpusId", ceActions.CorpusInfo)

	engine.GET(
		"/corplist", ceActions.Corplist)

	engine.GET(
		"/concordance/:corpusId", ceActions.Concordance)

	engine.GET(
		"/freqs/:corpusId", ceActions.FreqDistrib)

	engine.GET(
		"/ngrams/:corpusId", ceActions.Ngrams)

	engine.GET(
		"/collocations/:corpusId", ceActions.Collocations)

	engine.GET(
		"/bigrams/:corpusId", ceActions.Bigrams)

	engine.GET(
		"/zipf/:corpusId", ceActions.Zipf)

	engine.GET(
		"/deps/:corpusId/deprel/:deprel", ceActions.DepsDeprel)

	engine.GET(
		"/deps/:corpusId/features", ceActions.DepsFeatures)

	engine.GET(
		"/deps/:corpusId/pairs", ceActions.DepsPairs)

	engine.GET(
		"/deps/:corpusId/pattern", ceActions.DepsPattern)

	engine.GET(
		"/deps/:corpusId/tree/:docId/:sentId", ceActions.DepsTree)

	engine.GET(
		"/deps/:corpusId/stats", ceActions.DepsStats)

	engine.GET(
		"/query/validate", ceActions.ValidateQuery)

	engine.GET(
		"/query/describe", ceActions.DescribeQuery)

	monActions := monitoringActions.NewActions(api.jobLogger)
	protected := engine.Group("/monitoring").Use(AuthRequired(api.conf))

	protected.GET(
		"/workers-load", monActions.WorkersLoad)

	protected.GET(
		"/workers-load/:workerId", monActions.SingleWorkerLoad)

	protected.GET(
		"/recent-records", monActions.RecentRecords)

	protected.GET(
		"/func-stats", monActions.FuncStats)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (s *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down CORPQ HTTP API server")
	return s.server.Shutdown(ctx)
}

func runApiServer(
	conf *cnf.Conf,
	version VersionInfo,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	err := radapter.TestConnection(redisConnectionTestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}

	regexpCache, err := cql.NewRegexpCache(conf.RegexpCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize regexp cache")
		return
	}

	services := make([]service, 0, 3)
	var statusWriter monitoring.StatusWriter
	if conf.Monitoring != nil {
		tsWriter, err := monitoring.NewTimescaleDBWriter(
			ctx,
			conf.Monitoring.DB,
			conf.TimezoneLocation(),
			func(err error) {
				log.Error().Err(err).Msg("failed to write job log to TimescaleDB")
			},
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize monitoring database writer")
			return
		}
		statusWriter = tsWriter
		services = append(services, tsWriter)

	} else {
		log.Warn().Msg("monitoring database not configured, job logs will be kept in memory only")
	}
	jobLogger := monitoring.NewWorkerJobLogger(statusWriter, conf.TimezoneLocation())
	radapter.SetJobLogger(jobLogger)
	services = append(services, jobLogger)

	server := &apiServer{
		conf:        conf,
		version:     version,
		radapter:    radapter,
		jobLogger:   jobLogger,
		regexpCache: regexpCache,
	}
	services = append(services, server)
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
