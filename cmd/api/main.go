//
// Copyright 2025 SoroSave Protocol Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package main

import (
	"net/http"

	echoPrometheus "github.com/globocom/echo-prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sorosave-protocol/contracts/configuration"
	"github.com/sorosave-protocol/contracts/internal/app/api"
	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/contract"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/postgres"
	"github.com/sorosave-protocol/contracts/internal/dbconn"
	"github.com/sorosave-protocol/contracts/observability"
)

func main() {
	cfg := configuration.Load()
	obs := observability.Make(cfg)
	log := obs.Log()

	db, err := dbconn.ConnectAndCheck(cfg.DB, log)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	store := postgres.NewStore(obs, db)
	c := contract.New(obs, store, api.SignerAuthorizer{}, &rosca.DefaultClock{})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(echoPrometheus.MetricsMiddleware())
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(obs.Metrics(), promhttp.HandlerOpts{})))
	e.GET("/healthcheck", func(ctx echo.Context) error {
		if _, err := db.Exec("select 1"); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, api.NewSingleMessageError("db unavailable"))
		}
		return ctx.String(http.StatusOK, "OK")
	})

	server := api.NewServer(c, log, cfg.API.GroupCacheSize)
	api.RegisterHandlers(e, server)

	e.Logger.Fatal(e.Start(cfg.API.Listen))
}
