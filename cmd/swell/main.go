// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/swell/api"
	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/cmd/swell/httpserver"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/metrics"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Swell",
		Usage:     "Liquid staking ledger node",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	gene, launchTime, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	dbs, err := openDatabases(ctx, gene)
	if err != nil {
		return err
	}
	defer dbs.Close()

	if err := bootstrap(gene, dbs.main, dbs.log); err != nil {
		return err
	}
	newestSeq, err := dbs.log.NewestSeq()
	if err != nil {
		return errors.Wrap(err, "read newest seq")
	}

	rt := runtime.New(state.New(dbs.main), ledgerClock(launchTime))
	rt.SetSeq(newestSeq)
	rt.AddSink(dbs.log)
	if metricsEnabled {
		rt.AddSink(builtin.NewMetricsSink())
	}

	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, subs := api.New(rt, dbs.log, api.Options{
		ChainTag:             gene.ID()[31],
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        metricsEnabled,
	})
	rt.AddSink(subs)
	defer func() { logger.Info("closing subscriptions..."); subs.Close() }()

	group, groupCtx := errgroup.WithContext(exitSignal)

	apiURL, err := httpserver.StartAPIServer(groupCtx, group, ctx.String(apiAddrFlag.Name), handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)
	if err != nil {
		return err
	}
	metricsURL := ""
	if metricsEnabled {
		if metricsURL, err = httpserver.StartMetricsServer(groupCtx, group, ctx.String(metricsAddrFlag.Name)); err != nil {
			return err
		}
	}

	if server := ctx.String(ntpServerFlag.Name); server != "" {
		group.Go(func() error {
			watchClockOffset(groupCtx, server)
			return nil
		})
	}

	printStartupMessage(gene, dbs.dir, apiURL, metricsURL)

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ledgerClock drives the ledger from the wall clock, never reporting a time before launch.
func ledgerClock(launchTime uint64) swell.Clock {
	return launchClock{launchTime}
}

type launchClock struct {
	launchTime uint64
}

func (c launchClock) Now() uint64 {
	return max(swell.SystemClock{}.Now(), c.launchTime)
}
