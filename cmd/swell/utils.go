// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/lvldb"
)

// maxClockOffset is the local clock offset beyond which reprice time gates become unreliable.
const maxClockOffset = 5 * time.Second

func initLogger(ctx *cli.Context) {
	verbosity := int(ctx.Uint64(verbosityFlag.Name))
	log.SetDefault(log.NewHandler(os.Stderr, verbosity, ctx.Bool(jsonLogsFlag.Name)))
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// selectGenesis returns the genesis named by the config flag, or the devnet genesis.
func selectGenesis(ctx *cli.Context) (*genesis.Genesis, uint64, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		cfg := genesis.DevnetConfig()
		return genesis.NewDevnet(), cfg.LaunchTime, nil
	}
	cfg, err := genesis.LoadConfig(path)
	if err != nil {
		return nil, 0, err
	}
	gene, err := genesis.NewCustomNet(cfg)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "build genesis")
	}
	return gene, cfg.LaunchTime, nil
}

type databases struct {
	main *lvldb.LevelDB
	log  *logdb.LogDB
	dir  string
}

func (d *databases) Close() {
	logger.Info("closing log database...")
	if err := d.log.Close(); err != nil {
		logger.Warn("close log database", "err", err)
	}
	logger.Info("closing main database...")
	if err := d.main.Close(); err != nil {
		logger.Warn("close main database", "err", err)
	}
}

func openDatabases(ctx *cli.Context, gene *genesis.Genesis) (*databases, error) {
	if !ctx.Bool(persistFlag.Name) {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return nil, errors.Wrap(err, "open main database")
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			mainDB.Close()
			return nil, errors.Wrap(err, "open log database")
		}
		return &databases{mainDB, logDB, "Memory"}, nil
	}

	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return nil, err
	}
	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(instanceDir, "logs.db")
	logDB, err := logdb.New(dir)
	if err != nil {
		mainDB.Close()
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return &databases{mainDB, logDB, instanceDir}, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	id := gene.ID()
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// go-ethereum stuff
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := max(20, min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

// watchClockOffset warns while the local clock drifts from the NTP server.
func watchClockOffset(ctx context.Context, server string) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		checkClockOffset(server)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func printStartupMessage(gene *genesis.Genesis, dataDir, apiURL, metricsURL string) {
	metricsInfo := "Disabled"
	if metricsURL != "" {
		metricsInfo = metricsURL
	}
	id := gene.ID()
	fmt.Printf(`Starting %v
    Network      [ %v %x ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		fmt.Sprintf("Swell/v%s/%s/%s", fullVersion(), runtime.GOOS, runtime.Version()),
		gene.Name(), id[24:],
		dataDir,
		apiURL,
		metricsInfo)
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.swell")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.swell")
		default:
			return filepath.Join(home, ".org.vechain.swell")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
