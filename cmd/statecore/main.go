// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/statecore/builtin"
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/config"
	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/storage"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/txpool"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	return &cli.App{
		Version: fullVersion(),
		Name:    "statecore",
		Usage:   "Inspect and seed the catapult state cache",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			verbosityFlag,
			logFormatFlag,
		},
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "seed an empty data dir with the nemesis balances",
				Action: initAction,
			},
			{
				Name:   "inspect",
				Usage:  "load the data dir and print its height and state hash",
				Action: inspectAction,
			},
			{
				Name:   "throttle",
				Usage:  "print the spam throttle quota over the cache fill range",
				Flags:  []cli.Flag{importanceFlag, feeFlag, stepsFlag},
				Action: throttleAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies the global flag overrides and sets up logging.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if dir := ctx.GlobalString(dataDirFlag.Name); dir != "" {
		cfg.Cache.DataDir = dir
	}
	if v := ctx.GlobalString(verbosityFlag.Name); v != "" {
		cfg.Log.Level = v
	}
	if f := ctx.GlobalString(logFormatFlag.Name); f != "" {
		cfg.Log.Format = f
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := initLogger(os.Stderr, cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(w io.Writer, c config.Log) error {
	lvl, ok := log.ParseLevel(c.Level)
	if !ok {
		return errors.Errorf("-%s: unknown level %q", verbosityFlag.Name, c.Level)
	}
	var level slog.LevelVar
	level.Set(lvl)

	useLogfmt := c.Format == "logfmt"
	if c.Format == "auto" {
		if f, ok := w.(*os.File); ok {
			useLogfmt = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	var handler slog.Handler
	if useLogfmt {
		handler = log.LogfmtHandlerWithLevel(w, &level)
	} else {
		handler = log.JSONHandlerWithLevel(w, &level)
	}
	log.SetDefault(log.NewLogger(handler))
	return nil
}

// openCache opens the storage under the data dir and builds the cache with the builtin plugins.
func openCache(cfg *config.Config) (*cache.Cache, *builtin.Plugins, *storage.Store, error) {
	dir := filepath.Join(cfg.Cache.DataDir, "cache")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, nil, errors.Wrap(err, "create data dir")
	}
	store, err := storage.Open(dir, cfg.StorageOptions())
	if err != nil {
		return nil, nil, nil, err
	}
	b := cache.NewBuilder()
	if cfg.Cache.AllowHeightReset {
		b.AllowHeightReset()
	}
	plugins := builtin.Register(b, store, cfg.BuiltinOptions())
	c := b.Build()
	if err := c.LoadAll(context.Background()); err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return c, plugins, store, nil
}

func initAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	balances, err := cfg.NemesisBalances()
	if err != nil {
		return err
	}
	c, plugins, store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if c.Height() != 0 {
		return errors.Errorf("data dir already initialized at height %d", c.Height())
	}
	delta, err := c.CreateDelta(context.Background())
	if err != nil {
		return err
	}
	plugins.Seed(delta, balances)
	if err := c.Commit(1); err != nil {
		return err
	}
	if err := c.SaveAll(context.Background()); err != nil {
		return err
	}
	return printState(ctx.App.Writer, c)
}

func inspectAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	c, _, store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return printState(ctx.App.Writer, c)
}

func printState(w io.Writer, c *cache.Cache) error {
	view := c.CreateView()
	defer view.Close()

	info := view.CalculateStateHash()
	state := view.DependentState()
	fmt.Fprintf(w, "height:      %d\n", view.Height())
	fmt.Fprintf(w, "state hash:  %v\n", info.StateHash)
	fmt.Fprintf(w, "total txs:   %d\n", state.NumTotalTransactions)
	fmt.Fprintf(w, "last recalc: %d\n", state.LastRecalculationHeight)
	for i, root := range info.SubCacheMerkleRoots {
		fmt.Fprintf(w, "root %d:      %v\n", i, root)
	}
	return nil
}

func throttleAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	steps := ctx.Int(stepsFlag.Name)
	if steps <= 0 {
		return errors.Errorf("-%s: must be positive", stepsFlag.Name)
	}
	t := cfg.Throttle
	effective := txpool.EffectiveImportance(thor.Importance(ctx.Uint64(importanceFlag.Name)), thor.Amount(ctx.Uint64(feeFlag.Name)), t)

	w := ctx.App.Writer
	fmt.Fprintf(w, "effective importance: %d\n", effective)
	span := t.MaxCacheSize - t.MaxBlockSize
	for i := 0; i <= steps; i++ {
		size := t.MaxBlockSize + span*uint64(i)/uint64(steps)
		fmt.Fprintf(w, "cache size %-10d max txs %d\n", size, txpool.MaxTransactions(size, effective, t))
	}
	return nil
}
