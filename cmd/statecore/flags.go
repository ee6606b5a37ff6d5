// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML config file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory of the cache storage, overrides the config",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (trace, debug, info, warn, error, crit), overrides the config",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log-format",
		Usage: "log format (auto, json, logfmt), overrides the config",
	}
	importanceFlag = cli.Uint64Flag{
		Name:  "importance",
		Value: 1_000_000,
		Usage: "signer importance to evaluate",
	}
	feeFlag = cli.Uint64Flag{
		Name:  "fee",
		Usage: "max fee of the evaluated transaction",
	}
	stepsFlag = cli.IntFlag{
		Name:  "steps",
		Value: 10,
		Usage: "number of cache sizes to evaluate",
	}
)
