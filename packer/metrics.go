// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "github.com/vechain/statecore/metrics"

var (
	metricTxApplied          = metrics.LazyLoadCounterVec("packer_tx_applied_count", []string{"result"})
	metricHashesCalculations = metrics.LazyLoadCounterVec("packer_hashes_calculation_count", []string{"memoized"})
)
