// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package txpool

import "github.com/vechain/statecore/metrics"

var (
	metricPoolSize     = metrics.LazyLoadGauge("txpool_current_tx_count")
	metricTxRejected   = metrics.LazyLoadCounterVec("txpool_rejected_tx_count", []string{"source", "reason"})
	metricUpdateTiming = metrics.LazyLoadHistogram("txpool_update_duration_ms", metrics.BucketExecution)
)
