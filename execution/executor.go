// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"github.com/vechain/statecore/cache"
	"github.com/vechain/statecore/log"
	"github.com/vechain/statecore/metrics"
	"github.com/vechain/statecore/thor"
)

var (
	logger = log.WithContext("pkg", "execution")

	metricEntitiesProcessed = metrics.LazyLoadCounterVec("entities_processed_count", []string{"result"})
	metricBlocksProcessed   = metrics.LazyLoadCounterVec("blocks_processed_count", []string{"result"})
	metricBlockDuration     = metrics.LazyLoadHistogram("block_processing_duration_ms", metrics.BucketExecution)
)

func resultLabel(r Result) map[string]string {
	switch r.Severity() {
	case SeveritySuccess:
		return map[string]string{"result": "success"}
	case SeverityNeutral:
		return map[string]string{"result": "neutral"}
	default:
		return map[string]string{"result": "failure"}
	}
}

// EntityExecutor executes entities one by one against a delta, each of them undoable.
type EntityExecutor struct {
	cfg  *Config
	vctx *ValidatorContext
	octx *ObserverContext
}

// NewEntityExecutor creates an executor applying entities at height.
// receipts may be nil, otherwise the caller keeps its source up to date.
func NewEntityExecutor(cfg *Config, delta *cache.Delta, height thor.Height, blockTime thor.Timestamp, receipts *ReceiptBuilder) *EntityExecutor {
	vctx, octx := cfg.NewContexts(delta, height, blockTime, receipts)
	return &EntityExecutor{cfg: cfg, vctx: vctx, octx: octx}
}

// Execute publishes info and processes its notifications. On anything but success the
// entity is undone before returning and undo is nil. On success undo rolls the entity back.
func (e *EntityExecutor) Execute(info EntityInfo) (result Result, undo func()) {
	sub := NewProcessingSubscriber(e.cfg, e.vctx, e.octx, true)
	result = Process(sub, e.cfg.Publisher.Publish(info))
	metricEntitiesProcessed().AddWithLabel(1, resultLabel(result))
	if !result.IsSuccess() {
		sub.Undo()
		return result, nil
	}
	return result, sub.Undo
}

// Height returns the height entities are executed at.
func (e *EntityExecutor) Height() thor.Height { return e.vctx.Height }
