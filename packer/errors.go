// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"github.com/pkg/errors"

	"github.com/vechain/statecore/execution"
)

var (
	errKnownTx   = errors.New("known tx")
	errCommitted = errors.New("facade already committed")
)

// IsKnownTx the tx was applied to the candidate block already.
func IsKnownTx(err error) bool {
	return errors.Cause(err) == errKnownTx
}

// IsRejectedTx the tx did not pass execution.
func IsRejectedTx(err error) bool {
	_, ok := errors.Cause(err).(rejectedTxError)
	return ok
}

// RejectionResult returns the execution result of a rejected tx.
func RejectionResult(err error) (execution.Result, bool) {
	if e, ok := errors.Cause(err).(rejectedTxError); ok {
		return e.result, true
	}
	return 0, false
}

type rejectedTxError struct {
	result execution.Result
}

func (e rejectedTxError) Error() string {
	return "rejected tx: " + e.result.String()
}
