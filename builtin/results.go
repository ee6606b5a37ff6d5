// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import "github.com/vechain/statecore/execution"

var (
	FailureCorePastDeadline         = execution.DefineResult("Failure_Core_Past_Deadline", execution.SeverityFailure, execution.FacilityCore, 1)
	FailureCoreFutureDeadline       = execution.DefineResult("Failure_Core_Future_Deadline", execution.SeverityFailure, execution.FacilityCore, 2)
	FailureCoreInsufficientBalance  = execution.DefineResult("Failure_Core_Insufficient_Balance", execution.SeverityFailure, execution.FacilityCore, 3)
	FailureCoreInsufficientFee      = execution.DefineResult("Failure_Core_Insufficient_Fee", execution.SeverityFailure, execution.FacilityCore, 4)
	FailureCoreSelfTransfer         = execution.DefineResult("Failure_Core_Self_Transfer", execution.SeverityFailure, execution.FacilityCore, 5)
	FailureCoreZeroSigner           = execution.DefineResult("Failure_Core_Zero_Signer", execution.SeverityFailure, execution.FacilityCore, 6)
	FailureCoreDuplicateTransaction = execution.DefineResult("Failure_Core_Duplicate_Transaction", execution.SeverityFailure, execution.FacilityCore, 7)

	// NeutralCoreEmptyTransfer marks a transfer of zero, which is not worth a slot.
	NeutralCoreEmptyTransfer = execution.DefineResult("Neutral_Core_Empty_Transfer", execution.SeverityNeutral, execution.FacilityCore, 8)
)
