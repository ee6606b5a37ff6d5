// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/execution"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

const (
	EntityNotificationType execution.NotificationType = iota + 1
	TransactionNotificationType
	FeeNotificationType
	BalanceTransferNotificationType
	BlockNotificationType
)

// EntityNotification is published first for every entity.
type EntityNotification struct {
	Signer thor.Address
}

func (EntityNotification) Type() execution.NotificationType { return EntityNotificationType }

// TransactionNotification registers a transaction hash until its deadline.
type TransactionNotification struct {
	Signer   thor.Address
	Hash     thor.Bytes32
	Deadline thor.Timestamp
}

func (TransactionNotification) Type() execution.NotificationType { return TransactionNotificationType }

// FeeNotification burns a fee from the payer.
type FeeNotification struct {
	Payer thor.Address
	Fee   thor.Amount
}

func (FeeNotification) Type() execution.NotificationType { return FeeNotificationType }

// BalanceTransferNotification moves an amount between accounts.
type BalanceTransferNotification struct {
	Sender    thor.Address
	Recipient thor.Address
	Amount    thor.Amount
}

func (BalanceTransferNotification) Type() execution.NotificationType {
	return BalanceTransferNotificationType
}

// BlockNotification rewards the harvester and records block statistics.
// It carries nothing derived from the block hash, which depends on the state hash.
type BlockNotification struct {
	Harvester       thor.Address
	Timestamp       thor.Timestamp
	NumTransactions uint64
}

func (BlockNotification) Type() execution.NotificationType { return BlockNotificationType }

// Publisher decomposes transactions and blocks into notifications.
type Publisher struct{}

// Publish implements execution.NotificationPublisher.
func (Publisher) Publish(info execution.EntityInfo) []execution.Notification {
	switch e := info.Entity.(type) {
	case *tx.Transaction:
		return []execution.Notification{
			EntityNotification{Signer: e.Signer()},
			TransactionNotification{Signer: e.Signer(), Hash: info.Hash, Deadline: e.Deadline()},
			FeeNotification{Payer: e.Signer(), Fee: e.Fee()},
			BalanceTransferNotification{Sender: e.Signer(), Recipient: e.Recipient(), Amount: e.Amount()},
		}
	case *block.Block:
		header := e.Header()
		return []execution.Notification{
			EntityNotification{Signer: header.Signer()},
			BlockNotification{
				Harvester:       header.Signer(),
				Timestamp:       header.Timestamp(),
				NumTransactions: uint64(len(e.Transactions())),
			},
		}
	default:
		panic("builtin: unknown entity type")
	}
}
