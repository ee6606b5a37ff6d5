// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package execution

import (
	"github.com/vechain/statecore/block"
	"github.com/vechain/statecore/thor"
	"github.com/vechain/statecore/tx"
)

// NotificationType identifies the kind of a notification.
type NotificationType uint32

// Notification is an atomic typed fact derived from an entity.
type Notification interface {
	Type() NotificationType
}

// Entity is a transaction or a block.
type Entity interface {
	Hash() thor.Bytes32
}

// EntityInfo is an entity with its hash and, once confirmed, the header of its block.
type EntityInfo struct {
	Entity Entity
	Hash   thor.Bytes32
	Header *block.Header
}

// TransactionEntity wraps an unconfirmed tx.
func TransactionEntity(info tx.Info) EntityInfo {
	return EntityInfo{Entity: info.Tx, Hash: info.Hash}
}

// BlockEntities lists the entities of a block: every tx in order, then the block itself.
func BlockEntities(el *block.Element) []EntityInfo {
	header := el.Block.Header()
	infos := make([]EntityInfo, 0, len(el.Transactions)+1)
	for _, info := range el.Transactions {
		infos = append(infos, EntityInfo{Entity: info.Tx, Hash: info.Hash, Header: header})
	}
	return append(infos, EntityInfo{Entity: el.Block, Hash: el.Hash, Header: header})
}

// NotificationPublisher decomposes an entity into its ordered notifications.
type NotificationPublisher interface {
	Publish(info EntityInfo) []Notification
}

// PublisherFunc adapts a function to NotificationPublisher.
type PublisherFunc func(info EntityInfo) []Notification

func (f PublisherFunc) Publish(info EntityInfo) []Notification { return f(info) }
