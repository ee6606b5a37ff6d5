// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "github.com/vechain/statecore/thor"

// DependentState is a small set of scalars derived from sub-cache contents.
// The cache holds the committed copy, every Delta owns a private copy which replaces it on commit.
type DependentState struct {
	LastRecalculationHeight thor.Height
	LastFinalizedHeight     thor.Height
	NumTotalTransactions    uint64
}
