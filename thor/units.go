// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "strconv"

// Height is the position of a block in the ledger. It only ever grows through cache commits.
type Height uint64

// Next returns the following height.
func (h Height) Next() Height { return h + 1 }

func (h Height) String() string { return strconv.FormatUint(uint64(h), 10) }

// Timestamp milliseconds since network epoch.
type Timestamp uint64

// Amount quantity of the native currency, e.g. a transaction fee.
type Amount uint64

// Importance weight of an account, used for harvesting eligibility and spam throttling.
type Importance uint64
