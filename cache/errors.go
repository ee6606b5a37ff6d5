// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoOutstandingDelta is returned by Commit when no delta holds the write permit.
	ErrNoOutstandingDelta = errors.New("no outstanding delta")
	// ErrHeightNotIncreasing is returned by Commit for a height not above the current one.
	ErrHeightNotIncreasing = errors.New("commit height not increasing")
	// ErrInconsistentStorageHeights is returned by LoadAll when storages disagree.
	ErrInconsistentStorageHeights = errors.New("inconsistent storage heights")
)

// IsHeightNotIncreasing reports whether err is a rejected commit height.
func IsHeightNotIncreasing(err error) bool {
	return errors.Cause(err) == ErrHeightNotIncreasing
}
