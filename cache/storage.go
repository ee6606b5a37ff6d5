// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/statecore/thor"
)

// Storage persists the full committed content of one sub-cache.
type Storage interface {
	Name() string
	// SaveAll writes the sub-cache content visible through view.
	SaveAll(ctx context.Context, view *View) error
	// LoadAll fills the committed sub-cache and returns the height it was saved at.
	LoadAll(ctx context.Context) (thor.Height, error)
}

// ChangesStorage persists the staged changes of one sub-cache.
type ChangesStorage interface {
	Name() string
	SaveChanges(ctx context.Context, delta *Delta, height thor.Height) error
}

// StateStorage persists the committed dependent state next to the sub-caches.
type StateStorage interface {
	SaveState(ctx context.Context, state DependentState, height thor.Height) error
	// LoadState returns the stored state and its height, ok is false when nothing was saved.
	LoadState(ctx context.Context) (state DependentState, height thor.Height, ok bool, err error)
}

// Storages returns the attached storages in attach order.
func (c *Cache) Storages() []Storage {
	return append([]Storage(nil), c.storages...)
}

// ChangesStorages returns the attached changes storages in attach order.
func (c *Cache) ChangesStorages() []ChangesStorage {
	return append([]ChangesStorage(nil), c.changesStorages...)
}

// SaveAll writes the committed state through every storage concurrently.
func (c *Cache) SaveAll(ctx context.Context) error {
	view := c.CreateView()
	defer view.Close()

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range c.storages {
		g.Go(func() error {
			return errors.Wrapf(s.SaveAll(ctx, view), "save %v", s.Name())
		})
	}
	if c.stateStorage != nil {
		g.Go(func() error {
			return errors.Wrap(c.stateStorage.SaveState(ctx, view.DependentState(), view.Height()), "save dependent state")
		})
	}
	return g.Wait()
}

// LoadAll fills every sub-cache from its storage and adopts the stored height.
// It must not race with an outstanding delta.
func (c *Cache) LoadAll(ctx context.Context) error {
	if len(c.storages) == 0 {
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()

	heights := make([]thor.Height, len(c.storages))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range c.storages {
		g.Go(func() (err error) {
			heights[i], err = s.LoadAll(gctx)
			return errors.Wrapf(err, "load %v", s.Name())
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, h := range heights[1:] {
		if h != heights[0] {
			return errors.Wrapf(ErrInconsistentStorageHeights, "%v", heights)
		}
	}
	var state DependentState
	if c.stateStorage != nil {
		stored, height, ok, err := c.stateStorage.LoadState(ctx)
		if err != nil {
			return errors.Wrap(err, "load dependent state")
		}
		if ok {
			if height != heights[0] {
				return errors.Wrapf(ErrInconsistentStorageHeights, "dependent state at %v, sub-caches at %v", height, heights[0])
			}
			state = stored
		}
	}
	c.dependentState = state
	c.height.Store(uint64(heights[0]))
	c.epoch.Add(1)
	logger.Info("cache loaded", "height", heights[0], "storages", len(c.storages))
	return nil
}

// SaveChanges writes the staged changes of delta through every changes storage concurrently.
func (c *Cache) SaveChanges(ctx context.Context, delta *Delta, height thor.Height) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range c.changesStorages {
		g.Go(func() error {
			return errors.Wrapf(s.SaveChanges(ctx, delta, height), "save changes %v", s.Name())
		})
	}
	if c.stateStorage != nil {
		state := *delta.DependentState()
		g.Go(func() error {
			return errors.Wrap(c.stateStorage.SaveState(ctx, state, height), "save dependent state")
		})
	}
	return g.Wait()
}
