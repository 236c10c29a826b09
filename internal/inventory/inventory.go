// Package inventory resolves droplets and their snapshots against the live API.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/raoulx24/do-snapmanager/internal/naming"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

var ErrDropletNotFound = errors.New("droplet not found")

// Accessor reads the current inventory. It holds no state of its own;
// every call asks the API again.
type Accessor struct {
	client provider.Client
	scheme *naming.Scheme
}

func New(client provider.Client, scheme *naming.Scheme) *Accessor {
	return &Accessor{client: client, scheme: scheme}
}

// FindDroplet returns the droplet with exactly this name. When several
// droplets share the name the last one listed wins.
func (a *Accessor) FindDroplet(ctx context.Context, name string) (provider.Droplet, error) {
	droplets, err := a.client.ListDroplets(ctx)
	if err != nil {
		return provider.Droplet{}, fmt.Errorf("finding droplet %q: %w", name, err)
	}

	var (
		found provider.Droplet
		ok    bool
	)
	for _, d := range droplets {
		if d.Name != name {
			continue
		}
		found, ok = d, true
	}
	if !ok {
		return provider.Droplet{}, fmt.Errorf("%w: %q", ErrDropletNotFound, name)
	}
	return found, nil
}

// ListSnapshots resolves every snapshot of the droplet, newest first.
func (a *Accessor) ListSnapshots(ctx context.Context, d provider.Droplet) ([]provider.Snapshot, error) {
	snaps := make([]provider.Snapshot, 0, len(d.SnapshotIDs))
	for _, id := range d.SnapshotIDs {
		s, err := a.client.GetSnapshot(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots of %q: %w", d.Name, err)
		}
		snaps = append(snaps, s)
	}

	// Sort newest → oldest
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})

	return snaps, nil
}

// ListManagedSnapshots is ListSnapshots restricted to the snapshots carrying
// the droplet's naming prefix.
func (a *Accessor) ListManagedSnapshots(ctx context.Context, d provider.Droplet) ([]provider.Snapshot, error) {
	snaps, err := a.ListSnapshots(ctx, d)
	if err != nil {
		return nil, err
	}

	managed := snaps[:0]
	for _, s := range snaps {
		if a.scheme.IsManaged(s.Name, d.Name) {
			managed = append(managed, s)
		}
	}
	return managed, nil
}
