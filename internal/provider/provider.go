// Package provider defines the cloud API surface the snapshot manager consumes
// and its DigitalOcean implementation.
package provider

import (
	"context"
	"errors"
	"time"
)

// Action statuses reported by the API.
const (
	ActionInProgress = "in-progress"
	ActionCompleted  = "completed"
	ActionErrored    = "errored"
)

// ErrNotFound is wrapped by every lookup of an entity the API does not know.
// Any other error returned by a Client is considered transient.
var ErrNotFound = errors.New("not found")

type Droplet struct {
	ID          int
	Name        string
	SnapshotIDs []int
}

type Snapshot struct {
	ID        int
	Name      string
	CreatedAt time.Time
	Regions   []string
}

type Action struct {
	ID     int
	Status string
}

// Done reports whether the action reached a terminal status.
func (a Action) Done() bool {
	return a.Status == ActionCompleted || a.Status == ActionErrored
}

// Client is the subset of the cloud API used by the snapshot lifecycle.
type Client interface {
	ListDroplets(ctx context.Context) ([]Droplet, error)
	GetSnapshot(ctx context.Context, id int) (Snapshot, error)
	CreateSnapshot(ctx context.Context, dropletID int, name string) (Action, error)
	TransferSnapshot(ctx context.Context, snapshotID int, region string) (Action, error)
	DeleteSnapshot(ctx context.Context, id int) error
	GetAction(ctx context.Context, id int) (Action, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
