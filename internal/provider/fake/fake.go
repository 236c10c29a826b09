// Package fake is an in-memory provider.Client for tests.
package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/raoulx24/do-snapmanager/internal/provider"
)

// Transfer records one accepted transfer request.
type Transfer struct {
	SnapshotID int
	Region     string
}

type action struct {
	id        int
	dropletID int
	name      string
	polls     int
	status    string
	isCreate  bool
}

// Client keeps droplets, snapshots and actions in memory. Creation actions
// complete after PollsToComplete calls to GetAction, at which point the new
// snapshot is attached to its droplet. Error maps inject failures.
type Client struct {
	mu sync.Mutex

	PollsToComplete int
	// Errored droplets get creation actions that end in "errored".
	Errored map[string]bool

	ListErr        error
	CreateErr      map[string]error // by droplet name
	TransferErr    map[string]error // by region
	DeleteErr      map[int]error    // by snapshot id
	GetSnapshotErr map[int]error
	ActionErr      map[int]error

	// Now stamps snapshots created through CreateSnapshot.
	Now func() time.Time

	droplets  []provider.Droplet
	snapshots map[int]provider.Snapshot
	actions   map[int]*action
	nextID    int

	Transfers []Transfer
	Deleted   []int
	Created   []string
	Polls     map[int]int
}

var _ provider.Client = (*Client)(nil)

func New() *Client {
	return &Client{
		PollsToComplete: 1,
		Errored:         map[string]bool{},
		CreateErr:       map[string]error{},
		TransferErr:     map[string]error{},
		DeleteErr:       map[int]error{},
		GetSnapshotErr:  map[int]error{},
		ActionErr:       map[int]error{},
		Now:             time.Now,
		snapshots:       map[int]provider.Snapshot{},
		actions:         map[int]*action{},
		nextID:          100,
		Polls:           map[int]int{},
	}
}

func (c *Client) id() int {
	c.nextID++
	return c.nextID
}

// AddDroplet registers a droplet and returns it.
func (c *Client) AddDroplet(name string) provider.Droplet {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := provider.Droplet{ID: c.id(), Name: name}
	c.droplets = append(c.droplets, d)
	return d
}

// AddSnapshot attaches an existing snapshot to the named droplet.
func (c *Client) AddSnapshot(dropletName, name string, createdAt time.Time) provider.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := provider.Snapshot{ID: c.id(), Name: name, CreatedAt: createdAt}
	c.attach(dropletName, s)
	return s
}

func (c *Client) attach(dropletName string, s provider.Snapshot) {
	c.snapshots[s.ID] = s
	for i := range c.droplets {
		if c.droplets[i].Name == dropletName {
			c.droplets[i].SnapshotIDs = append(c.droplets[i].SnapshotIDs, s.ID)
			return
		}
	}
}

// SetListErr changes the ListDroplets failure while the client is in use.
func (c *Client) SetListErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListErr = err
}

// SetRegions records the regions a snapshot already lives in.
func (c *Client) SetRegions(id int, regions ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.snapshots[id]
	s.Regions = regions
	c.snapshots[id] = s
}

// SnapshotNames lists the names of the snapshots on a droplet in attach order.
func (c *Client) SnapshotNames(dropletName string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for _, d := range c.droplets {
		if d.Name != dropletName {
			continue
		}
		for _, id := range d.SnapshotIDs {
			names = append(names, c.snapshots[id].Name)
		}
	}
	return names
}

func (c *Client) ListDroplets(_ context.Context) ([]provider.Droplet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ListErr != nil {
		return nil, c.ListErr
	}
	out := make([]provider.Droplet, len(c.droplets))
	for i, d := range c.droplets {
		d.SnapshotIDs = slices.Clone(d.SnapshotIDs)
		out[i] = d
	}
	return out, nil
}

func (c *Client) GetSnapshot(_ context.Context, id int) (provider.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.GetSnapshotErr[id]; err != nil {
		return provider.Snapshot{}, err
	}
	s, ok := c.snapshots[id]
	if !ok {
		return provider.Snapshot{}, fmt.Errorf("snapshot %d: %w", id, provider.ErrNotFound)
	}
	return s, nil
}

func (c *Client) CreateSnapshot(_ context.Context, dropletID int, name string) (provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.droplets, func(d provider.Droplet) bool { return d.ID == dropletID })
	if idx < 0 {
		return provider.Action{}, fmt.Errorf("droplet %d: %w", dropletID, provider.ErrNotFound)
	}
	if err := c.CreateErr[c.droplets[idx].Name]; err != nil {
		return provider.Action{}, err
	}

	a := &action{id: c.id(), dropletID: dropletID, name: name, status: provider.ActionInProgress, isCreate: true}
	c.actions[a.id] = a
	c.Created = append(c.Created, name)
	return provider.Action{ID: a.id, Status: a.status}, nil
}

func (c *Client) TransferSnapshot(_ context.Context, snapshotID int, region string) (provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.TransferErr[region]; err != nil {
		return provider.Action{}, err
	}
	if _, ok := c.snapshots[snapshotID]; !ok {
		return provider.Action{}, fmt.Errorf("snapshot %d: %w", snapshotID, provider.ErrNotFound)
	}

	a := &action{id: c.id(), status: provider.ActionInProgress}
	c.actions[a.id] = a
	c.Transfers = append(c.Transfers, Transfer{SnapshotID: snapshotID, Region: region})
	return provider.Action{ID: a.id, Status: a.status}, nil
}

func (c *Client) DeleteSnapshot(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.DeleteErr[id]; err != nil {
		return err
	}
	if _, ok := c.snapshots[id]; !ok {
		return fmt.Errorf("snapshot %d: %w", id, provider.ErrNotFound)
	}

	delete(c.snapshots, id)
	for i := range c.droplets {
		c.droplets[i].SnapshotIDs = slices.DeleteFunc(c.droplets[i].SnapshotIDs, func(s int) bool { return s == id })
	}
	c.Deleted = append(c.Deleted, id)
	return nil
}

func (c *Client) GetAction(_ context.Context, id int) (provider.Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Polls[id]++
	if err := c.ActionErr[id]; err != nil {
		return provider.Action{}, err
	}
	a, ok := c.actions[id]
	if !ok {
		return provider.Action{}, fmt.Errorf("action %d: %w", id, provider.ErrNotFound)
	}

	a.polls++
	if a.status == provider.ActionInProgress && a.polls >= c.PollsToComplete {
		c.finish(a)
	}
	return provider.Action{ID: a.id, Status: a.status}, nil
}

func (c *Client) finish(a *action) {
	if !a.isCreate {
		a.status = provider.ActionCompleted
		return
	}

	idx := slices.IndexFunc(c.droplets, func(d provider.Droplet) bool { return d.ID == a.dropletID })
	if idx >= 0 && c.Errored[c.droplets[idx].Name] {
		a.status = provider.ActionErrored
		return
	}

	a.status = provider.ActionCompleted
	if idx >= 0 {
		c.attach(c.droplets[idx].Name, provider.Snapshot{ID: c.id(), Name: a.name, CreatedAt: c.Now()})
	}
}
