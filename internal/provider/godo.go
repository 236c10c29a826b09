package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/digitalocean/godo"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/raoulx24/do-snapmanager/internal/config"
)

const (
	userAgent   = "do-snapmanager"
	listPerPage = 200
)

// GodoClient talks to the DigitalOcean API. Calls are throttled client side
// so a large droplet set stays under the account rate limit.
type GodoClient struct {
	do      *godo.Client
	limiter *rate.Limiter
}

var _ Client = (*GodoClient)(nil)

// NewGodoClient builds an authenticated client from the API config. Extra
// godo options are applied after the defaults.
func NewGodoClient(ctx context.Context, cfg config.DigitalOceanConfig, opts ...godo.ClientOpt) (*GodoClient, error) {
	if cfg.Token == "" {
		return nil, errors.New("digitalocean token is empty")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 60 * time.Second

	do, err := godo.New(httpClient, append([]godo.ClientOpt{godo.SetUserAgent(userAgent)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	return &GodoClient{
		do:      do,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}, nil
}

// VerifyCredentials fails when the token is rejected by the API.
func (c *GodoClient) VerifyCredentials(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, resp, err := c.do.Account.Get(ctx)
	if err != nil {
		return classify(resp, "getting account", err)
	}
	return nil
}

func (c *GodoClient) ListDroplets(ctx context.Context) ([]Droplet, error) {
	var out []Droplet

	opt := &godo.ListOptions{Page: 1, PerPage: listPerPage}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.do.Droplets.List(ctx, opt)
		if err != nil {
			return nil, classify(resp, "listing droplets", err)
		}
		for _, d := range page {
			out = append(out, Droplet{ID: d.ID, Name: d.Name, SnapshotIDs: d.SnapshotIDs})
		}

		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			break
		}
		current, err := resp.Links.CurrentPage()
		if err != nil {
			return nil, fmt.Errorf("listing droplets: reading page: %w", err)
		}
		opt.Page = current + 1
	}

	return out, nil
}

func (c *GodoClient) GetSnapshot(ctx context.Context, id int) (Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Snapshot{}, err
	}
	img, resp, err := c.do.Images.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, classify(resp, fmt.Sprintf("getting snapshot %d", id), err)
	}

	created, err := time.Parse(time.RFC3339, img.Created)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %d: parsing created_at %q: %w", id, img.Created, err)
	}

	return Snapshot{
		ID:        img.ID,
		Name:      img.Name,
		CreatedAt: created,
		Regions:   img.Regions,
	}, nil
}

func (c *GodoClient) CreateSnapshot(ctx context.Context, dropletID int, name string) (Action, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Action{}, err
	}
	a, resp, err := c.do.DropletActions.Snapshot(ctx, dropletID, name)
	if err != nil {
		return Action{}, classify(resp, fmt.Sprintf("snapshotting droplet %d", dropletID), err)
	}
	return toAction(a), nil
}

func (c *GodoClient) TransferSnapshot(ctx context.Context, snapshotID int, region string) (Action, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Action{}, err
	}
	req := &godo.ActionRequest{"type": "transfer", "region": region}
	a, resp, err := c.do.ImageActions.Transfer(ctx, snapshotID, req)
	if err != nil {
		return Action{}, classify(resp, fmt.Sprintf("transferring snapshot %d to %s", snapshotID, region), err)
	}
	return toAction(a), nil
}

func (c *GodoClient) DeleteSnapshot(ctx context.Context, id int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.do.Images.Delete(ctx, id)
	if err != nil {
		return classify(resp, fmt.Sprintf("deleting snapshot %d", id), err)
	}
	return nil
}

func (c *GodoClient) GetAction(ctx context.Context, id int) (Action, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Action{}, err
	}
	a, resp, err := c.do.Actions.Get(ctx, id)
	if err != nil {
		return Action{}, classify(resp, fmt.Sprintf("getting action %d", id), err)
	}
	return toAction(a), nil
}

func toAction(a *godo.Action) Action {
	if a == nil {
		return Action{}
	}
	return Action{ID: a.ID, Status: a.Status}
}

// classify wraps err with ErrNotFound when the API answered 404.
func classify(resp *godo.Response, op string, err error) error {
	if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	var errResp *godo.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
