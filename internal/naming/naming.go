// Package naming derives the names of managed snapshots and recognises them.
package naming

import (
	"strings"

	"github.com/juju/clock"
)

// TimeLayout is second resolution and sorts lexicographically in creation order.
const TimeLayout = "2006-01-02-15-04-05"

// Scheme builds snapshot names from a base tag, a droplet name and the clock.
type Scheme struct {
	base  string
	clock clock.Clock
}

func New(base string, clk clock.Clock) *Scheme {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Scheme{base: base, clock: clk}
}

// Prefix returns the ownership tag of a droplet's managed snapshots,
// e.g. "snp-prod-mongo-db".
func (s *Scheme) Prefix(dropletName string) string {
	return s.base + dropletName
}

// NewName returns a fresh snapshot name stamped with the current local time.
func (s *Scheme) NewName(dropletName string) string {
	return s.Prefix(dropletName) + "-" + s.clock.Now().Local().Format(TimeLayout)
}

// IsManaged reports whether snapshotName carries the droplet's prefix anywhere
// in it. Containment, not a leading match: "other-snp-db1-x" belongs to db1.
func (s *Scheme) IsManaged(snapshotName, dropletName string) bool {
	return strings.Contains(snapshotName, s.Prefix(dropletName))
}
