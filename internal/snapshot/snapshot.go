// Package snapshot names the kinds of resources whose snapshots can be managed.
package snapshot

import (
	"errors"
	"fmt"
)

// SetType tags the resource a snapshot set is taken from.
type SetType string

const (
	SetTypeDroplet SetType = "droplet"
	SetTypeVolume  SetType = "volume"
)

var ErrSetTypeUnsupported = errors.New("snapshot set type not supported")

// Validate accepts the implemented set types only. Volume sets are
// recognised but have no inventory or creation support yet.
func (t SetType) Validate() error {
	switch t {
	case SetTypeDroplet:
		return nil
	case SetTypeVolume:
		return fmt.Errorf("%w: %s", ErrSetTypeUnsupported, t)
	default:
		return fmt.Errorf("unknown snapshot set type %q", string(t))
	}
}
