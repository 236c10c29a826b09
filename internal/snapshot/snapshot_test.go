package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTypeValidate(t *testing.T) {
	assert.NoError(t, SetTypeDroplet.Validate())
	assert.ErrorIs(t, SetTypeVolume.Validate(), ErrSetTypeUnsupported)

	err := SetType("bucket").Validate()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSetTypeUnsupported)
}
