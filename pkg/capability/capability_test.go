package capability_test

import (
	"testing"

	"github.com/fxnlabs/webgl-matrix/pkg/capability"
	"github.com/fxnlabs/webgl-matrix/pkg/gl/gltest"
	"github.com/stretchr/testify/assert"
)

func TestQueryMaxTextureSize(t *testing.T) {
	ctx := gltest.NewContext()
	ctx.SetMaxTextureSize(8192)

	set := capability.Set{Tier: capability.TierModern}.
		WithMaxTextureSize(capability.QueryMaxTextureSize(ctx))
	assert.Equal(t, 8192, set.MaxTextureSize)
}
