//go:build !leakcheck

package visionbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeakTracker_DisabledByDefault(t *testing.T) {
	t.Parallel()
	h := Own(countingKind(t), &counted{})
	defer h.Close()
	assert.Nil(t, LiveResources())
	assert.Zero(t, TrackedCount())
	ResetTracker()
}
