//go:build leakcheck

package visionbridge

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveOf(kind string) []LeakRecord {
	return lo.Filter(LiveResources(), func(r LeakRecord, _ int) bool { return r.Kind == kind })
}

func TestLeakTracker_RecordsUntilLastOwnerCloses(t *testing.T) {
	t.Parallel()
	k := countingKind(t)

	h := Own(k, &counted{})
	clone := h.Clone()
	live := liveOf(k.Name())
	require.Len(t, live, 1)
	assert.Contains(t, live[0].Stack, "leak_debug_test.go")

	h.Close()
	assert.Len(t, liveOf(k.Name()), 1)
	clone.Close()
	assert.Empty(t, liveOf(k.Name()))
}

func TestLeakTracker_ReplaceFreesOld(t *testing.T) {
	t.Parallel()
	k := countingKind(t)

	h := Own(k, &counted{name: "old"})
	h.Replace(&counted{name: "new"})
	assert.Len(t, liveOf(k.Name()), 1)
	h.Close()
	assert.Empty(t, liveOf(k.Name()))
}
