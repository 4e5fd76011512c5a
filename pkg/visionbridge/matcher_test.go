package visionbridge

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// desc returns a descriptor whose first component is x and the rest zero,
// so the squared distance between two of them is (x1-x2)^2.
func desc(x float32) Descriptor {
	var d Descriptor
	d.Vec[0] = x
	return d
}

func TestMatchDescriptors_RatioTest(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		target []Descriptor
		want   []Match
	}{
		{
			// distances 0 and 100: accepted
			name:   "exact match",
			target: []Descriptor{desc(0), desc(10)},
			want:   []Match{{Target: 0, Query: 0}},
		},
		{
			// distances 40 and 100: 40 >= 36
			name:   "ambiguous",
			target: []Descriptor{desc(float32(math.Sqrt(40))), desc(10)},
			want:   []Match{},
		},
		{
			// distances 36 and 100: strict bound rejects equality
			name:   "on the bound",
			target: []Descriptor{desc(6), desc(10)},
			want:   []Match{},
		},
		{
			// one target at 1 < 0.36e6: the sentinel acts as second best
			name:   "single target",
			target: []Descriptor{desc(1)},
			want:   []Match{{Target: 0, Query: 0}},
		},
		{
			name:   "no targets",
			target: nil,
			want:   []Match{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchDescriptors([]Descriptor{desc(0)}, tt.target)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MatchDescriptors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchDescriptors_TiesKeepFirst(t *testing.T) {
	t.Parallel()
	target := []Descriptor{desc(100), desc(1), desc(1), desc(-1)}
	got := MatchDescriptors([]Descriptor{desc(0)}, target)
	// Three targets at distance 1 make the ratio 1, so nothing is accepted.
	assert.Empty(t, got)

	target = []Descriptor{desc(100), desc(1), desc(20)}
	got = MatchDescriptors([]Descriptor{desc(0)}, target)
	assert.Equal(t, []Match{{Target: 1, Query: 0}}, got)
}

func TestMatchDescriptors_PairOrder(t *testing.T) {
	t.Parallel()
	query := []Descriptor{desc(50), desc(0), desc(7)}
	target := []Descriptor{desc(7.1), desc(0.2), desc(50)}
	got := MatchDescriptors(query, target)
	want := []Match{
		{Target: 2, Query: 0},
		{Target: 1, Query: 1},
		{Target: 0, Query: 2},
	}
	assert.Equal(t, want, got)
}

func TestMatchDescriptors_FarTargetsRejected(t *testing.T) {
	t.Parallel()
	// Both candidates lie beyond the 1e6 sentinel.
	got := MatchDescriptors([]Descriptor{desc(0)}, []Descriptor{desc(2000), desc(3000)})
	assert.Empty(t, got)
}
