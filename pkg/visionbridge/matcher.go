package visionbridge

// DescriptorLen is the number of components in a feature descriptor.
const DescriptorLen = 128

// MatchRatio is the ratio-test acceptance bound on squared distances.
const MatchRatio = 0.36

const matchSentinel = 1e6

// Descriptor is a keypoint with its feature vector.
type Descriptor struct {
	Keypoint
	Vec [DescriptorLen]float32
}

// Match pairs a target descriptor index with a query descriptor index.
type Match struct {
	Target int `json:"target"`
	Query  int `json:"query"`
}

// MatchDescriptors finds, for each query descriptor, its nearest and
// second-nearest target by squared Euclidean distance and accepts the pair
// when nearest < 0.36*second. Both running minima start at 1e6, so a query
// with fewer than two targets under that distance can still match.
// Equal distances keep the first target seen.
func MatchDescriptors(query, target []Descriptor) []Match {
	matches := make([]Match, 0)
	for i := range query {
		q := &query[i].Vec
		minj := -1
		mind, mind2 := float64(matchSentinel), float64(matchSentinel)
		for j := range target {
			t := &target[j].Vec
			var d float64
			for k := 0; k < DescriptorLen; k++ {
				diff := q[k] - t[k]
				d += float64(diff * diff)
				if d > mind2 {
					break
				}
			}
			if d < mind {
				mind2 = mind
				mind = d
				minj = j
			} else if d < mind2 {
				mind2 = d
			}
		}
		if minj >= 0 && mind < mind2*MatchRatio {
			matches = append(matches, Match{Target: minj, Query: i})
		}
	}
	return matches
}
