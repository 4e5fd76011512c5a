package visionbridge

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"visionbridge/internal/monitoring"
)

// FlowResult is the outcome of one flow step: the points going in and one
// result per point, including the ones that were lost.
type FlowResult struct {
	Previous []Point2f     `json:"previous"`
	Results  []PointStatus `json:"results"`
}

// FlowSession tracks a set of points across frames with sparse optical
// flow. Points that the solver loses are dropped after each step. A
// session is not safe for concurrent use.
type FlowSession struct {
	solver FlowSolver
	params FlowParams
	prev   *Handle[*Mat]
	points []Point2f
	closed bool
}

// NewFlowSession returns an empty session.
func NewFlowSession(solver FlowSolver, params FlowParams) *FlowSession {
	return &FlowSession{
		solver: solver,
		params: params,
		prev:   Empty(MatKind),
	}
}

// AddPoints appends points to the tracked set. Duplicates are kept.
func (s *FlowSession) AddPoints(pts ...Point2f) {
	s.points = append(s.points, pts...)
}

// Points returns a copy of the tracked set.
func (s *FlowSession) Points() []Point2f {
	return slices.Clone(s.points)
}

// Len is the number of tracked points.
func (s *FlowSession) Len() int { return len(s.points) }

// Track runs flow from the previous frame to curr. With no points the
// solver is not called and both result slices are empty. The first frame
// is compared with itself. The previous frame becomes curr on every call
// that does not fail.
func (s *FlowSession) Track(curr *Handle[*Mat]) (FlowResult, error) {
	if s.closed {
		return FlowResult{}, ErrClosed
	}
	if !curr.Valid() {
		precondition("FlowSession.Track", "empty frame")
	}
	if s.prev.Valid() && !sameLayout(s.prev.Get(), curr.Get()) {
		precondition("FlowSession.Track", "frame %s does not match previous %s", curr.Get().layout(), s.prev.Get().layout())
	}
	if len(s.points) == 0 {
		s.prev.Assign(curr)
		return FlowResult{Previous: []Point2f{}, Results: []PointStatus{}}, nil
	}

	prev := curr.Get()
	if s.prev.Valid() {
		prev = s.prev.Get()
	}
	results, err := s.solver.Flow(prev, curr.Get(), s.points, s.params)
	if err != nil {
		return FlowResult{}, fmt.Errorf("optical flow over %d points: %w", len(s.points), err)
	}
	if len(results) != len(s.points) {
		precondition("FlowSession.Track", "solver returned %d results for %d points", len(results), len(s.points))
	}

	before := s.points
	s.points = lo.FilterMap(results, func(p PointStatus, _ int) (Point2f, bool) {
		return p.Point, p.Status
	})
	s.prev.Assign(curr)
	monitoring.Logger().Debug("flow: step", "in", len(before), "kept", len(s.points))
	return FlowResult{Previous: slices.Clone(before), Results: results}, nil
}

// Close releases the previous frame.
func (s *FlowSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.prev.Close()
	s.points = nil
}
