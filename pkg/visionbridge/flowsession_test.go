package visionbridge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowSession_EmptyPointSet(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	f := frame(4, 4)
	defer f.Close()

	res, err := s.Track(f)
	require.NoError(t, err)
	assert.Equal(t, []Point2f{}, res.Previous)
	assert.Equal(t, []PointStatus{}, res.Results)
	assert.Empty(t, solver.calls, "solver must not run without points")
}

func TestFlowSession_FirstCallComparesFrameWithItself(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	s.AddPoints(Point2f{X: 1, Y: 1})
	f := frame(4, 4)
	defer f.Close()

	_, err := s.Track(f)
	require.NoError(t, err)
	require.Len(t, solver.calls, 1)
	assert.Same(t, f.Get(), solver.calls[0].prev)
	assert.Same(t, f.Get(), solver.calls[0].curr)
}

func TestFlowSession_RollsFrameAndFiltersLostPoints(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{lost: map[int]bool{1: true}}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	s.AddPoints(Point2f{X: 0, Y: 0}, Point2f{X: 5, Y: 5}, Point2f{X: 9, Y: 9})
	f1, f2 := frame(4, 4), frame(4, 4)
	defer f1.Close()
	defer f2.Close()

	res, err := s.Track(f1)
	require.NoError(t, err)
	wantPrev := []Point2f{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 9, Y: 9}}
	if diff := cmp.Diff(wantPrev, res.Previous); diff != "" {
		t.Errorf("Previous mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, res.Results, 3, "results keep lost points")
	assert.False(t, res.Results[1].Status)

	assert.Equal(t, []Point2f{{X: 1, Y: 1}, {X: 10, Y: 10}}, s.Points())

	_, err = s.Track(f2)
	require.NoError(t, err)
	require.Len(t, solver.calls, 2)
	assert.Same(t, f1.Get(), solver.calls[1].prev)
	assert.Same(t, f2.Get(), solver.calls[1].curr)
	assert.Equal(t, []Point2f{{X: 1, Y: 1}, {X: 10, Y: 10}}, solver.calls[1].points)
}

func TestFlowSession_PointCountNeverGrowsAcrossTrack(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{lost: map[int]bool{0: true}}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.AddPoints(Point2f{X: float32(i)})
	}
	f := frame(2, 2)
	defer f.Close()

	last := s.Len()
	for s.Len() > 0 {
		_, err := s.Track(f)
		require.NoError(t, err)
		assert.Less(t, s.Len(), last)
		last = s.Len()
	}
}

func TestFlowSession_DuplicatesKept(t *testing.T) {
	t.Parallel()
	s := NewFlowSession(&fakeFlow{}, NewFlowParams())
	defer s.Close()

	p := Point2f{X: 3, Y: 4}
	s.AddPoints(p)
	s.AddPoints(p, p)
	assert.Equal(t, 3, s.Len())
}

func TestFlowSession_RejectsMismatchedFrame(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	f1 := frame(8, 8)
	defer f1.Close()
	_, err := s.Track(f1)
	require.NoError(t, err)

	small := frame(4, 4)
	defer small.Close()
	v := panicValue(func() { _, _ = s.Track(small) })
	require.IsType(t, &PreconditionError{}, v)

	s.AddPoints(Point2f{X: 1, Y: 1})
	wide := Own(MatKind, NewMat(8, 8, 1, Elem32F))
	defer wide.Close()
	v = panicValue(func() { _, _ = s.Track(wide) })
	require.IsType(t, &PreconditionError{}, v)
	assert.Equal(t, "FlowSession.Track", v.(*PreconditionError).Op)
	assert.Empty(t, solver.calls)
	assert.Equal(t, []Point2f{{X: 1, Y: 1}}, s.Points())

	f2 := frame(8, 8)
	defer f2.Close()
	_, err = s.Track(f2)
	require.NoError(t, err)
	require.Len(t, solver.calls, 1)
	assert.Same(t, f1.Get(), solver.calls[0].prev)
}

func TestFlowSession_EmptyCallStillRollsFrame(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	f1, f2 := frame(2, 2), frame(2, 2)
	defer f1.Close()
	defer f2.Close()

	_, err := s.Track(f1)
	require.NoError(t, err)
	s.AddPoints(Point2f{X: 1, Y: 1})
	_, err = s.Track(f2)
	require.NoError(t, err)

	require.Len(t, solver.calls, 1)
	assert.Same(t, f1.Get(), solver.calls[0].prev)
}

func TestFlowSession_SolverErrorKeepsState(t *testing.T) {
	t.Parallel()
	solver := &fakeFlow{}
	s := NewFlowSession(solver, NewFlowParams())
	defer s.Close()

	s.AddPoints(Point2f{X: 1, Y: 1})
	f1, f2, f3 := frame(2, 2), frame(2, 2), frame(2, 2)
	defer f1.Close()
	defer f2.Close()
	defer f3.Close()

	_, err := s.Track(f1)
	require.NoError(t, err)

	solver.fail = errEngine
	_, err = s.Track(f2)
	require.ErrorIs(t, err, errEngine)
	assert.Equal(t, []Point2f{{X: 2, Y: 2}}, s.Points())

	_, err = s.Track(f3)
	require.NoError(t, err)
	assert.Same(t, f1.Get(), solver.calls[1].prev)
}

func TestFlowSession_HoldsFrameAfterCallerCloses(t *testing.T) {
	t.Parallel()
	released := 0
	m, err := WrapNative(2, 2, 1, Elem8U, 2, make([]byte, 4), func() { released++ })
	require.NoError(t, err)

	s := NewFlowSession(&fakeFlow{}, NewFlowParams())
	f := Own(MatKind, m)
	_, err = s.Track(f)
	require.NoError(t, err)

	f.Close()
	assert.Equal(t, 0, released)
	s.Close()
	assert.Equal(t, 1, released)

	_, err = s.Track(frame(1, 1))
	assert.ErrorIs(t, err, ErrClosed)
}
