package visionbridge

import (
	"fmt"
	"image"

	"visionbridge/internal/monitoring"
)

// TrackResult is the outcome of one tracking step. Top is a snapshot the
// caller owns.
type TrackResult struct {
	Info TrackInfo `json:"info"`
	Box  Comp      `json:"box"`
	Top  []Comp    `json:"top"`
}

// TrackSession follows one object across frames. It keeps the previous
// frame and the tracker model and rolls the previous frame forward on
// every successful step. A session is not safe for concurrent use.
type TrackSession struct {
	prev   *Handle[*Mat]
	model  *Handle[TrackerModel]
	closed bool
}

// NewTrackSession seeds a session. The seed frame is shared, not copied.
func NewTrackSession(factory TrackerFactory, seed *Handle[*Mat], box image.Rectangle, params TrackerParams) (*TrackSession, error) {
	if !seed.Valid() {
		precondition("NewTrackSession", "empty seed frame")
	}
	model, err := factory.NewTracker(seed.Get(), box, params)
	if err != nil {
		return nil, fmt.Errorf("new tracker %s: %w", params.Algorithm, err)
	}
	monitoring.Logger().Debug("track: seeded", "box", box, "algorithm", params.Algorithm)
	return &TrackSession{
		prev:  seed.Clone(),
		model: Own(TrackerKind, model),
	}, nil
}

// Track advances the model to curr. Whatever confidence the model reports
// is passed through; the previous frame becomes curr. If the model fails
// the session state is left unchanged.
func (s *TrackSession) Track(curr *Handle[*Mat]) (TrackResult, error) {
	if s.closed {
		return TrackResult{}, ErrClosed
	}
	if !curr.Valid() {
		precondition("TrackSession.Track", "empty frame")
	}
	if prev := s.prev.Get(); !sameLayout(prev, curr.Get()) {
		precondition("TrackSession.Track", "frame %s does not match previous %s", curr.Get().layout(), prev.layout())
	}
	m := s.model.Get()
	info, err := m.Track(s.prev.Get(), curr.Get())
	if err != nil {
		return TrackResult{}, fmt.Errorf("track: %w", err)
	}
	s.prev.Assign(curr)
	res := TrackResult{
		Info: info,
		Box:  m.Box(),
		Top:  CopyOut(m.Top()),
	}
	monitoring.Logger().Debug("track: step", "success", info.TrackSuccess, "box", res.Box.Rect, "top", len(res.Top))
	return res, nil
}

// Box returns the model's current object box.
func (s *TrackSession) Box() Comp {
	if s.closed {
		return Comp{}
	}
	return s.model.Get().Box()
}

// Close releases the previous frame and the model.
func (s *TrackSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.prev.Close()
	s.model.Close()
}
