//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	vb "visionbridge/pkg/visionbridge"
)

// newTracker(imageId, x, y, width, height, algorithm) seeds a tracker on
// the given image.
func newTracker(args []js.Value) (interface{}, error) {
	if err := need(args, 5, "newTracker(imageId, x, y, width, height, algorithm)"); err != nil {
		return nil, err
	}
	im, err := imageArg(args[0])
	if err != nil {
		return nil, err
	}
	params := cfg.Tracker
	if len(args) > 5 && args[5].Type() == js.TypeString {
		params.Algorithm = args[5].String()
	}
	seed := im.Mat()
	defer seed.Close()
	s, err := vb.NewTrackSession(engine, seed, rectArgs(args[1:5]), params)
	if err != nil {
		return nil, err
	}
	return objs.add(s), nil
}

func track(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "track(trackerId, imageId)"); err != nil {
		return nil, err
	}
	s, err := lookup[*vb.TrackSession](args[0])
	if err != nil {
		return nil, err
	}
	im, err := imageArg(args[1])
	if err != nil {
		return nil, err
	}
	frame := im.Mat()
	defer frame.Close()
	res, err := s.Track(frame)
	if err != nil {
		return nil, err
	}
	info := res.Info
	return map[string]interface{}{
		"info": map[string]interface{}{
			"performTrack":     info.PerformTrack,
			"performLearn":     info.PerformLearn,
			"trackSuccess":     info.TrackSuccess,
			"fernsDetects":     info.FernsDetects,
			"nncDetects":       info.NNCDetects,
			"clusteredDetects": info.ClusteredDetects,
			"confidentMatches": info.ConfidentMatches,
			"closeMatches":     info.CloseMatches,
		},
		"box": compResult(res.Box),
		"top": compsResult(res.Top),
	}, nil
}

func newFlow(_ []js.Value) (interface{}, error) {
	return objs.add(vb.NewFlowSession(engine, cfg.Flow)), nil
}

// addPoints(flowId, [x0, y0, x1, y1, ...]) appends points to a flow session.
func addPoints(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "addPoints(flowId, coords)"); err != nil {
		return nil, err
	}
	s, err := lookup[*vb.FlowSession](args[0])
	if err != nil {
		return nil, err
	}
	n := args[1].Length()
	if n%2 != 0 {
		return nil, fmt.Errorf("addPoints: %d coordinates, want x/y pairs", n)
	}
	pts := make([]vb.Point2f, 0, n/2)
	for i := 0; i < n; i += 2 {
		pts = append(pts, vb.Point2f{X: float32(args[1].Index(i).Float()), Y: float32(args[1].Index(i + 1).Float())})
	}
	s.AddPoints(pts...)
	return s.Len(), nil
}

// flow(flowId, imageId) returns {previous, results}; lost points carry
// status false and are dropped from the session.
func flow(args []js.Value) (interface{}, error) {
	if err := need(args, 2, "flow(flowId, imageId)"); err != nil {
		return nil, err
	}
	s, err := lookup[*vb.FlowSession](args[0])
	if err != nil {
		return nil, err
	}
	im, err := imageArg(args[1])
	if err != nil {
		return nil, err
	}
	frame := im.Mat()
	defer frame.Close()
	res, err := s.Track(frame)
	if err != nil {
		return nil, err
	}
	prev := make([]interface{}, len(res.Previous))
	for i, p := range res.Previous {
		prev[i] = map[string]interface{}{"x": p.X, "y": p.Y}
	}
	results := make([]interface{}, len(res.Results))
	for i, r := range res.Results {
		results[i] = map[string]interface{}{
			"x":      r.Point.X,
			"y":      r.Point.Y,
			"status": r.Status,
			"error":  r.Error,
		}
	}
	return map[string]interface{}{
		"previous": prev,
		"results":  results,
	}, nil
}
