package visionbridge

import (
	"errors"
	"image"
)

// fakeEngine is a pure-Go Engine whose algorithmic calls are scripted.
type fakeEngine struct {
	PureReader

	grayCalls int
	flipCalls int
	failNext  error

	tracker *fakeTracker
	flow    *fakeFlow
	sift    map[*Mat][]Descriptor
	comps   []Comp
	words   []image.Rectangle
	mserKps []MSERKeypoint
}

var errEngine = errors.New("engine failure")

func (e *fakeEngine) takeFailure() error {
	err := e.failNext
	e.failNext = nil
	return err
}

func (e *fakeEngine) Grayscale(src *Mat) (*Mat, error) {
	e.grayCalls++
	if err := e.takeFailure(); err != nil {
		return nil, err
	}
	return Grayscale(src), nil
}

func (e *fakeEngine) Canny(src *Mat, _ int, _, _ float64) (*Mat, error) {
	if err := e.takeFailure(); err != nil {
		return nil, err
	}
	return NewMat(src.Rows(), src.Cols(), 1, Elem8U), nil
}

func (e *fakeEngine) FlipX(src *Mat) (*Mat, error) {
	e.flipCalls++
	if err := e.takeFailure(); err != nil {
		return nil, err
	}
	out := NewMat(src.Rows(), src.Cols(), src.Channels(), src.Elem())
	px := src.Channels() * src.Elem().Size()
	for r := 0; r < src.Rows(); r++ {
		in, dst := src.Row(r), out.Row(r)
		for c := 0; c < src.Cols(); c++ {
			copy(dst[(src.Cols()-1-c)*px:], in[c*px:(c+1)*px])
		}
	}
	return out, nil
}

func (e *fakeEngine) Slice(src *Mat, r image.Rectangle) (*Mat, error) {
	px := src.Channels() * src.Elem().Size()
	out := NewMat(r.Dy(), r.Dx(), src.Channels(), src.Elem())
	for y := 0; y < r.Dy(); y++ {
		copy(out.Row(y), src.Row(r.Min.Y+y)[r.Min.X*px:r.Max.X*px])
	}
	return out, nil
}

func (e *fakeEngine) Blur(src *Mat, _ float64) (*Mat, error) {
	return src.Clone(), nil
}

func (e *fakeEngine) CloseOutline(src *Mat) (*Mat, error) {
	return src.Clone(), nil
}

func (e *fakeEngine) NewTracker(seed *Mat, box image.Rectangle, _ TrackerParams) (TrackerModel, error) {
	if err := e.takeFailure(); err != nil {
		return nil, err
	}
	if e.tracker == nil {
		e.tracker = &fakeTracker{}
	}
	e.tracker.seed = seed
	e.tracker.box = Comp{Rect: box}
	return e.tracker, nil
}

func (e *fakeEngine) Flow(prev, curr *Mat, points []Point2f, params FlowParams) ([]PointStatus, error) {
	return e.flow.Flow(prev, curr, points, params)
}

func (e *fakeEngine) SIFT(src *Mat, _ SIFTParams) ([]Descriptor, error) {
	return e.sift[src], nil
}

func (e *fakeEngine) Detect(_ *Mat, req DetectRequest) ([]Comp, error) {
	if req.Family == "" {
		return nil, ErrUnsupported
	}
	return e.comps, nil
}

func (e *fakeEngine) SWT(_ *Mat, _ SWTParams) ([]image.Rectangle, error) {
	return e.words, nil
}

func (e *fakeEngine) MSER(src, _ *Mat, _ MSERParams) ([]MSERKeypoint, *Mat, error) {
	return e.mserKps, NewMat(src.Rows(), src.Cols(), 1, Elem32S), nil
}

// fakeTracker moves its box one pixel right per step and reports a
// scripted confidence.
type fakeTracker struct {
	seed   *Mat
	box    Comp
	top    []Comp
	calls  []trackCall
	confs  []float32
	fail   error
	closed int
}

type trackCall struct {
	prev, curr *Mat
}

func (t *fakeTracker) Track(prev, curr *Mat) (TrackInfo, error) {
	if t.fail != nil {
		err := t.fail
		t.fail = nil
		return TrackInfo{}, err
	}
	t.calls = append(t.calls, trackCall{prev: prev, curr: curr})
	var conf float32
	if len(t.confs) > 0 {
		conf, t.confs = t.confs[0], t.confs[1:]
	}
	t.box.Rect = t.box.Rect.Add(image.Pt(1, 0))
	t.box.Classification.Confidence = conf
	t.top = append(t.top[:0], t.box, Comp{Rect: t.box.Rect.Inset(-2)})
	return TrackInfo{PerformTrack: true, TrackSuccess: conf > 0}, nil
}

func (t *fakeTracker) Box() Comp { return t.box }

func (t *fakeTracker) Top() View[[]Comp] { return Borrow(t.top) }

func (t *fakeTracker) Close() { t.closed++ }

// fakeFlow shifts every point by (1, 1) and fails the points listed in lost.
type fakeFlow struct {
	calls []flowCall
	lost  map[int]bool
	fail  error
}

type flowCall struct {
	prev, curr *Mat
	points     []Point2f
}

func (f *fakeFlow) Flow(prev, curr *Mat, points []Point2f, _ FlowParams) ([]PointStatus, error) {
	if f.fail != nil {
		err := f.fail
		f.fail = nil
		return nil, err
	}
	f.calls = append(f.calls, flowCall{prev: prev, curr: curr, points: append([]Point2f(nil), points...)})
	out := make([]PointStatus, len(points))
	for i, p := range points {
		out[i] = PointStatus{
			Point:  Point2f{X: p.X + 1, Y: p.Y + 1},
			Status: !f.lost[i],
		}
	}
	return out, nil
}

// frame returns an owned 8U single-channel matrix.
func frame(rows, cols int) *Handle[*Mat] {
	return Own(MatKind, NewMat(rows, cols, 1, Elem8U))
}

// recordingWriter captures WriteImageData calls.
type recordingWriter struct {
	pix           []byte
	width, height int
}

func (w *recordingWriter) WriteImageData(pix []byte, width, height int) error {
	w.pix = append([]byte(nil), pix...)
	w.width, w.height = width, height
	return nil
}

type staticSource struct {
	raw RawImage
	err error
}

func (s staticSource) ReadImageData() (RawImage, error) { return s.raw, s.err }

func panicValue(f func()) (v any) {
	defer func() { v = recover() }()
	f()
	return nil
}
