//go:build !purego && !js

package cvengine

import (
	"fmt"
	"image"
	"math"
	"strings"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	vb "visionbridge/pkg/visionbridge"
)

// Engine is the OpenCV backend.
type Engine struct{}

// New returns the OpenCV backend.
func New() *Engine { return &Engine{} }

// Name identifies the backend in logs.
func (e *Engine) Name() string { return "opencv" }

// --- Mat conversion ---

func elemOf(mt gocv.MatType) (vb.ElemType, error) {
	switch int(mt) & 7 {
	case 0:
		return vb.Elem8U, nil
	case 4:
		return vb.Elem32S, nil
	case 5:
		return vb.Elem32F, nil
	case 6:
		return vb.Elem64F, nil
	}
	return 0, fmt.Errorf("opencv depth %d has no matrix element type", int(mt)&7)
}

func matTypeOf(m *vb.Mat) (gocv.MatType, error) {
	var depth int
	switch m.Elem() {
	case vb.Elem8U:
		depth = 0
	case vb.Elem32S:
		depth = 4
	case vb.Elem32F:
		depth = 5
	case vb.Elem64F:
		depth = 6
	default:
		return 0, fmt.Errorf("%v matrices have no opencv type", m.Elem())
	}
	return gocv.MatType(depth + (m.Channels()-1)<<3), nil
}

// toGoCV copies m into a new gocv.Mat the caller must close.
func toGoCV(m *vb.Mat) (gocv.Mat, error) {
	mt, err := matTypeOf(m)
	if err != nil {
		return gocv.Mat{}, err
	}
	data := m.Data()
	if !m.Continuous() {
		data = m.Clone().Data()
	}
	return gocv.NewMatFromBytes(m.Rows(), m.Cols(), mt, data[:m.Rows()*m.RowBytes()])
}

// fromGoCV takes ownership of g. Continuous 8-bit matrices are wrapped
// without copying and closed when the returned matrix is released.
func fromGoCV(g gocv.Mat) (*vb.Mat, error) {
	elem, err := elemOf(g.Type())
	if err != nil {
		g.Close()
		return nil, err
	}
	rows, cols, ch := g.Rows(), g.Cols(), g.Channels()
	rowBytes := cols * ch * elem.Size()
	if elem == vb.Elem8U && g.IsContinuous() {
		data, err := g.DataPtrUint8()
		if err == nil {
			return vb.WrapNative(rows, cols, ch, elem, rowBytes, data, func() { g.Close() })
		}
	}
	data := g.ToBytes()
	g.Close()
	return vb.NewMatFromBytes(rows, cols, ch, elem, rowBytes, data)
}

// gray8 returns a one-channel view of src for algorithms that need it.
func gray8(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	switch src.Channels() {
	case 3:
		gocv.CvtColor(src, &dst, gocv.ColorRGBToGray)
	case 4:
		gocv.CvtColor(src, &dst, gocv.ColorRGBAToGray)
	default:
		src.CopyTo(&dst)
	}
	return dst
}

// bgr8 returns a three-channel BGR copy of src for the trackers.
func bgr8(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	if src.Channels() == 1 {
		gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR)
	} else {
		gocv.CvtColor(src, &dst, gocv.ColorRGBToBGR)
	}
	return dst
}

func (e *Engine) unary(src *vb.Mat, op func(in gocv.Mat, out *gocv.Mat)) (*vb.Mat, error) {
	in, err := toGoCV(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	out := gocv.NewMat()
	op(in, &out)
	if out.Empty() {
		out.Close()
		return nil, fmt.Errorf("opencv produced an empty matrix")
	}
	return fromGoCV(out)
}

// --- Decode and transforms ---

// ReadRGBA decodes a raw RGBA record. Gray uses the codec's luma weights
// rather than OpenCV's, so both backends agree pixel for pixel.
func (e *Engine) ReadRGBA(raw vb.RawImage, mode vb.ChannelMode) (*vb.Mat, error) {
	src, err := gocv.NewMatFromBytes(raw.Height, raw.Width, gocv.MatTypeCV8UC4, raw.Pix)
	if err != nil {
		return nil, fmt.Errorf("wrap rgba: %w", err)
	}
	defer src.Close()
	rgb := gocv.NewMat()
	gocv.CvtColor(src, &rgb, gocv.ColorRGBAToRGB)
	color, err := fromGoCV(rgb)
	if err != nil {
		return nil, err
	}
	if mode == vb.ModeRGBColor {
		return color, nil
	}
	defer color.Close()
	return vb.Grayscale(color), nil
}

func (e *Engine) Grayscale(src *vb.Mat) (*vb.Mat, error) {
	return vb.Grayscale(src), nil
}

// Canny returns a 0/1 edge map. OpenCV's aperture is fixed at 3.
func (e *Engine) Canny(src *vb.Mat, _ int, low, high float64) (*vb.Mat, error) {
	return e.unary(src, func(in gocv.Mat, out *gocv.Mat) {
		g := gray8(in)
		defer g.Close()
		edges := gocv.NewMat()
		defer edges.Close()
		gocv.Canny(g, &edges, float32(low), float32(high))
		gocv.Threshold(edges, out, 0, 1, gocv.ThresholdBinary)
	})
}

func (e *Engine) FlipX(src *vb.Mat) (*vb.Mat, error) {
	return e.unary(src, func(in gocv.Mat, out *gocv.Mat) {
		gocv.Flip(in, out, 1)
	})
}

func (e *Engine) Slice(src *vb.Mat, r image.Rectangle) (*vb.Mat, error) {
	return e.unary(src, func(in gocv.Mat, out *gocv.Mat) {
		region := in.Region(r)
		defer region.Close()
		region.CopyTo(out)
	})
}

func (e *Engine) Blur(src *vb.Mat, sigma float64) (*vb.Mat, error) {
	requirePositiveSigma(sigma)
	return e.unary(src, func(in gocv.Mat, out *gocv.Mat) {
		gocv.GaussianBlur(in, out, image.Pt(0, 0), sigma, sigma, gocv.BorderReflect101)
	})
}

func (e *Engine) CloseOutline(src *vb.Mat) (*vb.Mat, error) {
	requireOneChannel8U("CloseOutline", src)
	return e.unary(src, func(in gocv.Mat, out *gocv.Mat) {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
		defer kernel.Close()
		gocv.MorphologyEx(in, out, gocv.MorphClose, kernel)
	})
}

// --- Tracking ---

type trackerModel struct {
	t   gocv.Tracker
	box vb.Comp
	top []vb.Comp
}

// NewTracker builds a MIL, KCF or CSRT tracker seeded on box.
func (e *Engine) NewTracker(seed *vb.Mat, box image.Rectangle, params vb.TrackerParams) (vb.TrackerModel, error) {
	var t gocv.Tracker
	switch strings.ToLower(params.Algorithm) {
	case "", "mil":
		t = gocv.NewTrackerMIL()
	case "kcf":
		t = contrib.NewTrackerKCF()
	case "csrt":
		t = contrib.NewTrackerCSRT()
	default:
		return nil, fmt.Errorf("tracker %q: %w", params.Algorithm, vb.ErrUnsupported)
	}
	in, err := toGoCV(seed)
	if err != nil {
		t.Close()
		return nil, err
	}
	defer in.Close()
	frame := bgr8(in)
	defer frame.Close()
	if !t.Init(frame, box) {
		t.Close()
		return nil, fmt.Errorf("tracker %s rejected box %v", params.Algorithm, box)
	}
	m := &trackerModel{t: t, box: vb.Comp{Rect: box, Classification: vb.Classification{Confidence: 1}}}
	m.top = []vb.Comp{m.box}
	return m, nil
}

// Track updates the tracker on curr. OpenCV trackers keep their own
// history, so prev is not consulted.
func (m *trackerModel) Track(_, curr *vb.Mat) (vb.TrackInfo, error) {
	in, err := toGoCV(curr)
	if err != nil {
		return vb.TrackInfo{}, err
	}
	defer in.Close()
	frame := bgr8(in)
	defer frame.Close()

	rect, ok := m.t.Update(frame)
	info := vb.TrackInfo{PerformTrack: true, TrackSuccess: ok}
	if ok {
		m.box = vb.Comp{Rect: rect, Classification: vb.Classification{Confidence: 1}}
		info.ConfidentMatches = 1
	} else {
		m.box.Classification.Confidence = 0
	}
	m.top = append(m.top[:0], m.box)
	return info, nil
}

func (m *trackerModel) Box() vb.Comp            { return m.box }
func (m *trackerModel) Top() vb.View[[]vb.Comp] { return vb.Borrow(m.top) }
func (m *trackerModel) Close()                  { m.t.Close() }

// --- Optical flow ---

// Flow runs pyramidal Lucas-Kanade from prev to curr.
func (e *Engine) Flow(prev, curr *vb.Mat, points []vb.Point2f, params vb.FlowParams) ([]vb.PointStatus, error) {
	if len(points) == 0 {
		return []vb.PointStatus{}, nil
	}
	p, err := toGoCV(prev)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	c, err := toGoCV(curr)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	pg, cg := gray8(p), gray8(c)
	defer pg.Close()
	defer cg.Close()

	prevPts := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	defer prevPts.Close()
	for i, pt := range points {
		prevPts.SetFloatAt(i, 0, pt.X)
		prevPts.SetFloatAt(i, 1, pt.Y)
	}
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	errs := gocv.NewMat()
	defer errs.Close()

	win := image.Pt(params.WinSize.Width, params.WinSize.Height)
	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, 30, 0.01)
	gocv.CalcOpticalFlowPyrLKWithParams(pg, cg, prevPts, nextPts, &status, &errs,
		win, params.Level, criteria, 0, float64(params.MinEigen))

	if status.Rows() != len(points) {
		return nil, fmt.Errorf("optical flow returned %d statuses for %d points", status.Rows(), len(points))
	}
	out := make([]vb.PointStatus, len(points))
	for i := range points {
		var x, y float32
		if nextPts.Channels() == 2 {
			v := nextPts.GetVecfAt(i, 0)
			x, y = v[0], v[1]
		} else {
			x, y = nextPts.GetFloatAt(i, 0), nextPts.GetFloatAt(i, 1)
		}
		out[i] = vb.PointStatus{
			Point:  vb.Point2f{X: x, Y: y},
			Status: status.GetUCharAt(i, 0) == 1,
			Error:  errs.GetFloatAt(i, 0),
		}
	}
	return out, nil
}

// --- Features ---

func (e *Engine) SIFT(src *vb.Mat, _ vb.SIFTParams) ([]vb.Descriptor, error) {
	in, err := toGoCV(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	g := gray8(in)
	defer g.Close()

	sift := gocv.NewSIFT()
	defer sift.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	kps, desc := sift.DetectAndCompute(g, mask)
	defer desc.Close()
	if len(kps) == 0 {
		return []vb.Descriptor{}, nil
	}
	if desc.Cols() != vb.DescriptorLen {
		return nil, fmt.Errorf("sift descriptor width %d", desc.Cols())
	}
	vals, err := desc.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("sift descriptors: %w", err)
	}
	out := make([]vb.Descriptor, len(kps))
	for i, kp := range kps {
		out[i].Keypoint = vb.Keypoint{
			X:      float32(kp.X),
			Y:      float32(kp.Y),
			Octave: kp.Octave & 0xff,
			Level:  (kp.Octave >> 8) & 0xff,
			Scale:  float32(kp.Size),
			Angle:  float32(kp.Angle),
		}
		copy(out[i].Vec[:], vals[i*vb.DescriptorLen:(i+1)*vb.DescriptorLen])
	}
	return out, nil
}

// MSER detects stable regions and paints each region's disc into a 32S
// label matrix, 1-based in detection order. The outline guide is not used
// by OpenCV's detector.
func (e *Engine) MSER(src, _ *vb.Mat, params vb.MSERParams) ([]vb.MSERKeypoint, *vb.Mat, error) {
	in, err := toGoCV(src)
	if err != nil {
		return nil, nil, err
	}
	defer in.Close()
	g := gray8(in)
	defer g.Close()
	if params.Direction == vb.MSERBrightToDark {
		inv := gocv.NewMat()
		defer inv.Close()
		gocv.BitwiseNot(g, &inv)
		inv.CopyTo(&g)
	}

	mser := gocv.NewMSER()
	defer mser.Close()
	kps := mser.Detect(g)

	labels := vb.NewMat(src.Rows(), src.Cols(), 1, vb.Elem32S)
	view := labels.HostView().([]int32)
	out := make([]vb.MSERKeypoint, 0, len(kps))
	for _, kp := range kps {
		r := kp.Size / 2
		area := int(math.Round(math.Pi * r * r))
		if area < params.MinArea || (params.MaxArea > 0 && area > params.MaxArea) {
			continue
		}
		rect := image.Rect(int(kp.X-r), int(kp.Y-r), int(kp.X+r)+1, int(kp.Y+r)+1).
			Intersect(image.Rect(0, 0, src.Cols(), src.Rows()))
		label := int32(len(out) + 1)
		var m00, m10, m01, m11, m20, m02 float64
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				dx, dy := float64(x)-kp.X, float64(y)-kp.Y
				if dx*dx+dy*dy > r*r {
					continue
				}
				view[y*src.Cols()+x] = label
				fx, fy := float64(x), float64(y)
				m00++
				m10 += fx
				m01 += fy
				m11 += fx * fy
				m20 += fx * fx
				m02 += fy * fy
			}
		}
		out = append(out, vb.MSERKeypoint{
			Keypoint: vb.Point2f{X: float32(kp.X), Y: float32(kp.Y)},
			M10:      m10,
			M01:      m01,
			M11:      m11,
			M20:      m20,
			M02:      m02,
			Rect:     rect,
			Size:     int(m00),
		})
	}
	return out, labels, nil
}

// --- Detectors ---

// Detect runs a Haar cascade (face, car) or the default HOG people
// detector (pedestrian). ModelPath names the cascade file; the HOG
// detector loads a custom SVM only when a path is given.
func (e *Engine) Detect(src *vb.Mat, req vb.DetectRequest) ([]vb.Comp, error) {
	in, err := toGoCV(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	g := gray8(in)
	defer g.Close()

	var rects []image.Rectangle
	switch req.Family {
	case vb.FamilyFace, vb.FamilyCar:
		cascade := gocv.NewCascadeClassifier()
		defer cascade.Close()
		if !cascade.Load(req.ModelPath) {
			return nil, fmt.Errorf("load cascade %q", req.ModelPath)
		}
		minSize := image.Pt(req.Params.Size.Width, req.Params.Size.Height)
		rects = cascade.DetectMultiScaleWithParams(g, 1.1, req.Params.MinNeighbors, req.Params.Flags, minSize, image.Pt(0, 0))
	case vb.FamilyPedestrian:
		if req.ModelPath != "" {
			return nil, fmt.Errorf("custom pedestrian model %q: %w", req.ModelPath, vb.ErrUnsupported)
		}
		hog := gocv.NewHOGDescriptor()
		defer hog.Close()
		people := gocv.HOGDefaultPeopleDetector()
		defer people.Close()
		hog.SetSVMDetector(people)
		rects = hog.DetectMultiScale(g)
	default:
		return nil, fmt.Errorf("detector family %q: %w", req.Family, vb.ErrUnsupported)
	}

	comps := make([]vb.Comp, len(rects))
	for i, r := range rects {
		comps[i] = vb.Comp{Rect: r, Neighbors: req.Params.MinNeighbors}
	}
	return comps, nil
}

// SWT is not provided by OpenCV's core modules.
func (e *Engine) SWT(_ *vb.Mat, _ vb.SWTParams) ([]image.Rectangle, error) {
	return nil, fmt.Errorf("stroke width transform: %w", vb.ErrUnsupported)
}
