//go:build purego || js

package cvengine

import (
	"image"

	vb "visionbridge/pkg/visionbridge"
)

// Engine is the pure Go backend. It decodes, converts and filters
// images; learning, flow, feature and detector algorithms report
// visionbridge.ErrUnsupported.
type Engine struct {
	vb.PureReader
}

// New returns the pure Go backend.
func New() *Engine { return &Engine{} }

// Name identifies the backend in logs.
func (e *Engine) Name() string { return "pure" }

func (e *Engine) Grayscale(src *vb.Mat) (*vb.Mat, error) {
	return vb.Grayscale(src), nil
}

func (e *Engine) Canny(_ *vb.Mat, _ int, _, _ float64) (*vb.Mat, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) FlipX(src *vb.Mat) (*vb.Mat, error) {
	return flipX(src), nil
}

func (e *Engine) Slice(src *vb.Mat, r image.Rectangle) (*vb.Mat, error) {
	return slice(src, r), nil
}

func (e *Engine) Blur(src *vb.Mat, sigma float64) (*vb.Mat, error) {
	requirePositiveSigma(sigma)
	if src.Elem() != vb.Elem8U {
		return nil, vb.ErrUnsupported
	}
	return gaussianBlur8U(src, sigma), nil
}

func (e *Engine) CloseOutline(src *vb.Mat) (*vb.Mat, error) {
	requireOneChannel8U("CloseOutline", src)
	return closeOutline(src), nil
}

func (e *Engine) NewTracker(_ *vb.Mat, _ image.Rectangle, _ vb.TrackerParams) (vb.TrackerModel, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) Flow(_, _ *vb.Mat, _ []vb.Point2f, _ vb.FlowParams) ([]vb.PointStatus, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) SIFT(_ *vb.Mat, _ vb.SIFTParams) ([]vb.Descriptor, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) Detect(_ *vb.Mat, _ vb.DetectRequest) ([]vb.Comp, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) SWT(_ *vb.Mat, _ vb.SWTParams) ([]image.Rectangle, error) {
	return nil, vb.ErrUnsupported
}

func (e *Engine) MSER(_, _ *vb.Mat, _ vb.MSERParams) ([]vb.MSERKeypoint, *vb.Mat, error) {
	return nil, nil, vb.ErrUnsupported
}
