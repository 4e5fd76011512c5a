package visionbridge

import "image"

// RawReader builds a matrix from a validated raw RGBA record.
type RawReader interface {
	ReadRGBA(raw RawImage, mode ChannelMode) (*Mat, error)
}

// Transformer holds whole-image operations that produce a new matrix.
type Transformer interface {
	Grayscale(src *Mat) (*Mat, error)
	Canny(src *Mat, size int, low, high float64) (*Mat, error)
	FlipX(src *Mat) (*Mat, error)
	Slice(src *Mat, r image.Rectangle) (*Mat, error)
	Blur(src *Mat, sigma float64) (*Mat, error)
	CloseOutline(src *Mat) (*Mat, error)
}

// TrackerModel is the opaque learning-detection-tracking state.
type TrackerModel interface {
	// Track advances the model from prev to curr.
	Track(prev, curr *Mat) (TrackInfo, error)
	// Box is the model's current object box.
	Box() Comp
	// Top borrows the model's candidate list. It is only valid until the
	// next Track or Close.
	Top() View[[]Comp]
	Close()
}

// TrackerFactory constructs tracker models from a seed frame.
type TrackerFactory interface {
	NewTracker(seed *Mat, box image.Rectangle, params TrackerParams) (TrackerModel, error)
}

// FlowSolver runs sparse optical flow from prev to curr. The result has
// one entry per input point, in order.
type FlowSolver interface {
	Flow(prev, curr *Mat, points []Point2f, params FlowParams) ([]PointStatus, error)
}

// FeatureExtractor extracts keypoints with 128-float descriptors.
type FeatureExtractor interface {
	SIFT(src *Mat, params SIFTParams) ([]Descriptor, error)
}

// RegionDetector runs a model-file based object detector or text detector.
type RegionDetector interface {
	Detect(src *Mat, req DetectRequest) ([]Comp, error)
	SWT(src *Mat, params SWTParams) ([]image.Rectangle, error)
}

// MSERDetector extracts maximally stable regions and a label matrix.
type MSERDetector interface {
	MSER(src, outline *Mat, params MSERParams) ([]MSERKeypoint, *Mat, error)
}

// Engine is the full algorithm surface a backend provides.
type Engine interface {
	RawReader
	Transformer
	TrackerFactory
	FlowSolver
	FeatureExtractor
	RegionDetector
	MSERDetector
}
