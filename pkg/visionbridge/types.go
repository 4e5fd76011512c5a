package visionbridge

import (
	"fmt"
	"image"
)

// ChannelMode selects how a packed RGBA buffer is interpreted on decode.
type ChannelMode int

const (
	ModeGray     ChannelMode = 1
	ModeRGBColor ChannelMode = 3
)

func (m ChannelMode) String() string {
	switch m {
	case ModeGray:
		return "Gray"
	case ModeRGBColor:
		return "RGBColor"
	default:
		return fmt.Sprintf("ChannelMode(%d)", int(m))
	}
}

// Channels returns the matrix channel count produced by the mode.
func (m ChannelMode) Channels() int {
	return int(m)
}

// Valid reports whether m is one of the defined modes.
func (m ChannelMode) Valid() bool {
	return m == ModeGray || m == ModeRGBColor
}

// ModeFor returns the mode matching a matrix channel count.
func ModeFor(channels int) (ChannelMode, bool) {
	switch channels {
	case 1:
		return ModeGray, true
	case 3:
		return ModeRGBColor, true
	}
	return 0, false
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point2f is a sub-pixel 2D coordinate.
type Point2f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// PointStatus is a flow result for one input point.
type PointStatus struct {
	Point  Point2f `json:"point"`
	Status bool    `json:"status"`
	Error  float32 `json:"error"`
}

// Classification is an id/confidence pair attached to a detection.
type Classification struct {
	ID         int     `json:"id"`
	Confidence float32 `json:"confidence"`
}

// Comp is a scored rectangle.
type Comp struct {
	Rect           image.Rectangle `json:"rect"`
	Neighbors      int             `json:"neighbors"`
	Classification Classification  `json:"classification"`
}

// Keypoint is a feature location with its scale-space coordinates.
type Keypoint struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Octave int     `json:"octave"`
	Level  int     `json:"level"`
	Scale  float32 `json:"scale"`
	Angle  float32 `json:"angle"`
}

// MSERKeypoint is a maximally stable region with its moments.
type MSERKeypoint struct {
	Keypoint Point2f         `json:"keypoint"`
	M01      float64         `json:"m01"`
	M02      float64         `json:"m02"`
	M10      float64         `json:"m10"`
	M11      float64         `json:"m11"`
	M20      float64         `json:"m20"`
	Rect     image.Rectangle `json:"rect"`
	Size     int             `json:"size"`
}

// TrackInfo carries the diagnostics of one tracking step.
type TrackInfo struct {
	PerformTrack     bool `json:"perform_track"`
	PerformLearn     bool `json:"perform_learn"`
	TrackSuccess     bool `json:"track_success"`
	FernsDetects     int  `json:"ferns_detects"`
	NNCDetects       int  `json:"nnc_detects"`
	ClusteredDetects int  `json:"clustered_detects"`
	ConfidentMatches int  `json:"confident_matches"`
	CloseMatches     int  `json:"close_matches"`
}

// TrackerParams configures the learning/detection/tracking model. The
// fields are handed to the tracker factory unchanged.
type TrackerParams struct {
	// Algorithm picks the backend tracker implementation ("mil", "kcf", "csrt").
	Algorithm               string  `json:"algorithm"`
	WinSize                 Size    `json:"win_size"`
	Level                   int     `json:"level"`
	MinForwardBackwardError float32 `json:"min_forward_backward_error"`
	MinEigen                float32 `json:"min_eigen"`
	MinWin                  int     `json:"min_win"`
	Interval                int     `json:"interval"`
	Shift                   float64 `json:"shift"`
	TopN                    int     `json:"top_n"`
	Rotation                int     `json:"rotation"`
	IncludeOverlap          float32 `json:"include_overlap"`
	ExcludeOverlap          float32 `json:"exclude_overlap"`
	Structs                 int     `json:"structs"`
	Features                int     `json:"features"`
	ValidateSet             float32 `json:"validate_set"`
	NNCSame                 float32 `json:"nnc_same"`
	NNCThres                float32 `json:"nnc_thres"`
	NNCVerify               float32 `json:"nnc_verify"`
	NNCBeyond               float32 `json:"nnc_beyond"`
	NNCCollect              float32 `json:"nnc_collect"`
	BadPatches              int     `json:"bad_patches"`
	NewDeform               int     `json:"new_deform"`
	TrackDeform             int     `json:"track_deform"`
	NewDeformAngle          float32 `json:"new_deform_angle"`
	TrackDeformAngle        float32 `json:"track_deform_angle"`
	NewDeformScale          float32 `json:"new_deform_scale"`
	TrackDeformScale        float32 `json:"track_deform_scale"`
	NewDeformShift          float32 `json:"new_deform_shift"`
	TrackDeformShift        float32 `json:"track_deform_shift"`
}

// NewTrackerParams returns TrackerParams with default values.
func NewTrackerParams() TrackerParams {
	return TrackerParams{
		Algorithm:               "mil",
		WinSize:                 Size{Width: 15, Height: 15},
		Level:                   5,
		MinForwardBackwardError: 100,
		MinEigen:                0.025,
		MinWin:                  20,
		Interval:                3,
		Shift:                   0.1,
		TopN:                    100,
		Rotation:                0,
		IncludeOverlap:          0.7,
		ExcludeOverlap:          0.2,
		Structs:                 40,
		Features:                18,
		ValidateSet:             0.5,
		NNCSame:                 0.95,
		NNCThres:                0.65,
		NNCVerify:               0.7,
		NNCBeyond:               0.8,
		NNCCollect:              0.5,
		BadPatches:              100,
		NewDeform:               20,
		TrackDeform:             10,
		NewDeformAngle:          20,
		TrackDeformAngle:        10,
		NewDeformScale:          0.02,
		TrackDeformScale:        0.02,
		NewDeformShift:          0.02,
		TrackDeformShift:        0.02,
	}
}

// FlowParams configures the sparse Lucas-Kanade solver.
type FlowParams struct {
	WinSize  Size    `json:"win_size"`
	Level    int     `json:"level"`
	MinEigen float32 `json:"min_eigen"`
}

// NewFlowParams derives the flow defaults from the tracker defaults so both
// sessions see the same pyramid configuration.
func NewFlowParams() FlowParams {
	t := NewTrackerParams()
	return FlowParams{
		WinSize:  t.WinSize,
		Level:    t.Level,
		MinEigen: t.MinEigen,
	}
}

// SIFTParams configures keypoint extraction.
type SIFTParams struct {
	Up2x          bool    `json:"up2x"`
	NOctaves      int     `json:"noctaves"`
	NLevels       int     `json:"nlevels"`
	EdgeThreshold float32 `json:"edge_threshold"`
	PeakThreshold float32 `json:"peak_threshold"`
	NormThreshold float32 `json:"norm_threshold"`
}

// NewSIFTParams returns SIFTParams with default values.
func NewSIFTParams() SIFTParams {
	return SIFTParams{
		Up2x:          true,
		NOctaves:      3,
		NLevels:       6,
		EdgeThreshold: 10,
		PeakThreshold: 0,
		NormThreshold: 0,
	}
}

// MSERDirection selects which intensity polarity MSER looks for.
type MSERDirection int

const (
	MSERDarkToBright MSERDirection = 0
	MSERBrightToDark MSERDirection = 1
)

// MSERParams configures maximally stable extremal region extraction.
type MSERParams struct {
	MinArea       int           `json:"min_area"`
	MaxArea       int           `json:"max_area"`
	MinDiversity  float32       `json:"min_diversity"`
	AreaThreshold float64       `json:"area_threshold"`
	MinMargin     float64       `json:"min_margin"`
	MaxEvolution  int           `json:"max_evolution"`
	EdgeBlurSigma float64       `json:"edge_blur_sigma"`
	Delta         int           `json:"delta"`
	MaxVariance   float32       `json:"max_variance"`
	Direction     MSERDirection `json:"direction"`
}

// NewMSERParams returns MSERParams with default values.
func NewMSERParams() MSERParams {
	return MSERParams{
		MinArea:       60,
		MaxArea:       100000,
		MinDiversity:  0.2,
		AreaThreshold: 1.01,
		MinMargin:     0.003,
		MaxEvolution:  200,
		EdgeBlurSigma: 1.7320508075688772,
		Delta:         5,
		MaxVariance:   0.25,
		Direction:     MSERDarkToBright,
	}
}

// SWTParams configures stroke-width text detection.
type SWTParams struct {
	Interval            int        `json:"interval"`
	MinNeighbors        int        `json:"min_neighbors"`
	ScaleInvariant      bool       `json:"scale_invariant"`
	Direction           int        `json:"direction"`
	SameWordThresh      [2]float64 `json:"same_word_thresh"`
	Size                int        `json:"size"`
	LowThresh           int        `json:"low_thresh"`
	HighThresh          int        `json:"high_thresh"`
	MaxHeight           int        `json:"max_height"`
	MinHeight           int        `json:"min_height"`
	MinArea             int        `json:"min_area"`
	LetterOccludeThresh int        `json:"letter_occlude_thresh"`
	AspectRatio         float64    `json:"aspect_ratio"`
	StdRatio            float64    `json:"std_ratio"`
	ThicknessRatio      float64    `json:"thickness_ratio"`
	HeightRatio         float64    `json:"height_ratio"`
	IntensityThresh     int        `json:"intensity_thresh"`
	DistanceRatio       float64    `json:"distance_ratio"`
	IntersectRatio      float64    `json:"intersect_ratio"`
	ElongateRatio       float64    `json:"elongate_ratio"`
	LetterThresh        int        `json:"letter_thresh"`
	Breakdown           bool       `json:"breakdown"`
	BreakdownRatio      float64    `json:"breakdown_ratio"`
}

// NewSWTParams returns SWTParams with default values.
func NewSWTParams() SWTParams {
	return SWTParams{
		Interval:            1,
		MinNeighbors:        1,
		ScaleInvariant:      false,
		Direction:           1,
		SameWordThresh:      [2]float64{0.1, 0.8},
		Size:                3,
		LowThresh:           124,
		HighThresh:          204,
		MaxHeight:           300,
		MinHeight:           8,
		MinArea:             38,
		LetterOccludeThresh: 3,
		AspectRatio:         8,
		StdRatio:            0.83,
		ThicknessRatio:      1.5,
		HeightRatio:         1.7,
		IntensityThresh:     31,
		DistanceRatio:       2.9,
		IntersectRatio:      1.3,
		ElongateRatio:       1.9,
		LetterThresh:        3,
		Breakdown:           true,
		BreakdownRatio:      1.0,
	}
}

// DetectorFamily names a region detector.
type DetectorFamily string

const (
	FamilyFace       DetectorFamily = "face"
	FamilyPedestrian DetectorFamily = "pedestrian"
	FamilyCar        DetectorFamily = "car"
)

// DetectParams is the parameter record shared by the region detectors.
type DetectParams struct {
	MinNeighbors int     `json:"min_neighbors"`
	Flags        int     `json:"flags"`
	StepThrough  int     `json:"step_through"`
	Interval     int     `json:"interval"`
	Threshold    float32 `json:"threshold"`
	Size         Size    `json:"size"`
}

// NewDetectParams returns DetectParams with default values.
func NewDetectParams() DetectParams {
	return DetectParams{
		MinNeighbors: 1,
		StepThrough:  4,
		Interval:     5,
		Size:         Size{Width: 48, Height: 48},
	}
}

// DetectRequest selects a detector family, the model file it loads and
// the parameters handed to it.
type DetectRequest struct {
	Family    DetectorFamily `json:"family"`
	ModelPath string         `json:"model_path"`
	Params    DetectParams   `json:"params"`
}
