package visionbridge

import (
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Image is a host-facing image. It owns one matrix handle; in-place
// operations install a new matrix and release the old one once nothing
// else shares it.
type Image struct {
	engine Engine
	mat    *Handle[*Mat]
	cache  *MatCache
}

// ImageOption configures an Image.
type ImageOption func(*Image)

// WithCache memoizes derived matrices in c.
func WithCache(c *MatCache) ImageOption {
	return func(im *Image) { im.cache = c }
}

// NewImage decodes a raw RGBA record in the given channel mode.
func NewImage(engine Engine, raw RawImage, mode ChannelMode, opts ...ImageOption) (*Image, error) {
	h, err := Decode(engine, raw, mode)
	if err != nil {
		return nil, err
	}
	return newImage(engine, h, opts), nil
}

// ReadImage pulls pixels from src and decodes them.
func ReadImage(engine Engine, src ImageSource, mode ChannelMode, opts ...ImageOption) (*Image, error) {
	raw, err := src.ReadImageData()
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}
	return NewImage(engine, raw, mode, opts...)
}

// ImageFromMat wraps a matrix handle. The image shares h.
func ImageFromMat(engine Engine, h *Handle[*Mat], opts ...ImageOption) *Image {
	return newImage(engine, h.Clone(), opts)
}

func newImage(engine Engine, h *Handle[*Mat], opts []ImageOption) *Image {
	im := &Image{engine: engine, mat: h}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Convert returns an image in mode. A matching channel layout shares the
// matrix; color to gray converts. Gray to color has no defined conversion
// and panics.
func (im *Image) Convert(mode ChannelMode) (*Image, error) {
	m := im.mat.Get()
	if m.Elem() != Elem8U {
		precondition("Image.Convert", "element type %v, want 8U", m.Elem())
	}
	have, ok := ModeFor(m.Channels())
	if !ok || !mode.Valid() {
		panic(&UnsupportedConversionError{From: fmt.Sprintf("%d-channel", m.Channels()), To: mode.String()})
	}
	out := &Image{engine: im.engine, mat: im.mat.Clone(), cache: im.cache}
	switch {
	case have == mode:
		return out, nil
	case have == ModeRGBColor && mode == ModeGray:
		if err := out.apply("grayscale", im.engine.Grayscale); err != nil {
			out.Close()
			return nil, err
		}
		return out, nil
	}
	out.Close()
	panic(&UnsupportedConversionError{From: have.String(), To: mode.String()})
}

func (im *Image) Width() int    { return im.mat.Get().Cols() }
func (im *Image) Height() int   { return im.mat.Get().Rows() }
func (im *Image) Channels() int { return im.mat.Get().Channels() }

// Mat returns a new owner of the current matrix.
func (im *Image) Mat() *Handle[*Mat] { return im.mat.Clone() }

// Write encodes the image to RGBA and hands it to w.
func (im *Image) Write(w ImageWriter) error {
	m := im.mat.Get()
	return w.WriteImageData(EncodeRGBA(m), m.Cols(), m.Rows())
}

// apply runs op on the current matrix and installs the result. key names
// the operation and its arguments for the cache.
func (im *Image) apply(key string, op func(*Mat) (*Mat, error)) error {
	src := im.mat.Get()
	sig := DeriveSig(src.Sig(), key)
	if h, ok := im.cache.Get(sig); ok {
		im.mat.Assign(h)
		h.Close()
		return nil
	}
	out, err := op(src)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if sig == uuid.Nil {
		sig = uuid.New()
	}
	out.SetSig(sig)
	im.mat.Replace(out)
	im.cache.Put(im.mat)
	return nil
}

// Canny replaces the image with its edge map.
func (im *Image) Canny(size int, low, high float64) error {
	return im.apply(fmt.Sprintf("canny:%d:%g:%g", size, low, high), func(m *Mat) (*Mat, error) {
		return im.engine.Canny(m, size, low, high)
	})
}

// FlipX mirrors the image horizontally.
func (im *Image) FlipX() error {
	return im.apply("flipx", im.engine.FlipX)
}

// Slice crops the image to r.
func (im *Image) Slice(r image.Rectangle) error {
	b := image.Rect(0, 0, im.Width(), im.Height())
	if r.Empty() || !r.In(b) {
		precondition("Image.Slice", "rect %v empty or outside %v", r, b)
	}
	return im.apply(fmt.Sprintf("slice:%d:%d:%d:%d", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y), func(m *Mat) (*Mat, error) {
		return im.engine.Slice(m, r)
	})
}

// Blur applies a Gaussian blur with the given sigma, which must be positive.
func (im *Image) Blur(sigma float64) error {
	if !(sigma > 0) {
		precondition("Image.Blur", "sigma %g must be positive", sigma)
	}
	return im.apply(fmt.Sprintf("blur:%g", sigma), func(m *Mat) (*Mat, error) {
		return im.engine.Blur(m, sigma)
	})
}

// CloseOutline closes gaps in a binary outline.
func (im *Image) CloseOutline() error {
	return im.apply("close_outline", im.engine.CloseOutline)
}

// SWTDetect finds text word boxes.
func (im *Image) SWTDetect(params SWTParams) ([]image.Rectangle, error) {
	words, err := im.engine.SWT(im.mat.Get(), params)
	if err != nil {
		return nil, fmt.Errorf("swt: %w", err)
	}
	return nonNil(words), nil
}

// Detect runs a model-file based detector.
func (im *Image) Detect(req DetectRequest) ([]Comp, error) {
	comps, err := im.engine.Detect(im.mat.Get(), req)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", req.Family, err)
	}
	return nonNil(comps), nil
}

// MSER extracts stable regions, using outline as the edge guide. The
// returned label matrix is owned by the caller.
func (im *Image) MSER(outline *Image, params MSERParams) ([]MSERKeypoint, *Handle[*Mat], error) {
	kps, labels, err := im.engine.MSER(im.mat.Get(), outline.mat.Get(), params)
	if err != nil {
		return nil, nil, fmt.Errorf("mser: %w", err)
	}
	return nonNil(kps), Own(MatKind, labels), nil
}

// SIFTMatchResult holds the accepted pairs and the keypoints of both
// images. Match.Target indexes ImageKeypoints, Match.Query indexes
// ObjectKeypoints.
type SIFTMatchResult struct {
	Matches         []Match    `json:"matches"`
	ImageKeypoints  []Keypoint `json:"image_keypoints"`
	ObjectKeypoints []Keypoint `json:"object_keypoints"`
}

// SIFTMatch extracts features from both images and matches the object's
// descriptors against this image's.
func (im *Image) SIFTMatch(object *Image, params SIFTParams) (SIFTMatchResult, error) {
	objDesc, err := im.engine.SIFT(object.mat.Get(), params)
	if err != nil {
		return SIFTMatchResult{}, fmt.Errorf("sift object: %w", err)
	}
	imgDesc, err := im.engine.SIFT(im.mat.Get(), params)
	if err != nil {
		return SIFTMatchResult{}, fmt.Errorf("sift image: %w", err)
	}
	return SIFTMatchResult{
		Matches:         MatchDescriptors(objDesc, imgDesc),
		ImageKeypoints:  lo.Map(imgDesc, keypointOf),
		ObjectKeypoints: lo.Map(objDesc, keypointOf),
	}, nil
}

func keypointOf(d Descriptor, _ int) Keypoint { return d.Keypoint }

func nonNil[E any](s []E) []E {
	if s == nil {
		return []E{}
	}
	return s
}

// Close releases the image's matrix.
func (im *Image) Close() {
	im.mat.Close()
}
