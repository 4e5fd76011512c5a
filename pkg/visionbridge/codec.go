package visionbridge

import (
	"fmt"
	"image"
	"image/draw"
)

// RawImage is the host's packed pixel record: row-major RGBA, exactly
// Width*Height*4 bytes, no row padding.
type RawImage struct {
	Pix    []byte
	Width  int
	Height int
}

// Validate checks the record shape.
func (r RawImage) Validate() error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrBadRawImage, r.Width, r.Height)
	}
	if len(r.Pix) != r.Width*r.Height*4 {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrBadRawImage, r.Width, r.Height, r.Width*r.Height*4, len(r.Pix))
	}
	return nil
}

// FromImage packs any image into a RawImage.
func FromImage(img image.Image) RawImage {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return RawImage{Pix: rgba.Pix, Width: b.Dx(), Height: b.Dy()}
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return RawImage{Pix: rgba.Pix, Width: b.Dx(), Height: b.Dy()}
}

// ImageSource supplies host pixels, e.g. a canvas or a decoded file.
type ImageSource interface {
	ReadImageData() (RawImage, error)
}

// ImageWriter receives encoded RGBA pixels.
type ImageWriter interface {
	WriteImageData(pix []byte, width, height int) error
}

// EncodeRGBA converts an 8-bit matrix with 1 or 3 channels to packed RGBA.
func EncodeRGBA(m *Mat) []byte {
	out := make([]byte, m.rows*m.cols*4)
	EncodeRGBAInto(out, m)
	return out
}

// ToImage converts an 8-bit matrix with 1 or 3 channels to an *image.RGBA.
func ToImage(m *Mat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.cols, m.rows))
	EncodeRGBAInto(img.Pix, m)
	return img
}

// EncodeRGBAInto writes the packed RGBA form of m into dst, which must hold
// at least rows*cols*4 bytes.
//
// Three-channel pixels are copied with alpha 255. A one-channel matrix
// whose maximum value is exactly 1 is treated as a binary mask and
// expanded to black/white; any other one-channel matrix is literal gray.
func EncodeRGBAInto(dst []byte, m *Mat) {
	if m.elem != Elem8U {
		precondition("EncodeRGBA", "element type %v, want 8U", m.elem)
	}
	if m.channels != 1 && m.channels != 3 {
		precondition("EncodeRGBA", "%d channels, want 1 or 3", m.channels)
	}
	if len(dst) < m.rows*m.cols*4 {
		precondition("EncodeRGBA", "destination holds %d bytes, need %d", len(dst), m.rows*m.cols*4)
	}

	o := 0
	if m.channels == 3 {
		for r := 0; r < m.rows; r++ {
			row := m.Row(r)
			for c := 0; c < m.cols; c++ {
				dst[o] = row[c*3]
				dst[o+1] = row[c*3+1]
				dst[o+2] = row[c*3+2]
				dst[o+3] = 255
				o += 4
			}
		}
		return
	}

	var maxVal byte
	for r := 0; r < m.rows; r++ {
		for _, v := range m.Row(r) {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	binary := maxVal == 1
	for r := 0; r < m.rows; r++ {
		for _, v := range m.Row(r) {
			if binary && v != 0 {
				v = 255
			}
			dst[o] = v
			dst[o+1] = v
			dst[o+2] = v
			dst[o+3] = 255
			o += 4
		}
	}
}

// Decode hands a host pixel record to the backend reader in the requested
// channel mode and takes ownership of the resulting matrix.
func Decode(reader RawReader, raw RawImage, mode ChannelMode) (*Handle[*Mat], error) {
	if !mode.Valid() {
		precondition("Decode", "channel mode %v", mode)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	m, err := reader.ReadRGBA(raw, mode)
	if err != nil {
		return nil, fmt.Errorf("decode %dx%d %v: %w", raw.Width, raw.Height, mode, err)
	}
	h := Own(MatKind, m)
	if m.elem != Elem8U || m.channels != mode.Channels() {
		h.Close()
		precondition("Decode", "reader produced %d-channel %v for mode %v", m.channels, m.elem, mode)
	}
	return h, nil
}

// PureReader decodes raw RGBA in Go.
type PureReader struct{}

// ReadRGBA implements RawReader.
func (PureReader) ReadRGBA(raw RawImage, mode ChannelMode) (*Mat, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	m := NewMat(raw.Height, raw.Width, mode.Channels(), Elem8U)
	src := raw.Pix
	switch mode {
	case ModeGray:
		for i := 0; i < raw.Width*raw.Height; i++ {
			m.data[i] = grayOf(src[i*4], src[i*4+1], src[i*4+2])
		}
	case ModeRGBColor:
		for i := 0; i < raw.Width*raw.Height; i++ {
			m.data[i*3] = src[i*4]
			m.data[i*3+1] = src[i*4+1]
			m.data[i*3+2] = src[i*4+2]
		}
	default:
		precondition("ReadRGBA", "channel mode %v", mode)
	}
	return m, nil
}

// Grayscale converts an 8-bit 3-channel matrix to a new 8-bit 1-channel one.
func Grayscale(m *Mat) *Mat {
	if m.elem != Elem8U || m.channels != 3 {
		precondition("Grayscale", "%d-channel %v, want 3-channel 8U", m.channels, m.elem)
	}
	out := NewMat(m.rows, m.cols, 1, Elem8U)
	for r := 0; r < m.rows; r++ {
		row := m.Row(r)
		dst := out.Row(r)
		for c := range dst {
			dst[c] = grayOf(row[c*3], row[c*3+1], row[c*3+2])
		}
	}
	return out
}

func grayOf(r, g, b byte) byte {
	return byte((int(r)*6969 + int(g)*23434 + int(b)*2365) >> 15)
}
