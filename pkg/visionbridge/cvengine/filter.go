package cvengine

import (
	"fmt"
	"image"
	"math"

	vb "visionbridge/pkg/visionbridge"
)

func reflectIndex(idx, size int) int {
	if size == 1 {
		return 0
	}
	if idx < 0 {
		idx = -idx
	}
	for idx >= size {
		idx = 2*size - 2 - idx
		if idx < 0 {
			idx = -idx
		}
	}
	return idx
}

func gaussianKernel1D(sigma float64) []float32 {
	// Kernel spans +-3 sigma, at least 3 taps.
	half := int(math.Ceil(3 * sigma))
	if half < 1 {
		half = 1
	}
	size := 2*half + 1
	k := make([]float32, size)
	sum := 0.0
	vals := make([]float64, size)
	for i := 0; i < size; i++ {
		x := float64(i - half)
		vals[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += vals[i]
	}
	for i := range k {
		k[i] = float32(vals[i] / sum)
	}
	return k
}

// gaussianBlur8U blurs each channel of an 8-bit matrix with a separable
// Gaussian and reflected borders.
func gaussianBlur8U(src *vb.Mat, sigma float64) *vb.Mat {
	requirePositiveSigma(sigma)
	rows, cols, ch := src.Rows(), src.Cols(), src.Channels()
	out := vb.NewMat(rows, cols, ch, vb.Elem8U)
	if rows == 0 || cols == 0 {
		return out
	}
	k := gaussianKernel1D(sigma)
	half := len(k) / 2

	temp := make([]float32, rows*cols*ch)
	// Horizontal pass
	for r := 0; r < rows; r++ {
		row := src.Row(r)
		base := r * cols * ch
		for c := 0; c < cols; c++ {
			for z := 0; z < ch; z++ {
				var sum float32
				for i, w := range k {
					cc := reflectIndex(c+i-half, cols)
					sum += float32(row[cc*ch+z]) * w
				}
				temp[base+c*ch+z] = sum
			}
		}
	}
	// Vertical pass, pre-computing row offsets
	rowOffs := make([]int, len(k))
	for r := 0; r < rows; r++ {
		for i := range k {
			rowOffs[i] = reflectIndex(r+i-half, rows) * cols * ch
		}
		dst := out.Row(r)
		for j := range dst {
			var sum float32
			for i, w := range k {
				sum += temp[rowOffs[i]+j] * w
			}
			dst[j] = clamp8(sum)
		}
	}
	return out
}

func clamp8(v float32) byte {
	v = float32(math.Round(float64(v)))
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}

// morph3x3 applies a 3x3 rectangular dilation (max) or erosion (min) to a
// one-channel 8-bit matrix with reflected borders.
func morph3x3(src *vb.Mat, dilate bool) *vb.Mat {
	rows, cols := src.Rows(), src.Cols()
	out := vb.NewMat(rows, cols, 1, vb.Elem8U)
	for r := 0; r < rows; r++ {
		dst := out.Row(r)
		for c := 0; c < cols; c++ {
			v := src.Row(r)[c]
			for dr := -1; dr <= 1; dr++ {
				nrow := src.Row(reflectIndex(r+dr, rows))
				for dc := -1; dc <= 1; dc++ {
					n := nrow[reflectIndex(c+dc, cols)]
					if dilate && n > v || !dilate && n < v {
						v = n
					}
				}
			}
			dst[c] = v
		}
	}
	return out
}

// closeOutline fills one-pixel gaps in a binary outline: dilation then
// erosion.
func closeOutline(src *vb.Mat) *vb.Mat {
	return morph3x3(morph3x3(src, true), false)
}

func flipX(src *vb.Mat) *vb.Mat {
	out := vb.NewMat(src.Rows(), src.Cols(), src.Channels(), src.Elem())
	px := src.Channels() * src.Elem().Size()
	cols := src.Cols()
	for r := 0; r < src.Rows(); r++ {
		in, dst := src.Row(r), out.Row(r)
		for c := 0; c < cols; c++ {
			copy(dst[(cols-1-c)*px:(cols-c)*px], in[c*px:(c+1)*px])
		}
	}
	return out
}

func slice(src *vb.Mat, rect image.Rectangle) *vb.Mat {
	px := src.Channels() * src.Elem().Size()
	out := vb.NewMat(rect.Dy(), rect.Dx(), src.Channels(), src.Elem())
	for y := 0; y < rect.Dy(); y++ {
		copy(out.Row(y), src.Row(rect.Min.Y+y)[rect.Min.X*px:rect.Max.X*px])
	}
	return out
}

func requirePositiveSigma(sigma float64) {
	if !(sigma > 0) {
		panic(&vb.PreconditionError{Op: "Blur", Detail: fmt.Sprintf("sigma %g must be positive", sigma)})
	}
}

func requireOneChannel8U(op string, m *vb.Mat) {
	if m.Elem() != vb.Elem8U || m.Channels() != 1 {
		panic(&vb.PreconditionError{Op: op, Detail: "want 1-channel 8U"})
	}
}
