package cvengine

import (
	"fmt"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vb "visionbridge/pkg/visionbridge"
)

func grayMat(t *testing.T, rows, cols int, px ...byte) *vb.Mat {
	t.Helper()
	m, err := vb.NewMatFromBytes(rows, cols, 1, vb.Elem8U, cols, px)
	require.NoError(t, err)
	return m
}

func TestReflectIndex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, reflectIndex(-1, 5))
	assert.Equal(t, 3, reflectIndex(5, 5))
	assert.Equal(t, 2, reflectIndex(2, 5))
	assert.Equal(t, 0, reflectIndex(3, 1))
}

func TestGaussianKernel1D_Normalized(t *testing.T) {
	t.Parallel()
	k := gaussianKernel1D(1.5)
	assert.Len(t, k, 11)
	var sum float32
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, k[0], k[len(k)-1])
}

func TestGaussianBlur8U_Constant(t *testing.T) {
	t.Parallel()
	px := make([]byte, 6*6*3)
	for i := range px {
		px[i] = 80
	}
	src, err := vb.NewMatFromBytes(6, 6, 3, vb.Elem8U, 18, px)
	require.NoError(t, err)

	out := gaussianBlur8U(src, 2)
	assert.Equal(t, 3, out.Channels())
	for _, v := range out.Data() {
		assert.Equal(t, byte(80), v)
	}
}

func TestGaussianBlur8U_Spreads(t *testing.T) {
	t.Parallel()
	src := grayMat(t, 1, 5, 0, 0, 255, 0, 0)
	out := gaussianBlur8U(src, 1)
	row := out.Row(0)
	assert.Less(t, row[2], byte(255))
	assert.Greater(t, row[1], byte(0))
	assert.Equal(t, row[1], row[3])
}

func TestGaussianBlur8U_RejectsNonPositiveSigma(t *testing.T) {
	t.Parallel()
	for _, sigma := range []float64{0, -1, math.NaN()} {
		src := grayMat(t, 1, 3, 10, 20, 30)
		assert.PanicsWithValue(t,
			&vb.PreconditionError{Op: "Blur", Detail: fmt.Sprintf("sigma %g must be positive", sigma)},
			func() { gaussianBlur8U(src, sigma) })
		assert.Equal(t, []byte{10, 20, 30}, src.Data())
	}
}

func TestCloseOutline_FillsGap(t *testing.T) {
	t.Parallel()
	src := grayMat(t, 5, 5,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		1, 1, 0, 1, 1,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
	)
	out := closeOutline(src)
	assert.Equal(t, []byte{1, 1, 1, 1, 1}, out.Row(2))
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, out.Row(0))
}

func TestFlipX(t *testing.T) {
	t.Parallel()
	m, err := vb.NewMatFromBytes(1, 2, 3, vb.Elem8U, 8, []byte{1, 2, 3, 4, 5, 6, 9, 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6, 1, 2, 3}, flipX(m).Row(0))
}

func TestSlice(t *testing.T) {
	t.Parallel()
	m := grayMat(t, 3, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	out := slice(m, image.Rect(1, 1, 3, 3))
	assert.Equal(t, []byte{5, 6, 8, 9}, out.Data())
}
