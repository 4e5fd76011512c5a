package visionbridge

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
)

// ElemType is the scalar type of a matrix element.
type ElemType int

const (
	Elem8U ElemType = iota
	Elem32S
	Elem32F
	Elem64S
	Elem64F
)

// Size returns the element size in bytes.
func (t ElemType) Size() int {
	switch t {
	case Elem8U:
		return 1
	case Elem32S, Elem32F:
		return 4
	case Elem64S, Elem64F:
		return 8
	}
	return 0
}

func (t ElemType) String() string {
	switch t {
	case Elem8U:
		return "8U"
	case Elem32S:
		return "32S"
	case Elem32F:
		return "32F"
	case Elem64S:
		return "64S"
	case Elem64F:
		return "64F"
	}
	return fmt.Sprintf("ElemType(%d)", int(t))
}

// Mat is a strided dense matrix. Rows are step bytes apart; bytes past
// cols*channels*elemSize in a row are padding and never interpreted.
type Mat struct {
	data     []byte
	rows     int
	cols     int
	step     int
	channels int
	elem     ElemType
	sig      uuid.UUID
	release  func()
}

// NewMat allocates a compact zeroed matrix.
func NewMat(rows, cols, channels int, elem ElemType) *Mat {
	return NewMatWithStep(rows, cols, channels, elem, cols*channels*elem.Size())
}

// NewMatWithStep allocates a zeroed matrix whose rows are step bytes apart.
func NewMatWithStep(rows, cols, channels int, elem ElemType, step int) *Mat {
	checkShape("NewMatWithStep", rows, cols, channels, elem, step)
	return &Mat{
		data:     make([]byte, step*rows),
		rows:     rows,
		cols:     cols,
		step:     step,
		channels: channels,
		elem:     elem,
		sig:      uuid.New(),
	}
}

// NewMatFromBytes wraps data without copying. It fails if data is shorter
// than step*rows.
func NewMatFromBytes(rows, cols, channels int, elem ElemType, step int, data []byte) (*Mat, error) {
	checkShape("NewMatFromBytes", rows, cols, channels, elem, step)
	if len(data) < step*rows {
		return nil, fmt.Errorf("mat buffer holds %d bytes, need %d", len(data), step*rows)
	}
	return &Mat{
		data:     data,
		rows:     rows,
		cols:     cols,
		step:     step,
		channels: channels,
		elem:     elem,
		sig:      uuid.New(),
	}, nil
}

// WrapNative builds a matrix over memory owned by a backend. release runs
// once when the matrix is closed.
func WrapNative(rows, cols, channels int, elem ElemType, step int, data []byte, release func()) (*Mat, error) {
	m, err := NewMatFromBytes(rows, cols, channels, elem, step, data)
	if err != nil {
		if release != nil {
			release()
		}
		return nil, err
	}
	m.release = release
	return m, nil
}

func checkShape(op string, rows, cols, channels int, elem ElemType, step int) {
	if rows < 0 || cols < 0 {
		precondition(op, "negative dimensions %dx%d", cols, rows)
	}
	if channels < 1 || channels > 4 {
		precondition(op, "channel count %d", channels)
	}
	if elem.Size() == 0 {
		precondition(op, "element type %v", elem)
	}
	if step < cols*channels*elem.Size() {
		precondition(op, "step %d shorter than row of %d bytes", step, cols*channels*elem.Size())
	}
}

func (m *Mat) Rows() int      { return m.rows }
func (m *Mat) Cols() int      { return m.cols }
func (m *Mat) Step() int      { return m.step }
func (m *Mat) Channels() int  { return m.channels }
func (m *Mat) Elem() ElemType { return m.elem }
func (m *Mat) Data() []byte   { return m.data }
func (m *Mat) Empty() bool    { return m == nil || m.data == nil || m.rows == 0 || m.cols == 0 }

// Sig identifies the matrix content for memoization.
func (m *Mat) Sig() uuid.UUID { return m.sig }

// SetSig overrides the content signature.
func (m *Mat) SetSig(u uuid.UUID) { m.sig = u }

// RowBytes is the number of meaningful bytes in each row.
func (m *Mat) RowBytes() int {
	return m.cols * m.channels * m.elem.Size()
}

// Row returns the meaningful bytes of row r, excluding padding.
func (m *Mat) Row(r int) []byte {
	off := r * m.step
	return m.data[off : off+m.RowBytes()]
}

// Continuous reports whether rows are packed without padding.
func (m *Mat) Continuous() bool {
	return m.step == m.RowBytes()
}

// layout describes size, channels and element type as rowsxcols/channels/elem.
func (m *Mat) layout() string {
	return fmt.Sprintf("%dx%d/%d/%v", m.rows, m.cols, m.channels, m.elem)
}

func sameLayout(a, b *Mat) bool {
	return a.rows == b.rows && a.cols == b.cols && a.channels == b.channels && a.elem == b.elem
}

// Clone returns a compact copy that owns its memory and keeps the signature.
func (m *Mat) Clone() *Mat {
	rb := m.RowBytes()
	out := &Mat{
		data:     make([]byte, rb*m.rows),
		rows:     m.rows,
		cols:     m.cols,
		step:     rb,
		channels: m.channels,
		elem:     m.elem,
		sig:      m.sig,
	}
	for r := 0; r < m.rows; r++ {
		copy(out.data[r*rb:], m.Row(r))
	}
	return out
}

// HostView returns a zero-copy typed slice over the whole buffer, padding
// included: []uint8, []int32, []float32 or []float64. 64-bit signed
// matrices have no host equivalent and panic.
func (m *Mat) HostView() any {
	if m.elem == Elem64S {
		panic(&UnsupportedConversionError{From: "64S matrix", To: "host array"})
	}
	if len(m.data) == 0 {
		switch m.elem {
		case Elem32S:
			return []int32{}
		case Elem32F:
			return []float32{}
		case Elem64F:
			return []float64{}
		}
		return []uint8{}
	}
	p := unsafe.Pointer(unsafe.SliceData(m.data))
	n := len(m.data) / m.elem.Size()
	switch m.elem {
	case Elem32S:
		return unsafe.Slice((*int32)(p), n)
	case Elem32F:
		return unsafe.Slice((*float32)(p), n)
	case Elem64F:
		return unsafe.Slice((*float64)(p), n)
	}
	return m.data
}

// Close drops the buffer and runs the native release, if any.
func (m *Mat) Close() {
	if m == nil {
		return
	}
	if m.release != nil {
		m.release()
		m.release = nil
	}
	m.data = nil
	m.rows = 0
	m.cols = 0
}
