package snapio

/* This file handles decoding on-disk values of any supported DType into
float64 arrays. Much of this code is just type switches. */

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
)

// Buffer holds the typed scratch arrays that raw values are read into before
// being converted to float64. Reusing the same Buffer between reads avoids
// most heap allocations.
type Buffer struct {
	f32 []float32
	f64 []float64
	i32 []int32
	i64 []int64
	u32 []uint32
	u64 []uint64
}

// Read reads exactly n values of type dt from rd, converts them to float64,
// and writes them to out, which is expanded if needed. The expanded out is
// returned. Pass nil for out to get a freshly allocated array.
func (buf *Buffer) Read(
	rd io.Reader, dt amr.DType, n int, out []float64,
) ([]float64, error) {
	out, _ = expand(out, n).([]float64)

	var err error
	switch {
	case dt.Kind == amr.Float && dt.Size == 4:
		buf.f32, _ = expand(buf.f32, n).([]float32)
		err = binary.Read(rd, dt.Order, buf.f32)
		for i := range buf.f32 { out[i] = float64(buf.f32[i]) }
	case dt.Kind == amr.Float && dt.Size == 8:
		// Already the right type, so read straight into the output.
		err = binary.Read(rd, dt.Order, out)
	case dt.Kind == amr.Int && dt.Size == 4:
		buf.i32, _ = expand(buf.i32, n).([]int32)
		err = binary.Read(rd, dt.Order, buf.i32)
		for i := range buf.i32 { out[i] = float64(buf.i32[i]) }
	case dt.Kind == amr.Int && dt.Size == 8:
		buf.i64, _ = expand(buf.i64, n).([]int64)
		err = binary.Read(rd, dt.Order, buf.i64)
		for i := range buf.i64 { out[i] = float64(buf.i64[i]) }
	case dt.Kind == amr.Uint && dt.Size == 4:
		buf.u32, _ = expand(buf.u32, n).([]uint32)
		err = binary.Read(rd, dt.Order, buf.u32)
		for i := range buf.u32 { out[i] = float64(buf.u32[i]) }
	case dt.Kind == amr.Uint && dt.Size == 8:
		buf.u64, _ = expand(buf.u64, n).([]uint64)
		err = binary.Read(rd, dt.Order, buf.u64)
		for i := range buf.u64 { out[i] = float64(buf.u64[i]) }
	default:
		return nil, errors.Errorf("'%s' is not a supported dtype. Only 4- and "+
			"8-byte floats, ints, and uints are supported.", dt)
	}

	if err != nil { return nil, err }
	return out, nil
}

// expand expands an array to have size n.
func expand(x interface{}, n int) interface{} {
	switch xx := x.(type) {
	case []float32:
		m := len(xx)
		if m < n { xx = append(xx, make([]float32, n-m)...) }
		return xx[:n]
	case []float64:
		m := len(xx)
		if m < n { xx = append(xx, make([]float64, n-m)...) }
		return xx[:n]
	case []int32:
		m := len(xx)
		if m < n { xx = append(xx, make([]int32, n-m)...) }
		return xx[:n]
	case []int64:
		m := len(xx)
		if m < n { xx = append(xx, make([]int64, n-m)...) }
		return xx[:n]
	case []uint32:
		m := len(xx)
		if m < n { xx = append(xx, make([]uint32, n-m)...) }
		return xx[:n]
	case []uint64:
		m := len(xx)
		if m < n { xx = append(xx, make([]uint64, n-m)...) }
		return xx[:n]
	}
	g_error.Internal("(Supposedly) impossible type configuration: %T.", x)
	return nil
}

// column returns every stride-th element of x, starting at offset. This
// recovers one field from an array-of-structs block.
func column(x []float64, offset, stride int) []float64 {
	if stride <= 0 || offset >= stride { return []float64{ } }
	out := make([]float64, 0, len(x) / stride)
	for i := offset; i < len(x); i += stride {
		out = append(out, x[i])
	}
	return out
}

// applyMask returns the elements of x whose mask entry is true.
func applyMask(x []float64, mask []bool) []float64 {
	out := []float64{ }
	for i := range mask {
		if mask[i] { out = append(out, x[i]) }
	}
	return out
}
