package snapio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/phil-mansfield/boxio/lib/amr"
	"github.com/phil-mansfield/boxio/lib/eq"
)

func TestBufferRead(t *testing.T) {
	exp := []float64{4, 8, 15, 16, 23, 42}

	tests := []struct {
		dtype string
		data interface{}
	}{
		{"<f4", []float32{4, 8, 15, 16, 23, 42}},
		{">f4", []float32{4, 8, 15, 16, 23, 42}},
		{"<f8", []float64{4, 8, 15, 16, 23, 42}},
		{">f8", []float64{4, 8, 15, 16, 23, 42}},
		{"<i4", []int32{4, 8, 15, 16, 23, 42}},
		{">i8", []int64{4, 8, 15, 16, 23, 42}},
		{"<u4", []uint32{4, 8, 15, 16, 23, 42}},
		{"<u8", []uint64{4, 8, 15, 16, 23, 42}},
	}

	buf := &Buffer{ }
	for i := range tests {
		dt, err := amr.ParseDType(tests[i].dtype)
		if err != nil {
			t.Errorf("%d) Could not parse dtype: %s", i, err.Error())
			continue
		}

		rd := bytes.NewReader(arrayToBytes(dt.Order, tests[i].data))
		out, err := buf.Read(rd, dt, len(exp), nil)
		if err != nil {
			t.Errorf("%d) Expected read to succeed, got '%s'.", i, err.Error())
		} else if !eq.Float64s(out, exp) {
			t.Errorf("%d) Expected %v, got %v.", i, exp, out)
		}
	}
}

func TestBufferReuse(t *testing.T) {
	buf := &Buffer{ }
	order := binary.LittleEndian

	out := make([]float64, 10)
	rd := bytes.NewReader(arrayToBytes(order, []float32{1, 2, 3}))
	out, err := buf.Read(rd, amr.Float32, 3, out)
	if err != nil { t.Fatal(err.Error()) }
	if !eq.Float64s(out, []float64{1, 2, 3}) {
		t.Errorf("Expected out = [1 2 3], got %v.", out)
	}

	rd = bytes.NewReader(arrayToBytes(order, []float32{5, 6, 7, 8, 9}))
	out, err = buf.Read(rd, amr.Float32, 5, out)
	if err != nil { t.Fatal(err.Error()) }
	if !eq.Float64s(out, []float64{5, 6, 7, 8, 9}) {
		t.Errorf("Expected out = [5 6 7 8 9], got %v.", out)
	}
}

func TestBufferErrors(t *testing.T) {
	buf := &Buffer{ }

	rd := bytes.NewReader(arrayToBytes(binary.LittleEndian, []float64{1, 2}))
	if _, err := buf.Read(rd, amr.Float64, 3, nil); err == nil {
		t.Errorf("Expected a short read to fail.")
	}

	half := amr.DType{Kind: amr.Float, Size: 2, Order: binary.LittleEndian}
	rd = bytes.NewReader(make([]byte, 16))
	if _, err := buf.Read(rd, half, 2, nil); err == nil {
		t.Errorf("Expected %s to be unsupported.", half)
	}
}

func TestColumnAndMask(t *testing.T) {
	// Three records of four values each.
	x := []float64{0, 1, 2, 3, 10, 11, 12, 13, 20, 21, 22, 23}

	tests := []struct {
		offset, stride int
		exp []float64
	}{
		{0, 4, []float64{0, 10, 20}},
		{2, 4, []float64{2, 12, 22}},
		{3, 4, []float64{3, 13, 23}},
		{4, 4, []float64{ }},
		{1, 12, []float64{1}},
	}

	for i := range tests {
		col := column(x, tests[i].offset, tests[i].stride)
		if !eq.Float64s(col, tests[i].exp) {
			t.Errorf("%d) Expected %v, got %v.", i, tests[i].exp, col)
		}
	}

	masked := applyMask([]float64{1, 2, 3}, []bool{true, false, true})
	if !eq.Float64s(masked, []float64{1, 3}) {
		t.Errorf("Expected [1 3], got %v.", masked)
	}
	masked = applyMask([]float64{1, 2}, []bool{false, false})
	if masked == nil || len(masked) != 0 {
		t.Errorf("Expected an empty, non-nil array, got %v.", masked)
	}
}
