package amr

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/pkg/errors"
)

// Kind is the numeric kind of an on-disk value.
type Kind int
const (
	Float Kind = iota
	Int
	Uint
)

// DType describes the on-disk representation of a single value.
type DType struct {
	Kind Kind
	// Size is the width of a value in bytes.
	Size int
	Order binary.ByteOrder
}

var (
	Float32 = DType{Float, 4, binary.LittleEndian}
	Float64 = DType{Float, 8, binary.LittleEndian}
	Int32 = DType{Int, 4, binary.LittleEndian}
	Int64 = DType{Int, 8, binary.LittleEndian}
)

// ParseDType parses numpy-style type strings like "<f8", ">f4" or "=i4". The
// first character gives the byte order ('<' little, '>' big, '=' or '|'
// native), the second the kind ('f', 'i' or 'u') and the rest the width in
// bytes.
func ParseDType(s string) (DType, error) {
	if len(s) < 3 {
		return DType{ }, errors.Errorf("'%s' is not a valid dtype. dtypes look "+
			"like '<f8', '>i4', or '=u8'.", s)
	}

	dt := DType{ }
	switch s[0] {
	case '<': dt.Order = binary.LittleEndian
	case '>': dt.Order = binary.BigEndian
	case '=', '|': dt.Order = SystemByteOrder()
	default:
		return DType{ }, errors.Errorf("dtype '%s' starts with '%c', but the "+
			"byte order must be one of '<', '>', '=', or '|'.", s, s[0])
	}

	switch s[1] {
	case 'f': dt.Kind = Float
	case 'i': dt.Kind = Int
	case 'u': dt.Kind = Uint
	default:
		return DType{ }, errors.Errorf("dtype '%s' has kind '%c', but only "+
			"'f', 'i', and 'u' are supported.", s, s[1])
	}

	size, err := strconv.Atoi(s[2:])
	if err != nil {
		return DType{ }, errors.Errorf("dtype '%s' has the width '%s', which "+
			"is not an integer.", s, s[2:])
	}
	dt.Size = size

	if size != 4 && size != 8 {
		return DType{ }, errors.Errorf("dtype '%s' has a width of %d bytes, "+
			"but only 4- and 8-byte values are supported.", s, size)
	}

	return dt, nil
}

func (dt DType) String() string {
	order := "<"
	if dt.Order == binary.BigEndian { order = ">" }
	kind := "f"
	switch dt.Kind {
	case Int: kind = "i"
	case Uint: kind = "u"
	}
	return fmt.Sprintf("%s%s%d", order, kind, dt.Size)
}

// SystemByteOrder returns the byte order of the machine boxio is running on.
func SystemByteOrder() binary.ByteOrder {
	// See https://stackoverflow.com/questions/51332658/any-better-way-to-check-endianness-in-go/51332762
	b := [2]byte{ }
	*(*uint16)(unsafe.Pointer(&b[0])) = uint16(0x0001)
	if b[0] == 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
