package amr

import (
	"github.com/pkg/errors"
)

// Column associates a field name with its position within a particle record.
type Column struct {
	Index int
	Name string
}

// ParticleHeader describes the record layout of one particle type. Every
// particle has NumInt integers of type IntType followed, in a separate block,
// by NumReal reals of type RealType. The first two or three real columns are
// always the particle position.
type ParticleHeader struct {
	IntFields, RealFields []Column
	IntType, RealType DType
	NumInt, NumReal int
}

// NewParticleHeader creates a header whose columns are given in record order.
func NewParticleHeader(
	intNames, realNames []string, intType, realType DType,
) *ParticleHeader {
	hd := &ParticleHeader{
		IntType: intType, RealType: realType,
		NumInt: len(intNames), NumReal: len(realNames),
	}
	for i, name := range intNames {
		hd.IntFields = append(hd.IntFields, Column{i, name})
	}
	for i, name := range realNames {
		hd.RealFields = append(hd.RealFields, Column{i, name})
	}
	return hd
}

// IntIndex returns the column of an integer field and false if the field
// isn't an integer field.
func (hd *ParticleHeader) IntIndex(name string) (int, bool) {
	return findColumn(hd.IntFields, name)
}

// RealIndex returns the column of a real field and false if the field isn't
// a real field.
func (hd *ParticleHeader) RealIndex(name string) (int, bool) {
	return findColumn(hd.RealFields, name)
}

// Names returns the integer field names followed by the real field names.
func (hd *ParticleHeader) Names() []string {
	out := []string{ }
	for _, c := range hd.IntFields { out = append(out, c.Name) }
	for _, c := range hd.RealFields { out = append(out, c.Name) }
	return out
}

// IntBlockSize returns the number of bytes in the integer block of n
// particles.
func (hd *ParticleHeader) IntBlockSize(n int) int64 {
	return int64(hd.IntType.Size) * int64(hd.NumInt) * int64(n)
}

// Validate checks that the header has enough real columns to hold positions
// in the given number of dimensions and that its column indices fit the
// record.
func (hd *ParticleHeader) Validate(dimensionality int) error {
	if hd.NumReal < dimensionality {
		return errors.Errorf("Particle records have %d real columns, but "+
			"positions in %d dimensions need at least %d.",
			hd.NumReal, dimensionality, dimensionality)
	}
	for _, c := range hd.IntFields {
		if c.Index < 0 || c.Index >= hd.NumInt {
			return errors.Errorf("The integer field '%s' has index %d, but "+
				"records only have %d integers.", c.Name, c.Index, hd.NumInt)
		}
	}
	for _, c := range hd.RealFields {
		if c.Index < 0 || c.Index >= hd.NumReal {
			return errors.Errorf("The real field '%s' has index %d, but "+
				"records only have %d reals.", c.Name, c.Index, hd.NumReal)
		}
	}
	return nil
}

func findColumn(cols []Column, name string) (int, bool) {
	for _, c := range cols {
		if c.Name == name { return c.Index, true }
	}
	return -1, false
}
