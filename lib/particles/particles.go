/*package particles contains the accumulator that particle reads write into
and the resolver that turns particle type names into the concrete types that
are stored on disk.*/
package particles

import (
	"github.com/phil-mansfield/boxio/lib/amr"
)

// Particles maps each requested field to the values read for it so far.
type Particles map[amr.FieldKey][]float64

// New creates an accumulator with an empty array for every field.
func New(fields []amr.FieldKey) Particles {
	p := Particles{ }
	for _, field := range fields { p[field] = []float64{ } }
	return p
}

// Prepend places x in front of whatever has already been accumulated for
// key. Reads that visit grids G1, G2, ... therefore end up ordered
// ..., G2, G1.
func (p Particles) Prepend(key amr.FieldKey, x []float64) {
	old := p[key]
	out := make([]float64, len(x) + len(old))
	copy(out, x)
	copy(out[len(x):], old)
	p[key] = out
}

// Len returns the number of values accumulated for key.
func (p Particles) Len(key amr.FieldKey) int { return len(p[key]) }

// RefKind says whether a particle type is stored directly or is a union of
// other types.
type RefKind int

const (
	Direct RefKind = iota
	Union
)

func (k RefKind) String() string {
	switch k {
	case Direct: return "Direct"
	case Union: return "Union"
	}
	return "Unknown"
}

// Ref is a resolved particle type. Types holds the single stored type of a
// Direct ref, or the members of a Union in their declared order.
type Ref struct {
	Kind RefKind
	Types []string
}

// Resolve looks ptype up in the union table.
func Resolve(ptype string, unions map[string][]string) Ref {
	if members, ok := unions[ptype]; ok {
		types := make([]string, len(members))
		copy(types, members)
		return Ref{ Union, types }
	}
	return Ref{ Direct, []string{ ptype } }
}
