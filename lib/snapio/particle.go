package snapio

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
	"github.com/phil-mansfield/boxio/lib/particles"
	"github.com/phil-mansfield/boxio/lib/selector"
)

// ReadParticles reads one field of the ptype particles owned by g, keeping
// only the particles whose positions sel selects. Particle files hold an
// integer block followed by a real block. Both blocks store records
// contiguously, so a single field is recovered by striding through the block.
//
// A grid with no particles of the given type returns an empty array.
func (rd *Reader) ReadParticles(
	g *amr.Grid, sel selector.Selector, ptype, name string,
) (out []float64, err error) {
	ps, ok := g.Particles[ptype]
	if !ok || ps.N == 0 { return []float64{ }, nil }

	hd, ok := rd.ds.ParticleHeaders[ptype]
	if !ok {
		return nil, g_error.UnknownField("No header has been given for "+
			"the particle type '%s'.", ptype)
	}
	if err := hd.Validate(rd.ds.Dimensionality); err != nil {
		return nil, g_error.InvariantViolation("The header of the particle "+
			"type '%s' is not valid: %s", ptype, err.Error())
	}

	intIdx, isInt := hd.IntIndex(name)
	realIdx, isReal := hd.RealIndex(name)
	if !isInt && !isReal {
		return nil, g_error.UnknownField("The particle type '%s' has no "+
			"field named '%s'. Its fields are %v.", ptype, name, hd.Names())
	}

	f, err := rd.open(ps.Filename)
	if err != nil {
		return nil, errors.Wrapf(err, "The particle file %s could not be "+
			"opened", ps.Filename)
	}
	defer func() { err = multierr.Combine(err, f.Close()) }()

	// The real block is always needed for positions.
	realStart := ps.Offset + hd.IntBlockSize(ps.N)
	if _, err := f.Seek(realStart, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "Could not seek to the real block of "+
			"%s particles in %s", ptype, ps.Filename)
	}
	reals, err := rd.buf.Read(f, hd.RealType, hd.NumReal*ps.N, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not read %d %s particles from %s",
			ps.N, ptype, ps.Filename)
	}

	x, y, z := rd.positions(g, hd, reals, ps.N)
	mask := sel.SelectPoints(x, y, z, 0)
	if mask == nil { return []float64{ }, nil }

	if !isInt { return applyMask(column(reals, realIdx, hd.NumReal), mask), nil }

	if _, err := f.Seek(ps.Offset, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "Could not seek to the integer block "+
			"of %s particles in %s", ptype, ps.Filename)
	}
	ints, err := rd.buf.Read(f, hd.IntType, hd.NumInt*ps.N, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not read %d %s particles from %s",
			ps.N, ptype, ps.Filename)
	}

	return applyMask(column(ints, intIdx, hd.NumInt), mask), nil
}

// positions pulls the position columns out of a real block. 2D datasets have
// no z column, so every particle gets placed at the grid's midplane.
func (rd *Reader) positions(
	g *amr.Grid, hd *amr.ParticleHeader, reals []float64, n int,
) (x, y, z []float64) {
	x = column(reals, 0, hd.NumReal)
	y = column(reals, 1, hd.NumReal)
	if rd.ds.Dimensionality == 2 {
		z = make([]float64, n)
		mid := 0.5 * (g.LeftEdge[2] + g.RightEdge[2])
		for i := range z { z[i] = mid }
	} else {
		z = column(reals, 2, hd.NumReal)
	}
	return x, y, z
}

// ReadParticleSelection reads every requested particle field from every grid
// in chunks. Field types may be unions of other particle types, in which case
// each member is read in its declared order.
//
// Each result is prepended to what's been read so far, so the returned
// arrays run in the reverse of the order grids and members were visited.
func (rd *Reader) ReadParticleSelection(
	chunks []amr.Chunk, sel selector.Selector, fields []amr.FieldKey,
) (particles.Particles, error) {
	p := particles.New(fields)

	refs := make([]particles.Ref, len(fields))
	for i, field := range fields {
		refs[i] = particles.Resolve(field.Type, rd.ds.Unions)
	}

	for _, chunk := range chunks {
		for _, g := range chunk.Grids {
			for i, field := range fields {
				switch refs[i].Kind {
				case particles.Direct:
					x, err := rd.ReadParticles(g, sel, field.Type, field.Name)
					if err != nil { return nil, err }
					p.Prepend(field, x)
				case particles.Union:
					for _, ptype := range refs[i].Types {
						x, err := rd.ReadParticles(g, sel, ptype, field.Name)
						if err != nil { return nil, err }
						p.Prepend(field, x)
					}
				}
			}
		}
	}

	return p, nil
}
