package lib

/* check.go contains the core functions of boxio's "check" mode. */

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
)

// Check runs the boxio "check" command on the provided Args. It either
// crashes upon encountering the first error or logs a warning for every error
// to log (which may be nil), depending on strictness. If Check completes, it returns true if
// all tests passed and false otherwise.
func Check(
	args *Args, strictness CheckStrictness, log *zap.SugaredLogger,
) bool {
	if log == nil { log = zap.NewNop().Sugar() }
	errs := CheckErrors(args)
	for _, err := range errs {
		switch strictness {
		case CrashOnError:
			g_error.External("%s", err.Error())
		case WarnOnError:
			log.Warn(err.Error())
		}
	}
	return len(errs) == 0
}

// CheckErrors returns every problem with args that can only be found by
// looking at the files it describes or by cross-referencing sections.
func CheckErrors(args *Args) []error {
	errs := []error{ }
	ds := args.Dataset

	if len(ds.FieldOrder) == 0 {
		errs = append(errs, errors.New("The dataset has no fluid fields."))
	}
	seen := map[amr.FieldKey]bool{ }
	for _, field := range ds.FieldOrder {
		if seen[field] {
			errs = append(errs, errors.Errorf("The fluid field '%s' appears "+
				"more than once in the field order.", field.Name))
		}
		seen[field] = true
	}

	for ptype, hd := range ds.ParticleHeaders {
		if err := hd.Validate(ds.Dimensionality); err != nil {
			errs = append(errs, errors.Wrapf(err, "particle type '%s'", ptype))
		}
	}

	for name, members := range ds.Unions {
		if len(members) == 0 {
			errs = append(errs, errors.Errorf("The union '%s' has no "+
				"members.", name))
		}
		for _, m := range members {
			if _, ok := ds.ParticleHeaders[m]; !ok {
				errs = append(errs, errors.Errorf("The union '%s' contains "+
					"'%s', which isn't a particle type.", name, m))
			}
		}
	}

	for _, g := range args.Grids {
		errs = append(errs, checkGrid(ds, g)...)
	}

	return errs
}

func checkGrid(ds *amr.Dataset, g *amr.Grid) []error {
	errs := []error{ }

	if len(g.Dims) == 0 || len(g.Dims) > 3 {
		errs = append(errs, errors.Errorf("Grid %d has %d dimensions, but "+
			"grids need between 1 and 3.", g.ID, len(g.Dims)))
	}
	for _, d := range g.Dims {
		if d <= 0 {
			errs = append(errs, errors.Errorf("Grid %d has the dimensions "+
				"%v, which aren't all positive.", g.ID, g.Dims))
			break
		}
	}
	for dim := 0; dim < 3; dim++ {
		if g.RightEdge[dim] < g.LeftEdge[dim] {
			errs = append(errs, errors.Errorf("Grid %d has a right edge %v "+
				"to the left of its left edge %v.", g.ID,
				g.RightEdge, g.LeftEdge))
			break
		}
	}

	if g.Filename != "" {
		if err := checkFile(g.Filename); err != nil {
			errs = append(errs, errors.Wrapf(err, "grid %d", g.ID))
		}
	}

	for _, line := range g.ParticleLines {
		if line < 0 {
			errs = append(errs, errors.Errorf("Grid %d owns sink line %d, "+
				"but line numbers can't be negative.", g.ID, line))
			break
		}
	}

	for ptype, ps := range g.Particles {
		if _, ok := ds.ParticleHeaders[ptype]; !ok {
			errs = append(errs, errors.Errorf("Grid %d has '%s' particles, "+
				"but no particle type with that name has been described.",
				g.ID, ptype))
		}
		if ps.N < 0 {
			errs = append(errs, errors.Errorf("Grid %d has %d '%s' "+
				"particles.", g.ID, ps.N, ptype))
		}
		if ps.N > 0 {
			if err := checkFile(ps.Filename); err != nil {
				errs = append(errs, errors.Wrapf(err, "'%s' particles of "+
					"grid %d", ptype, g.ID))
			}
		}
	}

	return errs
}

func checkFile(fileName string) error {
	info, err := os.Stat(fileName)
	if err != nil { return err }
	if info.IsDir() {
		return errors.Errorf("%s is a directory, not a file.", fileName)
	}
	return nil
}
