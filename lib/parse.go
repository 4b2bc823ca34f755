package lib

/* parse.go reads the dataset description files used by the command line
tool. Descriptions are gcfg files which look like this:

   [dataset]
   dimensionality = 3
   dtype = <f8
   field = density
   field = temperature
   output-dir = plt00000

   [particle-type "DM"]
   int-type = <i4
   real-type = <f8
   int-field = particle_id
   real-field = particle_position_x
   real-field = particle_position_y
   real-field = particle_position_z

   [union "all"]
   member = DM

   [grid "0"]
   file = Level_0/Cell_D_00000
   offset = 0
   dims = 4 4 4
   left-edge = 0 0 0
   right-edge = 1 1 1

   [particles "0 DM"]
   count = 10
   file = Level_0/DATA_00000
   offset = 0
*/

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// RawArgs stores the unprocessed values of a description file.
type RawArgs struct {
	Dataset struct {
		Dimensionality int
		DType string `gcfg:"dtype"`
		FluidType string `gcfg:"fluid-type"`
		Field []string
		OutputDir string `gcfg:"output-dir"`
	}
	ParticleType map[string]*RawParticleType `gcfg:"particle-type"`
	Union map[string]*RawUnion
	Grid map[string]*RawGrid
	Particles map[string]*RawParticles
}

// RawParticleType is a [particle-type "name"] section.
type RawParticleType struct {
	IntType string `gcfg:"int-type"`
	RealType string `gcfg:"real-type"`
	IntField []string `gcfg:"int-field"`
	RealField []string `gcfg:"real-field"`
}

// RawUnion is a [union "name"] section.
type RawUnion struct {
	Member []string
}

// RawGrid is a [grid "id"] section. Vectors are space-separated.
type RawGrid struct {
	File string
	Offset int64
	Dims string
	LeftEdge string `gcfg:"left-edge"`
	RightEdge string `gcfg:"right-edge"`
	SinkLines string `gcfg:"sink-lines"`
}

// RawParticles is a [particles "id type"] section.
type RawParticles struct {
	Count int
	File string
	Offset int64
}

// Args stores a processed description: the dataset index and its grids,
// sorted by ID.
type Args struct {
	Dataset *amr.Dataset
	Grids []*amr.Grid
}

// ReadConfig reads and processes a description file. Relative file names in
// it are taken to be relative to the directory containing the file.
func ReadConfig(fileName string) (*Args, error) {
	text, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not read the config file %s",
			fileName)
	}

	args, err := ParseConfig(string(text), filepath.Dir(fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "The config file %s is not valid",
			fileName)
	}
	return args, nil
}

// ParseConfig parses the text of a description file. Relative file names are
// resolved against dir.
func ParseConfig(text, dir string) (*Args, error) {
	raw := &RawArgs{ }
	if err := gcfg.ReadStringInto(raw, text); err != nil { return nil, err }
	return raw.Process(dir)
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Only simple validation is done here. Nothing which
// requires interacting with external files is checked (see Check).
func (raw *RawArgs) Process(dir string) (*Args, error) {
	dim := raw.Dataset.Dimensionality
	if dim == 0 { dim = 3 }
	if dim != 2 && dim != 3 {
		return nil, errors.Errorf("dimensionality is %d, but only 2 and 3 "+
			"are supported.", dim)
	}

	dtype := raw.Dataset.DType
	if dtype == "" { dtype = "<f8" }
	dt, err := amr.ParseDType(dtype)
	if err != nil { return nil, err }

	ds := amr.NewDataset(raw.Dataset.FluidType, dt, dim, raw.Dataset.Field)
	ds.OutputDir = resolve(dir, raw.Dataset.OutputDir)

	for ptype, pt := range raw.ParticleType {
		intType, err := parseDTypeDefault(pt.IntType, "<i4")
		if err != nil { return nil, errors.Wrapf(err, "particle type '%s'", ptype) }
		realType, err := parseDTypeDefault(pt.RealType, "<f8")
		if err != nil { return nil, errors.Wrapf(err, "particle type '%s'", ptype) }

		ds.ParticleHeaders[ptype] = amr.NewParticleHeader(
			pt.IntField, pt.RealField, intType, realType,
		)
	}

	for name, u := range raw.Union {
		ds.Unions[name] = append([]string{ }, u.Member...)
	}

	grids := map[int]*amr.Grid{ }
	for idStr, rg := range raw.Grid {
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			return nil, errors.Errorf("Grid ID '%s' is not an integer.", idStr)
		}

		g := &amr.Grid{
			ID: id, Offset: rg.Offset, Particles: map[string]*amr.ParticleSet{ },
		}
		if rg.File != "" { g.Filename = resolve(dir, rg.File) }

		if g.Dims, err = parseInts(rg.Dims); err != nil {
			return nil, errors.Wrapf(err, "dims of grid %d", id)
		}
		if err = parseEdge(rg.LeftEdge, &g.LeftEdge); err != nil {
			return nil, errors.Wrapf(err, "left-edge of grid %d", id)
		}
		if err = parseEdge(rg.RightEdge, &g.RightEdge); err != nil {
			return nil, errors.Wrapf(err, "right-edge of grid %d", id)
		}
		if g.ParticleLines, err = parseInts(rg.SinkLines); err != nil {
			return nil, errors.Wrapf(err, "sink-lines of grid %d", id)
		}
		g.NumberOfParticles = len(g.ParticleLines)

		grids[id] = g
	}

	for key, rp := range raw.Particles {
		tok := strings.Fields(key)
		if len(tok) != 2 {
			return nil, errors.Errorf("Particle section '%s' should be "+
				"named with a grid ID and a particle type, e.g. \"0 DM\".", key)
		}
		id, err := strconv.Atoi(tok[0])
		if err != nil {
			return nil, errors.Errorf("Particle section '%s' has the grid "+
				"ID '%s', which is not an integer.", key, tok[0])
		}
		g, ok := grids[id]
		if !ok {
			return nil, errors.Errorf("Particle section '%s' refers to grid "+
				"%d, which hasn't been described.", key, id)
		}

		g.Particles[tok[1]] = &amr.ParticleSet{
			N: rp.Count, Filename: resolve(dir, rp.File), Offset: rp.Offset,
		}
	}

	args := &Args{ Dataset: ds, Grids: []*amr.Grid{ } }
	for _, g := range grids { args.Grids = append(args.Grids, g) }
	sort.Slice(args.Grids, func(i, j int) bool {
		return args.Grids[i].ID < args.Grids[j].ID
	})

	return args, nil
}

// Subset returns the grids at the given positions of args.Grids.
func (args *Args) Subset(idx []int) []*amr.Grid {
	out := make([]*amr.Grid, len(idx))
	for i := range idx { out[i] = args.Grids[idx[i]] }
	return out
}

// Chunk splits grids into chunks of at most size grids each. A non-positive
// size puts every grid into one chunk.
func Chunk(grids []*amr.Grid, size int) []amr.Chunk {
	if size <= 0 { size = len(grids) }
	chunks := []amr.Chunk{ }
	for start := 0; start < len(grids); start += size {
		end := start + size
		if end > len(grids) { end = len(grids) }
		chunks = append(chunks, amr.Chunk{ Grids: grids[start:end] })
	}
	return chunks
}

func resolve(dir, fileName string) string {
	if fileName == "" || filepath.IsAbs(fileName) { return fileName }
	return filepath.Join(dir, fileName)
}

func parseDTypeDefault(s, def string) (amr.DType, error) {
	if s == "" { s = def }
	return amr.ParseDType(s)
}

func parseInts(s string) ([]int, error) {
	tok := strings.Fields(s)
	out := make([]int, len(tok))
	for i := range tok {
		n, err := strconv.Atoi(tok[i])
		if err != nil {
			return nil, errors.Errorf("'%s' is not an integer.", tok[i])
		}
		out[i] = n
	}
	return out, nil
}

func parseEdge(s string, edge *[3]float64) error {
	tok := strings.Fields(s)
	if len(tok) == 0 { return nil }
	if len(tok) > 3 {
		return errors.Errorf("'%s' has %d components, but edges have at "+
			"most 3.", s, len(tok))
	}
	for i := range tok {
		x, err := strconv.ParseFloat(tok[i], 64)
		if err != nil {
			return errors.Errorf("'%s' is not a number.", tok[i])
		}
		edge[i] = x
	}
	return nil
}
