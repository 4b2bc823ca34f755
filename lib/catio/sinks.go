package catio

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
	"github.com/phil-mansfield/boxio/lib/particles"
	"github.com/phil-mansfield/boxio/lib/selector"
)

// SinkFileNames lists the catalog names a SinkReader looks for, in order of
// preference. The last entry is used if none of them exist.
var SinkFileNames = []string{
	"StarParticles", "StarParticles" + ZstdExt,
	"SinkParticles", "SinkParticles" + ZstdExt,
}

// Column indices of Orion sink records. Negative indices count back from the
// end of the record.
var (
	sinkBaseColumns = []string{
		"particle_mass",
		"particle_position_x", "particle_position_y", "particle_position_z",
		"particle_momentum_x", "particle_momentum_y", "particle_momentum_z",
		"particle_angmomen_x", "particle_angmomen_y", "particle_angmomen_z",
	}
	sinkStarColumns = []string{
		"particle_mlast", "particle_r", "particle_mdeut", "particle_n",
		"particle_mdot", "particle_burnstate",
	}
	sinkLuminosityColumn = "particle_luminosity"
	sinkIDColumn = "particle_id"
)

// SinkReader reads Orion sink and star particles from the text catalog in a
// dataset's output directory. The catalog's name, its lines, and its column
// layout are each found once and then reused. A SinkReader may be shared
// between goroutines.
type SinkReader struct {
	outputDir string
	log *zap.SugaredLogger
	onRead func(fileName string)

	mu sync.Mutex
	fileName string
	lines []string
	index map[string]int
}

// SinkOption configures a SinkReader.
type SinkOption func(*SinkReader)

// WithLogger sets the logger used for warnings about unusual catalogs.
func WithLogger(log *zap.SugaredLogger) SinkOption {
	return func(rd *SinkReader) { rd.log = log }
}

// WithReadHook registers a function which is called every time the catalog
// is read from disk.
func WithReadHook(hook func(fileName string)) SinkOption {
	return func(rd *SinkReader) { rd.onRead = hook }
}

// NewSinkReader creates a SinkReader for the catalog in outputDir.
func NewSinkReader(outputDir string, opts ...SinkOption) *SinkReader {
	rd := &SinkReader{
		outputDir: outputDir, log: zap.NewNop().Sugar(),
		onRead: func(string) { },
	}
	for _, opt := range opts { opt(rd) }
	return rd
}

// FileName returns the path of the catalog.
func (rd *SinkReader) FileName() string {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.resolveFileName()
}

// Lines returns every line of the catalog. The returned slice is shared and
// must not be modified.
func (rd *SinkReader) Lines() ([]string, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.loadLines()
}

// FieldIndex returns the column of every field in the catalog.
func (rd *SinkReader) FieldIndex() (map[string]int, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.loadIndex()
}

// resolveFileName requires rd.mu to be held.
func (rd *SinkReader) resolveFileName() string {
	if rd.fileName != "" { return rd.fileName }

	for _, name := range SinkFileNames {
		path := filepath.Join(rd.outputDir, name)
		if _, err := os.Stat(path); err == nil {
			rd.fileName = path
			return rd.fileName
		}
	}

	rd.fileName = filepath.Join(rd.outputDir, "SinkParticles")
	return rd.fileName
}

// loadLines requires rd.mu to be held.
func (rd *SinkReader) loadLines() ([]string, error) {
	if rd.lines != nil { return rd.lines, nil }

	fileName := rd.resolveFileName()
	rd.onRead(fileName)
	lines, err := ReadLines(fileName)
	if err != nil { return nil, err }

	rd.lines = lines
	return rd.lines, nil
}

// loadIndex requires rd.mu to be held.
func (rd *SinkReader) loadIndex() (map[string]int, error) {
	if rd.index != nil { return rd.index, nil }

	lines, err := rd.loadLines()
	if err != nil { return nil, err }

	rd.index = ParseSinkIndex(lines, rd.log)
	return rd.index, nil
}

// ParseSinkIndex works out the column layout of a sink catalog from the
// width of its first record, lines[1]. Plain sinks have 11 columns, stars
// add six more, and newer stars add a luminosity. The ID is always the last
// column and is given the index -1. Catalogs without any records have an
// empty index. Unrecognized widths are logged to log, which may be nil.
func ParseSinkIndex(lines []string, log *zap.SugaredLogger) map[string]int {
	if log == nil { log = zap.NewNop().Sugar() }
	index := map[string]int{ }
	if len(lines) < 2 { return index }

	width := len(Fields(lines[1]))

	for i, name := range sinkBaseColumns { index[name] = i }
	switch width {
	case 11:
	case 17:
		addColumns(index, len(sinkBaseColumns), sinkStarColumns...)
	case 18, 19:
		addColumns(index, len(sinkBaseColumns), sinkStarColumns...)
		index[sinkLuminosityColumn] = len(sinkBaseColumns) +
			len(sinkStarColumns)
	default:
		log.Warnf("Sink particle records have %d columns, but only 11, "+
			"17, 18, and 19 columns are recognized. Only the first %d "+
			"fields will be available.", width, len(sinkBaseColumns) + 1)
	}
	index[sinkIDColumn] = -1

	return index
}

func addColumns(index map[string]int, start int, names ...string) {
	for i, name := range names { index[name] = start + i }
}

// ReadParticles reads one field of every sink particle owned by g.
func (rd *SinkReader) ReadParticles(
	g *amr.Grid, name string,
) ([]float64, error) {
	if g.NumberOfParticles == 0 { return []float64{ }, nil }

	rd.mu.Lock()
	index, err := rd.loadIndex()
	lines := rd.lines
	rd.mu.Unlock()
	if err != nil { return nil, err }

	col, ok := index[name]
	if !ok {
		return nil, g_error.UnknownField("The sink catalog has no field "+
			"named '%s'.", name)
	}

	out := make([]float64, 0, len(g.ParticleLines))
	for _, num := range g.ParticleLines {
		if num < 0 || num >= len(lines) {
			return nil, errors.Errorf("Grid %d owns line %d of the sink "+
				"catalog, but it only has %d lines.", g.ID, num, len(lines))
		}

		entries := Fields(lines[num])
		j := col
		if j < 0 { j += len(entries) }
		if j < 0 || j >= len(entries) {
			return nil, errors.Errorf("Line %d of the sink catalog has %d "+
				"entries, so it has no '%s' column.", num, len(entries), name)
		}

		x, err := strconv.ParseFloat(entries[j], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not parse '%s' on line %d "+
				"of the sink catalog", name, num)
		}
		out = append(out, x)
	}

	return out, nil
}

// ReadParticleSelection reads the requested fields of every sink particle in
// chunks. Field types are ignored since a catalog only holds one particle
// type.
//
// If sel picks out a whole grid, chunks must hold exactly that one grid,
// which is read directly. Otherwise every grid is read and its particles are
// placed in front of those read before it.
func (rd *SinkReader) ReadParticleSelection(
	chunks []amr.Chunk, sel selector.Selector, fields []amr.FieldKey,
) (particles.Particles, error) {
	p := particles.New(fields)

	if sel.WholeGrid() {
		if len(chunks) != 1 || len(chunks[0].Grids) != 1 {
			ng := 0
			for _, chunk := range chunks { ng += len(chunk.Grids) }
			return nil, g_error.InvariantViolation("A whole-grid selection "+
				"needs exactly one chunk holding one grid, but got %d "+
				"chunks holding %d grids.", len(chunks), ng)
		}

		g := chunks[0].Grids[0]
		for _, field := range fields {
			x, err := rd.ReadParticles(g, field.Name)
			if err != nil { return nil, err }
			p[field] = x
		}
		return p, nil
	}

	for _, chunk := range chunks {
		for _, g := range chunk.Grids {
			for _, field := range fields {
				x, err := rd.ReadParticles(g, field.Name)
				if err != nil { return nil, err }
				p.Prepend(field, x)
			}
		}
	}

	return p, nil
}
