package snapio

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/phil-mansfield/boxio/lib/amr"
	g_error "github.com/phil-mansfield/boxio/lib/error"
	"github.com/phil-mansfield/boxio/lib/selector"
)

// gridData maps grid IDs to the requested fields of that grid.
type gridData map[int]map[amr.FieldKey][]float64

// ReadFluid reads the requested fluid fields for every cell that sel keeps
// across all the grids in chunks. size must be the total number of kept
// cells (see selector.CountChunks) and each returned array has that length,
// filled in chunk, grid, and selection order.
//
// Every file is opened once per chunk and read front to back. Grids without a
// file name have no data and are skipped.
func (rd *Reader) ReadFluid(
	chunks []amr.Chunk, sel selector.Selector,
	fields []amr.FieldKey, size int,
) (map[amr.FieldKey][]float64, error) {
	if err := rd.checkFluidFields(fields); err != nil { return nil, err }

	out := map[amr.FieldKey][]float64{ }
	for _, field := range fields {
		out[field] = make([]float64, size)
	}
	if len(fields) == 0 { return out, nil }

	ng := 0
	for _, chunk := range chunks { ng += len(chunk.Grids) }
	names := make([]string, len(fields))
	for i := range fields { names[i] = fields[i].Name }
	rd.log.Debugf("Reading %d cells of %s fields in %d grids", size, names, ng)

	ind := 0
	for _, chunk := range chunks {
		data, err := rd.readChunkData(chunk, fields)
		if err != nil { return nil, err }

		for _, g := range chunk.Grids {
			fieldData, ok := data[g.ID]
			if !ok { continue }

			nd := 0
			for _, field := range fields {
				nd = selector.Select(sel, g, fieldData[field], out[field], ind)
			}
			ind += nd
			delete(data, g.ID)
		}
	}

	if ind != size {
		return nil, g_error.InvariantViolation("%d cells were requested, "+
			"but the selector kept %d cells across %d grids.", size, ind, ng)
	}

	return out, nil
}

// checkFluidFields returns an error if any field is outside the fluid
// namespace or missing from the field order table.
func (rd *Reader) checkFluidFields(fields []amr.FieldKey) error {
	for _, field := range fields {
		if field.Type != rd.ds.FluidType {
			return g_error.UnsupportedFieldType("The field %s can't be "+
				"read from grid files: only '%s' fields are stored there.",
				field, rd.ds.FluidType)
		}

		found := false
		for _, ordered := range rd.ds.FieldOrder {
			if ordered == field { found = true; break }
		}
		if !found {
			return g_error.UnknownField("The field %s isn't in the "+
				"dataset's field order table.", field)
		}
	}
	return nil
}

// readChunkData reads the requested fields of every grid in the chunk which
// has data on disk.
func (rd *Reader) readChunkData(
	chunk amr.Chunk, fields []amr.FieldKey,
) (gridData, error) {
	data := gridData{ }
	if len(chunk.Grids) == 0 { return data, nil }

	requested := map[amr.FieldKey]bool{ }
	for _, field := range fields { requested[field] = true }

	fileNames, gridsByFile := groupByFile(chunk.Grids)
	for _, fileName := range fileNames {
		grids := gridsByFile[fileName]
		// Seeks are relative, so grids have to be visited in file order.
		sort.SliceStable(grids, func(i, j int) bool {
			return grids[i].Offset < grids[j].Offset
		})

		err := rd.readGridFile(fileName, grids, requested, data)
		if err != nil { return nil, err }
	}

	return data, nil
}

// readGridFile reads the requested fields of grids, which must all be stored
// in fileName and sorted by offset, into data.
func (rd *Reader) readGridFile(
	fileName string, grids []*amr.Grid,
	requested map[amr.FieldKey]bool, data gridData,
) (err error) {
	f, err := rd.open(fileName)
	if err != nil {
		return errors.Wrapf(err, "The grid file %s could not be opened", fileName)
	}
	defer func() { err = multierr.Combine(err, f.Close()) }()

	dt := rd.ds.DType
	for _, g := range grids {
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return errors.Wrapf(err, "Could not find position in %s", fileName)
		}

		// localOffset is the distance from the cursor to the start of the
		// next block that will be read.
		localOffset := g.Offset - pos
		count := g.CellCount()
		blockSize := int64(count) * int64(dt.Size)

		fieldData := map[amr.FieldKey][]float64{ }
		for _, field := range rd.ds.FieldOrder {
			if !requested[field] {
				localOffset += blockSize
				continue
			}

			if _, err := f.Seek(localOffset, io.SeekCurrent); err != nil {
				return errors.Wrapf(err, "Could not seek to %s of grid %d "+
					"in %s", field, g.ID, fileName)
			}

			v, err := rd.buf.Read(f, dt, count, nil)
			if err != nil {
				return errors.Wrapf(err, "Could not read %d values of %s "+
					"for grid %d from %s", count, field, g.ID, fileName)
			}

			fieldData[field] = v
			localOffset = 0
		}

		data[g.ID] = fieldData
	}

	return nil
}

// groupByFile splits grids up by file name, skipping grids without one. File
// names are returned in the order they're first seen.
func groupByFile(grids []*amr.Grid) ([]string, map[string][]*amr.Grid) {
	fileNames := []string{ }
	byFile := map[string][]*amr.Grid{ }
	for _, g := range grids {
		if g.Filename == "" { continue }
		if _, ok := byFile[g.Filename]; !ok {
			fileNames = append(fileNames, g.Filename)
		}
		byFile[g.Filename] = append(byFile[g.Filename], g)
	}
	return fileNames, byFile
}
