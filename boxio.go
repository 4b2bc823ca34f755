package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/phil-mansfield/boxio/lib"
	"github.com/phil-mansfield/boxio/lib/amr"
	"github.com/phil-mansfield/boxio/lib/catio"
	g_error "github.com/phil-mansfield/boxio/lib/error"
	"github.com/phil-mansfield/boxio/lib/format"
	"github.com/phil-mansfield/boxio/lib/particles"
	"github.com/phil-mansfield/boxio/lib/selector"
	"github.com/phil-mansfield/boxio/lib/snapio"
)

const (
	flagField = "field"
	flagType = "type"
	flagGrids = "grids"
	flagChunkSize = "chunk-size"
	flagRegion = "region"
	flagSphere = "sphere"
	flagGrid = "grid"
	flagPrint = "print"
	flagDebug = "debug"

	// sinkType is the type tag given to sink particle fields.
	sinkType = "sink"
)

func main() {
	selectFlags := []cli.Flag{
		&cli.StringFlag{
			Name: flagGrids, Value: format.All,
			Usage: "grids to read as a sequence, e.g. \"0..63 - 7\"",
		},
		&cli.IntFlag{
			Name: flagChunkSize, Value: 0,
			Usage: "number of grids read together (0 reads all at once)",
		},
		&cli.StringFlag{
			Name: flagRegion, Usage: "only keep data inside \"x0 y0 z0 x1 y1 z1\"",
		},
		&cli.StringFlag{
			Name: flagSphere, Usage: "only keep data inside \"cx cy cz r\"",
		},
		&cli.IntFlag{
			Name: flagGrid, Value: -1,
			Usage: "read every cell or particle of the grid with this ID",
		},
		&cli.BoolFlag{ Name: flagPrint, Usage: "print every value" },
	}
	fieldFlag := &cli.StringSliceFlag{
		Name: flagField, Aliases: []string{"f"}, Required: true,
		Usage: "field to read (repeatable)",
	}

	app := &cli.App{
		Name: "boxio",
		Usage: "read selected fields from BoxLib/Orion AMR output",
		Version: lib.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{ Name: flagDebug, Usage: "enable debug logging" },
		},
		Before: func(c *cli.Context) error {
			return setupLogger(c.Bool(flagDebug))
		},
		Commands: []*cli.Command{
			{
				Name: "check", ArgsUsage: "<config>",
				Usage: "check a dataset description for errors",
				Action: CheckAction,
			},
			{
				Name: "fluid", ArgsUsage: "<config>",
				Usage: "read fluid fields from grid files",
				Flags: append([]cli.Flag{ fieldFlag }, selectFlags...),
				Action: FluidAction,
			},
			{
				Name: "particles", ArgsUsage: "<config>",
				Usage: "read fields of binary particles",
				Flags: append([]cli.Flag{
					fieldFlag,
					&cli.StringFlag{
						Name: flagType, Required: true,
						Usage: "particle type or union of types",
					},
				}, selectFlags...),
				Action: ParticlesAction,
			},
			{
				Name: "sinks", ArgsUsage: "<config>",
				Usage: "read fields of text sink/star particles",
				Flags: append([]cli.Flag{ fieldFlag }, selectFlags...),
				Action: SinksAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		g_error.External("%s", err.Error())
	}
	_ = zap.L().Sync()
}

func setupLogger(debug bool) error {
	var (
		log *zap.Logger
		err error
	)
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil { return err }
	zap.ReplaceGlobals(log)
	return nil
}

// CheckAction runs boxio's "check" mode, which looks for errors in a dataset
// description and the files it points to.
func CheckAction(c *cli.Context) error {
	args, err := readArgs(c)
	if err != nil { return err }

	if lib.Check(args, lib.WarnOnError, zap.S()) {
		fmt.Fprintln(c.App.Writer, "No errors detected.")
		return nil
	}
	return errors.New("The dataset description has errors.")
}

// FluidAction reads fluid fields for the selected cells.
func FluidAction(c *cli.Context) error {
	args, err := readArgs(c)
	if err != nil { return err }
	chunks, sel, err := readSelection(c, args)
	if err != nil { return err }

	ds := args.Dataset
	fields := []amr.FieldKey{ }
	for _, name := range c.StringSlice(flagField) {
		fields = append(fields, ds.FluidField(name))
	}

	size := selector.CountChunks(sel, chunks)
	rd := snapio.NewReader(ds, snapio.WithLogger(zap.S()))
	out, err := rd.ReadFluid(chunks, sel, fields, size)
	if err != nil { return err }

	for _, field := range fields {
		printField(c.App.Writer, field, out[field], c.Bool(flagPrint))
	}
	return nil
}

// ParticlesAction reads binary particle fields for the selected particles.
func ParticlesAction(c *cli.Context) error {
	args, err := readArgs(c)
	if err != nil { return err }
	chunks, sel, err := readSelection(c, args)
	if err != nil { return err }

	ptype := c.String(flagType)
	fields := []amr.FieldKey{ }
	for _, name := range c.StringSlice(flagField) {
		fields = append(fields, amr.FieldKey{ Type: ptype, Name: name })
	}

	rd := snapio.NewReader(args.Dataset, snapio.WithLogger(zap.S()))
	p, err := rd.ReadParticleSelection(chunks, sel, fields)
	if err != nil { return err }

	printParticles(c, fields, p)
	return nil
}

// SinksAction reads text sink particle fields.
func SinksAction(c *cli.Context) error {
	args, err := readArgs(c)
	if err != nil { return err }
	chunks, sel, err := readSelection(c, args)
	if err != nil { return err }

	fields := []amr.FieldKey{ }
	for _, name := range c.StringSlice(flagField) {
		fields = append(fields, amr.FieldKey{ Type: sinkType, Name: name })
	}

	rd := catio.NewSinkReader(args.Dataset.OutputDir,
		catio.WithLogger(zap.S()))
	p, err := rd.ReadParticleSelection(chunks, sel, fields)
	if err != nil { return err }

	printParticles(c, fields, p)
	return nil
}

func readArgs(c *cli.Context) (*lib.Args, error) {
	if c.NArg() != 1 {
		return nil, errors.Errorf("Expected exactly one config file, got %d "+
			"arguments.", c.NArg())
	}
	return lib.ReadConfig(c.Args().First())
}

// readSelection builds the chunks and selector described by the flags.
func readSelection(
	c *cli.Context, args *lib.Args,
) ([]amr.Chunk, selector.Selector, error) {
	sel, err := parseSelector(c)
	if err != nil { return nil, nil, err }

	grids := args.Grids
	if gs, ok := sel.(*selector.Grid); ok {
		grids = nil
		for _, g := range args.Grids {
			if g.ID == gs.ID { grids = append(grids, g) }
		}
		if len(grids) == 0 {
			return nil, nil, errors.Errorf("There is no grid with ID %d.", gs.ID)
		}
	} else {
		idx, err := format.ExpandGridFormat(c.String(flagGrids), len(args.Grids))
		if err != nil { return nil, nil, err }
		grids = args.Subset(idx)
	}

	return lib.Chunk(grids, c.Int(flagChunkSize)), sel, nil
}

func parseSelector(c *cli.Context) (selector.Selector, error) {
	n := 0
	for _, flag := range []string{flagRegion, flagSphere, flagGrid} {
		if c.IsSet(flag) { n++ }
	}
	if n > 1 {
		return nil, errors.Errorf("At most one of --%s, --%s, and --%s may "+
			"be given.", flagRegion, flagSphere, flagGrid)
	}

	switch {
	case c.IsSet(flagRegion):
		x, err := parseFloats(c.String(flagRegion), 6)
		if err != nil { return nil, errors.Wrapf(err, "--%s", flagRegion) }
		return &selector.Region{
			Left: r3.Vector{X: x[0], Y: x[1], Z: x[2]},
			Right: r3.Vector{X: x[3], Y: x[4], Z: x[5]},
		}, nil
	case c.IsSet(flagSphere):
		x, err := parseFloats(c.String(flagSphere), 4)
		if err != nil { return nil, errors.Wrapf(err, "--%s", flagSphere) }
		return &selector.Sphere{
			Center: r3.Vector{X: x[0], Y: x[1], Z: x[2]}, Radius: x[3],
		}, nil
	case c.IsSet(flagGrid):
		return &selector.Grid{ ID: c.Int(flagGrid) }, nil
	}
	return &selector.All{ }, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	tok := strings.Fields(s)
	if len(tok) != n {
		return nil, errors.Errorf("'%s' should have %d numbers, but has %d.",
			s, n, len(tok))
	}
	out := make([]float64, n)
	for i := range tok {
		x, err := strconv.ParseFloat(tok[i], 64)
		if err != nil { return nil, errors.Errorf("'%s' is not a number.", tok[i]) }
		out[i] = x
	}
	return out, nil
}

func printParticles(
	c *cli.Context, fields []amr.FieldKey, p particles.Particles,
) {
	for _, field := range fields {
		printField(c.App.Writer, field, p[field], c.Bool(flagPrint))
	}
}

func printField(w io.Writer, field amr.FieldKey, x []float64, all bool) {
	s := lib.Summarize(x)
	fmt.Fprintf(w, "%s: N = %d, min = %.6g, max = %.6g, mean = %.6g, "+
		"std = %.6g\n", field, s.N, s.Min, s.Max, s.Mean, s.Std)
	if !all { return }
	for i := range x { fmt.Fprintf(w, "%.8g\n", x[i]) }
}
