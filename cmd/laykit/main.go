package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/laykit"
	"github.com/wippyai/laykit/convert"
	"github.com/wippyai/laykit/gdsii"
	"github.com/wippyai/laykit/oasis"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Input layout file (.gds or .oas)")
		outFile     = flag.String("out", "", "Output file for -convert")
		detect      = flag.Bool("detect", false, "Detect the input format and exit")
		info        = flag.Bool("info", false, "Print a summary of the input")
		convertTo   = flag.String("convert", "", "Convert the input to the given format (gds|oas)")
		circleSegs  = flag.Int("circle-segments", 32, "Polygon segments used when circles convert to boundaries")
		interactive = flag.Bool("i", false, "Interactive cell browser")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: laykit -in <file> [-detect | -info | -i]")
		fmt.Fprintln(os.Stderr, "       laykit -in <file> -convert gds|oas -out <file>")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			gdsii.SetLogger(logger)
			oasis.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if err := run(*inFile, *outFile, *convertTo, *circleSegs, *detect, *info, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, outFile, convertTo string, circleSegs int, detect, info, interactive bool) error {
	data, err := os.ReadFile(inFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	format := laykit.Detect(data)
	if detect {
		fmt.Printf("%s: %s\n", inFile, format)
		return nil
	}
	if format == laykit.FormatUnknown {
		return fmt.Errorf("%s: unrecognized layout format", inFile)
	}

	layout, err := load(format, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", format, err)
	}

	if interactive {
		return runInteractive(inFile, layout)
	}

	if convertTo != "" {
		return runConvert(layout, convertTo, outFile, circleSegs)
	}

	if info {
		printInfo(inFile, layout)
		return nil
	}

	printInfo(inFile, layout)
	return nil
}

// layout is the format-agnostic view the CLI works with. Exactly one of
// the two models is set.
type layout struct {
	format laykit.Format
	gds    *gdsii.Library
	oas    *oasis.File
}

func load(format laykit.Format, data []byte) (*layout, error) {
	switch format {
	case laykit.FormatGDSII:
		lib, err := gdsii.Parse(data)
		if err != nil {
			return nil, err
		}
		return &layout{format: format, gds: lib}, nil
	default:
		f, err := oasis.Parse(data)
		if err != nil {
			return nil, err
		}
		return &layout{format: format, oas: f}, nil
	}
}

func (l *layout) cells() []cellInfo {
	var out []cellInfo
	if l.gds != nil {
		for _, s := range l.gds.Structures {
			out = append(out, cellInfo{name: s.Name, elements: gdsElementLines(s)})
		}
		return out
	}
	for _, c := range l.oas.Cells {
		out = append(out, cellInfo{name: c.Name, elements: oasElementLines(c)})
	}
	return out
}

type cellInfo struct {
	name     string
	elements []string
}

func gdsElementLines(s *gdsii.Structure) []string {
	var out []string
	for _, el := range s.Elements {
		switch e := el.(type) {
		case *gdsii.Boundary:
			out = append(out, fmt.Sprintf("boundary layer=%d datatype=%d vertices=%d", e.Layer, e.Datatype, len(e.XY)))
		case *gdsii.Path:
			out = append(out, fmt.Sprintf("path layer=%d pathtype=%d vertices=%d", e.Layer, e.PathType, len(e.XY)))
		case *gdsii.Text:
			out = append(out, fmt.Sprintf("text layer=%d %q at (%d,%d)", e.Layer, e.String, e.XY.X, e.XY.Y))
		case *gdsii.StructRef:
			out = append(out, fmt.Sprintf("sref -> %s at (%d,%d)", e.StructureName, e.XY.X, e.XY.Y))
		case *gdsii.ArrayRef:
			out = append(out, fmt.Sprintf("aref -> %s %dx%d", e.StructureName, e.Columns, e.Rows))
		case *gdsii.Node:
			out = append(out, fmt.Sprintf("node layer=%d vertices=%d", e.Layer, len(e.XY)))
		case *gdsii.Box:
			out = append(out, fmt.Sprintf("box layer=%d boxtype=%d", e.Layer, e.BoxType))
		}
	}
	return out
}

func oasElementLines(c *oasis.Cell) []string {
	var out []string
	for _, el := range c.Elements {
		line := ""
		switch e := el.(type) {
		case *oasis.Rectangle:
			line = fmt.Sprintf("rectangle layer=%d %dx%d at (%d,%d)", e.Layer, e.Width, e.Height, e.X, e.Y)
		case *oasis.Polygon:
			line = fmt.Sprintf("polygon layer=%d vertices=%d", e.Layer, len(e.Points)+1)
		case *oasis.Path:
			line = fmt.Sprintf("path layer=%d halfwidth=%d vertices=%d", e.Layer, e.HalfWidth, len(e.Points)+1)
		case *oasis.Trapezoid:
			line = fmt.Sprintf("trapezoid layer=%d %dx%d", e.Layer, e.Width, e.Height)
		case *oasis.CTrapezoid:
			line = fmt.Sprintf("ctrapezoid layer=%d type=%d", e.Layer, e.TrapType)
		case *oasis.Circle:
			line = fmt.Sprintf("circle layer=%d r=%d at (%d,%d)", e.Layer, e.Radius, e.X, e.Y)
		case *oasis.Text:
			line = fmt.Sprintf("text layer=%d %q", e.Layer, e.String)
		case *oasis.Placement:
			line = fmt.Sprintf("placement -> %s at (%d,%d)", e.CellName, e.X, e.Y)
		case *oasis.XElement:
			line = fmt.Sprintf("xelement attr=%d", e.Attribute)
		}
		if rep := el.Rep(); rep != nil {
			line += fmt.Sprintf(" x%d", rep.Count())
		}
		out = append(out, line)
	}
	return out
}

func printInfo(name string, l *layout) {
	fmt.Printf("File: %s\n", name)
	fmt.Printf("Format: %s\n", l.format)
	if l.gds != nil {
		fmt.Printf("Library: %s (version %d)\n", l.gds.Name, l.gds.Version)
		fmt.Printf("Units: user=%g m, database=%g m\n", l.gds.UserUnit, l.gds.DatabaseUnit)
		fmt.Printf("Structures: %d\n", len(l.gds.Structures))
		if errs := l.gds.Validate(); len(errs) > 0 {
			fmt.Printf("Violations: %d\n", len(errs))
			for _, err := range errs {
				fmt.Printf("  %v\n", err)
			}
		}
	} else {
		fmt.Printf("Version: %s\n", l.oas.Version)
		fmt.Printf("Unit: %g\n", l.oas.Unit)
		fmt.Printf("Cells: %d\n", len(l.oas.Cells))
		if errs := l.oas.Validate(); len(errs) > 0 {
			fmt.Printf("Violations: %d\n", len(errs))
			for _, err := range errs {
				fmt.Printf("  %v\n", err)
			}
		}
	}
	for _, c := range l.cells() {
		fmt.Printf("\n%s (%d elements)\n", c.name, len(c.elements))
		for _, line := range c.elements {
			fmt.Printf("  %s\n", line)
		}
	}
}

func runConvert(l *layout, target, outFile string, circleSegs int) error {
	if outFile == "" {
		return fmt.Errorf("-convert needs -out")
	}
	opts := convert.DefaultOptions()
	opts.CircleSegments = circleSegs

	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	switch strings.ToLower(target) {
	case "oas", "oasis":
		f := l.oas
		if f == nil {
			if f, err = convert.ToOASIS(l.gds, opts); err != nil {
				return err
			}
		}
		return f.Write(out)
	case "gds", "gdsii":
		lib := l.gds
		if lib == nil {
			if lib, err = convert.ToGDSII(l.oas, opts); err != nil {
				return err
			}
		}
		return lib.Write(out)
	}
	return fmt.Errorf("unknown target format %q", target)
}
