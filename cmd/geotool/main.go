package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/geojsontools/internal/codec"
	"github.com/woozymasta/geojsontools/internal/geo"
	"github.com/woozymasta/geojsontools/internal/logger"
	"github.com/woozymasta/geojsontools/internal/render"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in"     description:"Input file path (JSON or YAML). Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Minify bool   `short:"m" long:"minify" description:"Minify JSON output"`
}

var opts Options

// errInvalid makes validate exit with status 1 without printing an error.
var errInvalid = errors.New("input is not valid GeoJSON")

type toGeoJSONCommand struct {
	Kind string `short:"k" long:"kind" description:"Geometry kind (case-insensitive)" default:"point"`
}

func (c *toGeoJSONCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	g, err := geo.ToGeoJSON(in, c.Kind)
	if err != nil {
		return err
	}
	return emit(g)
}

type toArrayCommand struct{}

func (c *toArrayCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	v, err := geo.ToArray(in)
	if err != nil {
		return err
	}
	return emit(v)
}

type distanceCommand struct {
	Decimals int `short:"d" long:"decimals" description:"Decimal places of the result" default:"3"`
}

func (c *distanceCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	d, err := geo.DistanceOf(in, c.Decimals)
	if err != nil {
		return err
	}
	return emit(d)
}

type complexifyCommand struct {
	MaxKm float64 `short:"k" long:"max-km" description:"Maximum distance between consecutive points in km" required:"true"`
}

func (c *complexifyCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	out, err := geo.Complexify(in, c.MaxKm, geo.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	return emit(out)
}

type validateCommand struct {
	Diagnostic bool `short:"d" long:"diagnostic" description:"Print the failure reason instead of a bare boolean"`
}

func (c *validateCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}

	res := geo.Validate(in)
	if c.Diagnostic {
		err = emit(res)
	} else {
		err = emit(res.Valid)
	}
	if err != nil {
		return err
	}

	if !res.Valid {
		return errInvalid
	}
	return nil
}

type renderCommand struct {
	Width   int     `short:"W" long:"width"   description:"Image width in pixels"  default:"512"`
	Height  int     `short:"H" long:"height"  description:"Image height in pixels" default:"512"`
	Stroke  float64 `short:"s" long:"stroke"  description:"Line width in pixels"   default:"2"`
	Quality float32 `short:"q" long:"quality" description:"WebP quality (1-100)"   default:"85"`
}

func (c *renderCommand) Execute([]string) error {
	in, err := readInput()
	if err != nil {
		return err
	}

	o := render.DefaultOptions()
	o.Width, o.Height, o.Stroke, o.Quality = c.Width, c.Height, c.Stroke, c.Quality

	return writeOutput(func(w io.Writer) error {
		return render.Render(w, in, o)
	})
}

func main() {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = false

	commands := []struct {
		name, short, long string
		data              any
	}{
		{"togeojson", "Convert [lat, lng] arrays to GeoJSON", "Convert plain [lat, lng] coordinates to a GeoJSON geometry of --kind.", &toGeoJSONCommand{}},
		{"toarray", "Convert GeoJSON to [lat, lng] arrays", "Convert a GeoJSON geometry back to plain [lat, lng] coordinates.", &toArrayCommand{}},
		{"distance", "Measure a path in kilometres", "Sum the haversine distance along a list of [lat, lng] points.", &distanceCommand{}},
		{"complexify", "Insert points along a line", "Insert interpolated points so no segment is longer than --max-km.", &complexifyCommand{}},
		{"validate", "Validate GeoJSON", "Check the input against the GeoJSON structure. Exits with status 1 when invalid.", &validateCommand{}},
		{"render", "Render a WebP preview", "Draw the input GeoJSON and write it as WebP to --out or stdout.", &renderCommand{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			fmt.Fprintf(os.Stderr, "Error registering command %s: %v\n", c.name, err)
			os.Exit(2)
		}
	}

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		opts.Logger.Setup()
		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		switch {
		case errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		case errors.Is(err, errInvalid):
			os.Exit(1)
		case errors.As(err, &flagsErr):
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func readInput() (any, error) {
	v, err := codec.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return v, nil
}

func emit(v any) error {
	enc := codec.Encoder{Format: opts.Format, Minify: opts.Minify}
	return writeOutput(func(w io.Writer) error {
		return enc.Encode(w, v)
	})
}

// writeOutput runs write against --out, or stdout when it is empty.
func writeOutput(write func(io.Writer) error) error {
	if opts.Output == "" || opts.Output == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
