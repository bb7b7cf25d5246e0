// Binary px inspects, unpacks and builds AT-family containers.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SkyTemple/skytemple-files-sub002/commonat"
	"github.com/SkyTemple/skytemple-files-sub002/container"
	"github.com/SkyTemple/skytemple-files-sub002/internal/cmd/app"
	"github.com/SkyTemple/skytemple-files-sub002/internal/refcodec"
	"github.com/SkyTemple/skytemple-files-sub002/otelpx"
	"github.com/SkyTemple/skytemple-files-sub002/px"
)

func parseFormats(names []string) ([]container.Format, error) {
	var out []container.Format
	for _, n := range names {
		for _, s := range strings.Split(n, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			f, err := container.FormatString(s)
			if err != nil {
				return nil, errors.Wrap(err, "format")
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func newDispatcher(c *cli.Context, lg *zap.Logger) (*commonat.Dispatcher, error) {
	opt := commonat.Options{
		Logger: lg,
		PX: &px.Options{
			Level: px.Level(c.Int("level")),
			Order: px.SequenceFirst,
		},
	}
	if c.Bool("nibble-first") {
		opt.PX.Order = px.NibbleFirst
	}
	if name := c.String("alt"); name != "" {
		m, err := refcodec.MethodString(name)
		if err != nil {
			return nil, errors.Wrap(err, "alt codec")
		}
		alt := refcodec.Codec{Method: m}
		if c.IsSet("alt-hc") {
			if m != refcodec.LZ4 {
				return nil, errors.Errorf("alt-hc requires %s, got %s", refcodec.LZ4, m)
			}
			alt.HC = true
			alt.Level = c.Int("alt-hc")
		}
		opt.AltCodec = alt
	} else if c.IsSet("alt-hc") {
		return nil, errors.New("alt-hc requires alt")
	}
	if c.IsSet("allow") {
		allowed, err := parseFormats(c.StringSlice("allow"))
		if err != nil {
			return nil, err
		}
		opt.Allowed = allowed
	}
	d := commonat.New(opt)
	if c.IsSet("allow") {
		// Surface formats that New skipped.
		for _, f := range opt.Allowed {
			if err := d.Allow(f); err != nil {
				return nil, errors.Wrapf(err, "allow %s", f)
			}
		}
	}
	return d, nil
}

// entry is container found in file.
type entry struct {
	Offset int
	Format container.Format
	Size   int
}

// scan finds containers in data. Detected containers are skipped whole.
func scan(d *commonat.Dispatcher, data []byte) ([]entry, error) {
	var (
		out  []entry
		errs error
	)
	for offset := 0; offset < len(data); {
		f, ok := d.Detect(data, offset)
		if !ok {
			offset++
			continue
		}
		n, err := d.Size(data, offset)
		if err != nil || n <= 0 || offset+n > len(data) {
			if err == nil {
				err = errors.Errorf("size %d out of bounds", n)
			}
			errs = multierr.Append(errs, errors.Wrapf(err, "%s at 0x%x", f, offset))
			offset++
			continue
		}
		out = append(out, entry{Offset: offset, Format: f, Size: n})
		offset += n
	}
	return out, errs
}

func readInput(c *cli.Context) (string, []byte, error) {
	if c.NArg() != 1 {
		return "", nil, errors.New("expected single FILE argument")
	}
	name := c.Args().First()
	data, err := os.ReadFile(name)
	if err != nil {
		return "", nil, errors.Wrap(err, "read")
	}
	return name, data, nil
}

func output(c *cli.Context, name, ext string) string {
	if out := c.String("output"); out != "" {
		return out
	}
	return name + ext
}

func detectCmd(lg *zap.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() == 0 {
			return errors.New("no files")
		}
		d := commonat.New(commonat.Options{Logger: lg})
		for _, name := range c.Args().Slice() {
			data, err := os.ReadFile(name)
			if err != nil {
				return errors.Wrap(err, "read")
			}
			if !c.Bool("scan") {
				f, ok := d.Detect(data, 0)
				if !ok {
					fmt.Printf("%s: unknown\n", name)
					continue
				}
				fmt.Printf("%s: %s\n", name, f)
				continue
			}
			entries, err := scan(d, data)
			if err != nil {
				lg.Warn("Scan", zap.String("file", name), zap.Error(err))
			}
			for _, e := range entries {
				fmt.Printf("%s: 0x%08x %s %s\n", name, e.Offset, e.Format, humanize.Bytes(uint64(e.Size)))
			}
		}
		return nil
	}
}

func infoCmd(lg *zap.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		d, err := newDispatcher(c, lg)
		if err != nil {
			return err
		}
		name, data, err := readInput(c)
		if err != nil {
			return err
		}
		ct, err := d.Parse(data)
		if err != nil {
			return errors.Wrap(err, name)
		}
		out, err := ct.Decompress()
		if err != nil {
			return errors.Wrap(err, name)
		}
		fmt.Printf("%s: %s (%s), %s -> %s (%.1f%%)\n", name, ct.Format(), payloadKind(ct.Format()),
			humanize.Bytes(uint64(ct.Len())),
			humanize.Bytes(uint64(len(out))),
			ratio(ct.Len(), len(out)),
		)
		if trailing := len(data) - ct.Len(); trailing > 0 {
			fmt.Printf("%s: %d trailing bytes\n", name, trailing)
		}
		return nil
	}
}

// payloadKind describes how payload of f is encoded.
func payloadKind(f container.Format) string {
	switch {
	case f.Compressed():
		return "px"
	case f == container.FormatATUPX:
		return "alt"
	default:
		return "stored"
	}
}

func ratio(compressed, raw int) float64 {
	if raw == 0 {
		return 100
	}
	return float64(compressed) / float64(raw) * 100
}

func decompressCmd(lg *zap.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		d, err := newDispatcher(c, lg)
		if err != nil {
			return err
		}
		name, data, err := readInput(c)
		if err != nil {
			return err
		}
		out, err := d.Decompress(data)
		if err != nil {
			return errors.Wrap(err, name)
		}
		target := output(c, name, ".bin")
		if err := os.WriteFile(target, out, 0o644); err != nil {
			return errors.Wrap(err, "write")
		}
		lg.Info("Decompressed",
			zap.String("output", target),
			zap.String("size", humanize.Bytes(uint64(len(out)))),
		)
		return nil
	}
}

func compressCmd(lg *zap.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		d, err := newDispatcher(c, lg)
		if err != nil {
			return err
		}
		name, data, err := readInput(c)
		if err != nil {
			return err
		}
		candidates, err := parseFormats(c.StringSlice("format"))
		if err != nil {
			return err
		}
		if c.Bool("must-compress") && len(candidates) == 0 {
			candidates = commonat.MustCompress4
		}
		ct, err := d.Compress(c.Context, data, candidates...)
		if err != nil {
			return errors.Wrap(err, name)
		}
		target := output(c, name, "."+strings.ToLower(ct.Format().String()))
		if err := os.WriteFile(target, ct.Bytes(), 0o644); err != nil {
			return errors.Wrap(err, "write")
		}
		lg.Info("Compressed",
			zap.String("output", target),
			zap.Stringer("format", ct.Format()),
			zap.String("size", humanize.Bytes(uint64(ct.Len()))),
			zap.Float64("ratio", ratio(ct.Len(), len(data))),
		)
		return nil
	}
}

func newApp(lg *zap.Logger) *cli.App {
	codecFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "level",
			Usage: "PX compression level, 0-3",
			Value: int(px.Level3),
		},
		&cli.BoolFlag{
			Name:  "nibble-first",
			Usage: "try nibble patterns before sequences",
		},
		&cli.StringFlag{
			Name:  "alt",
			Usage: "ATUPX payload codec: " + strings.Join(refcodec.MethodStrings(), ", "),
		},
		&cli.IntFlag{
			Name:  "alt-hc",
			Usage: "use LZ4HC with `LEVEL` for lz4 ATUPX payloads",
		},
		&cli.StringSliceFlag{
			Name:  "allow",
			Usage: "formats allowed for compression",
		},
	}
	outputFlag := &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "write result to `FILE`",
	}
	return &cli.App{
		Name:    "px",
		Usage:   "Inspect and build AT-family containers",
		Version: otelpx.Version(),
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "Print container format of files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "scan",
						Usage: "list containers embedded at any offset",
					},
				},
				Action: detectCmd(lg),
			},
			{
				Name:      "info",
				Usage:     "Print container sizes",
				ArgsUsage: "FILE",
				Flags:     codecFlags,
				Action:    infoCmd(lg),
			},
			{
				Name:      "decompress",
				Usage:     "Unpack container",
				ArgsUsage: "FILE",
				Flags:     append([]cli.Flag{outputFlag}, codecFlags...),
				Action:    decompressCmd(lg),
			},
			{
				Name:      "compress",
				Usage:     "Pack file into smallest allowed container",
				ArgsUsage: "FILE",
				Flags: append([]cli.Flag{
					outputFlag,
					&cli.StringSliceFlag{
						Name:  "format",
						Usage: "candidate formats, in order",
					},
					&cli.BoolFlag{
						Name:  "must-compress",
						Usage: "never store data as is",
					},
				}, codecFlags...),
				Action: compressCmd(lg),
			},
		},
	}
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger) error {
		return newApp(lg).RunContext(ctx, os.Args)
	})
}
