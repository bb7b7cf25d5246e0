// Binary px-bench compares PX compression levels with reference codecs on a
// set of files.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SkyTemple/skytemple-files-sub002/commonat"
	"github.com/SkyTemple/skytemple-files-sub002/internal/cmd/app"
	"github.com/SkyTemple/skytemple-files-sub002/internal/refcodec"
	"github.com/SkyTemple/skytemple-files-sub002/px"
)

// Result of single codec run on single file.
type Result struct {
	Run       string  `csv:"run"`
	File      string  `csv:"file"`
	Codec     string  `csv:"codec"`
	Input     int     `csv:"input"`
	Output    int     `csv:"output"`
	Ratio     float64 `csv:"ratio"`
	Compress  int64   `csv:"compress_ns"`
	Roundtrip bool    `csv:"roundtrip"`
	Error     string  `csv:"error"`
}

// codec under benchmark.
type codec struct {
	Name string
	// Compress returns compressed size and function that decodes result.
	Compress func(data []byte) (int, func() ([]byte, error), error)
}

func pxCodec(level px.Level, order px.SearchOrder) codec {
	opt := &px.Options{Level: level, Order: order}
	name := fmt.Sprintf("px-l%d", level)
	if order == px.NibbleFirst {
		name += "-nibble"
	}
	return codec{
		Name: name,
		Compress: func(data []byte) (int, func() ([]byte, error), error) {
			flags, payload, err := px.Compress(data, opt)
			if err != nil {
				return 0, nil, err
			}
			return len(payload), func() ([]byte, error) {
				return px.Decompress(payload, flags)
			}, nil
		},
	}
}

func refCodec(name string, c refcodec.Codec) codec {
	return codec{
		Name: "ref-" + name,
		Compress: func(data []byte) (int, func() ([]byte, error), error) {
			block, err := c.Compress(data)
			if err != nil {
				return 0, nil, err
			}
			return len(block), func() ([]byte, error) {
				return c.Decompress(block, len(data))
			}, nil
		},
	}
}

func containerCodec(d *commonat.Dispatcher) codec {
	return codec{
		Name: "commonat",
		Compress: func(data []byte) (int, func() ([]byte, error), error) {
			c, err := d.Compress(context.Background(), data)
			if err != nil {
				return 0, nil, err
			}
			return c.Len(), c.Decompress, nil
		},
	}
}

func bench(name string, data []byte, c codec) Result {
	r := Result{
		File:  name,
		Codec: c.Name,
		Input: len(data),
	}
	start := time.Now()
	n, decode, err := c.Compress(data)
	r.Compress = time.Since(start).Nanoseconds()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Output = n
	if len(data) > 0 {
		r.Ratio = float64(n) / float64(len(data))
	}
	out, err := decode()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Roundtrip = bytes.Equal(out, data)
	return r
}

func listFiles(root string, maxSize int64) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxSize {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk")
	}
	sort.Strings(files)
	return files, nil
}

func codecs(lg *zap.Logger) []codec {
	var out []codec
	for l := px.Level0; l <= px.Level3; l++ {
		out = append(out, pxCodec(l, px.SequenceFirst))
	}
	out = append(out, pxCodec(px.Level3, px.NibbleFirst))
	for _, m := range refcodec.MethodValues() {
		out = append(out, refCodec(m.String(), refcodec.Codec{Method: m}))
	}
	for _, l := range []int{1, 5, 9} {
		out = append(out, refCodec(fmt.Sprintf("LZ4HC-l%d", l), refcodec.Codec{
			Method: refcodec.LZ4,
			HC:     true,
			Level:  l,
		}))
	}
	// Blocks of single PX payload size.
	out = append(out, refCodec("ZSTD-64k", refcodec.Codec{
		Method:    refcodec.ZSTD,
		BlockSize: 64 * 1024,
	}))
	out = append(out, containerCodec(commonat.New(commonat.Options{Logger: lg})))
	return out
}

func run(ctx context.Context, lg *zap.Logger) error {
	var arg struct {
		Dir        string
		Output     string
		Jobs       int
		MaxSize    int64
		CPUProfile string
	}
	flag.StringVar(&arg.Dir, "dir", ".", "directory with files to compress")
	flag.StringVar(&arg.Output, "o", "px-bench.csv", "write csv report to `file`")
	flag.IntVar(&arg.Jobs, "j", runtime.GOMAXPROCS(0), "concurrent files")
	flag.Int64Var(&arg.MaxSize, "max-size", 1024*1024, "skip files larger than `bytes`")
	flag.StringVar(&arg.CPUProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.Parse()

	if arg.CPUProfile != "" {
		f, err := os.Create(arg.CPUProfile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "start cpu profile")
		}
		defer pprof.StopCPUProfile()
	}

	files, err := listFiles(arg.Dir, arg.MaxSize)
	if err != nil {
		return err
	}
	lg.Info("Benchmarking", zap.Int("files", len(files)), zap.Int("jobs", arg.Jobs))

	results, stats, err := benchFiles(ctx, files, codecs(lg), arg.Jobs)
	if err != nil {
		return err
	}

	out, err := os.Create(arg.Output)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	if err := writeReport(out, results); err != nil {
		return err
	}

	fmt.Print(summary(results))
	fmt.Printf("%d files, %s read, %d failures\n",
		stats.Files.Load(), humanize.Bytes(stats.Bytes.Load()), stats.Failures.Load(),
	)
	return nil
}

// writeReport writes results as CSV and closes w.
func writeReport(w io.WriteCloser, results []Result) (rerr error) {
	defer multierr.AppendInvoke(&rerr, multierr.Close(w))
	if err := gocsv.Marshal(&results, w); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// Stats are counters updated by benchmark workers.
type Stats struct {
	Files    atomic.Uint64
	Bytes    atomic.Uint64
	Failures atomic.Uint64
}

func benchFiles(ctx context.Context, files []string, codecs []codec, jobs int) ([]Result, *Stats, error) {
	if jobs < 1 {
		jobs = 1
	}
	var (
		runID   = uuid.New().String()
		stats   = new(Stats)
		results = make([][]Result, len(files))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			data, err := os.ReadFile(name)
			if err != nil {
				return errors.Wrap(err, "read")
			}
			stats.Files.Inc()
			stats.Bytes.Add(uint64(len(data)))
			for _, c := range codecs {
				if err := ctx.Err(); err != nil {
					return err
				}
				r := bench(name, data, c)
				r.Run = runID
				if r.Error != "" || !r.Roundtrip {
					stats.Failures.Inc()
				}
				results[i] = append(results[i], r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var flat []Result
	for _, r := range results {
		flat = append(flat, r...)
	}
	return flat, stats, nil
}

// summary formats total sizes per codec.
func summary(results []Result) string {
	type total struct {
		input, output int
		duration      time.Duration
		failed        int
	}
	var (
		names  []string
		totals = map[string]*total{}
	)
	for _, r := range results {
		t, ok := totals[r.Codec]
		if !ok {
			t = &total{}
			totals[r.Codec] = t
			names = append(names, r.Codec)
		}
		if r.Error != "" || !r.Roundtrip {
			t.failed++
			continue
		}
		t.input += r.Input
		t.output += r.Output
		t.duration += time.Duration(r.Compress)
	}

	var b bytes.Buffer
	for _, name := range names {
		t := totals[name]
		ratio := 0.0
		if t.input > 0 {
			ratio = float64(t.output) / float64(t.input) * 100
		}
		fmt.Fprintf(&b, "%16s %10s -> %10s %6.2f%% %10s %d failed\n",
			name,
			humanize.Bytes(uint64(t.input)),
			humanize.Bytes(uint64(t.output)),
			ratio,
			t.duration.Round(time.Millisecond),
			t.failed,
		)
	}
	return b.String()
}

func main() {
	app.Run(run)
}
