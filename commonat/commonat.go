// Package commonat detects, parses and builds AT-family containers without
// knowing the concrete format up front.
//
// Detection and parsing recognise every format. Compression only considers
// formats on the dispatcher allow-list and keeps the smallest result.
package commonat

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/SkyTemple/skytemple-files-sub002/container"
	"github.com/SkyTemple/skytemple-files-sub002/otelpx"
	"github.com/SkyTemple/skytemple-files-sub002/px"
)

var (
	// ErrUnrecognizedContainer means no known magic at the start of data.
	ErrUnrecognizedContainer = errors.New("unrecognized container")
	// ErrNoUsableCompression means no allowed candidate produced a
	// container.
	ErrNoUsableCompression = errors.New("no usable compression")
)

var (
	// Best4 are default compression candidates.
	Best4 = []container.Format{
		container.FormatAT4PN,
		container.FormatATUPX,
		container.FormatAT4PX,
		container.FormatPKDPX,
	}
	// MustCompress4 are candidates that always produce a compressed
	// container.
	MustCompress4 = []container.Format{
		container.FormatATUPX,
		container.FormatAT4PX,
		container.FormatPKDPX,
	}
)

// Options for Dispatcher.
type Options struct {
	Logger *zap.Logger
	// Allowed formats for Compress. Defaults to every format except ATUPX.
	Allowed []container.Format
	// PX configures PX-based formats.
	PX *px.Options
	// AltCodec is the ATUPX payload codec.
	AltCodec container.Codec
	// StoreCodec is the AT4PN body codec, container.Store by default.
	StoreCodec container.Codec

	// OpenTelemetryInstrumentation enables spans and metrics for Compress.
	OpenTelemetryInstrumentation bool
	TracerProvider               trace.TracerProvider
	MeterProvider                metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Allowed == nil {
		for _, f := range container.FormatValues() {
			if f == container.FormatATUPX {
				continue
			}
			o.Allowed = append(o.Allowed, f)
		}
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
}

// Dispatcher selects container format. Safe for concurrent use.
type Dispatcher struct {
	lg    *zap.Logger
	kinds []container.Kind
	alt   bool

	// allowed is bitmask of formats, bit i is container.Format(i).
	allowed *atomic.Uint32

	otel    bool
	tracer  trace.Tracer
	metrics *metrics // nil if disabled
}

func bit(f container.Format) uint32 { return 1 << uint32(f) }

// New initializes Dispatcher. Formats from Options.Allowed that can't be
// used are skipped.
func New(opt Options) *Dispatcher {
	opt.setDefaults()

	d := &Dispatcher{
		lg: opt.Logger,
		kinds: container.Kinds(container.Options{
			PX:    opt.PX,
			Alt:   opt.AltCodec,
			Store: opt.StoreCodec,
		}),
		alt:     opt.AltCodec != nil,
		allowed: atomic.NewUint32(0),
		otel:    opt.OpenTelemetryInstrumentation,
	}
	if d.otel {
		d.tracer = opt.TracerProvider.Tracer(otelpx.Name,
			trace.WithInstrumentationVersion(otelpx.SemVersion()),
		)
		m, err := newMetrics(opt.MeterProvider)
		if err != nil {
			d.lg.Warn("Metrics disabled", zap.Error(err))
		}
		d.metrics = m
	}
	for _, f := range opt.Allowed {
		if err := d.Allow(f); err != nil {
			d.lg.Warn("Format not allowed", zap.Stringer("format", f), zap.Error(err))
		}
	}

	return d
}

// Allow adds f to allow-list.
func (d *Dispatcher) Allow(f container.Format) error {
	if !f.IsAFormat() {
		return errors.Errorf("unknown format %s", f)
	}
	if f == container.FormatATUPX && !d.alt {
		return errors.Wrap(container.ErrCodecUnavailable, "ATUPX")
	}
	for {
		v := d.allowed.Load()
		if d.allowed.CompareAndSwap(v, v|bit(f)) {
			return nil
		}
	}
}

// Disallow removes f from allow-list.
func (d *Dispatcher) Disallow(f container.Format) {
	for {
		v := d.allowed.Load()
		if d.allowed.CompareAndSwap(v, v&^bit(f)) {
			return
		}
	}
}

// Allowed reports whether f is on allow-list.
func (d *Dispatcher) Allowed(f container.Format) bool {
	return f.IsAFormat() && d.allowed.Load()&bit(f) != 0
}

// AllowedFormats returns allow-list in detection order.
func (d *Dispatcher) AllowedFormats() []container.Format {
	return snapshot(d.allowed.Load()).formats()
}

type snapshot uint32

func (s snapshot) has(f container.Format) bool { return uint32(s)&bit(f) != 0 }

func (s snapshot) formats() []container.Format {
	var out []container.Format
	for _, f := range container.FormatValues() {
		if s.has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (d *Dispatcher) kind(f container.Format) container.Kind {
	for _, k := range d.kinds {
		if k.Format() == f {
			return k
		}
	}
	return nil
}

func (d *Dispatcher) detect(data []byte, offset int) container.Kind {
	for _, k := range d.kinds {
		if k.Matches(data, offset) {
			return k
		}
	}
	return nil
}

// Detect returns format of container at offset.
func (d *Dispatcher) Detect(data []byte, offset int) (container.Format, bool) {
	k := d.detect(data, offset)
	if k == nil {
		return 0, false
	}
	return k.Format(), true
}

// Size returns declared length of container at offset.
func (d *Dispatcher) Size(data []byte, offset int) (int, error) {
	k := d.detect(data, offset)
	if k == nil {
		return 0, ErrUnrecognizedContainer
	}
	return k.Size(data, offset)
}

// Parse decodes container at the start of data.
func (d *Dispatcher) Parse(data []byte) (container.Container, error) {
	k := d.detect(data, 0)
	if k == nil {
		return nil, ErrUnrecognizedContainer
	}
	c, err := k.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	return c, nil
}

// Decompress parses container at the start of data and decodes it.
func (d *Dispatcher) Decompress(data []byte) ([]byte, error) {
	c, err := d.Parse(data)
	if err != nil {
		return nil, err
	}
	out, err := c.Decompress()
	if err != nil {
		return nil, errors.Wrap(err, "decompress")
	}
	return out, nil
}

// Compress builds container from every allowed candidate and returns the
// smallest one. First candidate wins ties. Defaults to Best4.
func (d *Dispatcher) Compress(ctx context.Context, data []byte, candidates ...container.Format) (_ container.Container, rerr error) {
	if len(candidates) == 0 {
		candidates = Best4
	}
	if d.otel {
		newCtx, span := d.tracer.Start(ctx, "Compress",
			trace.WithAttributes(otelpx.InputSize(len(data))),
		)
		ctx = newCtx
		defer func() {
			if rerr != nil {
				span.RecordError(rerr)
				span.SetStatus(codes.Error, rerr.Error())
			}
			span.End()
		}()
	}

	allowed := snapshot(d.allowed.Load())
	var (
		best container.Container
		errs error
	)
	for _, f := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !allowed.has(f) {
			errs = multierr.Append(errs, errors.Errorf("%s: not allowed", f))
			continue
		}
		c, err := d.try(ctx, f, data)
		if err != nil {
			if ce := d.lg.Check(zap.DebugLevel, "Candidate failed"); ce != nil {
				ce.Write(zap.Stringer("format", f), zap.Error(err))
			}
			d.metrics.candidateFailed(ctx, f)
			errs = multierr.Append(errs, errors.Wrap(err, f.String()))
			continue
		}
		if best == nil || c.Len() < best.Len() {
			best = c
		}
	}
	if best == nil {
		if errs == nil {
			errs = errors.New("no candidates")
		}
		return nil, multierr.Combine(ErrNoUsableCompression, errs)
	}
	if ce := d.lg.Check(zap.DebugLevel, "Compressed"); ce != nil {
		ce.Write(
			zap.Stringer("format", best.Format()),
			zap.Int("input", len(data)),
			zap.Int("output", best.Len()),
		)
	}
	d.metrics.compressed(ctx, best, len(data))
	if d.otel {
		trace.SpanFromContext(ctx).SetAttributes(
			otelpx.ContainerFormat(best.Format().String()),
			otelpx.OutputSize(best.Len()),
		)
	}

	return best, nil
}

func (d *Dispatcher) try(ctx context.Context, f container.Format, data []byte) (_ container.Container, rerr error) {
	k := d.kind(f)
	if k == nil {
		return nil, errors.Errorf("unknown format %s", f)
	}
	var span trace.Span
	if d.otel {
		_, span = d.tracer.Start(ctx, f.String(),
			trace.WithAttributes(otelpx.ContainerFormat(f.String())),
		)
		defer func() {
			if rerr != nil {
				span.RecordError(rerr)
				span.SetStatus(codes.Error, rerr.Error())
			}
			span.End()
		}()
	}
	c, err := k.Compress(data)
	if err != nil {
		return nil, err
	}
	if span != nil {
		span.SetAttributes(otelpx.OutputSize(c.Len()))
	}
	return c, nil
}
