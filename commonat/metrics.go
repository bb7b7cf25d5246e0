package commonat

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/SkyTemple/skytemple-files-sub002/container"
	"github.com/SkyTemple/skytemple-files-sub002/otelpx"
)

type metrics struct {
	input  metric.Int64Counter
	output metric.Int64Counter
	failed metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(otelpx.Name,
		metric.WithInstrumentationVersion(otelpx.SemVersion()),
	)
	var (
		m   metrics
		err error
	)
	if m.input, err = meter.Int64Counter("px.compress.input",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes compressed"),
	); err != nil {
		return nil, errors.Wrap(err, "input")
	}
	if m.output, err = meter.Int64Counter("px.compress.output",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes of chosen containers"),
	); err != nil {
		return nil, errors.Wrap(err, "output")
	}
	if m.failed, err = meter.Int64Counter("px.compress.candidate.failed",
		metric.WithDescription("Failed compression candidates"),
	); err != nil {
		return nil, errors.Wrap(err, "failed")
	}
	return &m, nil
}

func (m *metrics) compressed(ctx context.Context, c container.Container, input int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(otelpx.ContainerFormat(c.Format().String()))
	m.input.Add(ctx, int64(input), attrs)
	m.output.Add(ctx, int64(c.Len()), attrs)
}

func (m *metrics) candidateFailed(ctx context.Context, f container.Format) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(otelpx.ContainerFormat(f.String())))
}
