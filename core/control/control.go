package control

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/fuzzy-control/base/metrics"
	"example.com/fuzzy-control/core/fuzzy"
)

// Sensor fills in the raw readings of one vehicle for the current cycle.
type Sensor interface {
	Read(r fuzzy.Readings)
}

// Actuator applies the crisp outputs of an evaluated cycle.
type Actuator interface {
	Apply(c *fuzzy.Cycle)
}

type Recorder interface {
	Record(ctx context.Context, vehicle uuid.UUID, seq uint64, c *fuzzy.Cycle) error
}

type Vehicle struct {
	ID       uuid.UUID
	Sensor   Sensor
	Actuator Actuator
}

// Source publishes the engine the loops evaluate. Engines are immutable, so
// swapping one in takes effect at the next cycle of every vehicle.
type Source struct {
	p atomic.Pointer[fuzzy.Engine]
}

func NewSource(e *fuzzy.Engine) *Source {
	s := &Source{}
	s.Store(e)
	return s
}

func (s *Source) Load() *fuzzy.Engine { return s.p.Load() }

func (s *Source) Store(e *fuzzy.Engine) {
	if e == nil {
		panic("unexpected nil engine")
	}
	s.p.Store(e)
}

var (
	cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.ControlCyclesN,
		Help: metrics.ControlCyclesH,
	}, []string{"vehicle"})
	cycleSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    metrics.ControlCycleSecondsN,
		Help:    metrics.ControlCycleSecondsH,
		Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
	})
	outputs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: metrics.ControlOutputN,
		Help: metrics.ControlOutputH,
	}, []string{"vehicle", "axis"})
	rulesFired = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: metrics.ControlRulesFiredN,
		Help: metrics.ControlRulesFiredH,
	}, []string{"vehicle", "axis"})
	noRuleFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.ControlNoRuleFiredN,
		Help: metrics.ControlNoRuleFiredH,
	}, []string{"axis"})
	traceErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.TraceErrorsN,
		Help: metrics.TraceErrorsH,
	})
)

type Loop struct {
	Log      *zap.Logger
	Source   *Source
	Interval time.Duration
	// Cycles bounds the number of cycles per vehicle; 0 means unbounded.
	Cycles   uint64
	Recorder Recorder
}

// Run drives one vehicle until ctx is done or the cycle budget is spent.
func (l *Loop) Run(ctx context.Context, v Vehicle) error {
	if l.Interval <= 0 {
		panic("invalid control loop interval")
	}
	if l.Source == nil || l.Source.Load() == nil {
		panic("invalid engine source")
	}
	log := l.Log.With(zap.Stringer("vehicle", v.ID))
	log.Info("starting control loop", zap.Duration("interval", l.Interval))

	readings := make(fuzzy.Readings)
	c := &fuzzy.Cycle{}
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()
	for seq := uint64(0); l.Cycles == 0 || seq != l.Cycles; seq++ {
		l.Step(ctx, log, v, readings, c, seq)
		select {
		case <-ctx.Done():
			log.Info("stopping control loop", zap.Uint64("cycles", seq+1))
			return nil
		case <-ticker.C:
		}
	}
	log.Info("control loop finished", zap.Uint64("cycles", l.Cycles))
	return nil
}

// Step runs one cycle: read sensors, evaluate, actuate, publish.
func (l *Loop) Step(ctx context.Context, log *zap.Logger, v Vehicle,
	readings fuzzy.Readings, c *fuzzy.Cycle, seq uint64) {
	e := l.Source.Load()
	clear(readings)
	v.Sensor.Read(readings)

	t0 := time.Now()
	e.Evaluate(readings, c)
	cycleSeconds.Observe(time.Since(t0).Seconds())

	v.Actuator.Apply(c)

	id := v.ID.String()
	cycles.WithLabelValues(id).Inc()
	fields := make([]zap.Field, 0, 1+len(c.Outputs))
	fields = append(fields, zap.Uint64("seq", seq))
	for i := range c.Outputs {
		out := &c.Outputs[i]
		outputs.WithLabelValues(id, out.Axis).Set(out.Value)
		rulesFired.WithLabelValues(id, out.Axis).Set(float64(countFired(out.Firings)))
		if !out.Fired() {
			noRuleFired.WithLabelValues(out.Axis).Inc()
		}
		fields = append(fields, zap.Float64(out.Axis, out.Value))
	}
	log.Debug("control cycle", fields...)

	if l.Recorder != nil {
		err := l.Recorder.Record(ctx, v.ID, seq, c)
		if err != nil {
			traceErrors.Inc()
			log.Info("failed to record control cycle", zap.Uint64("seq", seq), zap.Error(err))
		}
	}
}

// RunFleet drives every vehicle in its own goroutine. Vehicles share the
// engine source and nothing else.
func (l *Loop) RunFleet(ctx context.Context, vs []Vehicle) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, v := range vs {
		g.Go(func() error {
			return l.Run(ctx, v)
		})
	}
	return g.Wait()
}

func countFired(fs []fuzzy.Firing) int {
	n := 0
	for _, f := range fs {
		if f.Degree > 0 {
			n++
		}
	}
	return n
}
