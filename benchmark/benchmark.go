// Package benchmark measures engine evaluation latency across goroutines.
package benchmark

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"

	"example.com/fuzzy-control/base/floats"
	"example.com/fuzzy-control/core/fuzzy"
)

// Latencies are recorded in nanoseconds.
const (
	minLatency = 1
	maxLatency = 10_000_000
	sigFigs    = 3
)

type Result struct {
	Goroutines int
	Cycles     int
	Elapsed    time.Duration
	// PerGoroutine holds the wall time each goroutine spent on its cycles.
	PerGoroutine []time.Duration
	Histogram    *hdrhistogram.Histogram
}

// Run evaluates e numCyclePerGoroutine times in each of numGoroutine
// goroutines. Every goroutine owns its cycle and readings; the readings sweep
// the input domains so that every category gets exercised.
func Run(log *zap.Logger, e *fuzzy.Engine, numGoroutine, numCyclePerGoroutine int) *Result {
	if numGoroutine <= 0 || numCyclePerGoroutine <= 0 {
		panic("unexpected benchmark size")
	}
	r := &Result{
		Goroutines:   numGoroutine,
		Cycles:       numGoroutine * numCyclePerGoroutine,
		PerGoroutine: make([]time.Duration, numGoroutine),
		Histogram:    hdrhistogram.New(minLatency, maxLatency, sigFigs),
	}

	var mu sync.Mutex
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numGoroutine)
	for i := range numGoroutine {
		go func() {
			defer wg.Done()
			hg := hdrhistogram.New(minLatency, maxLatency, sigFigs)
			readings := make(fuzzy.Readings, len(e.Inputs()))
			c := e.NewCycle()

			<-sg
			t0 := time.Now()
			for j := range numCyclePerGoroutine {
				sweep(e, i*numCyclePerGoroutine+j, readings)
				t := time.Now()
				e.Evaluate(readings, c)
				d := time.Since(t).Nanoseconds()
				err := hg.RecordValue(max(d, minLatency))
				if err != nil {
					log.Info("failed to record histogram value", zap.Int64("latency", d), zap.Error(err))
				}
			}
			elapsed := time.Since(t0)

			mu.Lock()
			defer mu.Unlock()
			r.PerGoroutine[i] = elapsed
			if dropped := r.Histogram.Merge(hg); dropped != 0 {
				log.Info("dropped histogram values", zap.Int64("count", dropped))
			}
		}()
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	r.Elapsed = time.Since(t0)
	return r
}

// sweep fills r with the n-th point of a deterministic walk over the input
// domains. Axes advance at different strides so their values decorrelate.
func sweep(e *fuzzy.Engine, n int, r fuzzy.Readings) {
	const steps = 1000
	for k, v := range e.Inputs() {
		lo, hi := v.Domain()
		i := (n * (2*k + 1)) % (steps + 1)
		r[v.Name()] = floats.Lerp(0, lo, steps, hi, float64(i))
	}
}

func (r *Result) WriteSummary(w io.Writer) error {
	per := make([]float64, len(r.PerGoroutine))
	for i, d := range r.PerGoroutine {
		per[i] = d.Seconds()
	}
	hg := r.Histogram
	_, err := fmt.Fprintf(w,
		"goroutines: %d\ncycles: %d\nelapsed: %v\nmedian goroutine time: %v\n"+
			"latency (ns): min %d p50 %d p90 %d p99 %d max %d mean %.1f\n",
		r.Goroutines, r.Cycles, r.Elapsed,
		time.Duration(floats.Median(per)*float64(time.Second)),
		hg.Min(), hg.ValueAtQuantile(50), hg.ValueAtQuantile(90), hg.ValueAtQuantile(99),
		hg.Max(), hg.Mean())
	return err
}

func (r *Result) WritePercentiles(w io.Writer) error {
	_, err := r.Histogram.PercentilesPrint(w, 1, 1.0)
	return err
}
