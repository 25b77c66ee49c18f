package control_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/fuzzy-control/core/config"
	"example.com/fuzzy-control/core/control"
	"example.com/fuzzy-control/core/fuzzy"
)

type fixedSensor fuzzy.Readings

func (s fixedSensor) Read(r fuzzy.Readings) {
	for k, v := range s {
		r[k] = v
	}
}

type recordingActuator struct {
	mu       sync.Mutex
	throttle []float64
	steering []float64
}

func (a *recordingActuator) Apply(c *fuzzy.Cycle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, _ := c.Value("throttle")
	s, _ := c.Value("steering")
	a.throttle = append(a.throttle, t)
	a.steering = append(a.steering, s)
}

func (a *recordingActuator) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.throttle)
}

type countingRecorder struct {
	mu   sync.Mutex
	seqs []uint64
	err  error
}

func (r *countingRecorder) Record(_ context.Context, _ uuid.UUID, seq uint64, _ *fuzzy.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs = append(r.seqs, seq)
	return r.err
}

func defaultSource(t *testing.T) *control.Source {
	t.Helper()
	e, err := config.Default().Engine()
	if err != nil {
		t.Fatalf("Engine failed: %v", err)
	}
	return control.NewSource(e)
}

func TestLoopRun(t *testing.T) {
	rec := &countingRecorder{err: errors.New("disk full")}
	l := &control.Loop{
		Log:      zap.NewNop(),
		Source:   defaultSource(t),
		Interval: time.Millisecond,
		Cycles:   3,
		Recorder: rec,
	}
	act := &recordingActuator{}
	v := control.Vehicle{
		ID:       uuid.New(),
		Sensor:   fixedSensor{"speed": 0, "heading": 12},
		Actuator: act,
	}

	err := l.Run(context.Background(), v)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if act.count() != 3 {
		t.Fatalf("actuator applied %d cycles, want 3", act.count())
	}
	for i := range act.throttle {
		if act.throttle[i] != 1 || act.steering[i] != 1 {
			t.Errorf("cycle %d: throttle, steering = %v, %v, want 1, 1",
				i, act.throttle[i], act.steering[i])
		}
	}
	if len(rec.seqs) != 3 || rec.seqs[2] != 2 {
		t.Errorf("recorded sequence numbers %v, want [0 1 2]", rec.seqs)
	}
}

func TestLoopRunCancel(t *testing.T) {
	l := &control.Loop{
		Log:      zap.NewNop(),
		Source:   defaultSource(t),
		Interval: time.Millisecond,
	}
	act := &recordingActuator{}
	v := control.Vehicle{ID: uuid.New(), Sensor: fixedSensor{}, Actuator: act}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, v) }()
	for act.count() < 2 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestLoopInvalidInterval(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic, got none")
		}
	}()
	l := &control.Loop{Log: zap.NewNop(), Source: defaultSource(t)}
	_ = l.Run(context.Background(), control.Vehicle{})
}

func TestSourceSwap(t *testing.T) {
	src := defaultSource(t)
	l := &control.Loop{Log: zap.NewNop(), Source: src, Interval: time.Millisecond}
	act := &recordingActuator{}
	v := control.Vehicle{ID: uuid.New(), Sensor: fixedSensor{"speed": 60, "heading": 0}, Actuator: act}
	readings := make(fuzzy.Readings)
	c := &fuzzy.Cycle{}

	l.Step(context.Background(), zap.NewNop(), v, readings, c, 0)

	cfg := config.Default()
	cfg.Outputs[0].Rules[2].Then = "brake"
	e, err := cfg.Engine()
	if err != nil {
		t.Fatalf("Engine failed: %v", err)
	}
	src.Store(e)
	l.Step(context.Background(), zap.NewNop(), v, readings, c, 1)

	if act.throttle[0] != 0 {
		t.Errorf("throttle before swap = %v, want 0", act.throttle[0])
	}
	if act.throttle[1] != -1 {
		t.Errorf("throttle after swap = %v, want -1", act.throttle[1])
	}
}

func TestRunFleet(t *testing.T) {
	l := &control.Loop{
		Log:      zap.NewNop(),
		Source:   defaultSource(t),
		Interval: time.Millisecond,
		Cycles:   5,
	}
	headings := []float64{-12, -6, 0, 6, 12}
	acts := make([]*recordingActuator, len(headings))
	vs := make([]control.Vehicle, len(headings))
	for i, h := range headings {
		acts[i] = &recordingActuator{}
		vs[i] = control.Vehicle{
			ID:       uuid.New(),
			Sensor:   fixedSensor{"speed": 30, "heading": h},
			Actuator: acts[i],
		}
	}

	if err := l.RunFleet(context.Background(), vs); err != nil {
		t.Fatalf("RunFleet failed: %v", err)
	}
	want := []float64{-1, -0.5, 0, 0.5, 1}
	for i, a := range acts {
		if a.count() != 5 {
			t.Errorf("vehicle %d applied %d cycles, want 5", i, a.count())
			continue
		}
		if a.steering[4] != want[i] {
			t.Errorf("vehicle %d steering = %v, want %v", i, a.steering[4], want[i])
		}
	}
}
