// Package sim provides a simulated vehicle that stands in for a game engine
// or a real drive train. It integrates throttle and steering with a fixed
// time step and reports speed and heading error back as readings.
package sim

import (
	"sync"

	"go.uber.org/zap"

	"example.com/fuzzy-control/base/floats"
	"example.com/fuzzy-control/core/fuzzy"
)

const (
	SpeedAxis    = "speed"
	HeadingAxis  = "heading"
	ThrottleAxis = "throttle"
	SteeringAxis = "steering"
)

type Vehicle struct {
	Log *zap.Logger

	// MaxSpeed bounds the speed from above; speed never drops below 0.
	MaxSpeed float64
	// Accel is the speed change per second at full throttle.
	Accel float64
	// TurnRate is the heading change in degrees per second at full lock.
	TurnRate float64
	// DT is the simulated time step per applied cycle, in seconds.
	DT float64

	mu      sync.Mutex
	speed   float64
	heading float64
}

func NewVehicle(log *zap.Logger, speed, heading float64) *Vehicle {
	return &Vehicle{
		Log:      log,
		MaxSpeed: 60.0,
		Accel:    10.0,
		TurnRate: 20.0,
		DT:       0.05,
		speed:    speed,
		heading:  heading,
	}
}

func (v *Vehicle) Read(r fuzzy.Readings) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r[SpeedAxis] = v.speed
	r[HeadingAxis] = v.heading
}

func (v *Vehicle) Apply(c *fuzzy.Cycle) {
	// Missing outputs read as 0: no throttle, no steering.
	throttle, _ := c.Value(ThrottleAxis)
	steering, _ := c.Value(SteeringAxis)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.speed = floats.Clamp(v.speed+throttle*v.Accel*v.DT, 0, v.MaxSpeed)
	v.heading -= steering * v.TurnRate * v.DT
	if v.Log != nil {
		v.Log.Debug("simulated vehicle step",
			zap.Float64("throttle", throttle),
			zap.Float64("steering", steering),
			zap.Float64("speed", v.speed),
			zap.Float64("heading", v.heading),
		)
	}
}

func (v *Vehicle) State() (speed, heading float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speed, v.heading
}
