package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"example.com/fuzzy-control/core/fuzzy"
)

const (
	DefaultInterval    = 50 * time.Millisecond
	DefaultMetricsAddr = "127.0.0.1:8080"

	shapeLeftShoulder  = "left_shoulder"
	shapeRightShoulder = "right_shoulder"
	shapeTriangle      = "triangle"
	shapeTrapezoid     = "trapezoid"

	mergeMax = "max"
	mergeSum = "sum"

	defuzzCentroid = "centroid"
	defuzzMax      = "max"
)

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

//go:embed default.toml
var defaultConfig []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

type CategoryConfig struct {
	Name   string    `toml:"name" yaml:"name" validate:"required,excludes=."`
	Shape  string    `toml:"shape" yaml:"shape" validate:"required,oneof=left_shoulder right_shoulder triangle trapezoid"`
	Points []float64 `toml:"points" yaml:"points" validate:"min=2,max=4"`
}

type AxisConfig struct {
	Name       string           `toml:"name" yaml:"name" validate:"required,excludes=."`
	Min        float64          `toml:"min" yaml:"min"`
	Max        float64          `toml:"max" yaml:"max" validate:"gtfield=Min"`
	Categories []CategoryConfig `toml:"category" yaml:"categories" validate:"required,min=1,dive"`
}

// RuleConfig is one row of a rule table. Exactly one of If, All and Any
// names the antecedent, as "axis.category" terms.
type RuleConfig struct {
	If     string   `toml:"if,omitempty" yaml:"if,omitempty"`
	All    []string `toml:"all,omitempty" yaml:"all,omitempty"`
	Any    []string `toml:"any,omitempty" yaml:"any,omitempty"`
	Not    bool     `toml:"not,omitempty" yaml:"not,omitempty"`
	Then   string   `toml:"then" yaml:"then" validate:"required"`
	Weight float64  `toml:"weight,omitempty" yaml:"weight,omitempty" validate:"gte=0,lte=1"`
}

type OutputConfig struct {
	Name       string           `toml:"name" yaml:"name" validate:"required,excludes=."`
	Min        float64          `toml:"min" yaml:"min"`
	Max        float64          `toml:"max" yaml:"max" validate:"gtfield=Min"`
	Categories []CategoryConfig `toml:"category" yaml:"categories" validate:"required,min=1,dive"`
	Merge      string           `toml:"merge,omitempty" yaml:"merge,omitempty" validate:"omitempty,oneof=max sum"`
	Defuzzify  string           `toml:"defuzzify,omitempty" yaml:"defuzzify,omitempty" validate:"omitempty,oneof=centroid max"`
	Rules      []RuleConfig     `toml:"rule" yaml:"rules" validate:"required,min=1,dive"`
}

type LoopConfig struct {
	Interval    string `toml:"interval,omitempty" yaml:"interval,omitempty"`
	Vehicles    int    `toml:"vehicles,omitempty" yaml:"vehicles,omitempty" validate:"gte=0"`
	MetricsAddr string `toml:"metrics_address,omitempty" yaml:"metrics_address,omitempty" validate:"omitempty,hostname_port"`
	TraceDB     string `toml:"trace_database,omitempty" yaml:"trace_database,omitempty"`
}

type Config struct {
	Loop    LoopConfig     `toml:"loop" yaml:"loop"`
	Inputs  []AxisConfig   `toml:"input" yaml:"inputs" validate:"required,min=1,dive"`
	Outputs []OutputConfig `toml:"output" yaml:"outputs" validate:"required,min=1,dive"`
}

func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Parse(raw, FormatOf(path))
}

// Default returns the built-in reference vehicle tuning.
func Default() *Config {
	cfg, err := Parse(defaultConfig, FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("unexpected default configuration: %v", err))
	}
	return cfg
}

// Parse decodes and validates a configuration. Unknown fields are rejected.
func Parse(raw []byte, f Format) (*Config, error) {
	var cfg Config
	var err error
	switch f {
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		panic("unexpected configuration format")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Loop.IntervalDuration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Engine(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (l LoopConfig) IntervalDuration() (time.Duration, error) {
	if l.Interval == "" {
		return DefaultInterval, nil
	}
	d, err := time.ParseDuration(l.Interval)
	if err != nil {
		return 0, fmt.Errorf("loop interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("loop interval %v is not positive", d)
	}
	return d, nil
}

func (l LoopConfig) NumVehicles() int {
	if l.Vehicles == 0 {
		return 1
	}
	return l.Vehicles
}

func (l LoopConfig) MetricsAddress() string {
	if l.MetricsAddr == "" {
		return DefaultMetricsAddr
	}
	return l.MetricsAddr
}

// Engine builds the fuzzy engine described by c.
func (c *Config) Engine() (*fuzzy.Engine, error) {
	inputs := make([]*fuzzy.Variable, 0, len(c.Inputs))
	for _, a := range c.Inputs {
		v, err := newVariable(a.Name, a.Min, a.Max, a.Categories)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}
	outputs := make([]*fuzzy.RuleSet, 0, len(c.Outputs))
	for _, o := range c.Outputs {
		rs, err := newRuleSet(o)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, rs)
	}
	return fuzzy.NewEngine(inputs, outputs)
}

func newVariable(name string, min, max float64, cats []CategoryConfig) (*fuzzy.Variable, error) {
	sets := make([]fuzzy.Set, 0, len(cats))
	for _, c := range cats {
		fn, err := membership(c, min, max)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, c.Name, err)
		}
		sets = append(sets, fuzzy.Set{Name: c.Name, Fn: fn})
	}
	return fuzzy.NewVariable(name, min, max, sets...)
}

func membership(c CategoryConfig, min, max float64) (fuzzy.MembershipFunc, error) {
	p := c.Points
	want := map[string]int{
		shapeLeftShoulder:  2,
		shapeRightShoulder: 2,
		shapeTriangle:      3,
		shapeTrapezoid:     4,
	}[c.Shape]
	if want == 0 {
		return nil, fmt.Errorf("%w: unknown shape %q", fuzzy.ErrInvalidMembership, c.Shape)
	}
	if len(p) != want {
		return nil, fmt.Errorf("%w: %s needs %d points, got %d",
			fuzzy.ErrInvalidMembership, c.Shape, want, len(p))
	}
	switch c.Shape {
	case shapeLeftShoulder:
		return fuzzy.LeftShoulder(min, max, p[0], p[1]), nil
	case shapeRightShoulder:
		return fuzzy.RightShoulder(min, max, p[0], p[1]), nil
	case shapeTriangle:
		return fuzzy.Triangle{Left: p[0], Peak: p[1], Right: p[2]}, nil
	default:
		return fuzzy.Trapezoid{A: p[0], B: p[1], C: p[2], D: p[3]}, nil
	}
}

func newRuleSet(o OutputConfig) (*fuzzy.RuleSet, error) {
	v, err := newVariable(o.Name, o.Min, o.Max, o.Categories)
	if err != nil {
		return nil, err
	}
	rules := make([]fuzzy.Rule, 0, len(o.Rules))
	for i, r := range o.Rules {
		x, err := r.expr()
		if err != nil {
			return nil, fmt.Errorf("%s rule %d: %w", o.Name, i, err)
		}
		rules = append(rules, fuzzy.Rule{If: x, Then: r.Then, Weight: r.Weight})
	}
	var opts []fuzzy.Option
	switch o.Merge {
	case "", mergeMax:
	case mergeSum:
		opts = append(opts, fuzzy.WithMerger(fuzzy.SumMerger{}))
	default:
		return nil, fmt.Errorf("%w: %s: unknown merge policy %q", fuzzy.ErrInvalidRule, o.Name, o.Merge)
	}
	switch o.Defuzzify {
	case "", defuzzCentroid:
	case defuzzMax:
		opts = append(opts, fuzzy.WithDefuzzifier(fuzzy.MaxMembership{}))
	default:
		return nil, fmt.Errorf("%w: %s: unknown defuzzify policy %q", fuzzy.ErrInvalidRule, o.Name, o.Defuzzify)
	}
	return fuzzy.NewRuleSet(v, rules, opts...)
}

var errAntecedent = errors.New("exactly one of if, all and any must be set")

func (r RuleConfig) expr() (fuzzy.Expr, error) {
	var x fuzzy.Expr
	n := 0
	if r.If != "" {
		n++
		t, err := term(r.If)
		if err != nil {
			return nil, err
		}
		x = t
	}
	if len(r.All) != 0 {
		n++
		ts, err := terms(r.All)
		if err != nil {
			return nil, err
		}
		x = fuzzy.And(ts...)
	}
	if len(r.Any) != 0 {
		n++
		ts, err := terms(r.Any)
		if err != nil {
			return nil, err
		}
		x = fuzzy.Or(ts...)
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: %w", fuzzy.ErrInvalidRule, errAntecedent)
	}
	if r.Not {
		x = fuzzy.Not(x)
	}
	return x, nil
}

func term(s string) (fuzzy.Expr, error) {
	axis, name, ok := strings.Cut(s, ".")
	if !ok || axis == "" || name == "" {
		return nil, fmt.Errorf("%w: antecedent %q is not of the form axis.category", fuzzy.ErrInvalidRule, s)
	}
	return fuzzy.Is(axis, name), nil
}

func terms(ss []string) ([]fuzzy.Expr, error) {
	xs := make([]fuzzy.Expr, 0, len(ss))
	for _, s := range ss {
		x, err := term(s)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}
