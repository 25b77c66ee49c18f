package fuzzy

import (
	"fmt"
)

// Readings maps input axis names to raw sensor values.
type Readings map[string]float64

// Engine holds the immutable configuration of a fuzzy controller: the input
// axes and one rule set per output axis. It keeps no per-cycle state and is
// safe for concurrent use; working memory lives in a caller-owned Cycle.
type Engine struct {
	inputs  []*Variable
	outputs []*RuleSet
}

func NewEngine(inputs []*Variable, outputs []*RuleSet) (*Engine, error) {
	axes := make(map[string]*Variable)
	for _, v := range inputs {
		if v == nil {
			return nil, fmt.Errorf("%w: missing input axis", ErrInvalidAxis)
		}
		if _, ok := axes[v.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAxis, v.name)
		}
		axes[v.name] = v
	}
	outs := make(map[string]bool)
	for _, rs := range outputs {
		if rs == nil {
			return nil, fmt.Errorf("%w: missing rule set", ErrInvalidRule)
		}
		name := rs.output.name
		if _, ok := axes[name]; ok || outs[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAxis, name)
		}
		outs[name] = true
		for i, r := range rs.rules {
			for _, c := range r.If.Categories() {
				v, ok := axes[c.Axis]
				if !ok {
					return nil, fmt.Errorf("%w: %s rule %d: input axis %s",
						ErrUnknownCategory, name, i, c.Axis)
				}
				if _, ok := v.Lookup(c.Name); !ok {
					return nil, fmt.Errorf("%w: %s rule %d: antecedent %s",
						ErrUnknownCategory, name, i, c)
				}
			}
		}
	}
	return &Engine{
		inputs:  append([]*Variable(nil), inputs...),
		outputs: append([]*RuleSet(nil), outputs...),
	}, nil
}

func (e *Engine) Inputs() []*Variable { return e.inputs }

func (e *Engine) Outputs() []*RuleSet { return e.outputs }

// Cycle is the working memory of one evaluation: the fuzzified inputs and
// the per-output results. Reuse one Cycle per vehicle across ticks.
type Cycle struct {
	Inputs  *ValueSet
	Outputs []Output
}

func (e *Engine) NewCycle() *Cycle {
	return &Cycle{
		Inputs:  NewValueSet(),
		Outputs: make([]Output, len(e.outputs)),
	}
}

// Value returns the crisp output of the named axis.
func (c *Cycle) Value(axis string) (float64, bool) {
	for i := range c.Outputs {
		if c.Outputs[i].Axis == axis {
			return c.Outputs[i].Value, true
		}
	}
	return 0, false
}

// Fuzzify clears vs and evaluates every input axis that has a reading.
// Readings for unknown axes are ignored.
func (e *Engine) Fuzzify(r Readings, vs *ValueSet) {
	vs.Reset()
	for _, v := range e.inputs {
		if x, ok := r[v.name]; ok {
			v.Evaluate(x, vs)
		}
	}
}

// Evaluate runs one full cycle: fuzzify, fire, merge and defuzzify.
func (e *Engine) Evaluate(r Readings, c *Cycle) {
	if c.Inputs == nil {
		c.Inputs = NewValueSet()
	}
	e.Fuzzify(r, c.Inputs)
	c.Outputs = ApplyRules(c.Inputs, e.outputs, c.Outputs)
}

// ApplyRules evaluates each rule set against vs independently and returns
// one Output per rule set, in order, reusing the buffers in outs.
func ApplyRules(vs *ValueSet, ruleSets []*RuleSet, outs []Output) []Output {
	if cap(outs) < len(ruleSets) {
		outs = append(outs[:cap(outs)], make([]Output, len(ruleSets)-cap(outs))...)
	}
	outs = outs[:len(ruleSets)]
	for i, rs := range ruleSets {
		rs.Evaluate(vs, &outs[i])
	}
	return outs
}
