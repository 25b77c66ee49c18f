package fuzzy

import (
	"fmt"
	"math"
)

// RuleSet is the rule table of one output axis together with the policies
// used to merge and defuzzify its firings.
type RuleSet struct {
	output *Variable
	rules  []Rule
	merger Merger
	defuzz Defuzzifier
}

type Option func(*RuleSet)

func WithMerger(m Merger) Option {
	return func(rs *RuleSet) { rs.merger = m }
}

func WithDefuzzifier(d Defuzzifier) Option {
	return func(rs *RuleSet) { rs.defuzz = d }
}

// NewRuleSet checks every rule against the output axis. Antecedents are
// checked against the input axes by NewEngine.
func NewRuleSet(output *Variable, rules []Rule, opts ...Option) (*RuleSet, error) {
	if output == nil {
		return nil, fmt.Errorf("%w: missing output axis", ErrInvalidRule)
	}
	rs := &RuleSet{
		output: output,
		rules:  make([]Rule, len(rules)),
		merger: MaxMerger{},
		defuzz: Centroid{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	if rs.merger == nil || rs.defuzz == nil {
		return nil, fmt.Errorf("%w: %s: missing merge or defuzzify policy", ErrInvalidRule, output.name)
	}
	for i, r := range rules {
		if r.If == nil || len(r.If.Categories()) == 0 {
			return nil, fmt.Errorf("%w: %s rule %d: empty antecedent", ErrInvalidRule, output.name, i)
		}
		if _, ok := output.Lookup(r.Then); !ok {
			return nil, fmt.Errorf("%w: %s rule %d: consequent %s.%s",
				ErrUnknownCategory, output.name, i, output.name, r.Then)
		}
		if r.Weight == 0 {
			r.Weight = 1
		}
		if math.IsNaN(r.Weight) || r.Weight < 0 || r.Weight > 1 {
			return nil, fmt.Errorf("%w: %s rule %d: weight %v outside (0, 1]",
				ErrInvalidRule, output.name, i, r.Weight)
		}
		rs.rules[i] = r
	}
	return rs, nil
}

func (rs *RuleSet) Output() *Variable { return rs.output }

// Rules returns the rule table with weights normalized. The slice must not
// be modified.
func (rs *RuleSet) Rules() []Rule { return rs.rules }

// Fire evaluates every rule against vs and returns one firing per rule,
// reusing buf.
func (rs *RuleSet) Fire(vs *ValueSet, buf []Firing) []Firing {
	buf = buf[:0]
	for i, r := range rs.rules {
		buf = append(buf, Firing{
			Rule:   i,
			Then:   Category{Axis: rs.output.name, Name: r.Then},
			Degree: r.If.Degree(vs) * r.Weight,
		})
	}
	return buf
}

// Output is the result of one rule set in one cycle.
type Output struct {
	Axis    string
	Value   float64
	Firings []Firing
	Merged  *ValueSet
}

// Fired reports whether any rule fired with a positive degree.
func (o *Output) Fired() bool {
	return o.Merged != nil && o.Merged.Len() != 0
}

func (rs *RuleSet) Evaluate(vs *ValueSet, out *Output) {
	if out.Merged == nil {
		out.Merged = NewValueSet()
	} else {
		out.Merged.Reset()
	}
	out.Axis = rs.output.name
	out.Firings = rs.Fire(vs, out.Firings)
	rs.merger.Merge(out.Firings, out.Merged)
	out.Value = rs.defuzz.Defuzzify(rs.output, out.Merged)
}
