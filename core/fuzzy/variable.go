package fuzzy

import (
	"fmt"

	"example.com/fuzzy-control/base/floats"
)

// Set names one category of a variable and its membership function.
type Set struct {
	Name string
	Fn   MembershipFunc
}

// Variable is one input or output axis: a bounded domain partitioned into
// overlapping categories. It is immutable once constructed.
type Variable struct {
	name     string
	min, max float64
	sets     []Set
	index    map[string]int
}

func NewVariable(name string, min, max float64, sets ...Set) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidAxis)
	}
	if !floats.IsFinite(min) || !floats.IsFinite(max) || !(min < max) {
		return nil, fmt.Errorf("%w: %s: domain [%v, %v] is empty", ErrInvalidAxis, name, min, max)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: %s: no categories", ErrInvalidAxis, name)
	}
	v := &Variable{
		name:  name,
		min:   min,
		max:   max,
		sets:  make([]Set, len(sets)),
		index: make(map[string]int, len(sets)),
	}
	for i, s := range sets {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: %s: category %d has no name", ErrInvalidAxis, name, i)
		}
		if _, ok := v.index[s.Name]; ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateCategory, name, s.Name)
		}
		if s.Fn == nil {
			return nil, fmt.Errorf("%w: %s.%s: missing function", ErrInvalidMembership, name, s.Name)
		}
		if err := s.Fn.Validate(); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, s.Name, err)
		}
		v.sets[i] = s
		v.index[s.Name] = i
	}
	return v, nil
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Domain() (min, max float64) { return v.min, v.max }

func (v *Variable) Midpoint() float64 { return floats.Midpoint(v.min, v.max) }

func (v *Variable) Clamp(x float64) float64 { return floats.Clamp(x, v.min, v.max) }

// Sets returns the categories in declaration order. The slice must not be
// modified.
func (v *Variable) Sets() []Set { return v.sets }

func (v *Variable) Lookup(name string) (Set, bool) {
	i, ok := v.index[name]
	if !ok {
		return Set{}, false
	}
	return v.sets[i], true
}

func (v *Variable) Category(name string) Category {
	return Category{Axis: v.name, Name: name}
}

// Evaluate fuzzifies x, writing one degree per category of v into vs.
func (v *Variable) Evaluate(x float64, vs *ValueSet) {
	for _, s := range v.sets {
		vs.Set(Category{Axis: v.name, Name: s.Name}, s.Fn.Degree(x))
	}
}
