package fuzzy

import (
	"cmp"
	"slices"

	"example.com/fuzzy-control/base/floats"
)

// Category identifies one linguistic category on one axis.
type Category struct {
	Axis, Name string
}

func (c Category) String() string { return c.Axis + "." + c.Name }

// ValueSet holds degrees of membership keyed by category. It is working
// memory owned by the caller: the engine only writes into it. The zero value
// is ready to use.
type ValueSet struct {
	m map[Category]float64
}

func NewValueSet() *ValueSet {
	return &ValueSet{m: make(map[Category]float64)}
}

// Set stores d, clamped to [0, 1].
func (vs *ValueSet) Set(c Category, d float64) {
	if vs.m == nil {
		vs.m = make(map[Category]float64)
	}
	vs.m[c] = floats.Clamp01(d)
}

func (vs *ValueSet) Get(c Category) (float64, bool) {
	d, ok := vs.m[c]
	return d, ok
}

// Degree returns the degree of c, or 0 if c has no entry.
func (vs *ValueSet) Degree(c Category) float64 {
	return vs.m[c]
}

func (vs *ValueSet) Reset() {
	clear(vs.m)
}

func (vs *ValueSet) Len() int {
	return len(vs.m)
}

// Categories returns the categories with an entry, ordered by axis and name.
func (vs *ValueSet) Categories() []Category {
	cs := make([]Category, 0, len(vs.m))
	for c := range vs.m {
		cs = append(cs, c)
	}
	slices.SortFunc(cs, func(a, b Category) int {
		if n := cmp.Compare(a.Axis, b.Axis); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return cs
}
