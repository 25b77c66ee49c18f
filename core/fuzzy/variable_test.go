package fuzzy_test

import (
	"errors"
	"math"
	"testing"

	"example.com/fuzzy-control/core/fuzzy"
)

func TestNewVariableErrors(t *testing.T) {
	tri := fuzzy.Triangle{Left: 0, Peak: 1, Right: 2}
	tests := []struct {
		name    string
		axis    string
		min     float64
		max     float64
		sets    []fuzzy.Set
		wantErr error
	}{
		{name: "Missing name", axis: "", min: 0, max: 1, sets: []fuzzy.Set{{Name: "a", Fn: tri}}, wantErr: fuzzy.ErrInvalidAxis},
		{name: "Empty domain", axis: "x", min: 1, max: 1, sets: []fuzzy.Set{{Name: "a", Fn: tri}}, wantErr: fuzzy.ErrInvalidAxis},
		{name: "NaN domain", axis: "x", min: math.NaN(), max: 1, sets: []fuzzy.Set{{Name: "a", Fn: tri}}, wantErr: fuzzy.ErrInvalidAxis},
		{name: "No categories", axis: "x", min: 0, max: 1, wantErr: fuzzy.ErrInvalidAxis},
		{name: "Unnamed category", axis: "x", min: 0, max: 1, sets: []fuzzy.Set{{Fn: tri}}, wantErr: fuzzy.ErrInvalidAxis},
		{
			name:    "Duplicate category",
			axis:    "x",
			min:     0,
			max:     2,
			sets:    []fuzzy.Set{{Name: "a", Fn: tri}, {Name: "a", Fn: tri}},
			wantErr: fuzzy.ErrDuplicateCategory,
		},
		{name: "Missing function", axis: "x", min: 0, max: 1, sets: []fuzzy.Set{{Name: "a"}}, wantErr: fuzzy.ErrInvalidMembership},
		{
			name:    "Invalid function",
			axis:    "x",
			min:     0,
			max:     1,
			sets:    []fuzzy.Set{{Name: "a", Fn: fuzzy.Triangle{Left: 1, Peak: 1, Right: 1}}},
			wantErr: fuzzy.ErrInvalidMembership,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := fuzzy.NewVariable(tt.axis, tt.min, tt.max, tt.sets...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewVariable() error = %v, want %v", err, tt.wantErr)
			}
			if v != nil {
				t.Errorf("NewVariable() = %v, want nil", v)
			}
		})
	}
}

func TestVariableEvaluate(t *testing.T) {
	speed := speedAxis(t)
	vs := fuzzy.NewValueSet()
	for _, x := range []float64{-5, 0, 22.5, 30, 47, 55, 60, 90} {
		speed.Evaluate(x, vs)
		if vs.Len() != len(speed.Sets()) {
			t.Fatalf("Evaluate(%v) wrote %d degrees, want %d", x, vs.Len(), len(speed.Sets()))
		}
		for _, s := range speed.Sets() {
			d, ok := vs.Get(speed.Category(s.Name))
			if !ok {
				t.Fatalf("Evaluate(%v) wrote no degree for %s", x, s.Name)
			}
			if d < 0 || d > 1 {
				t.Errorf("Evaluate(%v): %s = %v, want value in [0, 1]", x, s.Name, d)
			}
		}
	}
}

func TestVariableEvaluateOverwrites(t *testing.T) {
	speed := speedAxis(t)
	vs := fuzzy.NewValueSet()
	speed.Evaluate(0, vs)
	speed.Evaluate(60, vs)

	want := map[string]float64{"slow": 0, "medium": 0, "fast": 1}
	for name, w := range want {
		if got := vs.Degree(speed.Category(name)); got != w {
			t.Errorf("speed.%s = %v, want %v", name, got, w)
		}
	}
}

func TestVariableEvaluateManyCategories(t *testing.T) {
	var sets []fuzzy.Set
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		x := float64(i)
		sets = append(sets, fuzzy.Set{Name: name, Fn: fuzzy.Triangle{Left: x - 1, Peak: x, Right: x + 1}})
	}
	v := mustVariable(t, "x", -1, 5, sets...)

	vs := fuzzy.NewValueSet()
	v.Evaluate(2, vs)
	if vs.Len() != 5 {
		t.Fatalf("Evaluate wrote %d degrees, want 5", vs.Len())
	}
	if got := vs.Degree(v.Category("c")); got != 1 {
		t.Errorf("x.c = %v, want 1", got)
	}
	if got := vs.Degree(v.Category("e")); got != 0 {
		t.Errorf("x.e = %v, want 0", got)
	}
}

func TestVariableDomain(t *testing.T) {
	v := headingAxis(t)
	if min, max := v.Domain(); min != -12 || max != 12 {
		t.Errorf("Domain() = %v, %v, want -12, 12", min, max)
	}
	if got := v.Midpoint(); got != 0 {
		t.Errorf("Midpoint() = %v, want 0", got)
	}
	if got := v.Clamp(-180); got != -12 {
		t.Errorf("Clamp(-180) = %v, want -12", got)
	}
	if _, ok := v.Lookup("straight_ahead"); !ok {
		t.Errorf("Lookup(straight_ahead) = false, want true")
	}
	if _, ok := v.Lookup("backwards"); ok {
		t.Errorf("Lookup(backwards) = true, want false")
	}
}
