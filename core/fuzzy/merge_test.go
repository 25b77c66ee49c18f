package fuzzy_test

import (
	"testing"

	"example.com/fuzzy-control/core/fuzzy"
)

func TestMerge(t *testing.T) {
	accelerate := fuzzy.Category{Axis: "throttle", Name: "accelerate"}
	coast := fuzzy.Category{Axis: "throttle", Name: "coast"}
	brake := fuzzy.Category{Axis: "throttle", Name: "brake"}
	firings := []fuzzy.Firing{
		{Rule: 0, Then: accelerate, Degree: 0.3},
		{Rule: 1, Then: accelerate, Degree: 0.7},
		{Rule: 2, Then: coast, Degree: 0.6},
		{Rule: 3, Then: coast, Degree: 0.6},
		{Rule: 4, Then: brake, Degree: 0},
	}

	tests := []struct {
		name   string
		merger fuzzy.Merger
		want   map[fuzzy.Category]float64
	}{
		{
			name:   "Max",
			merger: fuzzy.MaxMerger{},
			want:   map[fuzzy.Category]float64{accelerate: 0.7, coast: 0.6},
		},
		{
			name:   "Bounded sum",
			merger: fuzzy.SumMerger{},
			want:   map[fuzzy.Category]float64{accelerate: 1, coast: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := fuzzy.NewValueSet()
			tt.merger.Merge(firings, merged)
			if merged.Len() != len(tt.want) {
				t.Errorf("merged %d categories, want %d", merged.Len(), len(tt.want))
			}
			for c, w := range tt.want {
				if got := merged.Degree(c); got != w {
					t.Errorf("merged %v = %v, want %v", c, got, w)
				}
			}
			if _, ok := merged.Get(brake); ok {
				t.Errorf("merged %v has an entry, want none", brake)
			}
		})
	}
}
