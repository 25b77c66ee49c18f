package fuzzy

// Defuzzifier collapses merged output degrees into one crisp value within
// the output axis' domain. When no category has a positive degree,
// implementations return the domain midpoint.
type Defuzzifier interface {
	Defuzzify(v *Variable, merged *ValueSet) float64
}

// Centroid averages the representative values of the output categories,
// weighted by their merged degrees.
type Centroid struct{}

// MaxMembership picks the representative value of the strongest category.
// Ties go to the category declared first.
type MaxMembership struct{}

func (Centroid) Defuzzify(v *Variable, merged *ValueSet) float64 {
	var sum, total float64
	for _, s := range v.sets {
		d := merged.Degree(Category{Axis: v.name, Name: s.Name})
		if d <= 0 {
			continue
		}
		sum += s.Fn.Representative() * d
		total += d
	}
	if total == 0 {
		return v.Midpoint()
	}
	return v.Clamp(sum / total)
}

func (MaxMembership) Defuzzify(v *Variable, merged *ValueSet) float64 {
	best, x := 0.0, v.Midpoint()
	for _, s := range v.sets {
		d := merged.Degree(Category{Axis: v.name, Name: s.Name})
		if d > best {
			best, x = d, s.Fn.Representative()
		}
	}
	return v.Clamp(x)
}
