package fuzzy

// Merger combines the firings of a rule set into one degree per consequent.
// Categories without a positive firing get no entry.
type Merger interface {
	Merge(firings []Firing, into *ValueSet)
}

// MaxMerger keeps the strongest firing per consequent, so redundant rules
// never push a conclusion beyond what its best supporting rule says.
type MaxMerger struct{}

// SumMerger adds firings per consequent, bounded at 1.
type SumMerger struct{}

func (MaxMerger) Merge(firings []Firing, into *ValueSet) {
	for _, f := range firings {
		if f.Degree <= 0 {
			continue
		}
		if d, ok := into.Get(f.Then); !ok || f.Degree > d {
			into.Set(f.Then, f.Degree)
		}
	}
}

func (SumMerger) Merge(firings []Firing, into *ValueSet) {
	for _, f := range firings {
		if f.Degree <= 0 {
			continue
		}
		into.Set(f.Then, into.Degree(f.Then)+f.Degree)
	}
}
