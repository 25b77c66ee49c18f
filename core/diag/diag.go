// Package diag renders per-cycle engine state as text for humans.
package diag

import (
	"fmt"
	"strings"

	"example.com/fuzzy-control/core/fuzzy"
)

func WriteValueSet(b *strings.Builder, title string, vs *fuzzy.ValueSet) {
	fmt.Fprintf(b, "%s\n", title)
	for _, c := range vs.Categories() {
		fmt.Fprintf(b, "  %-28s %.3f\n", c, vs.Degree(c))
	}
}

func WriteRuleSet(b *strings.Builder, rs *fuzzy.RuleSet, out *fuzzy.Output) {
	fmt.Fprintf(b, "%s = %.3f\n", rs.Output().Name(), out.Value)
	rules := rs.Rules()
	for _, f := range out.Firings {
		if f.Rule < 0 || f.Rule >= len(rules) {
			panic("unexpected rule index")
		}
		fmt.Fprintf(b, "  %.3f  %s\n", f.Degree, rules[f.Rule])
	}
	if !out.Fired() {
		fmt.Fprintf(b, "  no rule fired\n")
		return
	}
	for _, c := range out.Merged.Categories() {
		fmt.Fprintf(b, "  => %-25s %.3f\n", c.Name, out.Merged.Degree(c))
	}
}

// WriteCycle writes the inputs and every output of one evaluated cycle.
func WriteCycle(b *strings.Builder, e *fuzzy.Engine, c *fuzzy.Cycle) {
	WriteValueSet(b, "inputs", c.Inputs)
	rss := e.Outputs()
	if len(c.Outputs) != len(rss) {
		panic("unexpected number of outputs")
	}
	for i, rs := range rss {
		WriteRuleSet(b, rs, &c.Outputs[i])
	}
}
