package fuzzy

import (
	"strconv"
	"strings"
)

// Expr is a rule antecedent.
type Expr interface {
	Degree(vs *ValueSet) float64
	// Categories lists the input categories the expression reads.
	Categories() []Category
	String() string
}

type isExpr struct {
	c Category
}

type andExpr []Expr

type orExpr []Expr

type notExpr struct {
	x Expr
}

// Is holds to the degree the named category holds.
func Is(axis, name string) Expr { return isExpr{Category{Axis: axis, Name: name}} }

// And holds to the minimum degree of its operands.
func And(xs ...Expr) Expr { return andExpr(xs) }

// Or holds to the maximum degree of its operands.
func Or(xs ...Expr) Expr { return orExpr(xs) }

func Not(x Expr) Expr { return notExpr{x} }

func (e isExpr) Degree(vs *ValueSet) float64 { return vs.Degree(e.c) }

func (e isExpr) Categories() []Category { return []Category{e.c} }

func (e isExpr) String() string { return e.c.String() }

func (e andExpr) Degree(vs *ValueSet) float64 {
	if len(e) == 0 {
		return 0
	}
	d := 1.0
	for _, x := range e {
		d = min(d, x.Degree(vs))
	}
	return d
}

func (e andExpr) Categories() []Category { return categories(e) }

func (e andExpr) String() string { return join(e, " AND ") }

func (e orExpr) Degree(vs *ValueSet) float64 {
	d := 0.0
	for _, x := range e {
		d = max(d, x.Degree(vs))
	}
	return d
}

func (e orExpr) Categories() []Category { return categories(e) }

func (e orExpr) String() string { return join(e, " OR ") }

func (e notExpr) Degree(vs *ValueSet) float64 { return 1 - e.x.Degree(vs) }

func (e notExpr) Categories() []Category { return e.x.Categories() }

func (e notExpr) String() string { return "NOT " + e.x.String() }

func categories(xs []Expr) []Category {
	var cs []Category
	for _, x := range xs {
		cs = append(cs, x.Categories()...)
	}
	return cs
}

func join(xs []Expr, sep string) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = x.String()
	}
	return "(" + strings.Join(ss, sep) + ")"
}

// Rule concludes Then, a category of the rule set's output axis, to the
// degree its antecedent holds scaled by Weight. A zero Weight means 1.
type Rule struct {
	If     Expr
	Then   string
	Weight float64
}

func (r Rule) String() string {
	s := "IF " + r.If.String() + " THEN " + r.Then
	if r.Weight != 1 {
		s += " WEIGHT " + strconv.FormatFloat(r.Weight, 'g', -1, 64)
	}
	return s
}

// Firing is the result of evaluating one rule.
type Firing struct {
	Rule   int
	Then   Category
	Degree float64
}
