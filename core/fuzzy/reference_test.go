package fuzzy_test

import (
	"testing"

	"example.com/fuzzy-control/core/fuzzy"
)

// Reference vehicle tuning: speed and heading inputs drive throttle and
// steering outputs.

func mustVariable(t *testing.T, name string, min, max float64, sets ...fuzzy.Set) *fuzzy.Variable {
	t.Helper()
	v, err := fuzzy.NewVariable(name, min, max, sets...)
	if err != nil {
		t.Fatalf("NewVariable(%s) failed: %v", name, err)
	}
	return v
}

func mustRuleSet(t *testing.T, output *fuzzy.Variable, rules []fuzzy.Rule, opts ...fuzzy.Option) *fuzzy.RuleSet {
	t.Helper()
	rs, err := fuzzy.NewRuleSet(output, rules, opts...)
	if err != nil {
		t.Fatalf("NewRuleSet(%s) failed: %v", output.Name(), err)
	}
	return rs
}

func speedAxis(t *testing.T) *fuzzy.Variable {
	return mustVariable(t, "speed", 0, 60,
		fuzzy.Set{Name: "slow", Fn: fuzzy.LeftShoulder(0, 60, 0, 45)},
		fuzzy.Set{Name: "medium", Fn: fuzzy.Triangle{Left: 0, Peak: 30, Right: 60}},
		fuzzy.Set{Name: "fast", Fn: fuzzy.RightShoulder(0, 60, 50, 60)},
	)
}

func headingAxis(t *testing.T) *fuzzy.Variable {
	return mustVariable(t, "heading", -12, 12,
		fuzzy.Set{Name: "left", Fn: fuzzy.LeftShoulder(-12, 12, -12, 0)},
		fuzzy.Set{Name: "straight_ahead", Fn: fuzzy.Triangle{Left: -12, Peak: 0, Right: 12}},
		fuzzy.Set{Name: "right", Fn: fuzzy.RightShoulder(-12, 12, 0, 12)},
	)
}

func throttleAxis(t *testing.T) *fuzzy.Variable {
	return mustVariable(t, "throttle", -1, 1,
		fuzzy.Set{Name: "brake", Fn: fuzzy.LeftShoulder(-1, 1, -1, 0)},
		fuzzy.Set{Name: "coast", Fn: fuzzy.Triangle{Left: -1, Peak: 0, Right: 1}},
		fuzzy.Set{Name: "accelerate", Fn: fuzzy.RightShoulder(-1, 1, 0, 1)},
	)
}

func steeringAxis(t *testing.T) *fuzzy.Variable {
	return mustVariable(t, "steering", -1, 1,
		fuzzy.Set{Name: "turn_left", Fn: fuzzy.LeftShoulder(-1, 1, -1, 0)},
		fuzzy.Set{Name: "straight", Fn: fuzzy.Triangle{Left: -1, Peak: 0, Right: 1}},
		fuzzy.Set{Name: "turn_right", Fn: fuzzy.RightShoulder(-1, 1, 0, 1)},
	)
}

func throttleRules(t *testing.T) *fuzzy.RuleSet {
	return mustRuleSet(t, throttleAxis(t), []fuzzy.Rule{
		{If: fuzzy.Is("speed", "slow"), Then: "accelerate"},
		{If: fuzzy.Is("speed", "medium"), Then: "accelerate"},
		{If: fuzzy.Is("speed", "fast"), Then: "coast"},
	})
}

func steeringRules(t *testing.T) *fuzzy.RuleSet {
	return mustRuleSet(t, steeringAxis(t), []fuzzy.Rule{
		{If: fuzzy.Is("heading", "left"), Then: "turn_left"},
		{If: fuzzy.Is("heading", "straight_ahead"), Then: "straight"},
		{If: fuzzy.Is("heading", "right"), Then: "turn_right"},
	})
}

func referenceEngine(t *testing.T) *fuzzy.Engine {
	t.Helper()
	e, err := fuzzy.NewEngine(
		[]*fuzzy.Variable{speedAxis(t), headingAxis(t)},
		[]*fuzzy.RuleSet{throttleRules(t), steeringRules(t)},
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}
