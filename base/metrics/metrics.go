package metrics

const (
	ControlCyclesH        = "The total number of control cycles evaluated"
	ControlCyclesN        = "fuzzyctl_control_cycles"
	ControlCycleSecondsH  = "The time spent evaluating one control cycle"
	ControlCycleSecondsN  = "fuzzyctl_control_cycle_seconds"
	ControlOutputH        = "The crisp output applied in the last control cycle"
	ControlOutputN        = "fuzzyctl_control_output"
	ControlRulesFiredH    = "The number of rules with a positive firing degree in the last control cycle"
	ControlRulesFiredN    = "fuzzyctl_control_rules_fired"
	ControlNoRuleFiredH   = "The total number of outputs resolved by the no-rule-fired fallback"
	ControlNoRuleFiredN   = "fuzzyctl_control_no_rule_fired"
	ConfigReloadsH        = "The total number of engine configurations loaded"
	ConfigReloadsN        = "fuzzyctl_config_reloads"
	ConfigReloadFailuresH = "The total number of rejected engine configuration reloads"
	ConfigReloadFailuresN = "fuzzyctl_config_reload_failures"
	TraceErrorsH          = "The total number of control cycles that could not be recorded"
	TraceErrorsN          = "fuzzyctl_trace_errors"
)
