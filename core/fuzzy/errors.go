package fuzzy

import (
	"errors"
)

// Configuration errors. Constructors wrap them with details about the
// offending axis, category or rule.
var (
	ErrInvalidAxis       = errors.New("invalid axis")
	ErrDuplicateAxis     = errors.New("duplicate axis")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidMembership = errors.New("invalid membership function")
	ErrInvalidRule       = errors.New("invalid rule")
)
