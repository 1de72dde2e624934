package segment

import (
	"fmt"
)

// String returns the canonical name of the policy.
func (p SeparatorPolicy) String() string {
	switch p {
	case NoSeparator:
		return "none"
	case SkipOne:
		return "skip-one"
	default:
		return fmt.Sprintf("SeparatorPolicy(%d)", int(p))
	}
}

// ParseSeparatorPolicy parses a separator policy name as used in
// configuration, CLI flags, and API requests. The empty string maps to
// the default.
func ParseSeparatorPolicy(s string) (SeparatorPolicy, error) {
	switch s {
	case "", "none":
		return NoSeparator, nil
	case "skip-one":
		return SkipOne, nil
	default:
		return NoSeparator, fmt.Errorf("unknown separator policy %q (want none or skip-one)", s)
	}
}

// String returns the canonical name of the policy.
func (p SymbolPolicy) String() string {
	switch p {
	case SymbolsFail:
		return "fail"
	case SymbolsEmit:
		return "emit"
	case SymbolsSkip:
		return "skip"
	default:
		return fmt.Sprintf("SymbolPolicy(%d)", int(p))
	}
}

// ParseSymbolPolicy parses a symbol policy name. The empty string maps
// to the default.
func ParseSymbolPolicy(s string) (SymbolPolicy, error) {
	switch s {
	case "", "fail":
		return SymbolsFail, nil
	case "emit":
		return SymbolsEmit, nil
	case "skip":
		return SymbolsSkip, nil
	default:
		return SymbolsFail, fmt.Errorf("unknown symbol policy %q (want fail, emit, or skip)", s)
	}
}
