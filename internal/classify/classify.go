// Package classify recognizes a specific on-chain failure class
// (bonding-curve-complete, error code 6005) in otherwise-opaque error
// values so the decision pipeline can retry across DEX variants.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	standaloneToken         = regexp.MustCompile(`(^|[^0-9])6005([^0-9]|$)`)
	instructionErrorPattern = regexp.MustCompile(`InstructionError\(\s*\d+\s*,\s*Custom\(6005\)\s*\)`)
)

// Is6005BondingCurveComplete reports whether the textual rendering of v
// identifies the pump.fun bonding-curve-complete error (program error
// code 6005). Accepts any value with a textual rendering (polymorphic
// over "displayable" values) via fmt.Sprintf("%v", v).
func Is6005BondingCurveComplete(v any) bool {
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return false
	}

	switch {
	case standaloneToken.MatchString(s):
		return true
	case strings.Contains(s, "0x1775"):
		return true
	case strings.Contains(s, "Custom(6005)"):
		return true
	case instructionErrorPattern.MatchString(s):
		return true
	default:
		return false
	}
}
