package classify

import "testing"

func TestIs6005BondingCurveComplete(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"bare token", "6005", true},
		{"hex form", "0x1775", true},
		{"custom wrapped", "Custom(6005)", true},
		{"instruction error wrapped", "InstructionError(3, Custom(6005))", true},
		{"embedded in message", "Simulation failed: Custom program error: 0x1775", true},
		{"embedded instruction error", "Transaction simulation failed: Error processing Instruction 2: InstructionError(2, Custom(6005))", true},
		{"different custom code", "Custom(6023)", false},
		{"empty string", "", false},
		{"unrelated text", "blockhash not found", false},
		{"digits containing but not equal to 6005", "16005", false},
		{"digits containing but not equal to 6005 suffix", "60050", false},
		{"int input", 6005, true},
		{"nil input", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Is6005BondingCurveComplete(tc.in)
			if got != tc.want {
				t.Errorf("Is6005BondingCurveComplete(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
