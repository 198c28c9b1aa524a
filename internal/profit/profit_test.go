package profit

import "testing"

func TestComputeNetProfit_ProfitableTrade(t *testing.T) {
	net := ComputeNetProfit(1_000_000, 1_030_000, 50, 1_000)
	if net == nil {
		t.Fatalf("expected Some(net), got nil")
	}
	if *net <= 28_000 || *net > 29_000 {
		t.Fatalf("expected net in (28_000, 29_000], got %d", *net)
	}
}

func TestComputeNetProfit_BelowThresholdWithNoTxCost(t *testing.T) {
	if net := ComputeNetProfit(1_000_000, 1_002_000, 50, 0); net != nil {
		t.Fatalf("expected None, got %v", *net)
	}
}

func TestComputeNetProfit_TxCostEatsMargin(t *testing.T) {
	if net := ComputeNetProfit(1_000_000, 1_005_000, 10, 5_000); net != nil {
		t.Fatalf("expected None, got %v", *net)
	}
}

func TestComputeNetProfit_LossIsSaturatedToZero(t *testing.T) {
	if net := ComputeNetProfit(1_000_000, 900_000, 0, 0); net != nil {
		t.Fatalf("expected None for a losing trade, got %v", *net)
	}
}

func TestComputeNetProfit_ZeroMinProfitBpsStillRequiresPositiveNet(t *testing.T) {
	if net := ComputeNetProfit(1_000_000, 1_000_000, 0, 0); net != nil {
		t.Fatalf("expected None for exactly-breakeven trade (net must be > 0), got %v", *net)
	}
}
