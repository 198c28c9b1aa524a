package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"solana-trading-core/internal/dex"
	"solana-trading-core/internal/ipc"
)

func TestRunReplay_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "intents.jsonl")

	in, out := testMint(1), testMint(2)
	intent := baseIntent(in, out)
	writeJSONLine(t, inputPath, intent)

	p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_100_000}}, FrozenClock{Ms: 1_000}, NewStubRPC())
	p.Mints.Set(in, 9)
	p.Mints.Set(out, 6)

	outDir := filepath.Join(dir, "out")
	stats, err := RunReplay(context.Background(), p, inputPath, outDir, "decisions")
	if err != nil {
		t.Fatalf("RunReplay: %v", err)
	}
	if stats.IntentsRead != 1 || stats.Accepted != 1 {
		t.Fatalf("stats = %+v, want 1 read / 1 accepted", stats)
	}

	outPath, err := ipc.FindRotatedFile(outDir, "decisions")
	if err != nil {
		t.Fatalf("FindRotatedFile: %v", err)
	}
	reader, err := ipc.OpenReader(outPath)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	var decision ipc.DecisionRecord
	ok, err := reader.Next(&decision)
	if err != nil || !ok {
		t.Fatalf("read decision: ok=%v err=%v", ok, err)
	}
	if decision.Outcome != ipc.OutcomeAccepted {
		t.Fatalf("outcome = %v, want Accepted", decision.Outcome)
	}

	var exec ipc.ExecutionResult
	ok, err = reader.Next(&exec)
	if err != nil || !ok {
		t.Fatalf("read execution: ok=%v err=%v", ok, err)
	}
	if exec.Status != ipc.StatusConfirmed {
		t.Fatalf("status = %v, want Confirmed", exec.Status)
	}
}

func TestRunReplay_DeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "intents.jsonl")
	in, out := testMint(1), testMint(2)
	writeJSONLine(t, inputPath, baseIntent(in, out))

	run := func(outStem string) ipc.DecisionRecord {
		p := newTestPipeline([]dex.Dex{stubDex{name: "x", out: 1_100_000}}, FrozenClock{Ms: 1_000}, NewStubRPC())
		p.Mints.Set(in, 9)
		p.Mints.Set(out, 6)
		outDir := filepath.Join(dir, outStem)
		if _, err := RunReplay(context.Background(), p, inputPath, outDir, "decisions"); err != nil {
			t.Fatalf("RunReplay: %v", err)
		}
		outPath, err := ipc.FindRotatedFile(outDir, "decisions")
		if err != nil {
			t.Fatalf("FindRotatedFile: %v", err)
		}
		reader, err := ipc.OpenReader(outPath)
		if err != nil {
			t.Fatalf("OpenReader: %v", err)
		}
		defer reader.Close()
		var d ipc.DecisionRecord
		if ok, err := reader.Next(&d); err != nil || !ok {
			t.Fatalf("read decision: ok=%v err=%v", ok, err)
		}
		return d
	}

	first := run("run-a")
	second := run("run-b")

	if first.Outcome != second.Outcome {
		t.Fatalf("outcome mismatch: %v vs %v", first.Outcome, second.Outcome)
	}
	if (first.PlanHash == nil) != (second.PlanHash == nil) || (first.PlanHash != nil && *first.PlanHash != *second.PlanHash) {
		t.Fatalf("plan hash mismatch: %v vs %v", first.PlanHash, second.PlanHash)
	}
	if len(first.Checks) != len(second.Checks) {
		t.Fatalf("checks length mismatch: %d vs %d", len(first.Checks), len(second.Checks))
	}
	for i := range first.Checks {
		if first.Checks[i] != second.Checks[i] {
			t.Fatalf("check %d mismatch: %+v vs %+v", i, first.Checks[i], second.Checks[i])
		}
	}
}

func writeJSONLine(t *testing.T, path string, v any) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
}
