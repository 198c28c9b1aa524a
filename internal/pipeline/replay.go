package pipeline

import (
	"context"
	"fmt"

	"solana-trading-core/internal/ipc"
)

// ReplayStats summarizes one replay run.
type ReplayStats struct {
	IntentsRead int
	Accepted    int
	Rejected    int
	SimFailed   int
}

// ReplayClockMs derives the frozen "now" a replay run should use: the
// emitted_at timestamp of the first intent in inputPath. Replay determinism
// forbids reading the real wall clock, and freezing at the trace's own
// start lets TTL checks evaluate against the instant the fixture was
// captured instead of whatever moment the binary happens to run.
func ReplayClockMs(inputPath string) (uint64, error) {
	reader, err := ipc.OpenReader(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open replay input: %w", err)
	}
	defer reader.Close()

	var intent ipc.TradeIntent
	ok, err := reader.Next(&intent)
	if err != nil {
		return 0, fmt.Errorf("read first replay intent: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("replay input %s has no intents", inputPath)
	}
	return intent.Header.TsUnixMs, nil
}

// RunReplay reads TradeIntent records from inputPath (a JSONL file in the
// RotatingWriter/Reader format), runs each through the pipeline in intent
// order, and appends the resulting DecisionRecord (and ExecutionResult,
// when present) to a RotatingWriter rooted at outputDir/outputStem. Intent
// order is preserved: this is what makes golden-replay comparison
// meaningful, since the pipeline carries no intent-reordering logic of its
// own.
//
// Callers must wire the pipeline with a FrozenClock and a scripted RPC
// (StubRPC or equivalent) before calling RunReplay: replay determinism
// depends on no suspension point reading real wall-clock time or a live
// RPC response.
func RunReplay(ctx context.Context, p *Pipeline, inputPath, outputDir, outputStem string) (ReplayStats, error) {
	reader, err := ipc.OpenReader(inputPath)
	if err != nil {
		return ReplayStats{}, fmt.Errorf("open replay input: %w", err)
	}
	defer reader.Close()

	writer, err := ipc.NewRotatingWriter(outputDir, outputStem)
	if err != nil {
		return ReplayStats{}, fmt.Errorf("open replay output: %w", err)
	}
	defer writer.Close()

	var stats ReplayStats
	for {
		var intent ipc.TradeIntent
		ok, err := reader.Next(&intent)
		if err != nil {
			return stats, fmt.Errorf("read replay intent: %w", err)
		}
		if !ok {
			break
		}
		stats.IntentsRead++

		decision, exec := p.Process(ctx, intent)
		switch decision.Outcome {
		case ipc.OutcomeAccepted:
			stats.Accepted++
		case ipc.OutcomeRejected:
			stats.Rejected++
		case ipc.OutcomeSimFailed:
			stats.SimFailed++
		}

		if err := writer.Append(decision); err != nil {
			return stats, fmt.Errorf("write replay decision: %w", err)
		}
		if exec != nil {
			if err := writer.Append(exec); err != nil {
				return stats, fmt.Errorf("write replay execution: %w", err)
			}
		}
	}
	return stats, nil
}
