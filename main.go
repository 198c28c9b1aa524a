package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"solana-trading-core/internal/api"
	"solana-trading-core/internal/dex"
	"solana-trading-core/internal/events"
	"solana-trading-core/internal/ipc"
	"solana-trading-core/internal/lockmgr"
	"solana-trading-core/internal/monitor"
	"solana-trading-core/internal/pipeline"
	"solana-trading-core/internal/poolcache"
	"solana-trading-core/internal/router"
	"solana-trading-core/pkg/config"
)

const buildVersion = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("starting trading core (dry_run=%v admin_port=%s)", cfg.DryRun, cfg.AdminPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := poolcache.New()

	locks := lockmgr.New(cfg.LockManagerTotalNativeLamports, lockmgr.FairnessPolicy{
		MaxConcurrentPerOrigin: cfg.FairnessMaxConcurrentOrigin,
		MaxHoldMs:              uint64(cfg.LockTTLDefaultMs),
		StaleReclaimMs:         uint64(cfg.FairnessHalfTTLAgedMs) * 2,
		AllowPreempt:           true,
	})

	lookupByKind := func(kind poolcache.Kind) func(a, b solana.PublicKey) (poolcache.PoolState, bool) {
		return func(a, b solana.PublicKey) (poolcache.PoolState, bool) {
			return cache.FindByMintPair(a, b, kind)
		}
	}

	dexes := []dex.Dex{
		dex.NewPumpAmmDex(cache),
		dex.NewOrcaDex(lookupByKind(poolcache.KindOrca)),
		dex.NewRaydiumDex(lookupByKind(poolcache.KindRaydium)),
	}
	r := router.New(dexes)

	mints := pipeline.NewMintRegistry()
	risk := pipeline.NewRiskState()
	riskLimits := pipeline.RiskLimits{
		MaxDailyLossLamports:   cfg.LockManagerTotalNativeLamports / 10,
		MaxConcurrentPerOrigin: 5,
	}

	bus := events.NewBus()

	pcfg := pipeline.Config{
		Component:          "solana-trading-core",
		Build:              buildVersion,
		RunID:              uuid.NewString(),
		MinProfitBps:       50,
		EstTxCostLamports:  5_000,
		DefaultSlippageBps: uint64(cfg.DefaultSlippageBps),
		Retry6005TimeoutMs: uint64(cfg.Retry6005TimeoutMs),
	}

	metrics := monitor.NewSystemMetrics()
	unwireMetrics := monitor.WireMetrics(bus, metrics)
	defer unwireMetrics()

	mon := &monitor.Monitor{
		Bus:     bus,
		AlertFn: func(msg string) { _ = monitor.LogAlertSink{}.Send(msg) },
		Rules:   monitor.DefaultRuleEvaluator(),
	}
	mon.Start(ctx)

	if cfg.AdminEnabled {
		server := api.NewServer(bus, metrics, api.SystemMeta{
			DryRun:  cfg.DryRun,
			Cluster: "mainnet-beta",
			Version: buildVersion,
		})
		go func() {
			if err := server.Start(":" + cfg.AdminPort); err != nil {
				log.Printf("admin server stopped: %v", err)
			}
		}()
		log.Printf("admin surface listening on :%s", cfg.AdminPort)
	}

	if cfg.ReplayIntents != "" {
		log.Printf("running replay from %s", cfg.ReplayIntents)
		replayClockMs, err := pipeline.ReplayClockMs(cfg.ReplayIntents)
		if err != nil {
			log.Fatalf("replay clock derivation failed: %v", err)
		}
		replayPipeline := pipeline.New(cache, locks, r, mints, risk, riskLimits,
			pipeline.NewStubRPC(), pipeline.FrozenClock{Ms: replayClockMs}, pcfg, bus)
		stats, err := pipeline.RunReplay(ctx, replayPipeline, cfg.ReplayIntents, cfg.AuditDir, cfg.AuditStem)
		if err != nil {
			log.Fatalf("replay failed: %v", err)
		}
		log.Printf("replay complete: %+v", stats)
		return
	}

	rpc := pipeline.NewRateLimitedRPC(pipeline.NewStubRPC(), cfg.RPCRateLimitPerSec, cfg.RPCRateBurst)
	p := pipeline.New(cache, locks, r, mints, risk, riskLimits, rpc, pipeline.SystemClock{}, pcfg, bus)

	writer, err := ipc.NewRotatingWriter(cfg.AuditDir, cfg.AuditStem)
	if err != nil {
		log.Fatalf("audit writer init failed: %v", err)
	}
	defer writer.Close()
	unwireAudit := ipc.WireAuditTrail(bus, writer)
	defer unwireAudit()
	log.Printf("audit trail writing to %s (stem %s)", cfg.AuditDir, cfg.AuditStem)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.SetCacheSize(cache.Len())
				metrics.SetLockStats(locks.Snapshot())
				metrics.SetAuditPending(writer.Pending())
			}
		}
	}()

	log.Printf("trading core ready (run_id=%s); live intent ingestion is driven by an external collaborator feeding pipeline.Process", p.Config.RunID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("shutting down")
	cancel()
}
