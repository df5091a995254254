// Package stratum provides a layered load balancing core for distributed
// game-world servers.
//
// Stratum decides which worker process is authoritative over each simulated
// entity. Entities are partitioned into layers (physics, AI, gameplay, ...) by
// class; each layer is partitioned further by its own sub-strategy (grid,
// single owner, consistent hash) over a contiguous slice of virtual worker ids.
// Every worker derives the same decisions from the same configuration, so no
// per-entity coordination happens at runtime.
//
// # Quick Start
//
//	cfg, err := stratum.LoadConfig("stratum.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ls, err := stratum.NewLayeredStrategy(cfg, cfg.World)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ls.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Claim a virtual worker id through NATS KV and become Ready.
//	lease, err := stratum.Provision(ctx, js, ls)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lease.Release(context.Background())
//
//	if ls.ShouldHaveAuthority(entity) {
//	    simulate(entity)
//	}
//
// # Key Features
//
//   - Class-based layers: classes map to layers, subclasses inherit the nearest mapping
//   - Deterministic allocation: layers receive contiguous id ranges in configuration order
//   - Soft failure: queries never return errors, they return false, the invalid id or neutral values
//   - Graceful degradation: missing configuration falls back to a 1x1 grid and is logged at error level
//   - Worker id leases: Provision claims ids through NATS JetStream KV with TTL renewal
//
// # Two-phase protocol
//
// MinimumRequiredWorkers must be known before ids are provisioned:
//
//  1. Init builds the layer registry
//  2. MinimumRequiredWorkers reports how many ids the registry needs
//  3. SetVirtualWorkerIDs hands over a range of at least that size
//  4. SetLocalVirtualWorkerID tells the strategy which id this process owns
//
// Provision performs steps 2 to 4 against NATS; hosts with their own id
// assignment call the methods directly.
//
// # Thread Safety
//
// Lifecycle methods (Init, SetVirtualWorkerIDs, SetLocalVirtualWorkerID, Close)
// must be called from one goroutine. Query methods are safe for concurrent use
// once the strategy is Ready.
package stratum
