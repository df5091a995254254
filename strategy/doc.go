// Package strategy provides built-in load balancing sub-strategies.
//
// A sub-strategy partitions the entities of one layer across that layer's slice
// of virtual workers. Every implementation satisfies types.LoadBalanceStrategy and
// is deterministic: workers holding the same configuration and id range agree on
// every authority decision without talking to each other.
//
// The package includes three built-in strategies:
//
//   - Grid: Splits a rectangular world centred on the origin into rows x cols cells, one worker per cell
//   - Single: One worker owns every entity of the layer
//   - ConsistentHash: Entity ids are hashed onto a ring of the layer's workers
//
// # Strategy Selection Guide
//
// Grid:
//   - Use for spatially distributed entities (characters, projectiles, vehicles)
//   - Authority follows position; interest is the local cell grown by a border
//   - The 1x1 grid is the fallback used whenever configuration is missing
//
// Single:
//   - Use for global systems (game mode, weather, scoreboards)
//   - Interest is unrestricted
//
// ConsistentHash:
//   - Use for entities without a meaningful position (inventories, AI planners)
//   - Adding workers moves only the entities that land on the new worker
//
// Strategies are built from configuration through a Registry; DefaultRegistry
// knows the three built-in types. Custom strategies can be registered with
// Registry.Register or injected directly into the layered strategy.
package strategy
