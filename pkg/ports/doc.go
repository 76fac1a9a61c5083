/*
Package ports defines the driven ports (interfaces) of the keypad engine.

These interfaces decouple the calculator core from external implementations,
allowing hosts to keep calculation sessions in various storage backends.

# Key Interfaces

  - Engine: the stateless calculator core used by adapters (HTTP, MCP, runner).
  - StateStore: persists and loads session State snapshots.
  - DistributedLocker: distributed locking for concurrent access to one session.
*/
package ports
