/*
Package ports defines the driven ports (interfaces) for the payflow engine.

These interfaces decouple the scenario core from external implementations,
allowing the orchestrator to work with various session storage backends,
lock providers, and SQL generation services.

# Key Interfaces

  - ContextStore: Responsible for persisting and loading session ScenarioContexts.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - QueryService: The opaque natural-language-to-SQL generation/execution boundary.
*/
package ports
