/*
Package domain contains the core domain models for the payflow scenario engine.

It defines the entities of the payroll workflow state machine: the per-session
ScenarioContext with its Slots, Refs and History, the fixed Stage enumeration,
the typed per-stage summaries, and the Outcome returned to the host on every
turn. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Stage: One step of the fixed payroll workflow (calculation, deduction
    verification, payment, journal posting, done).
  - ScenarioContext: The runtime snapshot of a session (active scenario,
    current stage, collected slots, stage refs, audit history).
  - Refs: Opaque run identifiers and result snapshots produced by completed
    stages; later stages cannot execute without the ref of their predecessor.
  - Outcome: A structural representation of what the host should render
    (reply text, suggestions, artifacts) after a turn.
*/
package domain
