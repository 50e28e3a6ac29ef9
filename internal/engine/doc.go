// Package engine implements the offstage script evaluation kernel.
//
// The kernel is the heart of offstage - it receives events and actions,
// selects matching triggers, expands conditional action trees, and
// resolves actions into result operations and scheduled future actions.
//
// ARCHITECTURE:
//
// Pure evaluation:
// Each ApplyAction / ApplyEvent / ApplyTrigger call is a pure function of
// (ScriptContent, EvalContext, stimulus, evaluateAt). The kernel performs
// no I/O, persists nothing, and holds no mutable state besides the
// immutable registry - the caller owns persistence and applies the
// returned ops under its own per-trip lock.
//
// Stimulus processing flow:
//  1. TriggerSelection: scene filter, event spec match, active_if check,
//     repeatability check against the trip's history map
//  2. ConditionalExpansion: if/elseif/else action nodes collapse to the
//     first true branch's actions; branch nodes are never executed
//  3. ActionExecution: each phrase resolves to result ops in list order;
//     op order is observable and preserved
//  4. ResultCollection: a non-repeatable trigger's firing appends the op
//     that records its name into history
//
// Actions may produce scheduled (future) actions but never re-enter the
// orchestrator within the same call, so every evaluation terminates.
//
// FAILURE SEMANTICS:
//
// Authoring errors (unknown resource reference, missing required param)
// degrade to log-level result ops and never abort the rest of a trigger's
// action list. Configuration errors fail at registry build time.
// Contract violations - malformed shapes that script validation should
// have rejected before the kernel - surface as real errors.
package engine
