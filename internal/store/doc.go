// Package store provides durable storage for trips: the mutable state a
// script evaluation reads (fields, history, player state) and the
// scheduled actions awaiting replay.
//
// The store is the kernel's external persistence collaborator. It applies
// ResultOp batches transactionally - one kernel call's ops either all
// land or none do - and builds the EvalContext snapshots the kernel
// evaluates against. SQLite with WAL mode and a single writer keeps the
// per-trip read-modify-write discipline simple.
package store
