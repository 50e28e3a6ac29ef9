// Package script provides the core data model for offstage scripts and
// their evaluation.
//
// This package contains type definitions plus value coercion and canonical
// marshaling helpers. All other internal packages import script; script
// imports nothing internal. This keeps it the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - ScriptContent is read-only after loading; the kernel never mutates it.
//   - EvalContext is a snapshot built by the caller per evaluation; the
//     kernel never mutates it either.
//   - ResultOp is a sealed interface: the full vocabulary of state
//     mutations the kernel may request is enumerated here, nowhere else.
//   - Values are JSON-ish (string/number/bool/null/map/slice). Numeric
//     coercion is best-effort and never panics.
package script
