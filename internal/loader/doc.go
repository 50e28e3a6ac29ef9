// Package loader reads script documents (YAML, JSON, or CUE) into
// ScriptContent and validates them against the registry's schemas.
//
// Validation is the wall between authoring errors and kernel contract
// violations: a script that passes Validate may still reference state
// that does not exist at runtime (that degrades to log ops), but its
// shapes - collections, variants, param types, resource references - are
// guaranteed sound, which is what lets the kernel treat shape problems
// as caller bugs.
package loader
