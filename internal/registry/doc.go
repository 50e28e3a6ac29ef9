// Package registry gives meaning to the polymorphic component families of
// a script: actions, events, conditions, panels, and resource collections.
//
// A Registry is built once at process startup from a fixed set of modules
// and is immutable afterwards - every lookup path is read-only, so the
// registry can be shared freely across concurrent trip evaluations.
//
// Each family has a discriminator field ("name" for actions, "type" for
// events and panels, "op" for conditions). The build step merges, for
// every registered variant, the family's common schema with the variant's
// own param specs into a cached Descriptor; the discriminator's legal enum
// values are derived from the registered keys themselves. Unknown families
// or variants are configuration errors surfaced at build time, never
// during evaluation.
package registry
