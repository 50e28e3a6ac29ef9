package engine

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// If evaluates a boolean condition tree against the context, dispatching
// on the condition's "op" discriminator. Composite conditions (and/or/not)
// recurse through the subIf callback they are handed; leaf conditions look
// values up via the reference engine.
//
// A nil condition is vacuously true (an absent active_if gates nothing).
// An unknown op evaluates false: script validation rejects it long before
// a live trip, so this path only guards against skipped validation.
func (k *Kernel) If(ac *script.ActionContext, cond script.ComponentValue) bool {
	if len(cond) == 0 {
		return true
	}
	variant, err := k.reg.Variant(registry.FamilyConditions, cond)
	if err != nil {
		return false
	}
	def, ok := k.reg.Condition(variant)
	if !ok || def.Eval == nil {
		return false
	}
	return def.Eval(cond, ac, func(sub script.ComponentValue) bool {
		if len(sub) == 0 {
			return false
		}
		return k.If(ac, sub)
	})
}
