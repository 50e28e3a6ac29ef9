package engine

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// MatchEvent tests whether a trigger's event spec matches a concrete
// event instance. The spec's "type" discriminator must equal the event's
// type; the variant's own matcher then compares declared spec fields
// against the event's fields, with an absent spec field acting as a
// wildcard.
func (k *Kernel) MatchEvent(ac *script.ActionContext, spec script.ComponentValue, event script.Event) bool {
	if event == nil {
		return false
	}
	variant, err := k.reg.Variant(registry.FamilyEvents, spec)
	if err != nil {
		return false
	}
	if event.Type() != variant {
		return false
	}
	def, ok := k.reg.Event(variant)
	if !ok {
		return false
	}
	if def.Match == nil {
		return true
	}
	return def.Match(spec, event, ac)
}
