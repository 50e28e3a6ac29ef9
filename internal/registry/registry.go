package registry

import (
	"fmt"
	"sort"

	"github.com/offstage/offstage/internal/script"
)

// Family identifies one polymorphic component family.
type Family string

const (
	FamilyActions    Family = "actions"
	FamilyEvents     Family = "events"
	FamilyConditions Family = "conditions"
	FamilyPanels     Family = "panels"
	FamilyResources  Family = "resources"
)

// discriminators maps each dispatching family to its discriminator field.
// Resources are keyed by collection name rather than an embedded field.
var discriminators = map[Family]string{
	FamilyActions:    "name",
	FamilyEvents:     "type",
	FamilyConditions: "op",
	FamilyPanels:     "type",
}

// Descriptor is the merged, cached type descriptor for one
// (family, variant) pair: the family's common schema plus the variant's
// own params, with the discriminator field's enum derived from the
// registered keys.
type Descriptor struct {
	Family  Family
	Variant string
	Module  string
	Params  map[string]ParamSpec
}

// Discriminator returns the family's discriminator field name.
func (d *Descriptor) Discriminator() string {
	return discriminators[d.Family]
}

type descriptorKey struct {
	family  Family
	variant string
}

// Registry is the immutable lookup table built once per process from the
// registered modules. All maps are sealed after New returns.
type Registry struct {
	modules []Module

	actions    map[string]ActionDef
	events     map[string]EventDef
	conditions map[string]ConditionDef
	panels     map[string]PanelDef
	resources  map[string]ResourceDef

	variantModule map[descriptorKey]string
	descriptors   map[descriptorKey]*Descriptor
}

// New builds a registry from modules. Duplicate variants across modules,
// variants that shadow a discriminator field, and empty variant names are
// configuration errors: the process should refuse to start rather than
// misbehave mid-trip.
func New(modules ...Module) (*Registry, error) {
	r := &Registry{
		modules:       modules,
		actions:       map[string]ActionDef{},
		events:        map[string]EventDef{},
		conditions:    map[string]ConditionDef{},
		panels:        map[string]PanelDef{},
		resources:     map[string]ResourceDef{},
		variantModule: map[descriptorKey]string{},
		descriptors:   map[descriptorKey]*Descriptor{},
	}

	for _, mod := range modules {
		if mod.Name == "" {
			return nil, &ConfigError{Message: "module missing name"}
		}
		for variant, def := range mod.Actions {
			if err := r.claim(FamilyActions, variant, mod.Name); err != nil {
				return nil, err
			}
			r.actions[variant] = def
		}
		for variant, def := range mod.Events {
			if err := r.claim(FamilyEvents, variant, mod.Name); err != nil {
				return nil, err
			}
			r.events[variant] = def
		}
		for variant, def := range mod.Conditions {
			if err := r.claim(FamilyConditions, variant, mod.Name); err != nil {
				return nil, err
			}
			r.conditions[variant] = def
		}
		for variant, def := range mod.Panels {
			if err := r.claim(FamilyPanels, variant, mod.Name); err != nil {
				return nil, err
			}
			r.panels[variant] = def
		}
		for collection, def := range mod.Resources {
			if err := r.claim(FamilyResources, collection, mod.Name); err != nil {
				return nil, err
			}
			r.resources[collection] = def
		}
	}

	// Merge and cache every descriptor up front. The merge is pure and
	// its inputs are immutable, so build time is the only time it runs.
	if err := r.buildDescriptors(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) claim(family Family, variant, module string) error {
	if variant == "" {
		return &ConfigError{Family: family, Message: fmt.Sprintf("module %q registered an empty variant name", module)}
	}
	key := descriptorKey{family, variant}
	if prev, taken := r.variantModule[key]; taken {
		return &ConfigError{
			Family:  family,
			Variant: variant,
			Message: fmt.Sprintf("registered by both %q and %q", prev, module),
		}
	}
	r.variantModule[key] = module
	return nil
}

func (r *Registry) buildDescriptors() error {
	for variant := range r.actions {
		if err := r.mergeDescriptor(FamilyActions, variant, r.actions[variant].Params); err != nil {
			return err
		}
	}
	for variant := range r.events {
		if err := r.mergeDescriptor(FamilyEvents, variant, r.events[variant].Specs); err != nil {
			return err
		}
	}
	for variant := range r.conditions {
		if err := r.mergeDescriptor(FamilyConditions, variant, r.conditions[variant].Properties); err != nil {
			return err
		}
	}
	for variant := range r.panels {
		if err := r.mergeDescriptor(FamilyPanels, variant, r.panels[variant].Properties); err != nil {
			return err
		}
	}
	for collection := range r.resources {
		if err := r.mergeDescriptor(FamilyResources, collection, r.resources[collection].Properties); err != nil {
			return err
		}
	}
	return nil
}

// mergeDescriptor merges the family's common schema (the discriminator
// enum) with the variant's specific params into one cached descriptor.
func (r *Registry) mergeDescriptor(family Family, variant string, params map[string]ParamSpec) error {
	merged := make(map[string]ParamSpec, len(params)+1)

	if disc := discriminators[family]; disc != "" {
		merged[disc] = ParamSpec{
			Type:     ParamEnum,
			Required: true,
			Options:  r.VariantNames(family),
		}
	}
	for name, spec := range params {
		if _, shadowed := merged[name]; shadowed {
			return &ConfigError{
				Family:  family,
				Variant: variant,
				Message: fmt.Sprintf("param %q shadows the discriminator field", name),
			}
		}
		merged[name] = spec
	}

	key := descriptorKey{family, variant}
	r.descriptors[key] = &Descriptor{
		Family:  family,
		Variant: variant,
		Module:  r.variantModule[key],
		Params:  merged,
	}
	return nil
}

// Descriptor returns the cached merged descriptor for (family, variant).
func (r *Registry) Descriptor(family Family, variant string) (*Descriptor, error) {
	d, ok := r.descriptors[descriptorKey{family, variant}]
	if !ok {
		return nil, &ConfigError{Family: family, Variant: variant, Message: "unknown variant"}
	}
	return d, nil
}

// Variant reads a component's discriminator field and verifies the
// variant is registered. Every polymorphic dispatch in the kernel goes
// through here.
func (r *Registry) Variant(family Family, value script.ComponentValue) (string, error) {
	disc, ok := discriminators[family]
	if !ok {
		return "", &ConfigError{Family: family, Message: "family has no discriminator"}
	}
	variant, _ := value[disc].(string)
	if variant == "" {
		return "", &ConfigError{Family: family, Message: fmt.Sprintf("component missing %q field", disc)}
	}
	if _, registered := r.descriptors[descriptorKey{family, variant}]; !registered {
		return "", &ConfigError{Family: family, Variant: variant, Message: "unknown variant"}
	}
	return variant, nil
}

// VariantNames lists a family's registered variants in sorted order.
func (r *Registry) VariantNames(family Family) []string {
	var names []string
	for key := range r.variantModule {
		if key.family == family {
			names = append(names, key.variant)
		}
	}
	sort.Strings(names)
	return names
}

// Action looks up a registered action variant.
func (r *Registry) Action(name string) (ActionDef, bool) {
	def, ok := r.actions[name]
	return def, ok
}

// Event looks up a registered event variant.
func (r *Registry) Event(typ string) (EventDef, bool) {
	def, ok := r.events[typ]
	return def, ok
}

// Condition looks up a registered condition variant.
func (r *Registry) Condition(op string) (ConditionDef, bool) {
	def, ok := r.conditions[op]
	return def, ok
}

// Panel looks up a registered panel variant.
func (r *Registry) Panel(typ string) (PanelDef, bool) {
	def, ok := r.panels[typ]
	return def, ok
}

// Resource looks up a collection's record schema.
func (r *Registry) Resource(collection string) (ResourceDef, bool) {
	def, ok := r.resources[collection]
	return def, ok
}

// Collections lists the registered collection names in sorted order.
func (r *Registry) Collections() []string {
	return r.VariantNames(FamilyResources)
}
