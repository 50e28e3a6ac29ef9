package modules

import "github.com/offstage/offstage/internal/registry"

// Roles contributes the roles collection schema. A role with actor: true
// is performed by a human participant; actor: false marks a scripted NPC
// or system voice. The distinction drives the derived reply-needed flag
// on outgoing messages.
func Roles() registry.Module {
	return registry.Module{
		Name: "roles",
		Resources: map[string]registry.ResourceDef{
			"roles": {
				Help: "Participants and scripted characters of an experience.",
				Properties: map[string]registry.ParamSpec{
					"name":  {Type: registry.ParamString, Required: true},
					"title": {Type: registry.ParamString},
					"actor": {Type: registry.ParamBoolean, Default: false},
					"phone": {Type: registry.ParamString},
				},
			},
		},
	}
}
