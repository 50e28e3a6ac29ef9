package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Pages contributes the pages collection, the panel variants pages are
// composed of, and the interface navigation actions.
func Pages() registry.Module {
	return registry.Module{
		Name: "pages",
		Resources: map[string]registry.ResourceDef{
			"pages": {
				Help: "Screens shown to one role's interface, composed of panels.",
				Properties: map[string]registry.ParamSpec{
					"name":   {Type: registry.ParamString, Required: true},
					"scene":  {Type: registry.ParamReference, Collection: "scenes"},
					"role":   {Type: registry.ParamReference, Collection: "roles", Required: true},
					"title":  {Type: registry.ParamString},
					"panels": {Type: registry.ParamComponentList, Family: registry.FamilyPanels},
				},
			},
		},
		Panels: map[string]registry.PanelDef{
			"text": {
				Help: "A block of templated text.",
				Properties: map[string]registry.ParamSpec{
					"text": {Type: registry.ParamString, Required: true},
					"style": {
						Type:    registry.ParamEnum,
						Options: []string{"centered", "quote", "banner"},
					},
				},
				Text: panelTextField,
			},
			"image": {
				Help: "A static image.",
				Properties: map[string]registry.ParamSpec{
					"path": {Type: registry.ParamString, Required: true},
				},
			},
			"button": {
				Help: "A button that signals a cue when tapped.",
				Properties: map[string]registry.ParamSpec{
					"text": {Type: registry.ParamString, Required: true},
					"cue":  {Type: registry.ParamReference, Collection: "cues", Required: true},
				},
				Text: panelTextField,
			},
			"choice": {
				Help: "A multiple-choice input writing into a value ref.",
				Properties: map[string]registry.ParamSpec{
					"text":      {Type: registry.ParamString, Required: true},
					"value_ref": {Type: registry.ParamValueRef, Required: true},
					"choices":   {Type: registry.ParamSimpleValue},
				},
				Text: panelTextField,
			},
		},
		Actions: map[string]registry.ActionDef{
			"send_to_page": {
				Help: "Navigate one role's interface to a page.",
				Params: map[string]registry.ParamSpec{
					"role_name": {Type: registry.ParamReference, Collection: "roles", Required: true},
					"page_name": {Type: registry.ParamReference, Collection: "pages", Required: true},
				},
				Exec: sendToPage,
			},
			"update_interface": {
				Help: "Tell one role's interface (or all) to refresh.",
				Params: map[string]registry.ParamSpec{
					"role_name": {Type: registry.ParamReference, Collection: "roles"},
				},
				Exec: updateInterface,
			},
		},
	}
}

func panelTextField(panel script.ComponentValue) (string, bool) {
	s, ok := panel["text"].(string)
	return s, ok
}

func sendToPage(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	role := paramString(params, "role_name")
	page := paramString(params, "page_name")
	if !ac.ScriptContent.HasRole(role) {
		return errorLog("send_to_page: unknown role %q", role), nil
	}
	if _, ok := ac.ScriptContent.ResourceByName("pages", page); !ok {
		return errorLog("send_to_page: unknown page %q", page), nil
	}
	return []script.ResultOp{
		script.UpdatePlayerFields{
			Role:   role,
			Fields: map[string]any{"current_page_name": page},
		},
		script.UpdateUI{Role: role},
	}, nil
}

func updateInterface(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	role := paramString(params, "role_name")
	if role != "" && !ac.ScriptContent.HasRole(role) {
		return errorLog("update_interface: unknown role %q", role), nil
	}
	return []script.ResultOp{script.UpdateUI{Role: role}}, nil
}
