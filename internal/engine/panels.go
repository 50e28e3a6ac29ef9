package engine

import (
	"fmt"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// PanelText renders the participant-visible text of one panel for a
// role's interface. Panels without visible text (images) report ok=false.
func (k *Kernel) PanelText(ac *script.ActionContext, panel script.ComponentValue, playerScope string) (string, bool, error) {
	variant, err := k.reg.Variant(registry.FamilyPanels, panel)
	if err != nil {
		return "", false, err
	}
	def, _ := k.reg.Panel(variant)
	if def.Text == nil {
		return "", false, nil
	}
	raw, ok := def.Text(panel)
	if !ok {
		return "", false, nil
	}
	rendered, err := template.RenderText(ac.EvalContext, raw, ac.Timezone, playerScope)
	if err != nil {
		return "", false, err
	}
	return rendered, true, nil
}

// PageText renders every visible panel of a named page, in order. Used
// by interface consumers when an updateUi op tells them to refresh.
func (k *Kernel) PageText(ac *script.ActionContext, pageName string) ([]string, error) {
	page, ok := ac.ScriptContent.ResourceByName("pages", pageName)
	if !ok {
		return nil, fmt.Errorf("unknown page %q", pageName)
	}
	role, _ := page["role"].(string)

	rawPanels, _ := page["panels"].([]any)
	var lines []string
	for i, rawPanel := range rawPanels {
		m, ok := rawPanel.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("page %q: panel %d is not a map", pageName, i)
		}
		text, visible, err := k.PanelText(ac, script.ComponentValue(m), role)
		if err != nil {
			return nil, fmt.Errorf("page %q: panel %d: %w", pageName, i, err)
		}
		if visible {
			lines = append(lines, text)
		}
	}
	return lines, nil
}
