package testutil

import (
	"time"

	"github.com/offstage/offstage/internal/script"
)

// Content builds a ScriptContent from collection lists. Collections map
// directly onto the document shape the loader produces.
func Content(collections map[string][]script.Resource) *script.ScriptContent {
	return &script.ScriptContent{
		Meta:        script.Meta{Version: 1},
		Collections: collections,
	}
}

// EvalContext builds a minimal eval context with the given trip fields.
// Role, history, and schedule maps start empty but non-nil so tests can
// fill them in place.
func EvalContext(fields map[string]any) *script.EvalContext {
	if fields == nil {
		fields = map[string]any{}
	}
	return &script.EvalContext{
		Fields:   fields,
		Roles:    map[string][]map[string]any{},
		History:  map[string]any{},
		Schedule: map[string]any{},
	}
}

// ActionContext bundles a content fixture and eval context at BaseTime
// in UTC.
func ActionContext(content *script.ScriptContent, evalCtx *script.EvalContext) *script.ActionContext {
	return &script.ActionContext{
		ScriptContent: content,
		EvalContext:   evalCtx,
		EvaluateAt:    BaseTime,
		Timezone:      time.UTC,
	}
}
