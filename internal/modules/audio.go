package modules

import (
	"time"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// Audio contributes background audio playback control.
//
// Playback state lives in the trip's "audio" fields: started_at is the
// logical timestamp playback (re)started, started_time the position in
// seconds at that instant, paused_time the position while paused. Pause
// computes elapsed = evaluateAt - startedAt + startedTime and stores it;
// resume reverses that exactly, so operators can pause and resume
// indefinitely without drift beyond the wall clock's own.
func Audio() registry.Module {
	return registry.Module{
		Name: "audio",
		Resources: map[string]registry.ResourceDef{
			"audio": {
				Help: "Background audio tracks.",
				Properties: map[string]registry.ParamSpec{
					"name":     {Type: registry.ParamString, Required: true},
					"path":     {Type: registry.ParamString, Required: true},
					"title":    {Type: registry.ParamString},
					"duration": {Type: registry.ParamNumber},
				},
			},
		},
		Actions: map[string]registry.ActionDef{
			"play_audio": {
				Help: "Start an audio track from the beginning.",
				Params: map[string]registry.ParamSpec{
					"audio_name": {Type: registry.ParamReference, Collection: "audio", Required: true},
				},
				Exec: playAudio,
			},
			"pause_audio": {
				Help:   "Pause playback, remembering the position.",
				Params: map[string]registry.ParamSpec{},
				Exec:   pauseAudio,
			},
			"resume_audio": {
				Help:   "Resume playback from the paused position.",
				Params: map[string]registry.ParamSpec{},
				Exec:   resumeAudio,
			},
			"stop_audio": {
				Help:   "Stop playback and clear audio state.",
				Params: map[string]registry.ParamSpec{},
				Exec:   stopAudio,
			},
		},
	}
}

func playAudio(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	name := paramString(params, "audio_name")
	track, ok := ac.ScriptContent.ResourceByName("audio", name)
	if !ok {
		return errorLog("play_audio: unknown audio %q", name), nil
	}
	path, _ := track["path"].(string)
	return []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{
				"name":         name,
				"path":         path,
				"is_playing":   true,
				"started_at":   ac.EvaluateAt.UTC().Format(time.RFC3339),
				"started_time": 0.0,
				"paused_time":  nil,
			},
		}},
		script.UpdateUI{},
	}, nil
}

func pauseAudio(_ map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	ctx := ac.EvalContext
	if !script.Truthy(template.ResolveRef(ctx, "audio.is_playing", "")) {
		return warnLog("pause_audio: no audio is playing"), nil
	}
	startedAt, ok := audioStartedAt(ctx)
	if !ok {
		return errorLog("pause_audio: audio state has no valid started_at"), nil
	}
	startedTime, _ := script.ToNumber(template.ResolveRef(ctx, "audio.started_time", ""))

	elapsed := ac.EvaluateAt.Sub(startedAt).Seconds() + startedTime
	return []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{
				"is_playing":  false,
				"paused_time": elapsed,
			},
		}},
		script.UpdateUI{},
	}, nil
}

func resumeAudio(_ map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	ctx := ac.EvalContext
	pausedRaw := template.ResolveRef(ctx, "audio.paused_time", "")
	pausedTime, ok := script.ToNumber(pausedRaw)
	if pausedRaw == nil || !ok {
		return warnLog("resume_audio: no paused audio to resume"), nil
	}
	return []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{
				"is_playing":   true,
				"started_at":   ac.EvaluateAt.UTC().Format(time.RFC3339),
				"started_time": pausedTime,
				"paused_time":  nil,
			},
		}},
		script.UpdateUI{},
	}, nil
}

func stopAudio(_ map[string]any, _ *script.ActionContext) ([]script.ResultOp, error) {
	return []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{
				"name":         nil,
				"path":         nil,
				"is_playing":   false,
				"started_at":   nil,
				"started_time": nil,
				"paused_time":  nil,
			},
		}},
		script.UpdateUI{},
	}, nil
}

func audioStartedAt(ctx *script.EvalContext) (time.Time, bool) {
	raw, _ := template.ResolveRef(ctx, "audio.started_at", "").(string)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
