package script

// MergeFields merges a nested partial (the Fields shape carried by
// updateTripFields/updatePlayerFields) into dst, recursing into maps and
// overwriting scalars. A nil value deletes its key; that is how actions
// clear state (stop_audio, resume_audio's paused_time).
func MergeFields(dst, src map[string]any) {
	for key, value := range src {
		if value == nil {
			delete(dst, key)
			continue
		}
		if srcMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				MergeFields(dstMap, srcMap)
				continue
			}
			merged := map[string]any{}
			MergeFields(merged, srcMap)
			dst[key] = merged
			continue
		}
		dst[key] = value
	}
}
