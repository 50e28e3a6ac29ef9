package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/offstage/offstage/internal/script"
)

// LoadFile reads a script document, choosing the decoder by extension:
// .yaml/.yml, .json, or .cue.
func LoadFile(path string) (*script.ScriptContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".json":
		return LoadJSON(data)
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported script format %q", filepath.Ext(path))
	}
}

// LoadYAML decodes a YAML script document.
func LoadYAML(data []byte) (*script.ScriptContent, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml script: %w", err)
	}
	return contentFromRaw(raw)
}

// LoadJSON decodes a JSON script document.
func LoadJSON(data []byte) (*script.ScriptContent, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json script: %w", err)
	}
	return contentFromRaw(raw)
}

// LoadCUE evaluates a CUE script document. CUE is the authoring
// front-end of choice for larger experiences: constraints and shared
// fragments stay in CUE, and the evaluated value decodes to the same
// document shape the other loaders accept.
func LoadCUE(data []byte, filename string) (*script.ScriptContent, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue script: %w", err)
	}
	var raw map[string]any
	if err := v.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode cue script: %w", err)
	}
	return contentFromRaw(raw)
}

// contentFromRaw splits the decoded document into meta and collections.
// Every top-level key except "meta" is a collection of named resources.
func contentFromRaw(raw map[string]any) (*script.ScriptContent, error) {
	sc := &script.ScriptContent{Collections: map[string][]script.Resource{}}

	for key, value := range raw {
		if key == "meta" {
			meta, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("meta must be a map, got %T", value)
			}
			if version, ok := script.ToNumber(meta["version"]); ok {
				sc.Meta.Version = int(version)
			}
			continue
		}

		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("collection %q must be a list, got %T", key, value)
		}
		resources := make([]script.Resource, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: must be a map, got %T", key, i, item)
			}
			resources = append(resources, script.Resource(m))
		}
		sc.Collections[key] = resources
	}
	return sc, nil
}
