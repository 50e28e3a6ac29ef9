package loader

import (
	"fmt"
	"time"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Validation error codes (V100-V199)
const (
	ErrUnknownCollection = "V100" // collection has no registered schema
	ErrMissingName       = "V101" // resource missing name
	ErrDuplicateName     = "V102" // duplicate resource name in collection
	ErrMissingParam      = "V103" // required param absent
	ErrBadParamType      = "V104" // param value has the wrong type
	ErrBadEnumValue      = "V105" // enum value not among options
	ErrDanglingReference = "V106" // reference names a missing resource
	ErrUnknownVariant    = "V107" // component variant not registered
	ErrBadActionList     = "V108" // malformed action tree
)

// ValidationError is one schema problem in a script document.
type ValidationError struct {
	Path    string `json:"path"` // e.g. "triggers[2].event"
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}

// Validate checks a script document against the registry's schemas.
// Returns all errors found (does not fail fast); an empty slice means
// the script is safe to hand to the kernel.
func Validate(reg *registry.Registry, sc *script.ScriptContent) []ValidationError {
	v := &validator{reg: reg, sc: sc}
	for _, collection := range reg.Collections() {
		v.validateCollection(collection)
	}
	for collection := range sc.Collections {
		if _, known := reg.Resource(collection); !known {
			v.errorf(ErrUnknownCollection, collection, "unknown collection")
		}
	}
	return v.errs
}

type validator struct {
	reg  *registry.Registry
	sc   *script.ScriptContent
	errs []ValidationError
}

func (v *validator) errorf(code, path, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) validateCollection(collection string) {
	def, _ := v.reg.Resource(collection)
	seen := map[string]bool{}
	for i, r := range v.sc.ResourcesIn(collection) {
		path := fmt.Sprintf("%s[%d]", collection, i)
		name := r.Name()
		if name == "" {
			v.errorf(ErrMissingName, path, "resource missing name")
		} else if seen[name] {
			v.errorf(ErrDuplicateName, path, "duplicate name %q", name)
		}
		seen[name] = true
		v.validateParams(def.Properties, map[string]any(r), path)
	}
}

func (v *validator) validateParams(specs map[string]registry.ParamSpec, values map[string]any, path string) {
	for name, spec := range specs {
		paramPath := path + "." + name
		value, present := values[name]
		if !present || value == nil {
			if spec.Required && spec.Default == nil {
				v.errorf(ErrMissingParam, paramPath, "required param missing")
			}
			continue
		}
		v.validateValue(spec, value, paramPath)
	}
}

func (v *validator) validateValue(spec registry.ParamSpec, value any, path string) {
	switch spec.Type {
	case registry.ParamString, registry.ParamValueRef:
		if _, ok := value.(string); !ok {
			v.errorf(ErrBadParamType, path, "expected string, got %T", value)
		}
	case registry.ParamNumber:
		if _, ok := script.ToNumber(value); !ok {
			v.errorf(ErrBadParamType, path, "expected number, got %T", value)
		}
	case registry.ParamBoolean:
		if _, ok := value.(bool); !ok {
			v.errorf(ErrBadParamType, path, "expected boolean, got %T", value)
		}
	case registry.ParamDuration:
		v.validateDuration(value, path)
	case registry.ParamSimpleValue:
		switch value.(type) {
		case string, bool:
		default:
			if _, ok := script.ToNumber(value); !ok {
				v.errorf(ErrBadParamType, path, "expected scalar, got %T", value)
			}
		}
	case registry.ParamEnum:
		s, ok := value.(string)
		if !ok {
			v.errorf(ErrBadParamType, path, "expected string, got %T", value)
			return
		}
		for _, option := range spec.Options {
			if s == option {
				return
			}
		}
		v.errorf(ErrBadEnumValue, path, "%q is not one of %v", s, spec.Options)
	case registry.ParamReference:
		s, ok := value.(string)
		if !ok {
			v.errorf(ErrBadParamType, path, "expected resource name, got %T", value)
			return
		}
		if _, found := v.sc.ResourceByName(spec.Collection, s); !found {
			v.errorf(ErrDanglingReference, path, "no %s resource named %q", spec.Collection, s)
		}
	case registry.ParamComponent:
		m, ok := value.(map[string]any)
		if !ok {
			v.errorf(ErrBadParamType, path, "expected component map, got %T", value)
			return
		}
		v.validateComponent(spec.Family, script.ComponentValue(m), path)
	case registry.ParamComponentList:
		items, ok := value.([]any)
		if !ok {
			v.errorf(ErrBadParamType, path, "expected component list, got %T", value)
			return
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			m, ok := item.(map[string]any)
			if !ok {
				v.errorf(ErrBadParamType, itemPath, "expected component map, got %T", item)
				continue
			}
			v.validateComponent(spec.Family, script.ComponentValue(m), itemPath)
		}
	case registry.ParamActionList:
		v.validateActionList(value, path)
	}
}

func (v *validator) validateDuration(value any, path string) {
	switch d := value.(type) {
	case string:
		if _, err := time.ParseDuration(d); err != nil {
			v.errorf(ErrBadParamType, path, "invalid duration %q", d)
		}
	default:
		if _, ok := script.ToNumber(value); !ok {
			v.errorf(ErrBadParamType, path, "expected duration, got %T", value)
		}
	}
}

// validateComponent checks a polymorphic component against its family's
// merged descriptor: known variant, then the variant's own params.
func (v *validator) validateComponent(family registry.Family, component script.ComponentValue, path string) {
	variant, err := v.reg.Variant(family, component)
	if err != nil {
		v.errorf(ErrUnknownVariant, path, "%v", err)
		return
	}
	desc, err := v.reg.Descriptor(family, variant)
	if err != nil {
		v.errorf(ErrUnknownVariant, path, "%v", err)
		return
	}
	v.validateParams(desc.Params, map[string]any(component), path)
}

// validateActionList walks an action tree: every phrase must name a
// registered action and satisfy its param specs; every conditional
// clause's conditions validate against the conditions family.
func (v *validator) validateActionList(value any, path string) {
	nodes, err := script.ActionNodesFrom(value)
	if err != nil {
		v.errorf(ErrBadActionList, path, "%v", err)
		return
	}
	v.validateActionNodes(nodes, path)
}

func (v *validator) validateActionNodes(nodes []script.ActionNode, path string) {
	for i, node := range nodes {
		nodePath := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case node.Phrase != nil:
			desc, err := v.reg.Descriptor(registry.FamilyActions, node.Phrase.Name)
			if err != nil {
				v.errorf(ErrUnknownVariant, nodePath, "unknown action %q", node.Phrase.Name)
				continue
			}
			params := map[string]any{"name": node.Phrase.Name}
			for k, val := range node.Phrase.Params {
				params[k] = val
			}
			v.validateParams(desc.Params, params, nodePath)
		case node.Conditional != nil:
			clause := node.Conditional
			v.validateComponent(registry.FamilyConditions, clause.If, nodePath+".if")
			v.validateActionNodes(clause.Actions, nodePath+".actions")
			for j, arm := range clause.ElseIfs {
				armPath := fmt.Sprintf("%s.elseifs[%d]", nodePath, j)
				v.validateComponent(registry.FamilyConditions, arm.If, armPath+".if")
				v.validateActionNodes(arm.Actions, armPath+".actions")
			}
			v.validateActionNodes(clause.Else, nodePath+".else")
		}
	}
}
