// Package template resolves value references and renders authored text.
//
// Refs use dotted paths against the flattened eval context; text supports
// {{ref}} interpolation and {% if ref %}...{% else %}...{% endif %}
// conditionals. Resolution is best-effort: a missing path yields null and
// renders as blank text, so an authoring mistake degrades gracefully
// instead of crashing a live run.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/offstage/offstage/internal/script"
)

var (
	quotedRe  = regexp.MustCompile(`^'([^']*)'$|^"([^"]*)"$`)
	numberRe  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	isoTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})$`)
	phoneRe   = regexp.MustCompile(`^\d{10}$`)
	interpRe  = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	ifElseRe  = regexp.MustCompile(`(?s)\{%\s*if\s+(.+?)\s*%\}(.*?)(?:\{%\s*else\s*%\}(.*?))?\{%\s*endif\s*%\}`)
)

// ResolveRef resolves a single reference against the eval context:
//
//   - numeric-looking strings become numbers
//   - "true"/"false"/"null" become their literals
//   - single- or double-quoted strings become string literals (the
//     escape hatch from path lookup)
//   - anything else is a dotted path looked up in the context, with
//     "player.x" rewriting to the active playerScope role's first state
//     entry
//
// Already-resolved scalars pass through unchanged, so ResolveRef is
// idempotent. A missing path yields nil; resolution never errors.
func ResolveRef(ctx *script.EvalContext, ref any, playerScope string) any {
	s, isString := ref.(string)
	if !isString {
		return ref
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if numberRe.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return n
		}
	}
	if m := quotedRe.FindStringSubmatch(s); m != nil {
		if strings.HasPrefix(s, "'") {
			return m[1]
		}
		return m[2]
	}

	v, ok := ctx.Resolve(strings.Split(s, "."), playerScope)
	if !ok {
		return nil
	}
	return v
}

// RenderText renders a resolved value or authored template into
// participant-facing text.
//
// Non-string inputs are special-cased first: nil renders as "", booleans
// as "Yes"/"No", numbers as their decimal form. ISO-8601 timestamps
// render as h:mma in tz; a nil tz for a timestamp is a programming error,
// not a data error, and is the only way RenderText fails. Ten-digit digit
// strings render as US phone numbers.
//
// {{ref}} tokens are substituted (recursively, so a ref resolving to
// another template re-renders) before the single, non-recursive if/else
// pass.
func RenderText(ctx *script.EvalContext, value any, tz *time.Location, playerScope string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case bool:
		if v {
			return "Yes", nil
		}
		return "No", nil
	case string:
		return renderString(ctx, v, tz, playerScope)
	default:
		if n, ok := script.ToNumber(value); ok {
			return formatNumber(n), nil
		}
		return fmt.Sprint(value), nil
	}
}

func renderString(ctx *script.EvalContext, s string, tz *time.Location, playerScope string) (string, error) {
	if isoTimeRe.MatchString(s) {
		if tz == nil {
			return "", fmt.Errorf("rendering timestamp %q requires a timezone", s)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return s, nil
		}
		return strings.ToLower(t.In(tz).Format("3:04PM")), nil
	}
	if phoneRe.MatchString(s) {
		return fmt.Sprintf("(%s) %s-%s", s[0:3], s[3:6], s[6:10]), nil
	}

	// Interpolation runs before if/else substitution, on the same pass.
	var renderErr error
	out := interpRe.ReplaceAllStringFunc(s, func(token string) string {
		ref := interpRe.FindStringSubmatch(token)[1]
		rendered, err := RenderText(ctx, ResolveRef(ctx, ref, playerScope), tz, playerScope)
		if err != nil && renderErr == nil {
			renderErr = err
		}
		return rendered
	})
	if renderErr != nil {
		return "", renderErr
	}

	out = ifElseRe.ReplaceAllStringFunc(out, func(block string) string {
		m := ifElseRe.FindStringSubmatch(block)
		ref, thenText, elseText := m[1], m[2], m[3]
		if script.Truthy(ResolveRef(ctx, ref, playerScope)) {
			return thenText
		}
		return elseText
	})
	return out, nil
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
