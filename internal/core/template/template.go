// Package template fills {key} placeholders in plan item text and captions
package template

import (
	"strings"
)

// Vars are the substitution values; keys match case-insensitively
type Vars map[string]string

// Render replaces every {key} whose key is in vars; other braces are kept verbatim
// A key is any run of characters between braces that contains no brace or whitespace
func Render(tmpl string, vars Vars) string {
	if tmpl == "" || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	lower := make(map[string]string, len(vars))
	for k, v := range vars {
		lower[strings.ToLower(k)] = v
	}

	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		open := strings.IndexByte(tmpl[i:], '{')
		if open < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		open += i
		b.WriteString(tmpl[i:open])

		end := strings.IndexAny(tmpl[open+1:], "{} \t\n\r")
		if end < 0 || tmpl[open+1+end] != '}' {
			b.WriteByte('{')
			i = open + 1
			continue
		}
		closeAt := open + 1 + end
		key := tmpl[open+1 : closeAt]
		if v, ok := lower[strings.ToLower(key)]; ok && key != "" {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[open : closeAt+1])
		}
		i = closeAt + 1
	}
	return b.String()
}
