// Package style parses inline style attributes into ordered declarations and
// enforces the email-safe style rules on anchors, images, tables and cells.
package style

import (
	"strings"

	"github.com/aymerick/douceur/parser"
)

// Declaration is one property:value pair from a style attribute.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ":" + d.Value + " !important;"
	}
	return d.Property + ":" + d.Value + ";"
}

// Declarations is an ordered style attribute.
type Declarations []Declaration

// Parse reads a style attribute value. Property names are lowercased and
// whitespace inside values is collapsed, so serialization is canonical.
// Input the CSS parser rejects is split on semicolons instead.
func Parse(s string) Declarations {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// the parser only closes a declaration on ";" or "}"
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	parsed, err := parser.ParseDeclarations(s)
	if err != nil {
		return splitDeclarations(s)
	}
	out := make(Declarations, 0, len(parsed))
	for _, d := range parsed {
		if d == nil {
			continue
		}
		if decl, ok := NewDeclaration(d.Property, d.Value, d.Important); ok {
			out = append(out, decl)
		}
	}
	return out
}

func splitDeclarations(s string) Declarations {
	var out Declarations
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		important := false
		if v := strings.TrimSpace(value); strings.HasSuffix(strings.ToLower(v), "!important") {
			important = true
			value = v[:len(v)-len("!important")]
		}
		if decl, ok := NewDeclaration(prop, value, important); ok {
			out = append(out, decl)
		}
	}
	return out
}

// NewDeclaration builds a canonical declaration. It reports false when the
// property or the value is empty.
func NewDeclaration(prop, value string, important bool) (Declaration, bool) {
	prop = strings.ToLower(strings.TrimSpace(prop))
	value = strings.Join(strings.Fields(value), " ")
	if prop == "" || value == "" {
		return Declaration{}, false
	}
	return Declaration{Property: prop, Value: value, Important: important}, true
}

// String serializes as "prop:value;" entries joined by single spaces.
func (ds Declarations) String() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}

// Get returns the last declaration for prop, which is the one that applies.
func (ds Declarations) Get(prop string) (Declaration, bool) {
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i].Property == prop {
			return ds[i], true
		}
	}
	return Declaration{}, false
}

// Has reports whether prop is declared.
func (ds Declarations) Has(prop string) bool {
	_, ok := ds.Get(prop)
	return ok
}

// Without returns ds minus every declaration of the given properties.
func (ds Declarations) Without(props ...string) Declarations {
	drop := make(map[string]bool, len(props))
	for _, p := range props {
		drop[p] = true
	}
	out := make(Declarations, 0, len(ds))
	for _, d := range ds {
		if !drop[d.Property] {
			out = append(out, d)
		}
	}
	return out
}

// Set gives prop the value. The first existing declaration is replaced in
// place and later duplicates are dropped; otherwise it is appended.
func (ds Declarations) Set(prop, value string) Declarations {
	out := make(Declarations, 0, len(ds)+1)
	done := false
	for _, d := range ds {
		if d.Property != prop {
			out = append(out, d)
			continue
		}
		if !done {
			out = append(out, Declaration{Property: prop, Value: value})
			done = true
		}
	}
	if !done {
		out = append(out, Declaration{Property: prop, Value: value})
	}
	return out
}

// Prefixed returns ds led by required. Existing declarations of the
// required properties are removed so the required values win.
func (ds Declarations) Prefixed(required Declarations) Declarations {
	props := make([]string, len(required))
	for i, r := range required {
		props[i] = r.Property
	}
	out := make(Declarations, 0, len(ds)+len(required))
	out = append(out, required...)
	return append(out, ds.Without(props...)...)
}

// Properties returns the declared property names in order, without repeats.
func (ds Declarations) Properties() []string {
	seen := make(map[string]bool, len(ds))
	var out []string
	for _, d := range ds {
		if !seen[d.Property] {
			seen[d.Property] = true
			out = append(out, d.Property)
		}
	}
	return out
}
