// Package manifest parses Cargo.toml files into dependency records and
// workspace metadata.
package manifest

import (
	"errors"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/alfatm/sparse-crates/src/vrange"
)

// DisableMarker is the per-line opt-out comment. A dependency declared on
// a line carrying it is parsed but never validated.
const DisableMarker = "sparse-crates: disable"

// Dependency is one declared dependency. Immutable once produced.
type Dependency struct {
	Name     string        // crate name (honors `package = "..."` renames)
	Req      string        // raw requirement text, "" if none declared
	Range    *vrange.Range // nil for git/path deps without a requirement
	Source   Source
	Line     int  // declaring line in the manifest, 1-based (0 if unknown)
	Disabled bool // per-line opt-out marker present
}

// ParseError is a structural TOML failure, distinct from per-dependency
// validation errors.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// depTables are the three dependency sections a manifest (or a
// [target.*] block) may declare.
type depTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type manifestDoc struct {
	Dependencies      map[string]any       `toml:"dependencies"`
	DevDependencies   map[string]any       `toml:"dev-dependencies"`
	BuildDependencies map[string]any       `toml:"build-dependencies"`
	Target            map[string]depTables `toml:"target"`
}

// Parse extracts all declared dependencies from Cargo.toml content,
// ordered by declaring line. A structural TOML error is returned as a
// *ParseError with best-effort position; it aborts the whole parse.
func Parse(content []byte) ([]Dependency, *ParseError) {
	var doc manifestDoc
	if err := toml.Unmarshal(content, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, &ParseError{Line: row, Column: col, Message: derr.Error()}
		}
		return nil, &ParseError{Message: err.Error()}
	}

	idx := buildLineIndex(content)

	var deps []Dependency
	collect := func(table string, specs map[string]any) {
		for key, spec := range specs {
			deps = append(deps, newDependency(table, key, spec, idx))
		}
	}
	collect("dependencies", doc.Dependencies)
	collect("dev-dependencies", doc.DevDependencies)
	collect("build-dependencies", doc.BuildDependencies)
	for _, tables := range doc.Target {
		collect("dependencies", tables.Dependencies)
		collect("dev-dependencies", tables.DevDependencies)
		collect("build-dependencies", tables.BuildDependencies)
	}

	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].Line != deps[j].Line {
			return deps[i].Line < deps[j].Line
		}
		return deps[i].Name < deps[j].Name
	})
	return deps, nil
}

// newDependency builds a Dependency from a raw table entry.
func newDependency(table, key string, spec any, idx *lineIndex) Dependency {
	dep := Dependency{Name: key, Source: Registry{}}

	switch v := spec.(type) {
	case string:
		dep.Req = strings.TrimSpace(v)
	case map[string]any:
		if name, ok := v["package"].(string); ok && name != "" {
			dep.Name = name
		}
		if req, ok := v["version"].(string); ok {
			dep.Req = strings.TrimSpace(req)
		}
		dep.Source = specSource(v)
	}

	if dep.Req != "" {
		if r, err := vrange.Parse(dep.Req); err == nil {
			dep.Range = r
		}
	}

	if entry := idx.lookup(table, key); entry != nil {
		dep.Line = entry.line
		dep.Disabled = entry.disabled
	}
	return dep
}

// specSource classifies a table-form dependency spec. git wins over path
// when both appear, matching cargo's precedence.
func specSource(spec map[string]any) Source {
	if u, ok := spec["git"].(string); ok && u != "" {
		g := Git{URL: u}
		if s, ok := spec["rev"].(string); ok {
			g.Rev = s
		} else if s, ok := spec["tag"].(string); ok {
			g.Tag = s
		} else if s, ok := spec["branch"].(string); ok {
			g.Branch = s
		}
		return g
	}
	if p, ok := spec["path"].(string); ok && p != "" {
		return Path{Path: p}
	}
	if r, ok := spec["registry"].(string); ok {
		return Registry{Name: r}
	}
	return Registry{}
}
