package manifest

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

// Workspace is the subset of [workspace] needed for version resolution.
type Workspace struct {
	Members []string // member path patterns, possibly with one "*"
	Version string   // [workspace.package] version, "" if absent
}

// Info is the version-bearing view of a manifest, shared by path and git
// source resolution.
type Info struct {
	PackageName          string
	Version              string // explicit [package] version, "" if absent
	VersionFromWorkspace bool   // package declares version.workspace = true
	Workspace            *Workspace
}

// ExtractInfo reads the package and workspace tables from Cargo.toml
// content.
func ExtractInfo(content []byte) (*Info, error) {
	var doc struct {
		Package   map[string]any `toml:"package"`
		Workspace *struct {
			Members []string       `toml:"members"`
			Package map[string]any `toml:"package"`
		} `toml:"workspace"`
	}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	info := &Info{}
	if doc.Package != nil {
		if name, ok := doc.Package["name"].(string); ok {
			info.PackageName = name
		}
		switch v := doc.Package["version"].(type) {
		case string:
			info.Version = v
		case map[string]any:
			if ws, ok := v["workspace"].(bool); ok && ws {
				info.VersionFromWorkspace = true
			}
		}
	}
	if doc.Workspace != nil {
		ws := &Workspace{Members: doc.Workspace.Members}
		if doc.Workspace.Package != nil {
			if v, ok := doc.Workspace.Package["version"].(string); ok {
				ws.Version = v
			}
		}
		info.Workspace = ws
	}
	return info, nil
}

// EffectiveVersion resolves the package version against an enclosing
// workspace version, honoring the inheritance flag. Empty when neither
// declares one.
func (i *Info) EffectiveVersion(workspaceVersion string) string {
	if i.VersionFromWorkspace {
		return workspaceVersion
	}
	return i.Version
}
