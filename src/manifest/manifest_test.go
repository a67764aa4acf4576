package manifest

import (
	"strings"
	"testing"
)

const sampleManifest = `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1"
rand = { version = "0.8.5", features = ["std"] }
tokio = { version = "1.35", package = "tokio" }
local-lib = { path = "../local-lib" }
git-lib = { git = "https://github.com/acme/git-lib", tag = "v1.2.0" }
slow = "0.1" # sparse-crates: disable

[dev-dependencies]
criterion = "0.5"

[build-dependencies]
cc = "1.0"

[target.'cfg(unix)'.dependencies]
nix = "0.27"
`

func findDep(t *testing.T, deps []Dependency, name string) Dependency {
	t.Helper()
	for _, d := range deps {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("dependency %q not found in %d parsed deps", name, len(deps))
	return Dependency{}
}

func TestParseCollectsAllTables(t *testing.T) {
	deps, perr := Parse([]byte(sampleManifest))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if len(deps) != 9 {
		t.Fatalf("got %d dependencies, want 9", len(deps))
	}

	serde := findDep(t, deps, "serde")
	if serde.Req != "1" || serde.Range == nil {
		t.Errorf("serde: req %q, range %v", serde.Req, serde.Range)
	}
	if _, ok := serde.Source.(Registry); !ok {
		t.Errorf("serde: source %T, want Registry", serde.Source)
	}

	rand := findDep(t, deps, "rand")
	if rand.Req != "0.8.5" {
		t.Errorf("rand: req %q", rand.Req)
	}

	criterion := findDep(t, deps, "criterion")
	if criterion.Req != "0.5" {
		t.Errorf("criterion: req %q", criterion.Req)
	}

	nix := findDep(t, deps, "nix")
	if nix.Req != "0.27" {
		t.Errorf("nix: req %q", nix.Req)
	}
}

func TestParseLineNumbersAndOrder(t *testing.T) {
	deps, perr := Parse([]byte(sampleManifest))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	serde := findDep(t, deps, "serde")
	if serde.Line != 6 {
		t.Errorf("serde line = %d, want 6", serde.Line)
	}

	for i := 1; i < len(deps); i++ {
		if deps[i-1].Line > deps[i].Line {
			t.Fatalf("dependencies not ordered by line: %d before %d", deps[i-1].Line, deps[i].Line)
		}
	}
}

func TestParseDisableMarker(t *testing.T) {
	deps, perr := Parse([]byte(sampleManifest))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if !findDep(t, deps, "slow").Disabled {
		t.Error("slow should be disabled by the marker comment")
	}
	if findDep(t, deps, "serde").Disabled {
		t.Error("serde should not be disabled")
	}
}

func TestParseSources(t *testing.T) {
	deps, perr := Parse([]byte(sampleManifest))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	local := findDep(t, deps, "local-lib")
	p, ok := local.Source.(Path)
	if !ok || p.Path != "../local-lib" {
		t.Errorf("local-lib source = %#v", local.Source)
	}

	gitd := findDep(t, deps, "git-lib")
	g, ok := gitd.Source.(Git)
	if !ok || g.URL != "https://github.com/acme/git-lib" || g.Tag != "v1.2.0" {
		t.Errorf("git-lib source = %#v", gitd.Source)
	}
}

func TestParseGitRefPrecedence(t *testing.T) {
	content := `[dependencies]
a = { git = "https://example.com/a", rev = "abc123", tag = "v1", branch = "dev" }
b = { git = "https://example.com/b", tag = "v2", branch = "dev" }
c = { git = "https://example.com/c", branch = "dev" }
`
	deps, perr := Parse([]byte(content))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	a := findDep(t, deps, "a").Source.(Git)
	if a.Rev != "abc123" || a.Tag != "" || a.Branch != "" {
		t.Errorf("rev should win: %#v", a)
	}
	b := findDep(t, deps, "b").Source.(Git)
	if b.Tag != "v2" || b.Branch != "" {
		t.Errorf("tag should win over branch: %#v", b)
	}
	c := findDep(t, deps, "c").Source.(Git)
	if c.Branch != "dev" {
		t.Errorf("branch should survive alone: %#v", c)
	}
}

func TestParsePackageRename(t *testing.T) {
	content := `[dependencies]
fancy = { version = "2.0", package = "actual-crate" }
`
	deps, perr := Parse([]byte(content))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if len(deps) != 1 || deps[0].Name != "actual-crate" {
		t.Fatalf("rename not honored: %#v", deps)
	}
	if deps[0].Line != 2 {
		t.Errorf("renamed dep line = %d, want 2 (indexed under manifest key)", deps[0].Line)
	}
}

func TestParseDottedHeaderForm(t *testing.T) {
	content := `[dependencies.serde]
version = "1.0"
features = ["derive"]
`
	deps, perr := Parse([]byte(content))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if len(deps) != 1 || deps[0].Name != "serde" || deps[0].Req != "1.0" {
		t.Fatalf("dotted header parse: %#v", deps)
	}
	if deps[0].Line != 1 {
		t.Errorf("line = %d, want 1", deps[0].Line)
	}
}

func TestParseStructuralError(t *testing.T) {
	deps, perr := Parse([]byte("[dependencies]\nserde = \"1\"\nbroken = {\n"))
	if perr == nil {
		t.Fatal("expected parse error for malformed TOML")
	}
	if deps != nil {
		t.Errorf("structural error should abort the parse, got %d deps", len(deps))
	}
	if perr.Line == 0 {
		t.Errorf("expected a best-effort line position, got %+v", perr)
	}
	if perr.Error() == "" {
		t.Error("parse error message empty")
	}
}

func TestParseNoRequirement(t *testing.T) {
	content := `[dependencies]
local = { path = "../local" }
`
	deps, perr := Parse([]byte(content))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	d := deps[0]
	if d.Req != "" || d.Range != nil {
		t.Errorf("path dep without version: req %q, range %v", d.Req, d.Range)
	}
}

func TestHasDisableMarker(t *testing.T) {
	if !hasDisableMarker(`serde = "1" # sparse-crates: disable`) {
		t.Error("marker after hash should be detected")
	}
	if hasDisableMarker(`serde = "1"`) {
		t.Error("no marker present")
	}
	if hasDisableMarker(`path = "sparse-crates: disable"`) {
		t.Error("marker text outside a comment must not count")
	}
}

func TestWorkspaceExtractInfo(t *testing.T) {
	content := `[package]
name = "member"
version.workspace = true

[workspace]
members = ["crates/*"]

[workspace.package]
version = "3.1.4"
`
	info, err := ExtractInfo([]byte(content))
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if info.PackageName != "member" {
		t.Errorf("name = %q", info.PackageName)
	}
	if !info.VersionFromWorkspace {
		t.Error("version.workspace = true not detected")
	}
	if info.Workspace == nil || info.Workspace.Version != "3.1.4" {
		t.Fatalf("workspace = %#v", info.Workspace)
	}
	if got := info.EffectiveVersion(info.Workspace.Version); got != "3.1.4" {
		t.Errorf("EffectiveVersion = %q", got)
	}
	if len(info.Workspace.Members) != 1 || info.Workspace.Members[0] != "crates/*" {
		t.Errorf("members = %v", info.Workspace.Members)
	}
}

func TestWorkspaceExplicitVersion(t *testing.T) {
	info, err := ExtractInfo([]byte("[package]\nname = \"pkg\"\nversion = \"2.0.0\"\n"))
	if err != nil {
		t.Fatalf("ExtractInfo: %v", err)
	}
	if got := info.EffectiveVersion("9.9.9"); got != "2.0.0" {
		t.Errorf("explicit version must win, got %q", got)
	}
}

func TestTableClass(t *testing.T) {
	cases := map[string]string{
		"dependencies":                           "dependencies",
		"dev-dependencies":                       "dev-dependencies",
		"build-dependencies":                     "build-dependencies",
		"target.'cfg(unix)'.dependencies":        "dependencies",
		"target.'cfg(windows)'.dev-dependencies": "dev-dependencies",
		"package":                                "",
		"workspace":                              "",
	}
	for header, want := range cases {
		if got := tableClass(header); got != want {
			t.Errorf("tableClass(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestParseQuotedKeys(t *testing.T) {
	content := "[dependencies]\n\"weird-name\" = \"1.0\"\n"
	deps, perr := Parse([]byte(content))
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	if len(deps) != 1 || deps[0].Name != "weird-name" || deps[0].Line != 2 {
		t.Fatalf("quoted key parse: %#v", deps)
	}
	if strings.Contains(deps[0].Name, `"`) {
		t.Error("key not unquoted")
	}
}
