package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/alfatm/sparse-crates/src/manifest"
	"github.com/alfatm/sparse-crates/src/validate"
	"github.com/alfatm/sparse-crates/src/vrange"
)

func TestStatusIcon(t *testing.T) {
	cases := map[vrange.Status]string{
		vrange.StatusLatest:      "✓",
		vrange.StatusPatchBehind: "~",
		vrange.StatusMinorBehind: "↑",
		vrange.StatusMajorBehind: "⇑",
		vrange.StatusError:       "✗",
	}
	for st, want := range cases {
		if got := StatusIcon(st, false); got != want {
			t.Errorf("StatusIcon(%s) = %q, want %q", st, got, want)
		}
		colored := StatusIcon(st, true)
		if !strings.Contains(colored, want) || !strings.Contains(colored, "\033[") {
			t.Errorf("colored StatusIcon(%s) = %q", st, colored)
		}
	}
}

func TestReport(t *testing.T) {
	results := []*validate.ManifestResult{
		{
			FilePath: "/proj/a/Cargo.toml",
			Dependencies: []validate.Result{
				{
					Dep:    manifest.Dependency{Name: "serde", Req: "1"},
					Status: vrange.StatusLatest,
					Locked: "1.0.100",
					Docs:   "https://docs.rs/serde",
				},
				{
					Dep:          manifest.Dependency{Name: "oldie", Req: "1.0"},
					Status:       vrange.StatusMajorBehind,
					LatestStable: masterminds.MustParse("2.0.0"),
					Docs:         "https://docs.rs/oldie",
				},
				{
					Dep:    manifest.Dependency{Name: "broken", Req: "zzz"},
					Status: vrange.StatusError,
					Err:    errors.New("no versions found"),
				},
			},
		},
		{
			FilePath:   "/proj/b/Cargo.toml",
			ParseError: &manifest.ParseError{Line: 3, Message: "toml: unexpected token"},
		},
	}

	var sb strings.Builder
	sum := Report(&sb, "/proj", results, 120*time.Millisecond, false)

	if sum.Manifests != 2 || sum.Deps != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Latest != 1 || sum.Outdated != 1 || sum.Errors != 2 {
		t.Errorf("counts = %+v", sum)
	}
	if sum.Clean() {
		t.Error("summary with errors must not be clean")
	}

	out := sb.String()
	for _, want := range []string{
		"a/Cargo.toml",
		"serde",
		"oldie",
		"→ 2.0.0",
		"no versions found",
		"toml: unexpected token",
		"2 manifests, 3 dependencies: 1 current, 1 outdated, 2 errors",
		"120ms",
		"https://docs.rs/oldie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// Docs links only accompany outdated rows.
	if strings.Contains(out, "https://docs.rs/serde") {
		t.Error("up-to-date rows must not carry a docs link")
	}
}

func TestReportClean(t *testing.T) {
	results := []*validate.ManifestResult{
		{
			FilePath: "/proj/Cargo.toml",
			Dependencies: []validate.Result{
				{Dep: manifest.Dependency{Name: "ok", Req: "1"}, Status: vrange.StatusLatest},
			},
		},
	}
	var sb strings.Builder
	sum := Report(&sb, "/proj", results, 0, false)
	if !sum.Clean() {
		t.Errorf("summary = %+v", sum)
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		500 * time.Microsecond:  "<1ms",
		42 * time.Millisecond:   "42ms",
		1500 * time.Millisecond: "1.5s",
		90 * time.Second:        "1m30.0s",
	}
	for d, want := range cases {
		if got := formatElapsed(d); got != want {
			t.Errorf("formatElapsed(%s) = %q, want %q", d, got, want)
		}
	}
}
