package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNopDiscardsEverything(t *testing.T) {
	log := Nop()
	log.Debug("a")
	log.Info("b", "k", 1)
	log.Warn("c")
	log.Error("d", "err", "boom")
}

func TestNewThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug("hidden debug")
	log.Warn("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Error("debug should be suppressed without verbose")
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("warn missing from output: %q", out)
	}
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)
	log.Debug("now visible", "crate", "serde")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug missing with verbose: %q", buf.String())
	}
}
