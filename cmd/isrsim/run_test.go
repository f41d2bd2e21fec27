//go:build !rp2040

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"isrcell-go/services/hal"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunReportsEdgeToggle(t *testing.T) {
	out, err := execute(t, "run", "edge-toggle", "-q", "--for", "500ms", "--press-every", "100ms")
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	var r hal.Report
	if err := yaml.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if r.Program != "edge-toggle" || r.Presses != 5 || r.Flips != 5 || !r.LED {
		t.Fatalf("report %+v", r)
	}
}

func TestRunUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("program: adc-threshold\nadc_threshold: 0x100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "run", "-q", "-c", path, "--for", "20ms", "--adc", "0x180")
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	var r hal.Report
	if err := yaml.Unmarshal([]byte(out), &r); err != nil {
		t.Fatal(err)
	}
	if r.Program != "adc-threshold" || r.Conversions != 2 || !r.LED {
		t.Fatalf("report %+v", r)
	}
}

func TestRunRejectsBadSample(t *testing.T) {
	if _, err := execute(t, "run", "-q", "--adc", "0x1000"); err == nil {
		t.Fatal("12-bit overflow accepted")
	}
}

func TestProgramsLists(t *testing.T) {
	out, err := execute(t, "programs")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(out); len(got) != 6 || got[2] != "edge-toggle" {
		t.Fatalf("programs = %q", got)
	}
}
