package loader

import (
	"errors"
	"path/filepath"
	"testing"
)

// fakeHost builds a Resolver over an in-memory set of existing files and
// scripted command output.
type fakeHost struct {
	files    map[string]bool
	pathBins map[string]string
	output   map[string]string
}

func (h fakeHost) resolver(goos string) Resolver {
	return Resolver{
		Goos:    goos,
		BaseDir: "/app",
		LookPath: func(file string) (string, error) {
			if p, ok := h.pathBins[file]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
		FileExists: func(path string) bool { return h.files[path] },
		RunOutput: func(name string, args ...string) (string, error) {
			return h.output[name], nil
		},
	}
}

func TestResolveUnixPrefersPathBinaries(t *testing.T) {
	h := fakeHost{
		files:    map[string]bool{"/usr/bin/bossac": true, "/usr/bin/tycmd": true},
		pathBins: map[string]string{"bossac": "/usr/bin/bossac", "tycmd": "/usr/bin/tycmd"},
		output: map[string]string{
			"/usr/bin/bossac": "Basic Open Source SAM-BA Application (BOSSA) Version 1.9.1\nUsage: bossac ...",
			"/usr/bin/tycmd":  "tycmd 0.9.9",
		},
	}

	tools := h.resolver("linux").Resolve()
	if tools.BossacPath != "/usr/bin/bossac" {
		t.Errorf("unexpected bossac path: %q", tools.BossacPath)
	}
	if tools.BossacVersion != "1.9.1" {
		t.Errorf("unexpected bossac version: %q", tools.BossacVersion)
	}
	if tools.TycmdPath != "/usr/bin/tycmd" {
		t.Errorf("unexpected tycmd path: %q", tools.TycmdPath)
	}
	if tools.TycmdVersion != "0.9.9" {
		t.Errorf("unexpected tycmd version: %q", tools.TycmdVersion)
	}
}

func TestResolveWindowsUsesBundledTools(t *testing.T) {
	bossac := filepath.Join("/app", "third_party", "bossac", "bossac.exe")
	tycmd := filepath.Join("/app", "third_party", "tycmd", "tycmd.exe")
	h := fakeHost{
		files: map[string]bool{bossac: true, tycmd: true},
		// A system bossac on PATH must still lose to the bundled copy.
		pathBins: map[string]string{"bossac": "C:\\tools\\bossac.exe"},
		output:   map[string]string{},
	}

	tools := h.resolver("windows").Resolve()
	if tools.BossacPath != bossac {
		t.Errorf("expected bundled bossac, got %q", tools.BossacPath)
	}
	if tools.TycmdPath != tycmd {
		t.Errorf("expected bundled tycmd, got %q", tools.TycmdPath)
	}
}

func TestResolveLinuxFallsBackToBundledTycmd(t *testing.T) {
	bundled := filepath.Join("/app", "third_party", "tycmd", "tycmd_linux64")
	h := fakeHost{
		files:  map[string]bool{bundled: true},
		output: map[string]string{bundled: "tycmd 0.9.8"},
	}

	tools := h.resolver("linux").Resolve()
	if tools.TycmdPath != bundled {
		t.Errorf("expected bundled tycmd fallback, got %q", tools.TycmdPath)
	}
	if tools.BossacPath != "" {
		t.Errorf("expected missing bossac, got %q", tools.BossacPath)
	}
	if tools.BossacVersion != "" {
		t.Errorf("expected empty version for missing tool, got %q", tools.BossacVersion)
	}
}

func TestResolveHonorsOverrides(t *testing.T) {
	h := fakeHost{
		files:    map[string]bool{"/custom/bossac": true, "/usr/bin/bossac": true},
		pathBins: map[string]string{"bossac": "/usr/bin/bossac"},
		output:   map[string]string{},
	}
	r := h.resolver("linux")
	r.BossacOverride = "/custom/bossac"

	tools := r.Resolve()
	if tools.BossacPath != "/custom/bossac" {
		t.Errorf("expected override path, got %q", tools.BossacPath)
	}
}

func TestResolveMissingEverything(t *testing.T) {
	h := fakeHost{files: map[string]bool{}, output: map[string]string{}}

	tools := h.resolver("darwin").Resolve()
	if tools.BossacPath != "" || tools.TycmdPath != "" {
		t.Fatalf("expected no tools, got %+v", tools)
	}
}
