package pages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/seriallab/fwload/internal/app"
	"github.com/seriallab/fwload/internal/config"
	"github.com/seriallab/fwload/internal/device"
	"github.com/seriallab/fwload/internal/firmware"
	"github.com/seriallab/fwload/internal/loader"
	"github.com/seriallab/fwload/internal/runner"
	"github.com/seriallab/fwload/internal/store"
)

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func scanTestCatalog(t *testing.T, names ...string) *firmware.Catalog {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
	cat, err := firmware.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return cat
}

// newLoadFixture builds a load page with an in-memory shell, zero settle
// delay, one bossac firmware and one device already selected.
func newLoadFixture(t *testing.T, goos string, tools loader.Tools, sh *fakeShell) *LoadPage {
	t.Helper()
	cfg := config.Defaults()
	cfg.SettleDelayMS = 0

	deps := &Deps{
		FirmwareDir: t.TempDir(),
		Goos:        goos,
		Root:        t.TempDir(),
		Tools:       tools,
		Shell:       sh,
		Config:      &cfg,
		Store:       store.New(t.TempDir()),
	}

	p := NewLoadPage(deps)
	p.Update(catalogLoadedMsg{catalog: scanTestCatalog(t, "widget_v1.bin", "widget_v2.bin")})
	p.Update(devicesLoadedMsg{devices: []device.Descriptor{
		{Path: "COM5", Label: "COM5 -> Arduino"},
	}})
	return p
}

// drive pumps messages until the command chain goes quiet, the way the
// bubbletea loop would.
func drive(t *testing.T, p *LoadPage, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("run did not terminate")
		}
		msg := cmd()
		_, cmd = p.Update(msg)
	}
}

func TestLoadRunsAllStepsDespiteFailure(t *testing.T) {
	sh := &fakeShell{results: []runner.StepResult{
		{Output: "", ExitCode: 0},
		{Output: "boom", ExitCode: 1},
		{Output: "done", ExitCode: 0},
	}}
	tools := loader.Tools{BossacPath: "C:\\app\\bossac.exe", BossacVersion: "1.9.1"}
	p := newLoadFixture(t, "windows", tools, sh)

	_, cmd := p.Update(keyMsg('l'))
	if cmd == nil {
		t.Fatal("expected first step command")
	}
	drive(t, p, cmd)

	if len(sh.commands) != 3 {
		t.Fatalf("expected all 3 steps to run, got %v", sh.commands)
	}
	if p.run.State() != runner.StateFailed {
		t.Fatalf("expected failed verdict, got %v", p.run.State())
	}
	if p.verdict == "" || p.verdictOK {
		t.Fatal("expected failure verdict overlay")
	}
	if !strings.Contains(p.output.String(), "EPIC FAIL") {
		t.Errorf("log missing failure line:\n%s", p.output.String())
	}

	records, err := p.deps.Store.Flashes()
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 history record, got %v (%v)", records, err)
	}
	r := records[0]
	if r.Success {
		t.Error("record should be marked failed")
	}
	if len(r.Steps) != 3 || !r.Steps[0] || r.Steps[1] || !r.Steps[2] {
		t.Errorf("unexpected step results: %v", r.Steps)
	}
}

func TestLoadSuccessVerdict(t *testing.T) {
	sh := &fakeShell{}
	tools := loader.Tools{BossacPath: "/usr/bin/bossac", BossacVersion: "1.9.1"}
	p := newLoadFixture(t, "linux", tools, sh)

	_, cmd := p.Update(keyMsg('l'))
	drive(t, p, cmd)

	if len(sh.commands) != 1 {
		t.Fatalf("expected single bossac step on linux, got %v", sh.commands)
	}
	if !strings.Contains(sh.commands[0], "widget_v2.bin") {
		t.Errorf("expected newest version selected by default, got %s", sh.commands[0])
	}
	if !p.verdictOK {
		t.Fatal("expected success verdict")
	}
	if !strings.Contains(p.output.String(), "GREAT SUCCESS!") {
		t.Errorf("log missing success line:\n%s", p.output.String())
	}

	// Last firmware choice persists for the next session.
	saved := config.Load(p.deps.Root)
	if saved.LastFirmware != "widget" {
		t.Errorf("expected last_firmware=widget saved, got %q", saved.LastFirmware)
	}
}

func TestLoadRequiresSelection(t *testing.T) {
	cfg := config.Defaults()
	deps := &Deps{
		Goos:   "linux",
		Root:   t.TempDir(),
		Shell:  &fakeShell{},
		Config: &cfg,
		Store:  store.New(t.TempDir()),
	}
	p := NewLoadPage(deps)

	_, cmd := p.Update(keyMsg('l'))
	if cmd != nil {
		t.Fatal("expected no command without a selection")
	}
	if p.verdict == "" || p.verdictOK {
		t.Fatal("expected failure verdict asking for a selection")
	}
}

func TestLoadGuardsConcurrentStart(t *testing.T) {
	sh := &fakeShell{}
	tools := loader.Tools{BossacPath: "/usr/bin/bossac"}
	p := newLoadFixture(t, "linux", tools, sh)

	_, first := p.Update(keyMsg('l'))
	if first == nil {
		t.Fatal("expected run to start")
	}

	// A second load while running must be refused.
	_, second := p.Update(keyMsg('l'))
	if second != nil {
		t.Fatal("expected concurrent start to be rejected")
	}
	if !strings.Contains(p.output.String(), "already in progress") {
		t.Errorf("expected guard log line, got:\n%s", p.output.String())
	}

	// So must a rescan.
	_, rescan := p.Update(keyMsg('r'))
	if rescan != nil {
		t.Fatal("expected rescan to be rejected while running")
	}
	if !strings.Contains(p.output.String(), "Cannot rescan") {
		t.Errorf("expected rescan guard line, got:\n%s", p.output.String())
	}

	drive(t, p, first)
	if len(sh.commands) != 1 {
		t.Fatalf("expected exactly one executed command, got %v", sh.commands)
	}
}

func TestLoadPlanErrorShowsVerdict(t *testing.T) {
	sh := &fakeShell{}
	p := newLoadFixture(t, "linux", loader.Tools{}, sh) // no tools resolved

	_, cmd := p.Update(keyMsg('l'))
	if cmd != nil {
		t.Fatal("expected planning to fail without tools")
	}
	if p.verdict == "" || p.verdictOK {
		t.Fatal("expected failure verdict")
	}
	if !strings.Contains(p.output.String(), "tool not found") {
		t.Errorf("expected tool-not-found log line, got:\n%s", p.output.String())
	}
	if len(sh.commands) != 0 {
		t.Fatalf("no commands should run, got %v", sh.commands)
	}
}

func TestCatalogReloadRestoresLastFirmware(t *testing.T) {
	sh := &fakeShell{}
	cfg := config.Defaults()
	cfg.LastFirmware = "zulu"
	deps := &Deps{
		Goos:   "linux",
		Root:   t.TempDir(),
		Shell:  sh,
		Config: &cfg,
		Store:  store.New(t.TempDir()),
	}
	p := NewLoadPage(deps)

	p.Update(catalogLoadedMsg{catalog: scanTestCatalog(t, "bravo_v1.bin", "zulu_v1.hex")})
	if p.fwName != "zulu" {
		t.Fatalf("expected last firmware restored, got %q", p.fwName)
	}
	if p.version != "v1" {
		t.Fatalf("expected newest version selected, got %q", p.version)
	}
}

func TestVerdictDismissedByAnyKey(t *testing.T) {
	sh := &fakeShell{}
	p := newLoadFixture(t, "linux", loader.Tools{BossacPath: "/usr/bin/bossac"}, sh)

	_, cmd := p.Update(keyMsg('l'))
	drive(t, p, cmd)
	if p.verdict == "" {
		t.Fatal("expected verdict overlay after run")
	}
	if !p.InputCaptured() {
		t.Fatal("verdict overlay should capture input")
	}

	p.Update(keyMsg('x'))
	if p.verdict != "" {
		t.Fatal("expected verdict dismissed")
	}
}

func TestPickerSelectionUpdatesVersion(t *testing.T) {
	sh := &fakeShell{}
	p := newLoadFixture(t, "linux", loader.Tools{BossacPath: "/usr/bin/bossac"}, sh)

	// Open the firmware picker and pick the only entry.
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.picker == nil {
		t.Fatal("expected picker to open")
	}
	p.Update(app.PickerSelectedMsg{Value: "widget"})
	if p.picker != nil {
		t.Fatal("expected picker to close")
	}
	if p.fwName != "widget" || p.version != "v2" {
		t.Fatalf("expected widget/v2 selected, got %s/%s", p.fwName, p.version)
	}
}
