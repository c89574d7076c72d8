package pages

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/seriallab/fwload/internal/app"
	"github.com/seriallab/fwload/internal/config"
	"github.com/seriallab/fwload/internal/device"
	"github.com/seriallab/fwload/internal/firmware"
	"github.com/seriallab/fwload/internal/loader"
	"github.com/seriallab/fwload/internal/runner"
	"github.com/seriallab/fwload/internal/store"
	"github.com/seriallab/fwload/internal/ui"
)

// selection rows on the load page
const (
	fieldFirmware = iota
	fieldVersion
	fieldDevice
	fieldCount
)

var fieldLabels = [fieldCount]string{"Firmware", "Version", "Device"}

// LoadPage is the main page: pick a firmware, version and device, then
// drive the planned commands to completion one step at a time.
type LoadPage struct {
	deps *Deps

	catalog *firmware.Catalog
	devices []device.Descriptor

	fwName   string
	version  string
	devLabel string

	cursor      int
	picker      *app.Picker
	pickerField int

	run        *runner.Run
	runRec     firmware.Record
	runDevice  string
	runStarted time.Time

	verdict   string
	verdictOK bool

	output        strings.Builder
	viewport      viewport.Model
	width, height int
}

func NewLoadPage(deps *Deps) *LoadPage {
	p := &LoadPage{
		deps:     deps,
		viewport: viewport.New(0, 0),
	}
	p.resetLog()
	return p
}

func (p *LoadPage) Init() tea.Cmd {
	return tea.Batch(p.deps.loadCatalog(), p.deps.loadDevices())
}

func (p *LoadPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A visible verdict blocks everything; any key dismisses it.
		if p.verdict != "" {
			p.verdict = ""
			return p, nil
		}

		if p.picker != nil {
			var cmd tea.Cmd
			p.picker, cmd = p.picker.Update(msg)
			return p, cmd
		}

		switch msg.String() {
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down":
			if p.cursor < fieldCount-1 {
				p.cursor++
			}
		case "enter":
			return p, p.openPicker(p.cursor)
		case "l":
			return p, p.startLoad()
		case "r":
			return p, p.rescan()
		case "c":
			p.resetLog()
		}
		return p, nil

	case app.PickerSelectedMsg:
		if p.picker == nil {
			return p, nil
		}
		p.picker = nil
		p.applySelection(p.pickerField, msg.Value)
		return p, nil

	case app.PickerClosedMsg:
		p.picker = nil
		return p, nil

	case catalogLoadedMsg:
		p.catalog = msg.catalog
		if msg.err != nil {
			p.appendLog(fmt.Sprintf("WARNING: firmware directory unavailable: %v", msg.err))
		}
		p.restoreFirmwareSelection()
		return p, nil

	case devicesLoadedMsg:
		if msg.err != nil {
			p.appendLog(fmt.Sprintf("WARNING: device scan failed: %v", msg.err))
		}
		p.devices = msg.devices
		p.restoreDeviceSelection()
		p.printReadiness()
		return p, nil

	case runner.StepResultMsg:
		if !p.running() || msg.Index != p.run.Index() {
			return p, nil
		}
		if msg.Output != "" {
			p.appendLog(msg.Output)
		}
		p.run.Record(msg.ExitCode == 0)
		if p.running() {
			return p, runner.Settle(p.deps.Config.SettleDelay(), msg.Index)
		}
		p.finishRun()
		return p, nil

	case runner.StepSettledMsg:
		if !p.running() {
			return p, nil
		}
		command, ok := p.run.Current()
		if !ok {
			return p, nil
		}
		return p, runner.ExecuteStep(p.deps.Shell, p.run.Index(), command)
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LoadPage) running() bool {
	return p.run != nil && p.run.State() == runner.StateRunning
}

func (p *LoadPage) openPicker(field int) tea.Cmd {
	if p.running() {
		return nil
	}

	var items []app.PickerItem
	switch field {
	case fieldFirmware:
		if p.catalog == nil {
			return nil
		}
		for _, name := range p.catalog.Names() {
			items = append(items, app.PickerItem{Label: name, Value: name})
		}
	case fieldVersion:
		if p.catalog == nil {
			return nil
		}
		for _, v := range p.catalog.Versions(p.fwName) {
			items = append(items, app.PickerItem{Label: v, Value: v})
		}
	case fieldDevice:
		for _, d := range p.devices {
			items = append(items, app.PickerItem{Label: d.Label, Value: d.Label})
		}
	}

	p.pickerField = field
	p.picker = app.NewPicker("Select " + fieldLabels[field])
	p.picker.SetSize(p.width, p.height)
	p.picker.SetItems(items)
	return nil
}

func (p *LoadPage) applySelection(field int, value string) {
	switch field {
	case fieldFirmware:
		p.fwName = value
		p.version = ""
		if versions := p.catalog.Versions(value); len(versions) > 0 {
			p.version = versions[0]
		}
	case fieldVersion:
		p.version = value
	case fieldDevice:
		p.devLabel = value
	}
}

// startLoad plans and begins a run. Returns nil when preconditions fail;
// the log and verdict overlay explain why.
func (p *LoadPage) startLoad() tea.Cmd {
	if p.running() {
		p.appendLog("A load is already in progress.")
		return nil
	}
	if p.fwName == "" || p.devLabel == "" {
		p.resetLog()
		p.appendLog("Please select a firmware image and serial device.")
		p.showVerdict(false, "You must select a firmware image\nand serial device!")
		return nil
	}

	rec, err := p.catalog.Get(p.fwName, p.version)
	if err != nil {
		p.appendLog(fmt.Sprintf("ERROR: firmware %s %s not found. Rescan and retry.", p.fwName, p.version))
		p.showVerdict(false, "Selected firmware is no longer available.")
		return nil
	}

	devicePath := device.ResolvePath(p.devLabel)
	commands, err := loader.Plan(p.deps.Tools, rec, devicePath, p.deps.Goos)
	if err != nil {
		p.appendLog("ERROR: " + err.Error())
		p.showVerdict(false, "Could not plan the load.\nReview the log for details.")
		return nil
	}

	p.deps.Config.LastFirmware = p.fwName
	config.Save(*p.deps.Config, p.deps.Root, false)

	p.resetLog()
	p.appendLog(fmt.Sprintf("Loading %s to %s with %s...", rec.Path, devicePath, rec.Loader))

	p.run = runner.NewRun(commands)
	p.runRec = rec
	p.runDevice = devicePath
	p.runStarted = time.Now()

	command, ok := p.run.Current()
	if !ok {
		p.finishRun()
		return nil
	}
	return runner.ExecuteStep(p.deps.Shell, 0, command)
}

func (p *LoadPage) finishRun() {
	succeeded := p.run.State() == runner.StateSucceeded
	if succeeded {
		p.appendLog("GREAT SUCCESS!")
		p.showVerdict(true, "Firmware loading has succeeded.")
	} else {
		p.appendLog("EPIC FAIL: Some commands FAILED to run.")
		p.showVerdict(false, "Firmware loading failed.\nReview the log for details.")
	}

	if p.deps.Store != nil {
		p.deps.Store.AddFlash(store.FlashRecord{
			Firmware:  p.runRec.Name,
			Version:   p.runRec.Version,
			Device:    p.runDevice,
			Loader:    p.runRec.Loader.String(),
			Timestamp: p.runStarted,
			Success:   succeeded,
			Duration:  time.Since(p.runStarted).Round(time.Millisecond).String(),
			Steps:     p.run.Results(),
		})
	}
}

func (p *LoadPage) rescan() tea.Cmd {
	if p.running() {
		p.appendLog("Cannot rescan while a load is in progress.")
		return nil
	}
	p.resetLog()
	return tea.Batch(p.deps.loadCatalog(), p.deps.loadDevices())
}

func (p *LoadPage) restoreFirmwareSelection() {
	names := p.catalog.Names()
	if !containsString(names, p.fwName) {
		p.fwName = ""
	}
	if p.fwName == "" {
		if containsString(names, p.deps.Config.LastFirmware) {
			p.fwName = p.deps.Config.LastFirmware
		} else if len(names) > 0 {
			p.fwName = names[0]
		}
	}

	versions := p.catalog.Versions(p.fwName)
	if !containsString(versions, p.version) {
		p.version = ""
		if len(versions) > 0 {
			p.version = versions[0]
		}
	}
}

func (p *LoadPage) restoreDeviceSelection() {
	for _, d := range p.devices {
		if d.Label == p.devLabel {
			return
		}
	}
	p.devLabel = ""
	if len(p.devices) > 0 {
		p.devLabel = p.devices[0].Label
	}
}

func (p *LoadPage) printReadiness() {
	t := p.deps.Tools

	if t.BossacPath != "" && t.BossacVersion != "" {
		p.appendLog(fmt.Sprintf("Using bossac version %s from", t.BossacVersion))
		p.appendLog("    " + filepath.Dir(t.BossacPath))
	} else {
		p.appendLog("WARNING: BOSSAC NOT FOUND.")
	}

	if t.TycmdPath != "" && t.TycmdVersion != "" {
		p.appendLog(fmt.Sprintf("Using tycmd version %s from", t.TycmdVersion))
		p.appendLog("    " + filepath.Dir(t.TycmdPath))
	} else {
		p.appendLog("WARNING: TYCMD NOT FOUND.")
	}

	if n := len(p.devices); n > 0 {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		p.appendLog(fmt.Sprintf("Detected %d serial device%s", n, plural))
	} else {
		p.appendLog("WARNING: NO SERIAL DEVICES DETECTED.")
	}

	if t.BossacPath != "" && t.TycmdPath != "" && len(p.devices) > 0 {
		p.appendLog("\nREADY TO LOAD!")
	} else {
		p.appendLog("\nNOT READY TO LOAD!")
	}
}

func (p *LoadPage) resetLog() {
	p.output.Reset()
	p.appendLog(fmt.Sprintf("fwload v%s", app.Version))
}

func (p *LoadPage) appendLog(line string) {
	p.output.WriteString(line)
	p.output.WriteString("\n")
	p.viewport.SetContent(p.output.String())
	p.viewport.GotoBottom()
}

func (p *LoadPage) showVerdict(ok bool, body string) {
	p.verdictOK = ok
	p.verdict = body
}

func (p *LoadPage) View() string {
	if p.verdict != "" {
		title := "EPIC FAIL"
		if p.verdictOK {
			title = "GREAT SUCCESS!"
		}
		return ui.Modal(title, p.verdict+"\n\n"+ui.DimStyle.Render("press any key"), p.width, p.height, p.verdictOK)
	}

	if p.picker != nil {
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, p.picker.View())
	}

	var sel strings.Builder
	values := [fieldCount]string{p.fwName, p.version, p.devLabel}
	for i, label := range fieldLabels {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}
		value := values[i]
		if value == "" {
			value = ui.DimStyle.Render("(none)")
		}
		sel.WriteString(fmt.Sprintf("%s%-10s %s\n", cursor, label, value))
	}
	if p.running() {
		sel.WriteString("\n" + ui.WarningStyle.Render(fmt.Sprintf("LOADING... step %d of %d",
			p.run.Index()+1, len(p.run.Commands()))))
	}

	var b strings.Builder
	b.WriteString(ui.Panel("Load", sel.String(), p.width, 0, false))
	b.WriteString("\n")
	b.WriteString(ui.Panel("Log", p.viewport.View(), p.width, 0, false))
	return b.String()
}

func (p *LoadPage) Name() string { return "Load" }

func (p *LoadPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "change")),
		key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear log")),
	}
}

func (p *LoadPage) InputCaptured() bool {
	return p.picker != nil || p.verdict != ""
}

func (p *LoadPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	vpHeight := h - 12
	if vpHeight < 3 {
		vpHeight = 3
	}
	p.viewport.Width = w - 4
	p.viewport.Height = vpHeight
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
