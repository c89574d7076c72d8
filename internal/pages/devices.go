package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seriallab/fwload/internal/app"
	"github.com/seriallab/fwload/internal/device"
	"github.com/seriallab/fwload/internal/ui"
)

// DevicesPage lists every candidate target device with its display label.
type DevicesPage struct {
	deps          *Deps
	devices       []device.Descriptor
	scanErr       error
	width, height int
}

func NewDevicesPage(deps *Deps) *DevicesPage {
	return &DevicesPage{deps: deps}
}

func (p *DevicesPage) Init() tea.Cmd { return nil }

func (p *DevicesPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p, p.deps.loadDevices()
		}

	case devicesLoadedMsg:
		p.devices = msg.devices
		p.scanErr = msg.err
		return p, nil
	}
	return p, nil
}

func (p *DevicesPage) View() string {
	var b strings.Builder

	if p.scanErr != nil {
		b.WriteString(ui.WarningStyle.Render(fmt.Sprintf("scan failed: %v", p.scanErr)))
		b.WriteString("\n\n")
	}

	if len(p.devices) == 0 {
		b.WriteString(ui.WarningStyle.Render("NO SERIAL DEVICES DETECTED."))
		b.WriteString("\n\n")
		b.WriteString(ui.DimStyle.Render("Connect a board and press r to rescan."))
	} else {
		for _, d := range p.devices {
			b.WriteString(fmt.Sprintf("%-24s %s\n",
				d.Path, ui.DimStyle.Render(d.Label)))
		}
		b.WriteString("\n")
		plural := "s"
		if len(p.devices) == 1 {
			plural = ""
		}
		b.WriteString(ui.DimStyle.Render(fmt.Sprintf("%d device%s", len(p.devices), plural)))
	}

	return ui.Panel("Devices", b.String(), p.width, 0, false)
}

func (p *DevicesPage) Name() string { return "Devices" }

func (p *DevicesPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	}
}

func (p *DevicesPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
