package pages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seriallab/fwload/internal/config"
	"github.com/seriallab/fwload/internal/device"
	"github.com/seriallab/fwload/internal/firmware"
	"github.com/seriallab/fwload/internal/loader"
	"github.com/seriallab/fwload/internal/runner"
	"github.com/seriallab/fwload/internal/store"
)

// Deps bundles the collaborators the pages share. Everything here is
// injectable so page tests run without hardware or subprocesses.
type Deps struct {
	FirmwareDir string
	Goos        string
	Root        string // config and store root, normally the working directory
	Tools       loader.Tools
	Enumerator  device.Enumerator
	Shell       runner.Shell
	Config      *config.Config
	Store       *store.Store
}

// catalogLoadedMsg carries a fresh firmware catalog to all pages.
type catalogLoadedMsg struct {
	catalog *firmware.Catalog
	err     error
}

// devicesLoadedMsg carries a fresh device listing to all pages.
type devicesLoadedMsg struct {
	devices []device.Descriptor
	err     error
}

func (d *Deps) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		cat, err := firmware.Scan(d.FirmwareDir)
		return catalogLoadedMsg{catalog: cat, err: err}
	}
}

func (d *Deps) loadDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := d.Enumerator.List()
		return devicesLoadedMsg{devices: devices, err: err}
	}
}
