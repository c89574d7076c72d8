package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Version is the fwload release version, shown in the log header and
// by the CLI --version flag.
const Version = "1.1.0"

// PageID identifies each page in the application.
type PageID int

const (
	LoadPage PageID = iota
	DevicesPage
	HistoryPage
	SettingsPage
)

var PageOrder = []PageID{
	LoadPage,
	DevicesPage,
	HistoryPage,
	SettingsPage,
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs or
// overlays. When InputCaptured returns true, the app forwards all keys
// directly to the page instead of processing shortcuts like q, ?, left.
type InputCapturer interface {
	InputCaptured() bool
}
