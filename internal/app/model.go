package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seriallab/fwload/internal/ui"
)

type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusContent
)

// ToolInfo feeds the top bar with the resolved loader tool versions.
type ToolInfo struct {
	FirmwareDir   string
	BossacVersion string
	TycmdVersion  string
}

type Model struct {
	pages      map[PageID]Page
	activePage PageID
	focus      FocusArea
	width      int
	height     int
	tools      ToolInfo
}

func New(pages map[PageID]Page, tools ToolInfo) Model {
	return Model{
		pages: pages,
		tools: tools,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.pages {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentWidth := m.width - sidebarWidth
		contentHeight := m.height - 2 - 1 // status bar + tool bar
		for _, p := range m.pages {
			p.SetSize(contentWidth, contentHeight)
		}
		return m, nil

	case tea.KeyMsg:
		// When the active page captures input (text editing, modal
		// overlay), forward all keys directly — only ctrl+c still quits.
		if m.focus == FocusContent {
			if ic, ok := m.pages[m.activePage].(InputCapturer); ok && ic.InputCaptured() {
				if msg.String() == "ctrl+c" {
					return m, tea.Quit
				}
				page := m.pages[m.activePage]
				newPage, cmd := page.Update(msg)
				m.pages[m.activePage] = newPage
				return m, cmd
			}
		}

		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.ToggleFocus):
			if m.focus == FocusSidebar {
				m.focus = FocusContent
				return m, nil
			}
			m.focus = FocusSidebar
			return m, nil
		}

		if m.focus == FocusSidebar {
			switch msg.String() {
			case "up":
				m.prevPage()
				return m, nil
			case "down":
				m.nextPage()
				return m, nil
			case "enter", "right":
				m.focus = FocusContent
				return m, nil
			}
			return m, nil
		}

		if msg.String() == "left" {
			m.focus = FocusSidebar
			return m, nil
		}

		page := m.pages[m.activePage]
		newPage, cmd := page.Update(msg)
		m.pages[m.activePage] = newPage
		return m, cmd
	}

	// Non-key messages (command results, rescans, ticks) go to all pages
	// so responses reach whichever page initiated the command.
	var cmds []tea.Cmd
	for id, page := range m.pages {
		newPage, cmd := page.Update(msg)
		m.pages[id] = newPage
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentWidth := m.width - sidebarWidth
	contentHeight := m.height - 2 - 1

	page := m.pages[m.activePage]

	toolBar := renderToolBar(m.tools.FirmwareDir, m.tools.BossacVersion, m.tools.TycmdVersion, m.width)
	sidebar := renderSidebar(PageOrder, m.activePage, m.pages, contentHeight, m.focus == FocusSidebar)
	content := ui.ContentStyle.
		Width(contentWidth).
		Height(contentHeight).
		Render(page.View())

	statusBar := renderStatusBar(page.ShortHelp(), m.width, m.focus)

	return renderLayout(toolBar, sidebar, content, statusBar)
}

func (m *Model) nextPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i+1)%len(PageOrder)]
			return
		}
	}
}

func (m *Model) prevPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i-1+len(PageOrder))%len(PageOrder)]
			return
		}
	}
}
