package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/seriallab/fwload/internal/ui"
)

const sidebarWidth = 22 // 20 content + 2 border/padding

func renderToolBar(firmwareDir, bossacVersion, tycmdVersion string, width int) string {
	describe := func(name, version string) string {
		if version == "" {
			return ui.WarningStyle.Render(name + ": missing")
		}
		return fmt.Sprintf("%s %s", name, version)
	}
	content := fmt.Sprintf("Firmware: %s  %s  %s",
		firmwareDir,
		describe("bossac", bossacVersion),
		describe("tycmd", tycmdVersion),
	)
	return ui.StatusBarStyle.Width(width).Render(content)
}

func renderSidebar(pages []PageID, active PageID, pageMap map[PageID]Page, height int, focused bool) string {
	var b strings.Builder
	title := ui.TitleStyle.Render("fwload")
	if focused {
		title = ui.BoldStyle.Render("fwload [FOCUSED]")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, id := range pages {
		p := pageMap[id]
		if id == active {
			b.WriteString(ui.SidebarActiveStyle.Render("▸ " + p.Name()))
		} else {
			b.WriteString(ui.SidebarItemStyle.Render("  " + p.Name()))
		}
		b.WriteString("\n")
	}

	style := ui.SidebarStyle.Height(height)
	if focused {
		style = style.BorderForeground(ui.Primary)
	}
	return style.Render(b.String())
}

func renderStatusBar(pageHelp []key.Binding, width int, focus FocusArea) string {
	var parts []string

	if focus == FocusSidebar {
		parts = append(parts,
			ui.StatusKey("↑/↓", "navigate"),
			ui.StatusKey("enter", "select"),
		)
	} else {
		for _, kb := range pageHelp {
			if kb.Enabled() {
				parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	parts = append(parts,
		ui.StatusKey("tab", "focus"),
		ui.StatusKey("?", "help"),
		ui.StatusKey("q", "quit"),
	)

	line := strings.Join(parts, "  ")
	return ui.StatusBarStyle.Width(width).Render(line)
}

func renderLayout(toolBar, sidebar, content, statusBar string) string {
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, toolBar, main, statusBar)
}
