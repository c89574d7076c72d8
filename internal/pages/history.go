package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seriallab/fwload/internal/app"
	"github.com/seriallab/fwload/internal/store"
	"github.com/seriallab/fwload/internal/ui"
)

const maxHistoryRows = 15

// HistoryPage shows past flashing runs, newest first.
type HistoryPage struct {
	deps          *Deps
	records       []store.FlashRecord
	loadErr       error
	width, height int
}

type historyLoadedMsg struct {
	records []store.FlashRecord
	err     error
}

func NewHistoryPage(deps *Deps) *HistoryPage {
	return &HistoryPage{deps: deps}
}

func (p *HistoryPage) loadHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := p.deps.Store.Flashes()
		return historyLoadedMsg{records: records, err: err}
	}
}

func (p *HistoryPage) Init() tea.Cmd {
	return p.loadHistory()
}

func (p *HistoryPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p, p.loadHistory()
		}

	case historyLoadedMsg:
		p.records = msg.records
		p.loadErr = msg.err
		return p, nil
	}
	return p, nil
}

func (p *HistoryPage) View() string {
	var b strings.Builder

	if p.loadErr != nil {
		b.WriteString(ui.WarningStyle.Render(fmt.Sprintf("history unavailable: %v", p.loadErr)))
		b.WriteString("\n")
	}

	if len(p.records) == 0 {
		b.WriteString(ui.DimStyle.Render("No flashing runs recorded yet."))
	} else {
		shown := p.records
		if len(shown) > maxHistoryRows {
			shown = shown[len(shown)-maxHistoryRows:]
		}
		// newest first
		for i := len(shown) - 1; i >= 0; i-- {
			r := shown[i]
			badge := ui.ErrorBadge("FAIL")
			if r.Success {
				badge = ui.SuccessBadge("OK")
			}
			b.WriteString(fmt.Sprintf("%s  %s  %s %s -> %s  %s\n",
				badge,
				r.Timestamp.Format("2006-01-02 15:04"),
				r.Firmware, r.Version, r.Device,
				ui.DimStyle.Render(r.Duration),
			))
		}
	}

	return ui.Panel("History", b.String(), p.width, 0, false)
}

func (p *HistoryPage) Name() string { return "History" }

func (p *HistoryPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (p *HistoryPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
