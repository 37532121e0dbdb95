package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	pickItem  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pickDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	pickHot   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
)

// Picker is a menu for choosing one of a set of named items, such as scene
// presets. Read Chosen after the program exits.
type Picker struct {
	title   string
	items   []string
	notes   map[string]string
	cursor  int
	chosen  string
	aborted bool
}

func NewPicker(title string, items []string, notes map[string]string) Picker {
	return Picker{title: title, items: items, notes: notes}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		p.aborted = true
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.items) > 0 {
			p.chosen = p.items[p.cursor]
		}
		return p, tea.Quit
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder
	b.WriteString(pickTitle.Render(p.title) + "\n\n")
	for i, item := range p.items {
		line := fmt.Sprintf("%-22s %s", item, pickDim.Render(p.notes[item]))
		if i == p.cursor {
			b.WriteString(pickHot.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + pickItem.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + pickDim.Render("↑↓ select  enter run  q quit"))
	return b.String()
}

// Chosen returns the selected item, or false if the menu was dismissed.
func (p Picker) Chosen() (string, bool) {
	return p.chosen, !p.aborted && p.chosen != ""
}
