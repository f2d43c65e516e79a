package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thebtf/catwalk/internal/walker"
	"github.com/thebtf/catwalk/pkg/models"
)

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🐈 Cat walk tracker"))
	b.WriteString("\n\n")

	if m.mode == modeAdd {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(dimStyle.Render("Press a to add a new cat."))
	}
	b.WriteString("\n")

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(flashStyles[m.flashLevel].Render(m.flash))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(flashStyles[levelError].Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Walk status"))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.renderCats()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Walk history"))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.renderHistory()))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderCats() string {
	if len(m.cats) == 0 {
		return dimStyle.Render(walker.MsgNoCats)
	}

	lines := make([]string, 0, len(m.cats))
	for i, c := range m.cats {
		box := "[ ]"
		style := idleStyle
		if c.State() == models.StateWalking {
			box = "[x]"
			style = walkingStyle
		}
		cursor := "  "
		label := walker.StateLabel(c)
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
			label = selectedStyle.Render(label)
		}
		lines = append(lines, cursor+style.Render(box)+" "+label)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render(walker.MsgNoWalks)
	}

	entries := m.history
	limit := m.historyRows()
	hidden := 0
	if limit > 0 && len(entries) > limit {
		hidden = len(entries) - limit
		entries = entries[:limit]
	}

	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		line := walker.FormatHistoryLine(e)
		if e.Active() {
			line = activeWalkStyle.Render(line) + dimStyle.Render(" ("+walker.FormatElapsed(e.Duration(m.loaded))+")")
		}
		lines = append(lines, line)
	}
	if hidden > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("… %d older", hidden)))
	}
	return strings.Join(lines, "\n")
}

// historyRows is how many history lines fit below the cat list, or 0 when
// the terminal size is unknown.
func (m Model) historyRows() int {
	if m.height == 0 {
		return 0
	}
	catRows := max(len(m.cats), 1)
	used := lipgloss.Height(titleStyle.Render("x")) + catRows + 14
	return max(m.height-used, 3)
}
