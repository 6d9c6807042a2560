package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/workbench/internal/core/explorer"
	"github.com/hay-kot/workbench/internal/styles"
)

var (
	helpStyle     = lipgloss.NewStyle().Foreground(styles.ColorGray)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(styles.ColorBlue).PaddingLeft(1)
	openStyle     = lipgloss.NewStyle().Foreground(styles.ColorGreen).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	mutedStyle    = lipgloss.NewStyle().Foreground(styles.ColorGray)
	statusStyle   = lipgloss.NewStyle().Foreground(styles.ColorYellow).PaddingLeft(1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(styles.ColorGray).Padding(0, 1)
	focusedBorder = styles.ColorBlue
)

// View renders the TUI.
func (m Model) View() string {
	bar := m.renderActivityBar()
	panel := m.renderExplorer()

	var b strings.Builder
	b.WriteString(styles.BannerStyle.Render(styles.Banner))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, bar, " ", panel))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(" " + m.help.View(m.keys))
	return b.String()
}

func (m Model) renderPane(p pane, body string) string {
	style := paneStyle
	if m.focus == p {
		style = style.BorderForeground(focusedBorder)
	}
	return style.Render(body)
}

func (m Model) marker(p pane, i int) string {
	if m.focus == p && m.cursor[p] == i {
		return cursorStyle.Render("▌")
	}
	return " "
}

func (m Model) renderActivityBar() string {
	lines := []string{titleStyle.Render("Activity")}
	if m.activity.Len() == 0 {
		lines = append(lines, mutedStyle.Render("  (none)"))
	}
	for i, it := range m.activity.Items {
		label := it.Value.Icon + " " + it.Value.Title
		if it.Active {
			label = openStyle.Render(label)
		}
		lines = append(lines, m.marker(paneActivity, i)+" "+label)
	}
	return m.renderPane(paneActivity, strings.Join(lines, "\n"))
}

func (m Model) renderExplorer() string {
	lines := []string{titleStyle.Render("Explorer")}
	if m.explorer.Len() == 0 {
		lines = append(lines, mutedStyle.Render("  (none)"))
	}
	for i, it := range m.explorer.Items {
		arrow := "▸"
		if it.Active {
			arrow = "▾"
		}
		lines = append(lines, m.marker(paneExplorer, i)+" "+arrow+" "+it.Value.Title)
		if it.Active {
			lines = append(lines, m.sectionBody(it.Value)...)
		}
	}
	return m.renderPane(paneExplorer, strings.Join(lines, "\n"))
}

func (m Model) sectionBody(s explorer.Section) []string {
	if s.ID != ProjectsSection {
		return []string{mutedStyle.Render("    nothing here yet")}
	}
	if len(m.projects.Projects) == 0 {
		return []string{mutedStyle.Render("    no projects")}
	}
	lines := make([]string, 0, len(m.projects.Projects))
	for _, p := range m.projects.Projects {
		lines = append(lines, "    "+p.Name)
	}
	return lines
}
