package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateHabits:
		content = docStyle.Render(m.habitList.View())
	case StateNotifications:
		content = m.viewNotifications()
	case StateAddHabit:
		content = m.form.View()
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var banner string
	if m.formError != "" {
		banner = errorStyle.Render("⚠ " + m.formError)
	} else if m.statusMessage != "" {
		banner = statusStyle.Render(m.statusMessage)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	tabTitles := []string{"Habits", "Notifications"}
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewNotifications() string {
	lines := []string{
		fmt.Sprintf("Permission: %s", m.manager.Status()),
		fmt.Sprintf("Habits with reminders: %d", m.manager.TotalScheduled()),
	}
	if result := m.manager.LastSyncResult(); result != nil {
		lines = append(lines, fmt.Sprintf("Last sync: %d scheduled, %d failed",
			len(result.Successful), len(result.Failed)))
		for _, failed := range result.Failed {
			lines = append(lines, fmt.Sprintf("  failed %s: %s", failed.HabitID, failed.Error))
		}
	}
	lines = append(lines, "", "[s] sync reminders")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this habit?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
