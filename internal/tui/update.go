package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.state == StateAddHabit {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.state = StateHabits
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			habit := models.Habit{
				ID:               uuid.New().String(),
				Name:             m.habitForm.Name,
				Frequency:        constants.Frequency(m.habitForm.Frequency),
				NotificationTime: m.habitForm.Time,
				CompletedDates:   []string{},
				CreatedAt:        time.Now(),
			}
			if habit.Frequency == constants.FrequencyCustom {
				days, err := splitDays(m.habitForm.Days)
				if err != nil {
					m.formError = err.Error()
					m.form.State = huh.StateNormal
					return m, tea.Batch(cmds...)
				}
				habit.CustomDays = days
			}

			if err := habit.Validate(); err != nil {
				m.formError = err.Error()
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}
			if err := m.store.AddHabit(habit); err != nil {
				m.formError = err.Error()
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}

			m.formError = ""
			m.reloadHabits()
			m.state = StateHabits
		case huh.StateAborted:
			m.state = StateHabits
		}
		return m, tea.Batch(cmds...)
	}

	if m.state == StateConfirmDelete {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y":
				if err := m.store.DeleteHabit(m.habitToDeleteID); err != nil {
					m.formError = err.Error()
				} else {
					m.reloadHabits()
				}
				m.habitToDeleteID = ""
				m.state = StateHabits
			case "n", "N", "esc", "q":
				m.habitToDeleteID = ""
				m.state = StateHabits
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		m.habitList.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
			if m.state == StateHabits {
				m.state = StateNotifications
			} else {
				m.state = StateHabits
			}
			return m, nil
		}

		switch m.state {
		case StateHabits:
			switch {
			case key.Matches(msg, m.keys.Add):
				m.previousState = m.state
				m.state = StateAddHabit
				m.habitForm = &habitFormModel{Frequency: "daily", Time: constants.DefaultNotificationTime}
				m.form = newHabitForm(m.habitForm)
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Delete):
				if item, ok := m.habitList.SelectedItem().(habitItem); ok {
					m.habitToDeleteID = item.habit.ID
					m.state = StateConfirmDelete
				}
				return m, nil
			case key.Matches(msg, m.keys.Mark):
				if item, ok := m.habitList.SelectedItem().(habitItem); ok {
					habit := item.habit
					habit.ToggleCompletion(time.Now().Format(constants.DateFormat))
					if err := m.store.UpdateHabit(habit); err != nil {
						m.formError = err.Error()
					} else {
						m.reloadHabits()
					}
				}
				return m, nil
			}
		case StateNotifications:
			if key.Matches(msg, m.keys.Sync) {
				habits, err := m.store.GetAllHabits()
				if err != nil {
					m.formError = err.Error()
					return m, nil
				}
				result := m.manager.SyncAll(habits)
				if result.Error != "" {
					m.formError = result.Error
				} else if result.Result != nil {
					m.formError = ""
					m.statusMessage = fmt.Sprintf("Synced: %d scheduled, %d failed",
						len(result.Result.Successful), len(result.Result.Failed))
				}
				return m, nil
			}
		}
	}

	if m.state == StateHabits {
		var cmd tea.Cmd
		m.habitList, cmd = m.habitList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func newHabitForm(data *habitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&data.Name),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", "daily"),
					huh.NewOption("Weekly", "weekly"),
					huh.NewOption("Monthly", "monthly"),
					huh.NewOption("Custom days", "custom"),
				).
				Value(&data.Frequency),
			huh.NewInput().
				Title("Custom days (comma-separated, e.g. mon,wed,fri)").
				Value(&data.Days),
			huh.NewInput().
				Title("Reminder time (HH:MM)").
				Value(&data.Time),
		),
	)
}

func splitDays(s string) ([]string, error) {
	var days []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := models.ParseWeekday(part); err != nil {
			return nil, err
		}
		days = append(days, part)
	}
	return days, nil
}
