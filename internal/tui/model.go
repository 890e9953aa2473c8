package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/notify"
	"github.com/coderozzy/daily-habits-final/internal/storage"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateNotifications
	StateAddHabit
	StateConfirmDelete
)

type habitItem struct {
	habit  models.Habit
	marked bool
}

func (i habitItem) Title() string {
	if i.marked {
		return "✓ " + i.habit.Name
	}
	return "○ " + i.habit.Name
}

func (i habitItem) Description() string {
	desc := string(i.habit.Frequency) + " at " + i.habit.NotificationTime
	if i.habit.Streak > 0 {
		desc += " - streak " + strconv.Itoa(i.habit.Streak)
	}
	return desc
}

func (i habitItem) FilterValue() string { return i.habit.Name }

type habitFormModel struct {
	Name      string
	Frequency string
	Days      string
	Time      string
}

type Model struct {
	store   storage.Provider
	manager *notify.Manager

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	habitList     list.Model

	form      *huh.Form
	habitForm *habitFormModel

	habitToDeleteID string
	formError       string
	statusMessage   string
	quitting        bool
	width           int
	height          int
}

func NewModel(store storage.Provider, manager *notify.Manager) Model {
	habits, err := store.GetAllHabits()
	if err != nil {
		habits = []models.Habit{}
	}

	l := list.New(habitItems(habits), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Habits"
	l.SetShowHelp(false)

	return Model{
		store:     store,
		manager:   manager,
		state:     StateHabits,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: l,
	}
}

func habitItems(habits []models.Habit) []list.Item {
	today := time.Now().Format(constants.DateFormat)
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = habitItem{habit: h, marked: h.IsCompletedOn(today)}
	}
	return items
}

// reloadHabits refreshes the list from storage and notifies the manager.
func (m *Model) reloadHabits() {
	habits, err := m.store.GetAllHabits()
	if err != nil {
		m.formError = err.Error()
		return
	}
	m.habitList.SetItems(habitItems(habits))
	m.manager.OnHabitsChanged(habits)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateHabits:
		keys = append(keys, m.keys.Add, m.keys.Mark, m.keys.Delete)
	case StateNotifications:
		keys = append(keys, m.keys.Sync)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateHabits:
		actions = []key.Binding{m.keys.Add, m.keys.Mark, m.keys.Delete}
	case StateNotifications:
		actions = []key.Binding{m.keys.Sync}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
