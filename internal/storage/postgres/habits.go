package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

func (s *Store) AddHabit(habit models.Habit) error {
	customDays, completedDates, err := encodeHabitLists(habit)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (id, name, frequency, custom_days, notification_time,
		                    completed_dates, streak, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		habit.ID, habit.Name, string(habit.Frequency), customDays,
		habit.NotificationTime, completedDates, habit.Streak, habit.CreatedAt)
	return err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, frequency, custom_days, notification_time,
		       completed_dates, streak, created_at
		FROM habits WHERE id = $1`, id)
	return scanHabit(row)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, frequency, custom_days, notification_time,
		       completed_dates, streak, created_at
		FROM habits WHERE name = $1`, name)
	return scanHabit(row)
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT id, name, frequency, custom_days, notification_time,
		       completed_dates, streak, created_at
		FROM habits ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	customDays, completedDates, err := encodeHabitLists(habit)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE habits SET name = $1, frequency = $2, custom_days = $3,
		       notification_time = $4, completed_dates = $5, streak = $6
		WHERE id = $7`,
		habit.Name, string(habit.Frequency), customDays,
		habit.NotificationTime, completedDates, habit.Streak, habit.ID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit %s not found", habit.ID)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	_, err := s.db.Exec(`DELETE FROM habits WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, customDays, completedDates string
	var createdAt time.Time

	err := row.Scan(&h.ID, &h.Name, &frequency, &customDays,
		&h.NotificationTime, &completedDates, &h.Streak, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.Frequency(frequency)
	if err := json.Unmarshal([]byte(customDays), &h.CustomDays); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse custom_days: %w", err)
	}
	if err := json.Unmarshal([]byte(completedDates), &h.CompletedDates); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse completed_dates: %w", err)
	}
	h.CreatedAt = createdAt

	return h, nil
}

func encodeHabitLists(habit models.Habit) (customDays, completedDates string, err error) {
	days := habit.CustomDays
	if days == nil {
		days = []string{}
	}
	dates := habit.CompletedDates
	if dates == nil {
		dates = []string{}
	}

	d, err := json.Marshal(days)
	if err != nil {
		return "", "", err
	}
	c, err := json.Marshal(dates)
	if err != nil {
		return "", "", err
	}
	return string(d), string(c), nil
}
