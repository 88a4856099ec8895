// This file implements the Strategy Pattern for notification schedules.
// Each notification type owns a window; a notification of that type is
// raised at most once per window.

package services

import (
	"fmt"
	"time"

	"jard/internal/core"
)

// WindowStrategy returns the start of the schedule window containing now.
type WindowStrategy interface {
	WindowStart(now time.Time) time.Time
}

// DailyWindow starts at midnight of the current day.
type DailyWindow struct{}

func (DailyWindow) WindowStart(now time.Time) time.Time {
	return startOfDay(now)
}

// RollingWeekWindow covers the last seven calendar days, today included.
type RollingWeekWindow struct{}

func (RollingWeekWindow) WindowStart(now time.Time) time.Time {
	return startOfDay(now).AddDate(0, 0, -6)
}

// MonthlyWindow starts on the first day of the current month.
type MonthlyWindow struct{}

func (MonthlyWindow) WindowStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var windowStrategies = map[string]WindowStrategy{
	core.NotificationTrend:         DailyWindow{},
	core.NotificationDigestWeekly:  RollingWeekWindow{},
	core.NotificationDigestMonthly: MonthlyWindow{},
}

// GetWindowStrategy returns the schedule for a notification type.
func GetWindowStrategy(notificationType string) (WindowStrategy, error) {
	s, ok := windowStrategies[notificationType]
	if !ok {
		return nil, fmt.Errorf("unknown notification type: %s", notificationType)
	}
	return s, nil
}

// RegisterWindowStrategy adds or replaces the schedule for a type.
func RegisterWindowStrategy(notificationType string, s WindowStrategy) {
	windowStrategies[notificationType] = s
}
