// Package orderwindow определяет дни недели, в которые принимаются заказы.
package orderwindow

import (
	"strings"
	"time"
)

// Status: результат проверки окна заказов на текущий момент.
type Status struct {
	Open        bool   `json:"-"`
	CurrentDay  string `json:"currentDay"`
	AllowedDays []int  `json:"allowedDays"`
	Message     string `json:"message"`
}

// Window хранит разрешённые дни недели (0 означает воскресенье) и часовой пояс.
type Window struct {
	days []int
	loc  *time.Location
	now  func() time.Time
}

// New создаёт окно заказов. При nil loc используется time.Local.
func New(days []int, loc *time.Location) *Window {
	if loc == nil {
		loc = time.Local
	}
	d := make([]int, len(days))
	copy(d, days)
	return &Window{days: d, loc: loc, now: time.Now}
}

// WithClock подменяет источник текущего времени.
func (w *Window) WithClock(now func() time.Time) *Window {
	w.now = now
	return w
}

// Check сообщает, открыт ли приём заказов сейчас.
func (w *Window) Check() Status {
	today := w.now().In(w.loc).Weekday()
	open := false
	names := make([]string, 0, len(w.days))
	for _, d := range w.days {
		if time.Weekday(d) == today {
			open = true
		}
		names = append(names, time.Weekday(d).String())
	}
	return Status{
		Open:        open,
		CurrentDay:  today.String(),
		AllowedDays: w.days,
		Message:     "Orders are only accepted on: " + strings.Join(names, ", "),
	}
}
