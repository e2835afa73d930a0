package domain

import (
	"errors"
	"time"
)

type Period string

const (
	PeriodToday Period = "today"
	PeriodAll   Period = "all"
)

var ErrUnknownPeriod = errors.New("period must be today or all")

// ParsePeriod defaults to the all-time ranking when raw is empty.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodToday:
		return PeriodToday, nil
	}
	return "", ErrUnknownPeriod
}

// StartOfDay is the UTC midnight that opens the daily ranking containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ItemStat struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

type TopItems struct {
	RestaurantID string     `json:"restaurant_id"`
	Period       Period     `json:"period"`
	Source       string     `json:"source"`
	Items        []ItemStat `json:"items"`
}

// Statuses lists order statuses in lifecycle order.
var Statuses = []string{"placed", "preparing", "ready", "completed"}

type StatusSummary struct {
	RestaurantID string         `json:"restaurant_id"`
	Counts       map[string]int `json:"counts"`
	Total        int            `json:"total"`
}
