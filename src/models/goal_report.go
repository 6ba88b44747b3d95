package models

import "github.com/username/dompetku/backend/src/model"

// GoalReport is a goal with its derived progress figures.
type GoalReport struct {
	model.Goal
	ProgressPercentage float64 `json:"progress_percentage"` // clamped to [0, 100]
	DaysRemaining      int     `json:"days_remaining"`      // negative when past the deadline
	IsOverdue          bool    `json:"is_overdue"`
}
