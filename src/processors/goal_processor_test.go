package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

func newGoal(current, target int64, deadline string) model.Goal {
	return model.Goal{
		Title:         "Dana Darurat",
		TargetAmount:  decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Deadline:      deadline,
		Category:      "Tabungan",
		Priority:      model.PriorityHigh,
	}
}

func TestGoalProgress(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	processor := NewGoalProcessor()

	cases := []struct {
		name     string
		current  int64
		target   int64
		want     float64
	}{
		{"zero progress", 0, 1000000, 0},
		{"half way", 500000, 1000000, 50},
		{"complete", 1000000, 1000000, 100},
		{"over target clamps to 100", 1500000, 1000000, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := processor.Evaluate(newGoal(tc.current, tc.target, "2024-12-31"), now)
			if report.ProgressPercentage != tc.want {
				t.Fatalf("got %v, want %v", report.ProgressPercentage, tc.want)
			}
		})
	}
}

func TestGoalProgressMonotonicInCurrentAmount(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	processor := NewGoalProcessor()

	previous := -1.0
	for _, current := range []int64{0, 100000, 500000, 999999, 1000000, 2000000} {
		report := processor.Evaluate(newGoal(current, 1000000, "2024-12-31"), now)
		if report.ProgressPercentage < previous {
			t.Fatalf("progress decreased: %v after %v (current=%d)", report.ProgressPercentage, previous, current)
		}
		if report.ProgressPercentage < 0 || report.ProgressPercentage > 100 {
			t.Fatalf("progress out of [0,100]: %v", report.ProgressPercentage)
		}
		previous = report.ProgressPercentage
	}
}

func TestGoalProgressZeroTargetGuard(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	report := NewGoalProcessor().Evaluate(newGoal(500000, 0, "2024-12-31"), now)
	if report.ProgressPercentage != 0 {
		t.Fatalf("zero target: got %v, want 0", report.ProgressPercentage)
	}
}

func TestGoalDaysRemaining(t *testing.T) {
	now := time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)
	processor := NewGoalProcessor()

	cases := []struct {
		name        string
		deadline    string
		wantDays    int
		wantOverdue bool
	}{
		{"deadline today", "2024-03-15", 0, false},
		{"deadline tomorrow", "2024-03-16", 1, false},
		{"ten days out", "2024-03-25", 10, false},
		{"yesterday is overdue", "2024-03-14", -1, true},
		{"well past", "2024-03-01", -14, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := processor.Evaluate(newGoal(0, 1000000, tc.deadline), now)
			if report.DaysRemaining != tc.wantDays {
				t.Fatalf("days remaining: got %d, want %d", report.DaysRemaining, tc.wantDays)
			}
			if report.IsOverdue != tc.wantOverdue {
				t.Fatalf("overdue: got %v, want %v", report.IsOverdue, tc.wantOverdue)
			}
		})
	}
}
