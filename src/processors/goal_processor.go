package processors

import (
	"math"
	"time"

	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
)

type goalProcessorImpl struct{}

func NewGoalProcessor() GoalProcessor {
	return &goalProcessorImpl{}
}

// Evaluate derives progress percentage and days remaining for a goal.
// Creation validation guarantees target_amount > 0, but a zero target is
// still guarded and reported as 0% rather than dividing by zero.
func (p *goalProcessorImpl) Evaluate(goal model.Goal, now time.Time) models.GoalReport {
	progress := 0.0
	if goal.TargetAmount.IsPositive() {
		progress = goal.CurrentAmount.Mul(oneHundred).Div(goal.TargetAmount).InexactFloat64()
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	daysRemaining := 0
	if deadline, err := time.ParseInLocation("2006-01-02", goal.Deadline, now.Location()); err == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		daysRemaining = int(math.Ceil(deadline.Sub(today).Hours() / 24))
	}

	return models.GoalReport{
		Goal:               goal,
		ProgressPercentage: progress,
		DaysRemaining:      daysRemaining,
		IsOverdue:          daysRemaining < 0,
	}
}
