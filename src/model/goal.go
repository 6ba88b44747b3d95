package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

func (p GoalPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Goal is a savings target with a deadline. current_amount <= target_amount is
// enforced at creation only; later manual updates may push it past the target,
// which the progress calculation clamps at 100%.
type Goal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"-"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline"` // YYYY-MM-DD
	Category      string          `json:"category"`
	Priority      GoalPriority    `json:"priority"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

const goalColumns = `id, user_id, title, target_amount, current_amount, deadline, category, priority, created_at, updated_at`

func (g *Goal) CreateGoal(db *sql.DB) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	query := `
	INSERT INTO goals (user_id, title, target_amount, current_amount, deadline, category, priority, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		g.UserID, g.Title, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline, g.Category, string(g.Priority), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func scanGoal(scanner interface {
	Scan(dest ...interface{}) error
}) (*Goal, error) {
	var g Goal
	var targetStr, currentStr string
	err := scanner.Scan(
		&g.ID, &g.UserID, &g.Title, &targetStr, &currentStr,
		&g.Deadline, &g.Category, &g.Priority, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.TargetAmount, err = decimal.NewFromString(targetStr)
	if err != nil {
		g.TargetAmount = decimal.Zero
	}
	g.CurrentAmount, err = decimal.NewFromString(currentStr)
	if err != nil {
		g.CurrentAmount = decimal.Zero
	}
	return &g, nil
}

func ListGoals(db *sql.DB, userID int64) ([]Goal, error) {
	rows, err := db.Query(`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY deadline, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func GetGoalByID(db *sql.DB, id, userID int64) (*Goal, error) {
	row := db.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

func (g *Goal) UpdateGoal(db *sql.DB) error {
	g.UpdatedAt = time.Now()
	query := `
	UPDATE goals
	SET title = ?, target_amount = ?, current_amount = ?, deadline = ?, category = ?, priority = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		g.Title, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline, g.Category, string(g.Priority), g.UpdatedAt, g.ID, g.UserID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteGoal(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
