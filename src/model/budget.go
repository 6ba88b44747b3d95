package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetMonthly BudgetPeriod = "monthly"
	BudgetYearly  BudgetPeriod = "yearly"
)

func (p BudgetPeriod) IsValid() bool {
	return p == BudgetMonthly || p == BudgetYearly
}

// ErrDuplicateBudget is returned when a budget already exists for the same
// (category, period) pair of the user.
var ErrDuplicateBudget = errors.New("a budget for this category and period already exists")

// Budget is a spending ceiling for a category. Spent/remaining/percentage are
// never stored; they are recomputed over the transaction collection on read.
type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"-"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    BudgetPeriod    `json:"period"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const budgetColumns = `id, user_id, category, amount, period, created_at, updated_at`

// BudgetExists reports whether the user already has a budget for the
// (category, period) pair, excluding the row with excludeID (0 for none).
func BudgetExists(db *sql.DB, userID int64, category string, period BudgetPeriod, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM budgets WHERE user_id = ? AND category = ? AND period = ? AND id != ?`,
		userID, category, string(period), excludeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (b *Budget) CreateBudget(db *sql.DB) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
	INSERT INTO budgets (user_id, category, amount, period, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(b.UserID, b.Category, b.Amount.String(), string(b.Period), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func scanBudget(scanner interface {
	Scan(dest ...interface{}) error
}) (*Budget, error) {
	var b Budget
	var amountStr string
	err := scanner.Scan(&b.ID, &b.UserID, &b.Category, &amountStr, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		b.Amount = decimal.Zero
	}
	return &b, nil
}

func ListBudgets(db *sql.DB, userID int64) ([]Budget, error) {
	rows, err := db.Query(`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY category, period`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func GetBudgetByID(db *sql.DB, id, userID int64) (*Budget, error) {
	row := db.QueryRow(`SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	return scanBudget(row)
}

func (b *Budget) UpdateBudget(db *sql.DB) error {
	b.UpdatedAt = time.Now()
	query := `
	UPDATE budgets SET category = ?, amount = ?, period = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(b.Category, b.Amount.String(), string(b.Period), b.UpdatedAt, b.ID, b.UserID)
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

func DeleteBudget(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
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
