package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/logger"
)

type DebtType string

const (
	DebtOwed       DebtType = "debt"       // money the user owes
	DebtReceivable DebtType = "receivable" // money owed to the user
)

func (t DebtType) IsValid() bool {
	return t == DebtOwed || t == DebtReceivable
}

type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPartial DebtStatus = "partial"
	DebtPaid    DebtStatus = "paid"
)

// Debt carries persisted ledger state: remaining_amount and status are mutated
// only by the payment-application path in the debt service. Status transitions
// are pending -> partial -> paid and never revert.
type Debt struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"-"`
	CounterpartyName string          `json:"counterparty_name"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Description      string          `json:"description"`
	DueDate          string          `json:"due_date,omitempty"` // YYYY-MM-DD, optional
	Status           DebtStatus      `json:"status"`
	Type             DebtType        `json:"type"`
	InterestRate     decimal.Decimal `json:"interest_rate"` // percent per year, informational
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DebtPayment is an immutable audit trail entry; rows are only ever inserted.
type DebtPayment struct {
	ID          int64           `json:"id"`
	DebtID      int64           `json:"debt_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"` // YYYY-MM-DD
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

const debtColumns = `id, user_id, counterparty_name, amount, remaining_amount, description,
	due_date, status, type, interest_rate, created_at, updated_at`

func (d *Debt) CreateDebt(db *sql.DB) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.RemainingAmount = d.Amount
	d.Status = DebtPending

	query := `
	INSERT INTO debts (user_id, counterparty_name, amount, remaining_amount, description,
		due_date, status, type, interest_rate, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		d.UserID, d.CounterpartyName, d.Amount.String(), d.RemainingAmount.String(),
		d.Description, nullIfEmpty(d.DueDate), string(d.Status), string(d.Type),
		d.InterestRate.String(), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func scanDebt(scanner interface {
	Scan(dest ...interface{}) error
}) (*Debt, error) {
	var d Debt
	var amountStr, remainingStr, interestStr string
	var dueDate sql.NullString
	err := scanner.Scan(
		&d.ID, &d.UserID, &d.CounterpartyName, &amountStr, &remainingStr,
		&d.Description, &dueDate, &d.Status, &d.Type, &interestStr,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		logger.L.Warn("Malformed stored amount, treating as zero", "debtID", d.ID, "field", "amount", "value", amountStr)
		d.Amount = decimal.Zero
	}
	d.RemainingAmount, err = decimal.NewFromString(remainingStr)
	if err != nil {
		logger.L.Warn("Malformed stored amount, treating as zero", "debtID", d.ID, "field", "remaining_amount", "value", remainingStr)
		d.RemainingAmount = decimal.Zero
	}
	d.InterestRate, err = decimal.NewFromString(interestStr)
	if err != nil {
		logger.L.Warn("Malformed stored amount, treating as zero", "debtID", d.ID, "field", "interest_rate", "value", interestStr)
		d.InterestRate = decimal.Zero
	}
	d.DueDate = dueDate.String
	return &d, nil
}

func ListDebts(db *sql.DB, userID int64) ([]Debt, error) {
	rows, err := db.Query(`SELECT `+debtColumns+` FROM debts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := []Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

func GetDebtByID(db *sql.DB, id, userID int64) (*Debt, error) {
	row := db.QueryRow(`SELECT `+debtColumns+` FROM debts WHERE id = ? AND user_id = ?`, id, userID)
	return scanDebt(row)
}

// UpdateDebt updates descriptive fields only. Principal, remaining amount and
// status are out of reach here; the payment path owns them.
func (d *Debt) UpdateDebt(db *sql.DB) error {
	d.UpdatedAt = time.Now()
	query := `
	UPDATE debts
	SET counterparty_name = ?, description = ?, due_date = ?, interest_rate = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		d.CounterpartyName, d.Description, nullIfEmpty(d.DueDate),
		d.InterestRate.String(), d.UpdatedAt, d.ID, d.UserID,
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

// DeleteDebt removes the debt; its payments go with it via ON DELETE CASCADE.
func DeleteDebt(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM debts WHERE id = ? AND user_id = ?`, id, userID)
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

func ListDebtPayments(db *sql.DB, debtID int64) ([]DebtPayment, error) {
	rows, err := db.Query(`
		SELECT id, debt_id, amount, payment_date, notes, created_at
		FROM debt_payments WHERE debt_id = ?
		ORDER BY payment_date DESC, id DESC`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []DebtPayment{}
	for rows.Next() {
		var p DebtPayment
		var amountStr string
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.DebtID, &amountStr, &p.PaymentDate, &notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			p.Amount = decimal.Zero
		}
		p.Notes = notes.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
