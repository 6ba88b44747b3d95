package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/logger"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEWallet      PaymentMethod = "e_wallet"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentEWallet:
		return true
	}
	return false
}

type RecurringFrequency string

const (
	RecurringDaily   RecurringFrequency = "daily"
	RecurringWeekly  RecurringFrequency = "weekly"
	RecurringMonthly RecurringFrequency = "monthly"
	RecurringYearly  RecurringFrequency = "yearly"
)

func (f RecurringFrequency) IsValid() bool {
	switch f {
	case RecurringDaily, RecurringWeekly, RecurringMonthly, RecurringYearly:
		return true
	}
	return false
}

// Transaction is a single income or expense record. Dates are calendar dates
// stored as "YYYY-MM-DD" strings, which compare correctly lexicographically.
type Transaction struct {
	ID                 int64              `json:"id"`
	UserID             int64              `json:"-"`
	Amount             decimal.Decimal    `json:"amount"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	Subcategory        string             `json:"subcategory,omitempty"`
	Type               TransactionType    `json:"type"`
	Date               string             `json:"date"`
	PaymentMethod      PaymentMethod      `json:"payment_method"`
	Tags               []string           `json:"tags"`
	Notes              string             `json:"notes,omitempty"`
	Location           string             `json:"location,omitempty"`
	IsRecurring        bool               `json:"is_recurring"`
	RecurringFrequency RecurringFrequency `json:"recurring_frequency,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// TransactionFilter narrows a transaction listing. Zero values mean "no filter".
// DateFrom and DateTo are inclusive "YYYY-MM-DD" bounds.
type TransactionFilter struct {
	Type     TransactionType
	Category string
	DateFrom string
	DateTo   string
}

const transactionColumns = `id, user_id, amount, description, category, subcategory, type, date,
	payment_method, tags, notes, location, is_recurring, recurring_frequency, created_at, updated_at`

func (t *Transaction) CreateTransaction(db *sql.DB) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []string{}
	}
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO transactions (user_id, amount, description, category, subcategory, type, date,
		payment_method, tags, notes, location, is_recurring, recurring_frequency, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		t.UserID, t.Amount.String(), t.Description, t.Category, nullIfEmpty(t.Subcategory),
		string(t.Type), t.Date, string(t.PaymentMethod), string(tagsJSON),
		nullIfEmpty(t.Notes), nullIfEmpty(t.Location),
		t.IsRecurring, nullIfEmpty(string(t.RecurringFrequency)),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func scanTransaction(scanner interface {
	Scan(dest ...interface{}) error
}) (*Transaction, error) {
	var t Transaction
	var amountStr, tagsJSON string
	var subcategory, notes, location, recurringFrequency sql.NullString

	err := scanner.Scan(
		&t.ID, &t.UserID, &amountStr, &t.Description, &t.Category, &subcategory,
		&t.Type, &t.Date, &t.PaymentMethod, &tagsJSON, &notes, &location,
		&t.IsRecurring, &recurringFrequency, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		// Malformed amount rows are kept visible rather than failing the whole
		// listing; the aggregation layer treats them as zero.
		logger.L.Warn("Malformed stored amount, treating as zero", "transactionID", t.ID, "amount", amountStr)
		t.Amount = decimal.Zero
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil || t.Tags == nil {
		t.Tags = []string{}
	}
	t.Subcategory = subcategory.String
	t.Notes = notes.String
	t.Location = location.String
	t.RecurringFrequency = RecurringFrequency(recurringFrequency.String)
	return &t, nil
}

// ListTransactions returns the user's transactions, newest first, optionally
// narrowed by the filter.
func ListTransactions(db *sql.DB, userID int64, filter TransactionFilter) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += ` AND date <= ?`
		args = append(args, filter.DateTo)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func GetTransactionByID(db *sql.DB, id, userID int64) (*Transaction, error) {
	row := db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

func (t *Transaction) UpdateTransaction(db *sql.DB) error {
	t.UpdatedAt = time.Now()
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}

	query := `
	UPDATE transactions
	SET amount = ?, description = ?, category = ?, subcategory = ?, type = ?, date = ?,
		payment_method = ?, tags = ?, notes = ?, location = ?, is_recurring = ?,
		recurring_frequency = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		t.Amount.String(), t.Description, t.Category, nullIfEmpty(t.Subcategory),
		string(t.Type), t.Date, string(t.PaymentMethod), string(tagsJSON),
		nullIfEmpty(t.Notes), nullIfEmpty(t.Location),
		t.IsRecurring, nullIfEmpty(string(t.RecurringFrequency)),
		t.UpdatedAt, t.ID, t.UserID,
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

func DeleteTransaction(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
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

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
