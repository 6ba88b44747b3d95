package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/models"
	"github.com/username/dompetku/backend/src/processors"
)

type debtServiceImpl struct {
	db            *sql.DB
	debtProcessor processors.DebtProcessor
}

func NewDebtService(db *sql.DB, debtProcessor processors.DebtProcessor) DebtService {
	return &debtServiceImpl{db: db, debtProcessor: debtProcessor}
}

// CreateDebt initializes the ledger state: remaining_amount = amount,
// status = pending. Field validation happens at the handler boundary.
func (s *debtServiceImpl) CreateDebt(debt *model.Debt) error {
	return debt.CreateDebt(s.db)
}

// ApplyPayment decrements the debt's remaining balance and records the
// payment as an immutable audit row, all inside one database transaction.
// The UPDATE is a compare-and-swap on the previously read remaining_amount,
// so two concurrent payments can never both validate against the same stale
// balance and jointly overpay the debt.
func (s *debtServiceImpl) ApplyPayment(userID, debtID int64, amount decimal.Decimal, paymentDate, notes string) (*model.Debt, *model.DebtPayment, error) {
	if !amount.IsPositive() {
		return nil, nil, errors.New("payment amount must be positive")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var remainingStr string
	var status model.DebtStatus
	err = tx.QueryRow(
		`SELECT remaining_amount, status FROM debts WHERE id = ? AND user_id = ?`,
		debtID, userID,
	).Scan(&remainingStr, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrDebtNotFound
		}
		return nil, nil, err
	}

	remaining, err := decimal.NewFromString(remainingStr)
	if err != nil {
		return nil, nil, err
	}

	if amount.GreaterThan(remaining) {
		return nil, nil, &PaymentExceedsRemainingError{MaxAllowed: remaining}
	}

	newRemaining := remaining.Sub(amount)
	// partial is sticky until the balance reaches zero; a payment never
	// reverts the status to pending.
	newStatus := model.DebtPartial
	if newRemaining.IsZero() {
		newStatus = model.DebtPaid
	}

	res, err := tx.Exec(
		`UPDATE debts SET remaining_amount = ?, status = ?, updated_at = ?
		 WHERE id = ? AND user_id = ? AND remaining_amount = ?`,
		newRemaining.String(), string(newStatus), time.Now(),
		debtID, userID, remainingStr,
	)
	if err != nil {
		return nil, nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, err
	}
	if affected == 0 {
		logger.L.Warn("Debt payment lost a compare-and-swap race", "debtID", debtID, "userID", userID)
		return nil, nil, ErrConcurrentModification
	}

	payment := &model.DebtPayment{
		DebtID:      debtID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Notes:       notes,
		CreatedAt:   time.Now(),
	}
	paymentRes, err := tx.Exec(
		`INSERT INTO debt_payments (debt_id, amount, payment_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		payment.DebtID, payment.Amount.String(), payment.PaymentDate,
		nullableString(payment.Notes), payment.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	if id, err := paymentRes.LastInsertId(); err == nil {
		payment.ID = id
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	debt, err := model.GetDebtByID(s.db, debtID, userID)
	if err != nil {
		return nil, nil, err
	}
	logger.L.Info("Debt payment applied", "debtID", debtID, "userID", userID,
		"amount", amount.String(), "newRemaining", debt.RemainingAmount.String(), "newStatus", debt.Status)
	return debt, payment, nil
}

// DeleteDebt removes the debt; its payment history goes with it through the
// schema's ON DELETE CASCADE.
func (s *debtServiceImpl) DeleteDebt(userID, debtID int64) error {
	if err := model.DeleteDebt(s.db, debtID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDebtNotFound
		}
		return err
	}
	return nil
}

func (s *debtServiceImpl) Summary(userID int64, now time.Time) (models.DebtSummary, error) {
	debts, err := model.ListDebts(s.db, userID)
	if err != nil {
		return models.DebtSummary{}, err
	}
	return s.debtProcessor.Summarize(debts, now), nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
