package core

import (
	"errors"
	"strings"
	"time"
)

// Transaction is a single account movement as delivered by an institution.
// Amounts are signed integer minor currency units; negative means expense.
// TranDtime keeps the institution's raw "2006-01-02T15:04:05" string so
// malformed values can be skipped per occurrence instead of failing a
// whole batch.
type Transaction struct {
	TranDtime    string `json:"tran_dtime"`
	Amount       int64  `json:"tran_amt"`
	CurrencyCode string `json:"currency_code,omitempty"`
	MerchantName string `json:"merchant_name,omitempty"`
	TranType     string `json:"tran_type,omitempty"`
	BalanceAmt   int64  `json:"balance_amt,omitempty"`
	CategoryCode string `json:"category_code,omitempty"`
	Source       string `json:"source,omitempty"`
}

const (
	tranTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
)

var (
	ErrEmptyUsername = errors.New("empty username")
	ErrInvalidRange  = errors.New("end date before start date")
	ErrBadTranTime   = errors.New("malformed transaction datetime")
)

// IsExpense reports whether the transaction is an outgoing movement.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the unsigned amount in minor units.
func (t Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// Date returns the calendar-date prefix of the raw datetime ("2024-08-15").
// No parsing happens here; use ParseDate when a time.Time is needed.
func (t Transaction) Date() string {
	if i := strings.IndexByte(t.TranDtime, 'T'); i >= 0 {
		return t.TranDtime[:i]
	}
	return t.TranDtime
}

// Month returns the "YYYY-MM" prefix of the raw datetime.
func (t Transaction) Month() string {
	d := t.Date()
	if len(d) < len(MonthLayout) {
		return ""
	}
	return d[:len(MonthLayout)]
}

// ParseDate parses the calendar date of the transaction.
func (t Transaction) ParseDate() (time.Time, error) {
	d, err := time.Parse(DateLayout, t.Date())
	if err != nil {
		return time.Time{}, ErrBadTranTime
	}
	return d, nil
}

// ParseTime parses the full datetime of the transaction.
func (t Transaction) ParseTime() (time.Time, error) {
	ts, err := time.Parse(tranTimeLayout, t.TranDtime)
	if err != nil {
		return time.Time{}, ErrBadTranTime
	}
	return ts, nil
}

// Validate checks the fields the storage layer relies on.
func (t Transaction) Validate() error {
	if _, err := t.ParseTime(); err != nil {
		return err
	}
	return nil
}

// FilterExpenses returns the transactions with a negative amount and a
// non-empty merchant name, the population the pattern miner works on.
func FilterExpenses(txs []Transaction) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if t.IsExpense() && strings.TrimSpace(t.MerchantName) != "" {
			out = append(out, t)
		}
	}
	return out
}
