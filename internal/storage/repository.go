package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finsync/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores and serves user transactions. It implements
// both feed.TransactionFeed and feed.TransactionStore.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveTransactions persists a batch of transactions for a user inside one
// transaction. Rows with a malformed datetime are skipped and logged, the
// rest of the batch still commits.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, username string, txs []core.Transaction) (int, error) {
	if strings.TrimSpace(username) == "" {
		return 0, core.ErrEmptyUsername
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO user_transactions
			(username, tran_dtime, tran_amt, currency_code, merchant_name, tran_type, balance_amt, category_code, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed transaction",
				"username", username,
				"tran_dtime", t.TranDtime,
				"error", err)
			continue
		}
		currency := t.CurrencyCode
		if currency == "" {
			currency = "KRW"
		}
		if _, err := stmt.ExecContext(ctx,
			username, t.TranDtime, t.Amount, currency,
			nullable(t.MerchantName), t.TranType, t.BalanceAmt,
			nullable(t.CategoryCode), nullable(t.Source),
		); err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		saved++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved",
		"username", username,
		"received", len(txs),
		"saved", saved)
	return saved, nil
}

// ListTransactions implements feed.TransactionFeed over the stored
// history. The range is closed on both ends, compared on calendar dates.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, username string, start, end time.Time) ([]core.Transaction, error) {
	if strings.TrimSpace(username) == "" {
		return nil, core.ErrEmptyUsername
	}
	if end.Before(start) {
		return nil, core.ErrInvalidRange
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT tran_dtime, tran_amt, currency_code, merchant_name, tran_type, balance_amt, category_code, source
		FROM user_transactions
		WHERE username = ?
		  AND substr(tran_dtime, 1, 10) >= ?
		  AND substr(tran_dtime, 1, 10) <= ?
		ORDER BY tran_dtime`,
		username, start.Format(core.DateLayout), end.Format(core.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var merchant, category, source sql.NullString
		var balance sql.NullInt64
		if err := rows.Scan(&t.TranDtime, &t.Amount, &t.CurrencyCode, &merchant, &t.TranType, &balance, &category, &source); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.MerchantName = merchant.String
		t.CategoryCode = category.String
		t.Source = source.String
		t.BalanceAmt = balance.Int64
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// CountTransactions returns the stored row count for a user.
func (r *SQLiteRepository) CountTransactions(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_transactions WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
