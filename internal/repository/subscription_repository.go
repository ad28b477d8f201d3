package repository

import (
	"database/sql"
	"strings"

	"newsbag/internal/model"
)

// SubscriptionRepository is the ledger of (user, ticker) pairs, backed by
// SQLite. All mutations are single-row statements; the UNIQUE constraint
// keeps subscribe and unsubscribe idempotent.
type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id INTEGER NOT NULL,
			ticker TEXT NOT NULL,
			UNIQUE(user_id, ticker)
		)
	`)
	return err
}

func (r *SubscriptionRepository) Subscribe(userID int64, ticker string) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO subscriptions(user_id, ticker) VALUES(?, ?)
	`, userID, strings.ToUpper(ticker))
	return err
}

func (r *SubscriptionRepository) Unsubscribe(userID int64, ticker string) error {
	_, err := r.db.Exec(`
		DELETE FROM subscriptions WHERE user_id = ? AND ticker = ?
	`, userID, strings.ToUpper(ticker))
	return err
}

func (r *SubscriptionRepository) List(userID int64) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT ticker FROM subscriptions WHERE user_id = ? ORDER BY ticker
	`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickers, nil
}

// Rankings returns subscriber counts per ticker, highest first with
// ticker-ascending tie-break.
func (r *SubscriptionRepository) Rankings() ([]model.RankEntry, error) {
	rows, err := r.db.Query(`
		SELECT ticker, COUNT(DISTINCT user_id) AS cnt
		FROM subscriptions
		GROUP BY ticker
		ORDER BY cnt DESC, ticker ASC
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RankEntry
	for rows.Next() {
		var e model.RankEntry
		if err := rows.Scan(&e.Ticker, &e.Subscribers); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
