package db

import (
	"database/sql"
	"os"

	_ "modernc.org/sqlite"
)

// Ledger is the SQLite handle holding user subscriptions. Kept separate from
// the Postgres article store so the bot stays usable when Postgres is down.
var Ledger *sql.DB

func ConnectLedger() error {
	path := os.Getenv("LEDGER_PATH")
	if path == "" {
		path = "subscriptions.db"
	}

	var err error
	Ledger, err = sql.Open("sqlite", path)
	if err != nil {
		return err
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent handlers.
	Ledger.SetMaxOpenConns(1)

	return Ledger.Ping()
}

func CloseLedger() {
	if Ledger != nil {
		Ledger.Close()
	}
}
