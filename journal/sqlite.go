package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordPosition(p PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(position_id, strategy, symbol, timeframe, side, allocated, entry_price, exit_price, entry_time, exit_time, pnl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PositionID, p.Strategy, p.Symbol, p.Timeframe, p.Side, p.Allocated,
		p.EntryPrice, p.ExitPrice, p.EntryTime, p.ExitTime, p.Pnl, p.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordCapital(c CapitalSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO capital
		(time, total, available, deployed, peak, total_pnl, daily_pnl, open_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Time, c.Total, c.Available, c.Deployed, c.Peak, c.TotalPnl, c.DailyPnl, c.OpenCount,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
