// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	side TEXT NOT NULL,
	allocated REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	pnl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS capital (
	time DATETIME NOT NULL,
	total REAL NOT NULL,
	available REAL NOT NULL,
	deployed REAL NOT NULL,
	peak REAL NOT NULL,
	total_pnl REAL NOT NULL,
	daily_pnl REAL NOT NULL,
	open_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_capital_time ON capital(time);
CREATE INDEX IF NOT EXISTS idx_positions_strategy ON positions(strategy);
`
