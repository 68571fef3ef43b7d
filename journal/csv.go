// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	positions *csv.Writer
	capital   *csv.Writer
	pf, cf    *os.File
}

func NewCSV(positionsPath, capitalPath string) (*CSVJournal, error) {
	pf, err := os.Create(positionsPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(capitalPath)
	if err != nil {
		pf.Close()
		return nil, err
	}

	pw := csv.NewWriter(pf)
	cw := csv.NewWriter(cf)

	if err := pw.Write([]string{"position_id", "strategy", "symbol", "timeframe", "side", "allocated", "entry_price", "exit_price", "entry_time", "exit_time", "pnl", "reason"}); err != nil {
		return nil, err
	}
	if err := cw.Write([]string{"time", "total", "available", "deployed", "peak", "total_pnl", "daily_pnl", "open_count"}); err != nil {
		return nil, err
	}

	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{pw, cw, pf, cf}, nil
}

func (j *CSVJournal) RecordPosition(p PositionRecord) error {
	err := j.positions.Write([]string{
		p.PositionID,
		p.Strategy,
		p.Symbol,
		p.Timeframe,
		p.Side,
		f(p.Allocated),
		f(p.EntryPrice),
		f(p.ExitPrice),
		p.EntryTime.Format(time.RFC3339),
		p.ExitTime.Format(time.RFC3339),
		f(p.Pnl),
		p.Reason,
	})
	if err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) RecordCapital(c CapitalSnapshot) error {
	err := j.capital.Write([]string{
		c.Time.Format(time.RFC3339),
		f(c.Total),
		f(c.Available),
		f(c.Deployed),
		f(c.Peak),
		f(c.TotalPnl),
		f(c.DailyPnl),
		strconv.Itoa(c.OpenCount),
	})
	if err != nil {
		return err
	}
	j.capital.Flush()
	return j.capital.Error()
}

func (j *CSVJournal) Close() error {
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}
	j.capital.Flush()
	if err := j.capital.Error(); err != nil {
		return err
	}

	if err := j.pf.Close(); err != nil {
		return err
	}
	return j.cf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
