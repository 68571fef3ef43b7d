package opportunity

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Side is the direction of a proposed trade.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

func (s Side) Valid() bool {
	return s == Long || s == Short
}

var ErrInvalid = errors.New("invalid opportunity")

// Opportunity is a candidate trade surfaced by an external strategy scanner.
// It is immutable once scored and lives for a single admission cycle.
type Opportunity struct {
	ID             string
	Time           time.Time
	Strategy       string
	Symbol         string
	Timeframe      string
	Side           Side
	EntryPrice     float64
	Confidence     float64 // [0,1]
	ExpectedReturn float64 // fractional, > 0
	RiskScore      float64 // [0,1], higher = riskier

	Score float64
}

// Clamp forces Confidence and RiskScore into [0,1]. Out-of-range values
// from a scanner are clamped, not rejected.
func (o *Opportunity) Clamp() {
	o.Confidence = clamp01(o.Confidence)
	o.RiskScore = clamp01(o.RiskScore)
}

// Validate reports whether the opportunity is structurally usable. Failures
// are local rejections, never fatal.
func (o *Opportunity) Validate() error {
	if !o.Side.Valid() {
		return fmt.Errorf("%w: side %q", ErrInvalid, o.Side)
	}
	if o.EntryPrice <= 0 {
		return fmt.Errorf("%w: entry price %.4f", ErrInvalid, o.EntryPrice)
	}
	if o.ExpectedReturn <= 0 {
		return fmt.Errorf("%w: expected return %.4f", ErrInvalid, o.ExpectedReturn)
	}
	return nil
}

// Rank sorts opportunities descending by score. Ties break by earliest
// discovery time, then ID, so replaying the same snapshot yields the same
// admission order.
func Rank(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		return a.ID < b.ID
	})
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
