package risk

import (
	"errors"
	"fmt"
)

// ErrInsufficientCapital means the liquid allocation could not meet the
// minimum viable position size. The opportunity is rejected; the scan
// continues with the next candidate.
var ErrInsufficientCapital = errors.New("insufficient capital")

// Allocate converts a ranking score into a capital amount: the minimum
// position fraction plus a score-weighted bonus up to the maximum, clamped
// to what is actually available. Partial allocations below the minimum are
// never made, to keep position economics viable.
func Allocate(score, total, available, minPct, maxPct float64) (float64, error) {
	pct := minPct + score*(maxPct-minPct)
	if pct > maxPct {
		pct = maxPct
	}

	amount := total * pct
	if amount > available {
		amount = available
	}

	floor := total * minPct
	if amount < floor {
		return 0, fmt.Errorf("%w: %.2f below minimum %.2f", ErrInsufficientCapital, amount, floor)
	}
	return amount, nil
}
