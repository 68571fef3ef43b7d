package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreKnownValue(t *testing.T) {
	t.Parallel()

	// confidence=0.9, expectedReturn=0.02, risk=0.2
	// 0.4*0.9 + 0.4*1.0 + 0.2*0.8 = 0.92
	o := Opportunity{
		Confidence:     0.9,
		ExpectedReturn: 0.02,
		RiskScore:      0.2,
	}

	assert.InDelta(t, 0.92, Score(o), 1e-12)
}

func TestScoreReturnCapped(t *testing.T) {
	t.Parallel()

	base := Opportunity{Confidence: 0.5, ExpectedReturn: 0.02, RiskScore: 0.5}
	big := base
	big.ExpectedReturn = 0.10

	// Returns above 2% earn no extra credit.
	assert.InDelta(t, Score(base), Score(big), 1e-12)
}

func TestScoreMonotonicInConfidence(t *testing.T) {
	t.Parallel()

	prev := -1.0
	for c := 0.0; c <= 1.0; c += 0.05 {
		o := Opportunity{Confidence: c, ExpectedReturn: 0.01, RiskScore: 0.4}
		s := Score(o)
		if s < prev {
			t.Fatalf("score decreased at confidence %.2f: %.6f < %.6f", c, s, prev)
		}
		prev = s
	}
}

func TestScoreRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		o    Opportunity
		want float64
	}{
		{"best", Opportunity{Confidence: 1, ExpectedReturn: 0.02, RiskScore: 0}, 1.0},
		{"worst", Opportunity{Confidence: 0, ExpectedReturn: 1e-9, RiskScore: 1}, 0.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Score(tt.o), 1e-6)
		})
	}
}

func TestScoreClampsOutOfRangeInputs(t *testing.T) {
	t.Parallel()

	o := Opportunity{Confidence: 1.5, ExpectedReturn: 0.02, RiskScore: -0.3}
	capped := Opportunity{Confidence: 1.0, ExpectedReturn: 0.02, RiskScore: 0}

	assert.InDelta(t, Score(capped), Score(o), 1e-12)
}
