package opportunity

// fullCreditReturn is the expected return that earns full credit in the
// score: 2%. Larger edges do not score higher.
const fullCreditReturn = 0.02

// Scoring weights. Fixed, not configurable per call.
const (
	wConfidence = 0.4
	wReturn     = 0.4
	wRisk       = 0.2
)

// Score computes the ranking score for an opportunity in [0,1].
// Pure and deterministic: the same inputs always produce the same score.
func Score(o Opportunity) float64 {
	ret := o.ExpectedReturn / fullCreditReturn
	if ret > 1 {
		ret = 1
	}
	return wConfidence*clamp01(o.Confidence) +
		wReturn*ret +
		wRisk*(1-clamp01(o.RiskScore))
}
