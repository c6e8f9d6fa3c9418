package outcomes

import "math"

// riskScore composes the three weighted sub-scores. lags is the beneficiary's
// lag history in days, including the outcome being scored; count is the
// beneficiary's lifetime occurrence count.
func riskScore(lagDays int, count int, lags []float64, minAvgLag float64) float64 {
	score := lagScore(lagDays) + frequencyScore(count) + consistencyScore(lags, minAvgLag)
	return math.Min(score, MaxRiskScore)
}

// lagScore awards up to 4 points for long decision-to-benefit lags.
func lagScore(lagDays int) float64 {
	switch {
	case lagDays > 180:
		return 4
	case lagDays > 90:
		return 3
	case lagDays > 30:
		return 2
	case lagDays > 7:
		return 1
	default:
		return 0
	}
}

// frequencyScore awards up to 3 points for repeat beneficiaries.
func frequencyScore(count int) float64 {
	switch {
	case count > 10:
		return 3
	case count > 5:
		return 2
	case count > 2:
		return 1
	default:
		return 0
	}
}

// consistencyScore awards up to 3 points when a beneficiary's lags are both
// long on average and suspiciously uniform. consistency = max(0, 1 - cv)
// where cv is the coefficient of variation of the lag history.
func consistencyScore(lags []float64, minAvgLag float64) float64 {
	if len(lags) == 0 {
		return 0
	}

	mean := 0.0
	for _, lag := range lags {
		mean += lag
	}
	mean /= float64(len(lags))

	if mean <= minAvgLag {
		return 0
	}

	variance := 0.0
	for _, lag := range lags {
		variance += (lag - mean) * (lag - mean)
	}
	stddev := math.Sqrt(variance / float64(len(lags)))

	consistency := math.Max(0, 1-stddev/mean)
	switch {
	case consistency >= 0.8:
		return 3
	case consistency >= 0.6:
		return 2
	case consistency >= 0.4:
		return 1
	default:
		return 0
	}
}
