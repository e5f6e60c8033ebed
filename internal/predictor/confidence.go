package predictor

import (
	"math"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
)

// Quality holds the Halftime Quality Score and its fluke flag
type Quality struct {
	HQS             float64
	ShootingExtreme bool
}

func sign(x float64) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// diff returns the home-minus-away differential scaled by div, or zero
// when either side is missing
func diff(home, away *float64, div float64) float64 {
	if home == nil || away == nil {
		return 0.0
	}
	return (*home - *away) / div
}

// ComputeQuality computes the Halftime Quality Score from first-half
// box-score differentials. Turnovers are inverted (fewer is better);
// any stat missing on either side contributes a zero differential.
func ComputeQuality(stats *models.HalfStats) Quality {
	fgDiff := diff(stats.Home.FGPct, stats.Away.FGPct, 1.0)
	fg3Diff := diff(stats.Home.FG3Pct, stats.Away.FG3Pct, 1.0)
	ftDiff := diff(stats.Home.FTAtt, stats.Away.FTAtt, 20.0)
	orbDiff := diff(stats.Home.OffReb, stats.Away.OffReb, 10.0)
	rebDiff := diff(stats.Home.TotReb, stats.Away.TotReb, 15.0)
	toDiff := diff(stats.Away.Turnovers, stats.Home.Turnovers, 10.0)

	hqs := 0.30*fgDiff +
		0.15*fg3Diff +
		0.20*toDiff +
		0.15*orbDiff +
		0.10*rebDiff +
		0.10*ftDiff

	// Fluke detection: a margin built on extreme shooting is less trustworthy
	shootingExtreme := math.Abs(fgDiff) > 0.15 || math.Abs(fg3Diff) > 0.20

	return Quality{HQS: hqs, ShootingExtreme: shootingExtreme}
}

// BaselineConfidence is the stats-free confidence: distance of the baseline
// probability from a coin flip, discounted by the bucket's reliability
func BaselineConfidence(baselineProb, baselineWeight float64) float64 {
	return math.Abs(baselineProb-0.5) * baselineWeight
}

// ConfidenceWithStats combines the empirical margin strength with the
// first-half statistical quality:
//
//	confidence = base x agreement x shooting_penalty x (1 + strength_boost)
//
// Agreement drops to 0.6 when the stat profile disagrees with the margin's
// direction; an extreme shooting half costs a 0.85 penalty; stats can boost
// confidence by at most 30%. Result is rounded to 4 decimal places.
func ConfidenceWithStats(baselineProb, baselineWeight float64, halftimeMargin int, stats *models.HalfStats) (float64, Quality) {
	baseConf := BaselineConfidence(baselineProb, baselineWeight)

	quality := ComputeQuality(stats)

	agreement := 0.6
	if sign(quality.HQS) == sign(float64(halftimeMargin)) {
		agreement = 1.0
	}

	shootingPenalty := 1.0
	if quality.ShootingExtreme {
		shootingPenalty = 0.85
	}

	strengthBoost := 1.0 + math.Min(0.75*math.Abs(quality.HQS), 0.30)

	confidence := baseConf * agreement * shootingPenalty * strengthBoost

	return math.Round(confidence*10000) / 10000, quality
}

// BucketConfidence classifies a confidence score against the configured
// cutoffs (HIGH >= high, MEDIUM >= medium, else LOW)
func BucketConfidence(score, highMin, mediumMin float64) string {
	switch {
	case score >= highMin:
		return models.BucketHigh
	case score >= mediumMin:
		return models.BucketMedium
	default:
		return models.BucketLow
	}
}
