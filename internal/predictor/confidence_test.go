package predictor

import (
	"testing"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestBaselineConfidence(t *testing.T) {
	// Tied game: small edge discounted by the low-weight bucket
	assert.InDelta(t, 0.040502, BaselineConfidence(0.5526, 0.77), 1e-9)

	// Big lead: strong edge at high weight
	assert.InDelta(t, 0.419244, BaselineConfidence(0.9508, 0.93), 1e-9)

	// Coin flip has zero confidence regardless of weight
	assert.Zero(t, BaselineConfidence(0.5, 1.0))
}

func TestComputeQuality(t *testing.T) {
	stats := &models.HalfStats{
		Home: models.TeamHalfStats{
			FGPct:     fp(0.50),
			FG3Pct:    fp(0.40),
			FTAtt:     fp(10),
			Turnovers: fp(5),
			OffReb:    fp(6),
			TotReb:    fp(18),
		},
		Away: models.TeamHalfStats{
			FGPct:     fp(0.42),
			FG3Pct:    fp(0.35),
			FTAtt:     fp(8),
			Turnovers: fp(8),
			OffReb:    fp(4),
			TotReb:    fp(15),
		},
	}

	q := ComputeQuality(stats)
	assert.InDelta(t, 0.1515, q.HQS, 1e-9)
	assert.False(t, q.ShootingExtreme)
}

func TestComputeQualityMissingStats(t *testing.T) {
	// A stat missing on either side contributes nothing
	q := ComputeQuality(&models.HalfStats{
		Home: models.TeamHalfStats{FGPct: fp(0.55)},
		Away: models.TeamHalfStats{},
	})
	assert.Zero(t, q.HQS)
	assert.False(t, q.ShootingExtreme)
}

func TestComputeQualityShootingExtreme(t *testing.T) {
	q := ComputeQuality(&models.HalfStats{
		Home: models.TeamHalfStats{FGPct: fp(0.60)},
		Away: models.TeamHalfStats{FGPct: fp(0.40)},
	})
	assert.InDelta(t, 0.06, q.HQS, 1e-9)
	assert.True(t, q.ShootingExtreme, "fg%% differential above 0.15 is a fluke")

	q = ComputeQuality(&models.HalfStats{
		Home: models.TeamHalfStats{FG3Pct: fp(0.65)},
		Away: models.TeamHalfStats{FG3Pct: fp(0.30)},
	})
	assert.True(t, q.ShootingExtreme, "3pt%% differential above 0.20 is a fluke")
}

func TestConfidenceWithStatsAgreement(t *testing.T) {
	stats := &models.HalfStats{
		Home: models.TeamHalfStats{
			FGPct:     fp(0.50),
			FG3Pct:    fp(0.40),
			FTAtt:     fp(10),
			Turnovers: fp(5),
			OffReb:    fp(6),
			TotReb:    fp(18),
		},
		Away: models.TeamHalfStats{
			FGPct:     fp(0.42),
			FG3Pct:    fp(0.35),
			FTAtt:     fp(8),
			Turnovers: fp(8),
			OffReb:    fp(4),
			TotReb:    fp(15),
		},
	}

	// Home up 8 with the better stat profile: full agreement, boosted
	prob, weight := LookupBaseline(8)
	conf, q := ConfidenceWithStats(prob, weight, 8, stats)
	assert.InDelta(t, 0.3337, conf, 1e-12)
	assert.InDelta(t, 0.1515, q.HQS, 1e-9)
	assert.False(t, q.ShootingExtreme)
}

func TestConfidenceWithStatsDisagreement(t *testing.T) {
	// Home up 8 but being outplayed: the 0.6 agreement discount applies
	stats := &models.HalfStats{
		Home: models.TeamHalfStats{
			FGPct:     fp(0.42),
			FG3Pct:    fp(0.35),
			FTAtt:     fp(8),
			Turnovers: fp(8),
			OffReb:    fp(4),
			TotReb:    fp(15),
		},
		Away: models.TeamHalfStats{
			FGPct:     fp(0.50),
			FG3Pct:    fp(0.40),
			FTAtt:     fp(10),
			Turnovers: fp(5),
			OffReb:    fp(6),
			TotReb:    fp(18),
		},
	}

	prob, weight := LookupBaseline(8)
	conf, q := ConfidenceWithStats(prob, weight, 8, stats)
	assert.InDelta(t, 0.2002, conf, 1e-12)
	assert.InDelta(t, -0.1515, q.HQS, 1e-9)
}

func TestConfidenceWithStatsShootingPenalty(t *testing.T) {
	stats := &models.HalfStats{
		Home: models.TeamHalfStats{FGPct: fp(0.60)},
		Away: models.TeamHalfStats{FGPct: fp(0.40)},
	}

	prob, weight := LookupBaseline(3)
	conf, q := ConfidenceWithStats(prob, weight, 3, stats)
	assert.True(t, q.ShootingExtreme)
	assert.InDelta(t, 0.1555, conf, 1e-12)
}

func TestConfidenceWithStatsBoostCap(t *testing.T) {
	// A dominant stat line cannot boost beyond 30%
	stats := &models.HalfStats{
		Home: models.TeamHalfStats{
			FGPct:     fp(0.70),
			Turnovers: fp(5),
			OffReb:    fp(10),
		},
		Away: models.TeamHalfStats{
			FGPct:     fp(0.40),
			Turnovers: fp(20),
			OffReb:    fp(0),
		},
	}

	prob, weight := LookupBaseline(18)
	conf, q := ConfidenceWithStats(prob, weight, 18, stats)
	assert.InDelta(t, 0.54, q.HQS, 1e-9)
	assert.True(t, q.ShootingExtreme)
	assert.InDelta(t, 0.4633, conf, 1e-12)
}

func TestConfidenceBounds(t *testing.T) {
	// Sweep every margin against stat lines from one-sided to inverted.
	// The score must stay in [0, 0.585) no matter the input.
	lines := []*models.HalfStats{
		nil,
		{},
		{
			Home: models.TeamHalfStats{
				FGPct:     fp(0.80),
				FG3Pct:    fp(0.75),
				FTAtt:     fp(30),
				Turnovers: fp(0),
				OffReb:    fp(20),
				TotReb:    fp(40),
			},
			Away: models.TeamHalfStats{
				FGPct:     fp(0.20),
				FG3Pct:    fp(0.10),
				FTAtt:     fp(0),
				Turnovers: fp(25),
				OffReb:    fp(0),
				TotReb:    fp(10),
			},
		},
		{
			Home: models.TeamHalfStats{
				FGPct:     fp(0.20),
				Turnovers: fp(25),
			},
			Away: models.TeamHalfStats{
				FGPct:     fp(0.80),
				Turnovers: fp(0),
			},
		},
	}

	for margin := -30; margin <= 30; margin++ {
		prob, weight := LookupBaseline(CapMargin(margin))
		for _, stats := range lines {
			var conf float64
			if stats == nil {
				conf = BaselineConfidence(prob, weight)
			} else {
				conf, _ = ConfidenceWithStats(prob, weight, margin, stats)
			}
			assert.GreaterOrEqual(t, conf, 0.0, "margin %d", margin)
			assert.Less(t, conf, 0.585, "margin %d", margin)
		}
	}
}

func TestBucketConfidence(t *testing.T) {
	assert.Equal(t, models.BucketHigh, BucketConfidence(0.25, 0.20, 0.10))
	assert.Equal(t, models.BucketHigh, BucketConfidence(0.20, 0.20, 0.10), "high cutoff is inclusive")
	assert.Equal(t, models.BucketMedium, BucketConfidence(0.1999, 0.20, 0.10))
	assert.Equal(t, models.BucketMedium, BucketConfidence(0.10, 0.20, 0.10), "medium cutoff is inclusive")
	assert.Equal(t, models.BucketLow, BucketConfidence(0.0999, 0.20, 0.10))
	assert.Equal(t, models.BucketLow, BucketConfidence(0, 0.20, 0.10))
}
