package predictor

// baselineBucket is one empirical margin bucket of the halftime curve
type baselineBucket struct {
	low    int
	high   int
	prob   float64
	weight float64
}

// Empirical home-win probabilities by halftime margin, precomputed from
// historical seasons by the offline calibration jobs. Weight is the
// reliability of the bucket (sample-size driven).
var baselineHalftimeProbs = []baselineBucket{
	{low: -20, high: -16, prob: 0.1331, weight: 0.85},
	{low: -15, high: -11, prob: 0.1868, weight: 0.93},
	{low: -10, high: -6, prob: 0.3065, weight: 0.94},
	{low: -5, high: -1, prob: 0.4966, weight: 0.94},
	{low: 0, high: 0, prob: 0.5526, weight: 0.77},
	{low: 1, high: 5, prob: 0.6862, weight: 0.94},
	{low: 6, high: 10, prob: 0.8188, weight: 0.94},
	{low: 11, high: 15, prob: 0.9132, weight: 0.94},
	{low: 16, high: 20, prob: 0.9508, weight: 0.93},
}

// CapMargin clamps a halftime margin to [-20, 20] for lookup purposes.
// The unclamped margin is still what gets persisted.
func CapMargin(margin int) int {
	if margin < -20 {
		return -20
	}
	if margin > 20 {
		return 20
	}
	return margin
}

// LookupBaseline returns the empirical home-win probability and reliability
// weight for a halftime margin. Margins outside the table (unreachable after
// clamping) fall back to a neutral 0.5 with full weight.
func LookupBaseline(halftimeMargin int) (prob, weight float64) {
	capped := CapMargin(halftimeMargin)

	for _, b := range baselineHalftimeProbs {
		if b.low <= capped && capped <= b.high {
			return b.prob, b.weight
		}
	}

	return 0.5, 1.0
}
