package models

// TeamHalfStats holds the first-half box-score stats for one side.
// Every field is nil when the feed did not provide a parseable value;
// the confidence model treats a missing pair as a zero differential.
type TeamHalfStats struct {
	FGPct     *float64 `json:"fg_pct"`
	FG3Pct    *float64 `json:"fg3_pct"`
	FTAtt     *float64 `json:"ft_att"`
	Turnovers *float64 `json:"turnovers"`
	OffReb    *float64 `json:"off_reb"`
	TotReb    *float64 `json:"tot_reb"`
}

// HalfStats pairs both sides of the first-half box score
type HalfStats struct {
	Home TeamHalfStats `json:"home"`
	Away TeamHalfStats `json:"away"`
}
