package models

// GameStatus is the lifecycle state of a tracked game
type GameStatus string

const (
	StatusPre      GameStatus = "PRE"
	StatusLive     GameStatus = "LIVE"
	StatusHalftime GameStatus = "HALFTIME"
	StatusFinal    GameStatus = "FINAL"
)

// ParseStatus maps a persisted status string back to a GameStatus.
// Unknown or empty strings are treated as PRE, which is also how the
// boundary detector treats a game it has never seen before.
func ParseStatus(s string) GameStatus {
	switch GameStatus(s) {
	case StatusLive, StatusHalftime, StatusFinal:
		return GameStatus(s)
	default:
		return StatusPre
	}
}

// Boundary is a first-observed transition into HALFTIME or FINAL
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryHalftime
	BoundaryFinal
)

// DetectBoundary reports whether moving from prev to curr crosses a
// halftime or final boundary. It is a pure function of the two statuses;
// re-observing the same status never fires.
func DetectBoundary(prev, curr GameStatus) Boundary {
	switch {
	case curr == StatusHalftime && prev != StatusHalftime:
		return BoundaryHalftime
	case curr == StatusFinal && prev != StatusFinal:
		return BoundaryFinal
	default:
		return BoundaryNone
	}
}
