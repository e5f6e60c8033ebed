package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/rs/zerolog/log"
)

const userAgent = "ncaa-live-poller/1.0"

// Client fetches scoreboard and summary data from the ESPN public JSON feed.
// It makes a single attempt per call; retry policy belongs to the poll loop.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new feed client. The timeout bounds every request so
// an unresponsive upstream becomes a fetch error instead of a stalled cycle.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against the feed
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	q := req.URL.Query()
	for key, value := range params {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	log.Debug().Str("url", url).Msg("Fetching from feed")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// scoreboardResponse is the top-level scoreboard payload
type scoreboardResponse struct {
	Events []event `json:"events"`
}

type event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Status      status       `json:"status"`
	Competitors []competitor `json:"competitors"`
}

type status struct {
	Type statusType `json:"type"`
}

type statusType struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

type competitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     teamInfo `json:"team"`
}

type teamInfo struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ShortDisplayName string `json:"shortDisplayName"`
}

// inferStatus maps the nested feed status object onto the lifecycle enum.
// Priority order: completed/post => FINAL, halftime text => HALFTIME,
// pre => PRE, anything else => LIVE.
func inferStatus(st status) models.GameStatus {
	t := st.Type
	state := strings.ToUpper(t.State)

	if t.Completed || state == "POST" {
		return models.StatusFinal
	}

	name := strings.ToUpper(t.Name)
	detail := strings.ToUpper(t.Detail)
	short := strings.ToUpper(t.ShortDetail)
	if strings.Contains(name, "HALFTIME") || strings.Contains(detail, "HALFTIME") || strings.Contains(short, "HALFTIME") {
		return models.StatusHalftime
	}

	if state == "PRE" {
		return models.StatusPre
	}

	return models.StatusLive
}

func parseScore(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// FetchScoreboard fetches all games for a date (YYYYMMDD) and normalizes
// them into game snapshots. Events without exactly two competitors are
// dropped; a missing score stays nil rather than defaulting to zero.
func (c *Client) FetchScoreboard(ctx context.Context, dateYYYYMMDD string) ([]*models.GameSnapshot, error) {
	body, err := c.get(ctx, "scoreboard", map[string]string{
		"dates":  dateYYYYMMDD,
		"groups": "50",
		"limit":  "500",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	var sb scoreboardResponse
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	var games []*models.GameSnapshot
	for _, e := range sb.Events {
		if len(e.Competitions) == 0 {
			continue
		}
		comp := e.Competitions[0]
		if len(comp.Competitors) != 2 {
			continue
		}

		var home, away *competitor
		for i := range comp.Competitors {
			switch comp.Competitors[i].HomeAway {
			case "home":
				home = &comp.Competitors[i]
			case "away":
				away = &comp.Competitors[i]
			}
		}
		if home == nil || away == nil {
			// fall back to feed order: away listed first
			away, home = &comp.Competitors[0], &comp.Competitors[1]
		}

		snap := &models.GameSnapshot{
			GameID:         e.ID,
			Status:         inferStatus(comp.Status),
			HomeName:       displayName(home.Team, "Home"),
			AwayName:       displayName(away.Team, "Away"),
			HomeFeedTeamID: home.Team.ID,
			AwayFeedTeamID: away.Team.ID,
			HomeScore:      parseScore(home.Score),
			AwayScore:      parseScore(away.Score),
		}

		if ts, ok := parseEventDate(e.Date); ok {
			snap.StartTime = ts
		}

		games = append(games, snap)
	}

	return games, nil
}

// feedDateLayout matches the scoreboard event date, which carries minute
// precision with no seconds field ("2026-01-15T23:00Z")
const feedDateLayout = "2006-01-02T15:04Z07:00"

func parseEventDate(raw string) (time.Time, bool) {
	for _, layout := range []string{feedDateLayout, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func displayName(t teamInfo, fallback string) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	if t.ShortDisplayName != "" {
		return t.ShortDisplayName
	}
	return fallback
}

// summaryResponse is the per-game summary payload; only the box score is used
type summaryResponse struct {
	Boxscore struct {
		Teams []summaryTeam `json:"teams"`
	} `json:"boxscore"`
}

type summaryTeam struct {
	Team struct {
		HomeAway string `json:"homeAway"`
	} `json:"team"`
	Statistics []summaryStat `json:"statistics"`
}

type summaryStat struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	DisplayValue string `json:"displayValue"`
}

// FetchFirstHalfStats fetches a game summary and extracts the first-half
// team statistics for both sides. A stat the feed omits or formats
// unparseably stays nil; the whole extraction never fails on one bad field.
func (c *Client) FetchFirstHalfStats(ctx context.Context, eventID string) (*models.HalfStats, error) {
	body, err := c.get(ctx, "summary", map[string]string{"event": eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game summary: %w", err)
	}

	var sum summaryResponse
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game summary: %w", err)
	}

	out := &models.HalfStats{}
	for _, t := range sum.Boxscore.Teams {
		stats := normalizeStats(t.Statistics)
		side := models.TeamHalfStats{
			FGPct:     ParseStatValue(stats["fg%"]),
			FG3Pct:    ParseStatValue(stats["3pt%"]),
			FTAtt:     ParseStatValue(stats["fta"]),
			Turnovers: ParseStatValue(stats["turnovers"]),
			OffReb:    ParseStatValue(stats["offreb"]),
			TotReb:    ParseStatValue(stats["rebounds"]),
		}

		switch strings.ToLower(t.Team.HomeAway) {
		case "home":
			out.Home = side
		case "away":
			out.Away = side
		}
	}

	return out, nil
}

// normalizeStats flattens the stat list into a lowercase name -> value map
func normalizeStats(stats []summaryStat) map[string]string {
	m := make(map[string]string, len(stats))
	for _, s := range stats {
		key := strings.ToLower(s.Name)
		if key == "" {
			key = strings.ToLower(s.Label)
		}
		if key != "" {
			m[key] = s.DisplayValue
		}
	}
	return m
}

// ParseStatValue parses a feed stat value defensively. Percentage strings
// are stripped of the trailing "%" and divided by 100. Unparseable values
// are absent, not zero.
func ParseStatValue(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	pct := strings.Contains(raw, "%")
	raw = strings.ReplaceAll(raw, "%", "")

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	if pct {
		v /= 100.0
	}
	return &v
}
