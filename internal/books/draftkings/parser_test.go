package draftkings

import (
	"encoding/json"
	"testing"
	"time"
)

const pointsPayload = `{
  "events": [
    {"id": "ev1", "name": "LAL @ BOS", "startEventDate": "2025-10-25T00:10:00Z"}
  ],
  "markets": [
    {"id": "m1", "eventId": "ev1", "name": "LeBron James Points O/U"},
    {"id": "m2", "eventId": "ev1", "name": "Jayson Tatum Points O/U"}
  ],
  "selections": [
    {"marketId": "m1", "label": "Over", "points": 24.5, "displayOdds": {"american": "−115"}},
    {"marketId": "m1", "label": "Under", "points": 24.5, "displayOdds": {"american": "-105"}},
    {"marketId": "m2", "label": "Over", "points": 27.5, "displayOdds": {"american": "+100"}}
  ]
}`

func fixedParser() *parser {
	return &parser{
		loc: time.UTC,
		now: func() time.Time { return time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC) },
	}
}

func TestParsePointsPayload(t *testing.T) {
	var resp apiResponse
	if err := json.Unmarshal([]byte(pointsPayload), &resp); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	records := fixedParser().parse(&resp, "Points")
	// m2 has no under selection and must be skipped.
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Player != "LeBron James" {
		t.Errorf("player = %q, want %q", r.Player, "LeBron James")
	}
	if r.PropType != "Points" {
		t.Errorf("prop type = %q, want Points", r.PropType)
	}
	if r.Line != 24.5 {
		t.Errorf("line = %f, want 24.5", r.Line)
	}
	if r.OverOdds != "−115" || r.UnderOdds != "-105" {
		t.Errorf("odds = %q/%q, raw display strings must pass through untouched", r.OverOdds, r.UnderOdds)
	}
	if r.GameDate != "2025-10-25" {
		t.Errorf("game date = %q, want 2025-10-25", r.GameDate)
	}
	if r.Game != "LAL @ BOS" {
		t.Errorf("game = %q, want LAL @ BOS", r.Game)
	}
}

func TestExtractPlayer(t *testing.T) {
	tests := []struct {
		marketName string
		propName   string
		want       string
	}{
		{"LeBron James Points O/U", "Points", "LeBron James"},
		{"Anthony Davis Rebounds + Assists O/U", "Rebounds + Assists", "Anthony Davis"},
		{"Jaylen Brown Threes Made", "Threes Made", "Jaylen Brown"},
		{"Derrick White Steals + Blocks O/U", "Steals + Blocks", "Derrick White"},
	}
	for _, tt := range tests {
		if got := extractPlayer(tt.marketName, tt.propName); got != tt.want {
			t.Errorf("extractPlayer(%q, %q) = %q, want %q", tt.marketName, tt.propName, got, tt.want)
		}
	}
}

func TestGameDateFallsBackToToday(t *testing.T) {
	p := fixedParser()
	if got := p.gameDate(""); got != "2025-10-24" {
		t.Errorf("gameDate(empty) = %q, want today", got)
	}
	if got := p.gameDate("2025-10-26Tgarbage"); got != "2025-10-26" {
		t.Errorf("gameDate(date prefix) = %q, want 2025-10-26", got)
	}
}

func TestGameDateUsesEasternCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	p := &parser{loc: loc, now: time.Now}
	// 00:10 UTC on the 25th is still the evening of the 24th in New York.
	if got := p.gameDate("2025-10-25T00:10:00Z"); got != "2025-10-24" {
		t.Errorf("gameDate = %q, want 2025-10-24", got)
	}
}
