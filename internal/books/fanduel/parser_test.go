package fanduel

import (
	"encoding/json"
	"testing"
	"time"
)

const eventPagePayload = `{
  "attachments": {
    "markets": {
      "m1": {
        "marketType": "PLAYER_POINTS_TOTAL",
        "marketName": "LeBron James - Points",
        "runners": [
          {
            "handicap": 25.5,
            "secondaryLogo": "https://assets.fanduel.com/los_angeles_lakers_jersey.png",
            "result": {"type": "OVER"},
            "winRunnerOdds": {"americanDisplayOdds": {"americanOdds": 120}}
          },
          {
            "handicap": 25.5,
            "result": {"type": "UNDER"},
            "winRunnerOdds": {"americanDisplayOdds": {"americanOdds": -150}}
          }
        ]
      },
      "m2": {
        "marketType": "PLAYER_POINTS_TOTAL",
        "marketName": "LeBron James - Alt Points",
        "runners": []
      },
      "m3": {
        "marketType": "PLAYER_PROPS",
        "marketName": "Derrick White - To Record A Triple Double Yes/No",
        "runners": []
      },
      "m4": {
        "marketType": "PLAYER_POINTS_TOTAL",
        "marketName": "Jayson Tatum - 1st Qtr Points",
        "runners": []
      }
    }
  }
}`

func TestParseMarkets(t *testing.T) {
	var page eventPageResponse
	if err := json.Unmarshal([]byte(eventPagePayload), &page); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	p := &parser{loc: time.UTC}
	records := p.parseMarkets(page.Attachments.Markets, "LAL @ BOS", "2025-10-24")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (alt lines, period and yes/no markets skipped)", len(records))
	}

	r := records[0]
	if r.Player != "LeBron James" {
		t.Errorf("player = %q, want LeBron James", r.Player)
	}
	if r.PropType != "Points" {
		t.Errorf("prop type = %q, want Points", r.PropType)
	}
	if r.Line != 25.5 {
		t.Errorf("line = %f, want 25.5", r.Line)
	}
	if r.OverOdds != "120" || r.UnderOdds != "-150" {
		t.Errorf("odds = %q/%q, want 120/-150", r.OverOdds, r.UnderOdds)
	}
	if r.Team != "Los Angeles Lakers" {
		t.Errorf("team = %q, want Los Angeles Lakers", r.Team)
	}
	if r.GameDate != "2025-10-24" || r.Game != "LAL @ BOS" {
		t.Errorf("game = %q on %q, want LAL @ BOS on 2025-10-24", r.Game, r.GameDate)
	}
}

func TestParseMarketsSplitsOnLastSeparator(t *testing.T) {
	payload := map[string]apiMarket{
		"m1": {
			MarketType: "PLAYER_COMBO_TOTAL",
			MarketName: "Shai Gilgeous - Alexander - Pts + Reb + Ast",
			Runners:    mustRunners(t, 42.5, 105, -125),
		},
	}

	records := (&parser{loc: time.UTC}).parseMarkets(payload, "OKC @ DEN", "2025-10-24")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Player != "Shai Gilgeous - Alexander" {
		t.Errorf("player = %q, hyphenated names must survive the split", records[0].Player)
	}
	if records[0].PropType != "Pts + Reb + Ast" {
		t.Errorf("prop type = %q, want Pts + Reb + Ast", records[0].PropType)
	}
}

func TestTeamFromLogo(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://assets.fanduel.com/boston_celtics_jersey.png", "Boston Celtics"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := teamFromLogo(tt.url); got != tt.want {
			t.Errorf("teamFromLogo(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func mustRunners(t *testing.T, line float64, overOdds, underOdds int) []apiRunner {
	t.Helper()
	raw := `[
		{"handicap": ` + jsonFloat(line) + `, "result": {"type": "OVER"},
		 "winRunnerOdds": {"americanDisplayOdds": {"americanOdds": ` + jsonInt(overOdds) + `}}},
		{"handicap": ` + jsonFloat(line) + `, "result": {"type": "UNDER"},
		 "winRunnerOdds": {"americanDisplayOdds": {"americanOdds": ` + jsonInt(underOdds) + `}}}
	]`
	var runners []apiRunner
	if err := json.Unmarshal([]byte(raw), &runners); err != nil {
		t.Fatalf("build runners: %v", err)
	}
	return runners
}

func jsonFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func jsonInt(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}
