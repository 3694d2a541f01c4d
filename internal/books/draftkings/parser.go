package draftkings

import (
	"strings"
	"time"

	"github.com/propscan/propscan/internal/domain"
)

// parser turns one subcategory payload into candidate records. Game dates are
// the calendar date of tip-off in Eastern time, matching how the books label
// their boards; a late UTC timestamp must not spill a game onto the next day.
type parser struct {
	loc *time.Location
	now func() time.Time
}

func newParser() *parser {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &parser{loc: loc, now: time.Now}
}

// parse joins markets with their over/under selections and the owning event.
// Markets missing either side are skipped: the subcategory endpoints quote
// two-way markets only, so a lone side there means a half-built board.
func (p *parser) parse(resp *apiResponse, propName string) []domain.CandidateRecord {
	events := make(map[string]apiEvent, len(resp.Events))
	for _, ev := range resp.Events {
		events[ev.ID] = ev
	}

	type pair struct {
		over, under *apiSelection
	}
	byMarket := make(map[string]*pair)
	for i := range resp.Selections {
		sel := &resp.Selections[i]
		if sel.MarketID == "" {
			continue
		}
		pr := byMarket[sel.MarketID]
		if pr == nil {
			pr = &pair{}
			byMarket[sel.MarketID] = pr
		}
		switch strings.ToLower(sel.Label) {
		case "over":
			pr.over = sel
		case "under":
			pr.under = sel
		}
	}

	var records []domain.CandidateRecord
	for _, market := range resp.Markets {
		pr := byMarket[market.ID]
		if pr == nil || pr.over == nil || pr.under == nil {
			continue
		}

		player := extractPlayer(market.Name, propName)
		if player == "" {
			continue
		}

		event := events[market.EventID]
		records = append(records, domain.CandidateRecord{
			Player:    player,
			PropType:  propName,
			Line:      pr.over.Points,
			OverOdds:  pr.over.DisplayOdds.American,
			UnderOdds: pr.under.DisplayOdds.American,
			GameDate:  p.gameDate(event.StartEventDate),
			Game:      event.Name,
		})
	}
	return records
}

// extractPlayer pulls the player out of a market name like
// "LeBron James Points O/U". The prop name's first word anchors the split;
// everything before it is the player.
func extractPlayer(marketName, propName string) string {
	anchor := propName
	if i := strings.IndexByte(propName, ' '); i > 0 {
		anchor = propName[:i]
	}
	if i := strings.Index(strings.ToLower(marketName), strings.ToLower(anchor)); i >= 0 {
		return strings.TrimSpace(marketName[:i])
	}
	return strings.TrimSpace(strings.ReplaceAll(marketName, " "+propName+" O/U", ""))
}

// gameDate converts an event start timestamp to an Eastern calendar date.
// Events without a parseable start fall back to today's date.
func (p *parser) gameDate(startEventDate string) string {
	if startEventDate != "" {
		if t, err := time.Parse(time.RFC3339, startEventDate); err == nil {
			return t.In(p.loc).Format(domain.GameDateLayout)
		}
		// Some payloads carry a bare date prefix.
		if i := strings.IndexByte(startEventDate, 'T'); i > 0 {
			if date, err := domain.ParseGameDate(startEventDate[:i]); err == nil {
				return date
			}
		}
	}
	return p.now().In(p.loc).Format(domain.GameDateLayout)
}
