package fanduel

import (
	"sort"
	"strings"
	"time"

	"github.com/propscan/propscan/internal/domain"
)

// parser turns event-page market maps into candidate records.
type parser struct {
	loc *time.Location
}

func newParser() *parser {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &parser{loc: loc}
}

// parseMarkets extracts the full-game per-player over/under markets from one
// tab. Market names look like "LeBron James - Points"; the last " - " splits
// player from prop. Alternate lines and period markets are excluded so each
// player/market keeps a single primary line per book.
func (p *parser) parseMarkets(markets map[string]apiMarket, gameName, gameDate string) []domain.CandidateRecord {
	ids := make([]string, 0, len(markets))
	for id := range markets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var records []domain.CandidateRecord
	for _, id := range ids {
		market := markets[id]
		if !isPlayerTotal(market) {
			continue
		}

		idx := strings.LastIndex(market.MarketName, " - ")
		if idx < 0 {
			continue
		}
		player := market.MarketName[:idx]
		propType := market.MarketName[idx+3:]
		if strings.Contains(propType, "Yes/No") {
			continue
		}

		over, under := pickRunners(market.Runners)
		if over == nil || under == nil || over.Handicap == nil {
			continue
		}
		overOdds := over.WinRunnerOdds.AmericanDisplayOdds.AmericanOdds.String()
		underOdds := under.WinRunnerOdds.AmericanDisplayOdds.AmericanOdds.String()
		if overOdds == "" || underOdds == "" {
			continue
		}

		records = append(records, domain.CandidateRecord{
			Player:    player,
			Team:      teamFromLogo(over.SecondaryLogo),
			PropType:  propType,
			Line:      *over.Handicap,
			OverOdds:  overOdds,
			UnderOdds: underOdds,
			GameDate:  gameDate,
			Game:      gameName,
		})
	}
	return records
}

// isPlayerTotal reports whether a market is a full-game player over/under.
func isPlayerTotal(m apiMarket) bool {
	if strings.Contains(m.MarketName, "Alt ") ||
		strings.Contains(m.MarketName, "Quarter") ||
		strings.Contains(m.MarketName, "Half") ||
		strings.Contains(m.MarketName, "1st Qtr") {
		return false
	}
	if strings.HasPrefix(m.MarketType, "PLAYER_") && strings.Contains(m.MarketType, "TOTAL") {
		return true
	}
	return m.MarketType == "PLAYER_PROPS" && strings.Contains(m.MarketName, "O/U")
}

// pickRunners finds the over and under runners of a two-way market.
func pickRunners(runners []apiRunner) (over, under *apiRunner) {
	if len(runners) != 2 {
		return nil, nil
	}
	for i := range runners {
		switch runners[i].Result.Type {
		case "OVER":
			over = &runners[i]
		case "UNDER":
			under = &runners[i]
		}
	}
	return over, under
}

// teamFromLogo recovers a display team name from a jersey logo URL like
// ".../los_angeles_lakers_jersey.png".
func teamFromLogo(logoURL string) string {
	if logoURL == "" {
		return ""
	}
	slug := logoURL
	if i := strings.LastIndexByte(slug, '/'); i >= 0 {
		slug = slug[i+1:]
	}
	slug = strings.TrimSuffix(slug, ".png")
	slug = strings.TrimSuffix(slug, "_jersey")

	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// gameDate converts an event open timestamp to an Eastern calendar date.
func (p *parser) gameDate(openDate string) string {
	if t, err := time.Parse(time.RFC3339, openDate); err == nil {
		return t.In(p.loc).Format(domain.GameDateLayout)
	}
	if i := strings.IndexByte(openDate, 'T'); i > 0 {
		if date, err := domain.ParseGameDate(openDate[:i]); err == nil {
			return date
		}
	}
	return time.Now().In(p.loc).Format(domain.GameDateLayout)
}
