// Package normalize maps the label vocabulary of each sportsbook onto the
// shared keys used as join columns across books. Player names have no
// canonical ID anywhere, so normalization quality here directly determines
// the cross-book match rate.
package normalize

import (
	"strconv"
	"strings"

	"github.com/propscan/propscan/internal/domain"
)

// oddsMinusReplacer folds the unicode minus variants that sportsbook display
// odds arrive with (U+2212 minus, en dash, em dash) into an ASCII hyphen.
var oddsMinusReplacer = strings.NewReplacer(
	"−", "-", // minus sign
	"–", "-", // en dash
	"—", "-", // em dash
)

// AmericanOdds parses a display odds string into a signed American odds
// integer. It tolerates surrounding whitespace, a leading plus, and unicode
// minus variants. Zero and anything unparseable return domain.ErrInvalidOdds:
// a bad value must resolve to absent at the call site, never to a wrong
// number.
func AmericanOdds(raw string) (int, error) {
	s := strings.TrimSpace(oddsMinusReplacer.Replace(raw))
	if s == "" {
		return 0, domain.ErrInvalidOdds
	}
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 0, domain.ErrInvalidOdds
	}
	return n, nil
}

// nameSuffixes are stripped from the end of player names so that books which
// disagree about generational suffixes still join.
var nameSuffixes = []string{" jr", " sr", " ii", " iii", " iv", " v"}

// PlayerName normalizes a player name for cross-book comparison:
// lowercased, punctuation stripped, common suffixes removed.
// "LeBron James Jr." becomes "lebron james".
func PlayerName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(".", "", "'", "", "’", "").Replace(s)
	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	return strings.TrimSpace(s)
}

// propTypeExact maps each book's market labels onto the shared prop-type
// vocabulary. Exact matches are tried first; partial matching below is the
// fallback for decorated labels.
var propTypeExact = map[string]string{
	"points":                      "points",
	"rebounds":                    "rebounds",
	"assists":                     "assists",
	"made threes":                 "threes",
	"threes made":                 "threes",
	"steals":                      "steals",
	"blocks":                      "blocks",
	"turnovers":                   "turnovers",
	"pts + reb + ast":             "pra",
	"points + rebounds + assists": "pra",
	"pts + reb":                   "pr",
	"points + rebounds":           "pr",
	"pts + ast":                   "pa",
	"points + assists":            "pa",
	"reb + ast":                   "ra",
	"rebounds + assists":          "ra",
	"steals + blocks":             "stocks",
}

// propTypePartial is ordered: combined markets must be checked before their
// component words.
var propTypePartial = []struct {
	substr string
	key    string
}{
	{"pts + reb + ast", "pra"},
	{"pts + reb", "pr"},
	{"pts + ast", "pa"},
	{"reb + ast", "ra"},
	{"steals + blocks", "stocks"},
	{"points", "points"},
	{"rebounds", "rebounds"},
	{"assists", "assists"},
	{"made threes", "threes"},
	{"3-point", "threes"},
	{"steals", "steals"},
	{"blocks", "blocks"},
	{"turnovers", "turnovers"},
}

// PropType normalizes a market label into the shared prop-type key. Unknown
// labels fall back to a cleaned snake_case form rather than being rejected,
// so a new market still stores and joins consistently with itself.
func PropType(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "unknown_prop"
	}
	if key, ok := propTypeExact[s]; ok {
		return key
	}
	for _, p := range propTypePartial {
		if strings.Contains(s, p.substr) {
			return p.key
		}
	}
	return strings.ReplaceAll(s, " ", "_")
}
