package notify

import (
	"fmt"
	"strings"

	"github.com/propscan/propscan/internal/domain"
)

// Event types emitted by the analysis and ingestion layers. Operators filter
// on these through the notify.events config list.
const (
	EventArbitrage     = "arbitrage"
	EventRefreshFailed = "refresh_failed"
)

// maxAlertLines caps the opportunities listed in one alert so a busy slate
// does not blow past messenger length limits.
const maxAlertLines = 10

// FormatArbitrage renders detected opportunities as an alert body, one line
// per opportunity, highest profit first (the detector already sorts).
func FormatArbitrage(gameDate string, opps []domain.ArbitrageOpportunity) (title, message string) {
	title = fmt.Sprintf("Arbitrage: %d opportunity(ies) on %s", len(opps), gameDate)

	var b strings.Builder
	for i, opp := range opps {
		if i == maxAlertLines {
			fmt.Fprintf(&b, "... and %d more\n", len(opps)-maxAlertLines)
			break
		}
		fmt.Fprintf(&b, "%s %s %.1f: over %+d @ %s / under %+d @ %s -> %.2f%%\n",
			opp.Player, opp.PropType, opp.Line,
			opp.OverOdds, opp.OverBook,
			opp.UnderOdds, opp.UnderBook,
			opp.ProfitPercent,
		)
	}
	return title, strings.TrimRight(b.String(), "\n")
}
