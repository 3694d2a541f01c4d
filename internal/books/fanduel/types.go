package fanduel

import "encoding/json"

// API payload shapes for the FanDuel content-managed-page and event-page
// endpoints. Only the fields the parser reads are declared.

type mainPageResponse struct {
	Attachments struct {
		Events map[string]apiEvent `json:"events"`
	} `json:"attachments"`
}

type apiEvent struct {
	EventID  int64  `json:"eventId"`
	Name     string `json:"name"`
	OpenDate string `json:"openDate"`
}

type eventPageResponse struct {
	Layout struct {
		Tabs map[string]apiTab `json:"tabs"`
	} `json:"layout"`
	Attachments struct {
		Markets map[string]apiMarket `json:"markets"`
	} `json:"attachments"`
}

type apiTab struct {
	Title string `json:"title"`
}

type apiMarket struct {
	MarketType string      `json:"marketType"`
	MarketName string      `json:"marketName"`
	Runners    []apiRunner `json:"runners"`
}

type apiRunner struct {
	Handicap      *float64 `json:"handicap"`
	SecondaryLogo string   `json:"secondaryLogo"`
	Result        struct {
		Type string `json:"type"`
	} `json:"result"`
	WinRunnerOdds struct {
		AmericanDisplayOdds struct {
			AmericanOdds json.Number `json:"americanOdds"`
		} `json:"americanDisplayOdds"`
	} `json:"winRunnerOdds"`
}
