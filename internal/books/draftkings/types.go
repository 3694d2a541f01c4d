package draftkings

// API payload shapes for the DraftKings league-subcategory markets endpoint.
// Only the fields the parser reads are declared.

type apiResponse struct {
	Events     []apiEvent     `json:"events"`
	Markets    []apiMarket    `json:"markets"`
	Selections []apiSelection `json:"selections"`
}

type apiEvent struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StartEventDate string `json:"startEventDate"`
}

type apiMarket struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	Name    string `json:"name"`
}

type apiSelection struct {
	MarketID    string      `json:"marketId"`
	Label       string      `json:"label"`
	Points      float64     `json:"points"`
	DisplayOdds displayOdds `json:"displayOdds"`
}

type displayOdds struct {
	American string `json:"american"`
}
