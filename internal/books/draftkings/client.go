// Package draftkings implements the DraftKings sportsbook scraper against
// the public league-subcategory markets API.
package draftkings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/propscan/propscan/internal/domain"
)

const defaultBaseURL = "https://sportsbook-nash.draftkings.com"

// subcategory pairs a market group's display name with its DraftKings
// subcategory ID. The display name doubles as the raw prop type handed to
// ingestion and as the anchor for extracting the player from market names.
type subcategory struct {
	Name string
	ID   string
}

// defaultSubcategories is the NBA player prop board.
var defaultSubcategories = []subcategory{
	{"Points", "12488"},
	{"Threes Made", "12497"},
	{"Rebounds", "12492"},
	{"Assists", "12495"},
	{"Rebounds + Assists", "9974"},
	{"Points + Rebounds + Assists", "5001"},
	{"Points + Rebounds", "9976"},
	{"Points + Assists", "9973"},
	{"Steals", "13508"},
	{"Blocks", "13780"},
	{"Steals + Blocks", "13781"},
}

// ClientConfig holds the scraper's endpoint parameters.
type ClientConfig struct {
	// BaseURL overrides the production API root, mainly for tests.
	BaseURL string

	// Site is the regional site path segment, e.g. "US-OH-SB".
	Site string

	// LeagueID selects the league board, e.g. "42648" for the NBA.
	LeagueID string

	// Throttle is the pause between subcategory requests. The board is
	// fetched one subcategory at a time and the API rate-limits bursts.
	Throttle time.Duration
}

// Client fetches the DraftKings player prop board.
type Client struct {
	baseURL       string
	site          string
	leagueID      string
	throttle      time.Duration
	subcategories []subcategory
	httpClient    *http.Client
	parser        *parser
	logger        *slog.Logger
}

// NewClient creates a DraftKings scraper.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	throttle := cfg.Throttle
	if throttle == 0 {
		throttle = 2 * time.Second
	}
	return &Client{
		baseURL:       baseURL,
		site:          cfg.Site,
		leagueID:      cfg.LeagueID,
		throttle:      throttle,
		subcategories: defaultSubcategories,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		parser:        newParser(),
		logger:        logger.With(slog.String("component", "draftkings")),
	}
}

// Book returns the canonical sportsbook identifier.
func (c *Client) Book() domain.Book {
	return domain.BookDraftKings
}

// Scrape fetches every configured subcategory and returns the combined board
// as candidate records. A failed subcategory is logged and skipped; the
// remaining subcategories still contribute.
func (c *Client) Scrape(ctx context.Context) ([]domain.CandidateRecord, error) {
	var all []domain.CandidateRecord

	for i, sub := range c.subcategories {
		if i > 0 {
			if err := sleepCtx(ctx, c.throttle); err != nil {
				return all, err
			}
		}

		resp, err := c.fetchSubcategory(ctx, sub.ID)
		if err != nil {
			c.logger.WarnContext(ctx, "subcategory fetch failed",
				slog.String("subcategory", sub.Name),
				slog.String("error", err.Error()),
			)
			continue
		}

		records := c.parser.parse(resp, sub.Name)
		c.logger.DebugContext(ctx, "subcategory parsed",
			slog.String("subcategory", sub.Name),
			slog.Int("records", len(records)),
		)
		all = append(all, records...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("draftkings: empty board for league %s", c.leagueID)
	}
	return all, nil
}

// fetchSubcategory requests the markets payload for one subcategory.
func (c *Client) fetchSubcategory(ctx context.Context, subID string) (*apiResponse, error) {
	params := url.Values{}
	params.Set("isBatchable", "false")
	params.Set("templateVars", c.leagueID+","+subID)
	params.Set("eventsQuery", fmt.Sprintf(
		"$filter=leagueId eq '%s' AND clientMetadata/Subcategories/any(s: s/Id eq '%s')",
		c.leagueID, subID,
	))
	params.Set("marketsQuery", fmt.Sprintf(
		"$filter=clientMetadata/subCategoryId eq '%s' AND tags/all(t: t ne 'SportcastBetBuilder')",
		subID,
	))
	params.Set("include", "Events")
	params.Set("entity", "events")
	// Cache buster; the CDN otherwise serves stale boards.
	params.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	endpoint := fmt.Sprintf(
		"%s/sites/%s/api/sportscontent/controldata/league/leagueSubcategory/v1/markets?%s",
		c.baseURL, c.site, params.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("draftkings: create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", "https://sportsbook.draftkings.com/")
	req.Header.Set("Origin", "https://sportsbook.draftkings.com")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("draftkings: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("draftkings: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("draftkings: unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("draftkings: decode response: %w", err)
	}
	return &payload, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
