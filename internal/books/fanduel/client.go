// Package fanduel implements the FanDuel sportsbook scraper. The board is
// assembled game by game: the NBA landing page lists upcoming events, each
// event page lists its player prop tabs, and each tab carries the markets.
package fanduel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/propscan/propscan/internal/domain"
)

const defaultBaseURL = "https://api.sportsbook.fanduel.com"

// Tabs that never contain per-player over/under props.
var skippedTabs = map[string]bool{
	"game-lines": true, "popular": true, "odds": true, "same-game-parlay": true,
	"quick-bets": true, "half": true, "quarter": true, "4th-quarter": true,
	"1st-quarter": true, "2nd-quarter": true, "3rd-quarter": true,
	"total-parlays": true, "team-props": true, "race-to": true, "margin": true,
	"parlays": true, "teasers": true, "featured": true, "live-sgp": true,
	"same-game-parlay™": true,
}

// ClientConfig holds the scraper's endpoint parameters.
type ClientConfig struct {
	// BaseURL overrides the production API root, mainly for tests.
	BaseURL string

	// APIKey is the _ak query parameter the sbapi endpoints require.
	APIKey string

	// Region is sent as the x-sportsbook-region header, e.g. "OH".
	Region string

	// PageID selects the landing page board, e.g. "nba".
	PageID string

	// DaysAhead bounds how far into the schedule games are scraped.
	DaysAhead int

	// Throttle is the pause between event-page requests.
	Throttle time.Duration
}

// Client fetches the FanDuel player prop board.
type Client struct {
	baseURL    string
	apiKey     string
	region     string
	pageID     string
	daysAhead  int
	throttle   time.Duration
	httpClient *http.Client
	parser     *parser
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a FanDuel scraper.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageID := cfg.PageID
	if pageID == "" {
		pageID = "nba"
	}
	daysAhead := cfg.DaysAhead
	if daysAhead <= 0 {
		daysAhead = 7
	}
	throttle := cfg.Throttle
	if throttle == 0 {
		throttle = 2 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		region:     cfg.Region,
		pageID:     pageID,
		daysAhead:  daysAhead,
		throttle:   throttle,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		parser:     newParser(),
		logger:     logger.With(slog.String("component", "fanduel")),
	}
}

// Book returns the canonical sportsbook identifier.
func (c *Client) Book() domain.Book {
	return domain.BookFanDuel
}

// Scrape walks every upcoming game's prop tabs and returns the combined
// board. A failed game or tab is logged and skipped.
func (c *Client) Scrape(ctx context.Context) ([]domain.CandidateRecord, error) {
	main, err := c.fetchMainPage(ctx)
	if err != nil {
		return nil, err
	}

	events := c.upcomingGames(main)
	if len(events) == 0 {
		return nil, fmt.Errorf("fanduel: no upcoming games on the %s board", c.pageID)
	}

	var all []domain.CandidateRecord
	for _, ev := range events {
		gameDate := c.parser.gameDate(ev.OpenDate)

		tabs, err := c.fetchTabs(ctx, ev.EventID)
		if err != nil {
			c.logger.WarnContext(ctx, "event tabs fetch failed",
				slog.Int64("event_id", ev.EventID),
				slog.String("game", ev.Name),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, tab := range tabs {
			if err := sleepCtx(ctx, c.throttle); err != nil {
				return all, err
			}
			page, err := c.fetchEventPage(ctx, ev.EventID, tab)
			if err != nil {
				c.logger.WarnContext(ctx, "prop tab fetch failed",
					slog.Int64("event_id", ev.EventID),
					slog.String("tab", tab),
					slog.String("error", err.Error()),
				)
				continue
			}
			all = append(all, c.parser.parseMarkets(page.Attachments.Markets, ev.Name, gameDate)...)
		}
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("fanduel: empty board across %d games", len(events))
	}
	return all, nil
}

// upcomingGames filters the landing page events down to real games inside
// the scrape window. Promotional "specials" entries carry no open date and
// no "@" in the name; both checks drop them.
func (c *Client) upcomingGames(main *mainPageResponse) []apiEvent {
	nowFn := c.now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().UTC()
	horizon := now.Add(time.Duration(c.daysAhead) * 24 * time.Hour)

	var events []apiEvent
	for _, ev := range main.Attachments.Events {
		if ev.OpenDate == "" || !strings.Contains(ev.Name, " @ ") {
			continue
		}
		open, err := time.Parse(time.RFC3339, ev.OpenDate)
		if err != nil {
			continue
		}
		if open.After(now) && open.Before(horizon) {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].EventID < events[j].EventID
	})
	return events
}

func (c *Client) fetchMainPage(ctx context.Context) (*mainPageResponse, error) {
	params := url.Values{}
	params.Set("page", "CUSTOM")
	params.Set("customPageId", c.pageID)
	params.Set("pbHorizontal", "false")
	params.Set("_ak", c.apiKey)
	params.Set("timezone", "America/New_York")

	var out mainPageResponse
	if err := c.doGet(ctx, "/sbapi/content-managed-page?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("fanduel: fetch %s board: %w", c.pageID, err)
	}
	return &out, nil
}

// fetchTabs requests the tab layout for one event and returns the player
// prop tab names.
func (c *Client) fetchTabs(ctx context.Context, eventID int64) ([]string, error) {
	page, err := c.fetchEventPage(ctx, eventID, "")
	if err != nil {
		return nil, err
	}

	var tabs []string
	for _, tab := range page.Layout.Tabs {
		name := strings.ReplaceAll(strings.ToLower(tab.Title), " ", "-")
		if name == "" || skippedTabs[name] {
			continue
		}
		tabs = append(tabs, name)
	}
	sort.Strings(tabs)
	return tabs, nil
}

func (c *Client) fetchEventPage(ctx context.Context, eventID int64, tab string) (*eventPageResponse, error) {
	params := url.Values{}
	params.Set("_ak", c.apiKey)
	params.Set("eventId", strconv.FormatInt(eventID, 10))
	if tab != "" {
		params.Set("tab", tab)
	}
	// Cache buster.
	params.Set("_", strconv.FormatInt(time.Now().Unix(), 10))

	var out eventPageResponse
	if err := c.doGet(ctx, "/sbapi/event-page?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("fanduel: fetch event %d tab %q: %w", eventID, tab, err)
	}
	return &out, nil
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.region != "" {
		req.Header.Set("x-sportsbook-region", c.region)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
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
