package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yourusername/gridiron-engine/internal/metrics"
)

const feedName = "league_feed"

const dateLayout = "2006-01-02"

// FeedClient implements GameFeed against the league data API
type FeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

// feedTeam is the wire shape of a team record
type feedTeam struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Ties         int     `json:"ties"`
	Rating       float64 `json:"rating"`
}

// feedGame is the wire shape of a game record
type feedGame struct {
	ID         string   `json:"id"`
	HomeTeamID string   `json:"homeTeamId"`
	AwayTeamID string   `json:"awayTeamId"`
	Kickoff    string   `json:"kickoff"`
	Venue      string   `json:"venue"`
	Dome       bool     `json:"dome"`
	Status     string   `json:"status"`
	HomeScore  *int     `json:"homeScore"`
	AwayScore  *int     `json:"awayScore"`
	Weather    *struct {
		TemperatureF  float64 `json:"temperatureF"`
		WindMPH       float64 `json:"windMph"`
		Precipitation float64 `json:"precipitation"`
		Conditions    string  `json:"conditions"`
	} `json:"weather"`
}

// feedInjury is the wire shape of a team injury report
type feedInjury struct {
	TeamID        string `json:"teamId"`
	KeyPlayersOut int    `json:"keyPlayersOut"`
	TotalOut      int    `json:"totalOut"`
}

// NewFeedClient creates a new league feed client
func NewFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *log.Logger) *FeedClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &FeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the feed name
func (c *FeedClient) Name() string {
	return feedName
}

// FetchTeams retrieves the current league team list
func (c *FeedClient) FetchTeams(ctx context.Context) ([]TeamData, error) {
	url := fmt.Sprintf("%s/teams", c.baseURL)

	var raw []feedTeam
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	teams := make([]TeamData, 0, len(raw))
	for _, t := range raw {
		if t.ID == "" || t.Name == "" {
			c.logger.Printf("Skipping team with missing identity: %+v", t)
			continue
		}
		teams = append(teams, TeamData{
			SourceID:     t.ID,
			Name:         t.Name,
			Abbreviation: t.Abbreviation,
			Wins:         t.Wins,
			Losses:       t.Losses,
			Ties:         t.Ties,
			Rating:       t.Rating,
		})
	}

	return teams, nil
}

// FetchGames retrieves games scheduled within the date range
func (c *FeedClient) FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error) {
	url := fmt.Sprintf("%s/games?from=%s&to=%s",
		c.baseURL, startDate.Format(dateLayout), endDate.Format(dateLayout))

	var raw []feedGame
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	games := make([]GameData, 0, len(raw))
	for _, g := range raw {
		kickoff, err := time.Parse(time.RFC3339, g.Kickoff)
		if err != nil {
			c.logger.Printf("Skipping game %s with unparseable kickoff %q: %v", g.ID, g.Kickoff, err)
			continue
		}

		game := GameData{
			SourceID:   g.ID,
			HomeTeamID: g.HomeTeamID,
			AwayTeamID: g.AwayTeamID,
			Kickoff:    kickoff,
			Venue:      g.Venue,
			Dome:       g.Dome,
			Status:     g.Status,
			HomePoints: g.HomeScore,
			AwayPoints: g.AwayScore,
		}
		if g.Weather != nil {
			game.TemperatureF = &g.Weather.TemperatureF
			game.WindMPH = &g.Weather.WindMPH
			game.Precip = &g.Weather.Precipitation
			conditions := g.Weather.Conditions
			game.Conditions = &conditions
		}
		games = append(games, game)
	}

	return games, nil
}

// FetchInjuries retrieves current injury reports
func (c *FeedClient) FetchInjuries(ctx context.Context) ([]InjuryData, error) {
	url := fmt.Sprintf("%s/injuries", c.baseURL)

	var raw []feedInjury
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	injuries := make([]InjuryData, 0, len(raw))
	for _, inj := range raw {
		if inj.TeamID == "" {
			continue
		}
		injuries = append(injuries, InjuryData{
			TeamID:        inj.TeamID,
			KeyPlayersOut: inj.KeyPlayersOut,
			TotalOut:      inj.TotalOut,
		})
	}

	return injuries, nil
}

// getJSON executes an authenticated GET and decodes the response body
func (c *FeedClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewFeedError(feedName, ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordFeedRequest("error")
		return NewFeedError(feedName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.RecordFeedRequest("auth_failed")
		return NewFeedError(feedName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordFeedRequest("rate_limited")
		return NewFeedError(feedName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordFeedRequest("not_found")
		return NewFeedError(feedName, ErrCodeNotFound, "resource not found", ErrFeedNotFound)
	case resp.StatusCode >= 500:
		metrics.RecordFeedRequest("server_error")
		return NewFeedError(feedName, ErrCodeServerError, fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordFeedRequest("error")
		return NewFeedError(feedName, ErrCodeInvalidData, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFeedRequest("error")
		return NewFeedError(feedName, ErrCodeNetworkError, "failed to read response", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordFeedRequest("invalid_data")
		return NewFeedError(feedName, ErrCodeInvalidData, "failed to decode response", err)
	}

	metrics.RecordFeedRequest("success")
	return nil
}
