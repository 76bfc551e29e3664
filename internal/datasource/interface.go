package datasource

import (
	"context"
	"errors"
	"time"
)

// GameFeed defines the interface for fetching game data from external providers
type GameFeed interface {
	// FetchTeams retrieves the current league team list with season records.
	FetchTeams(ctx context.Context) ([]TeamData, error)

	// FetchGames retrieves games scheduled within the date range.
	FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error)

	// FetchInjuries retrieves current injury reports keyed by team identifier.
	FetchInjuries(ctx context.Context) ([]InjuryData, error)

	// Name returns the name of the feed
	Name() string
}

// TeamData represents normalized team data from any feed
type TeamData struct {
	SourceID     string  `json:"source_id"`
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Ties         int     `json:"ties"`
	Rating       float64 `json:"rating"`
}

// GameData represents normalized game data from any feed
type GameData struct {
	SourceID     string    `json:"source_id"`
	HomeTeamID   string    `json:"home_team_id"`
	AwayTeamID   string    `json:"away_team_id"`
	Kickoff      time.Time `json:"kickoff"`
	Venue        string    `json:"venue"`
	Dome         bool      `json:"dome"`
	Status       string    `json:"status"`
	HomePoints   *int      `json:"home_points"`
	AwayPoints   *int      `json:"away_points"`
	TemperatureF *float64  `json:"temperature_f"`
	WindMPH      *float64  `json:"wind_mph"`
	Precip       *float64  `json:"precipitation"`
	Conditions   *string   `json:"conditions"`
}

// InjuryData represents a normalized team injury report from any feed
type InjuryData struct {
	TeamID        string `json:"team_id"`
	KeyPlayersOut int    `json:"key_players_out"`
	TotalOut      int    `json:"total_out"`
}

// FeedError represents errors from feed operations
type FeedError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrFeedNotFound         = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
