package cricketdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/scoring"
	"github.com/crickarena/crickarena/internal/platform/logging"
	"github.com/crickarena/crickarena/internal/platform/resilience"
	"github.com/crickarena/crickarena/internal/usecase"
)

const defaultBaseURL = "https://api.cricapi.com/v1"

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errProviderTransient = crerr.New("cricket data provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the third-party cricket statistics API. Response shapes are
// treated as a black box beyond the fields read here.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) CurrentMatches(ctx context.Context) ([]match.Match, error) {
	var envelope struct {
		providerEnvelope
		Data []matchItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/currentMatches", map[string]string{"offset": "0"}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch current matches: %w", err)
	}

	out := make([]match.Match, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, item.toDomain())
	}

	return out, nil
}

func (c *Client) MatchInfo(ctx context.Context, matchID string) (match.Match, error) {
	if strings.TrimSpace(matchID) == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	var envelope struct {
		providerEnvelope
		Data matchItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/match_info", map[string]string{"id": matchID}, &envelope); err != nil {
		return match.Match{}, fmt.Errorf("fetch match info id=%s: %w", matchID, err)
	}
	if envelope.Data.ID == "" {
		return match.Match{}, fmt.Errorf("%w: match %s", usecase.ErrNotFound, matchID)
	}

	return envelope.Data.toDomain(), nil
}

func (c *Client) MatchSquad(ctx context.Context, matchID string) ([]match.Squad, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	var envelope struct {
		providerEnvelope
		Data []squadItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/match_squad", map[string]string{"id": matchID}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch match squad id=%s: %w", matchID, err)
	}

	out := make([]match.Squad, 0, len(envelope.Data))
	for _, side := range envelope.Data {
		squad := match.Squad{TeamName: side.TeamName}
		for _, p := range side.Players {
			squad.Players = append(squad.Players, match.SquadPlayer{
				ID:       p.ID,
				Name:     p.Name,
				Role:     p.Role,
				Country:  p.Country,
				TeamName: side.TeamName,
			})
		}
		out = append(out, squad)
	}

	return out, nil
}

func (c *Client) MatchScorecard(ctx context.Context, matchID string) (scoring.Scorecard, error) {
	if strings.TrimSpace(matchID) == "" {
		return scoring.Scorecard{}, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	var envelope struct {
		providerEnvelope
		Data struct {
			matchItem
			Scorecard []inningsCard `json:"scorecard"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, "/match_scorecard", map[string]string{"id": matchID}, &envelope); err != nil {
		return scoring.Scorecard{}, fmt.Errorf("fetch match scorecard id=%s: %w", matchID, err)
	}
	if len(envelope.Data.Scorecard) == 0 {
		return scoring.Scorecard{}, fmt.Errorf("%w: scorecard for match %s", usecase.ErrNotFound, matchID)
	}

	return mapScorecard(envelope.Data.Scorecard), nil
}

func (c *Client) SeriesList(ctx context.Context, search string) ([]match.Series, error) {
	query := map[string]string{"offset": "0"}
	if strings.TrimSpace(search) != "" {
		query["search"] = strings.TrimSpace(search)
	}

	var envelope struct {
		providerEnvelope
		Data []seriesItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/series", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	out := make([]match.Series, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, match.Series{
			ID:        item.ID,
			Name:      item.Name,
			StartDate: item.StartDate,
			EndDate:   item.EndDate,
			ODI:       item.ODI,
			T20:       item.T20,
			Test:      item.Test,
		})
	}

	return out, nil
}

func (c *Client) Players(ctx context.Context, search string, offset int) ([]match.SquadPlayer, error) {
	query := map[string]string{"offset": fmt.Sprintf("%d", maxInt(offset, 0))}
	if strings.TrimSpace(search) != "" {
		query["search"] = strings.TrimSpace(search)
	}

	var envelope struct {
		providerEnvelope
		Data []playerItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/players", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	out := make([]match.SquadPlayer, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, match.SquadPlayer{
			ID:      item.ID,
			Name:    item.Name,
			Country: item.Country,
		})
	}

	return out, nil
}

func (c *Client) PlayerInfo(ctx context.Context, playerID string) (match.PlayerProfile, error) {
	if strings.TrimSpace(playerID) == "" {
		return match.PlayerProfile{}, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput)
	}

	var envelope struct {
		providerEnvelope
		Data playerItem `json:"data"`
	}
	if err := c.doJSON(ctx, "/players_info", map[string]string{"id": playerID}, &envelope); err != nil {
		return match.PlayerProfile{}, fmt.Errorf("fetch player info id=%s: %w", playerID, err)
	}
	if envelope.Data.ID == "" {
		return match.PlayerProfile{}, fmt.Errorf("%w: player %s", usecase.ErrNotFound, playerID)
	}

	return match.PlayerProfile{
		ID:           envelope.Data.ID,
		Name:         envelope.Data.Name,
		Role:         envelope.Data.Role,
		BattingStyle: envelope.Data.BattingStyle,
		BowlingStyle: envelope.Data.BowlingStyle,
		Country:      envelope.Data.Country,
		PlaceOfBirth: envelope.Data.PlaceOfBirth,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricket api circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: cricket data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("apikey", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	var probe providerEnvelope
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("decode provider envelope: %w", err)
	}
	if !strings.EqualFold(probe.Status, "success") {
		return fmt.Errorf("provider status %q: %s", probe.Status, probe.Reason)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errProviderTransient, redactAPIKey(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errProviderTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "cricket api request failed", "url", redactAPIKey(fullURL), "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errProviderTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func redactAPIKey(text string) string {
	return apiKeyParamRegex.ReplaceAllString(text, "apikey=***")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
