package cricketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crickarena/crickarena/internal/platform/resilience"
	"github.com/crickarena/crickarena/internal/usecase"
)

func newTestClient(serverURL string, cfg ClientConfig) *Client {
	cfg.BaseURL = serverURL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-api-key"
	}
	return NewClient(cfg)
}

func TestClient_CurrentMatches(t *testing.T) {
	var gotAPIKey atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/currentMatches" {
			t.Errorf("path = %q, want /currentMatches", r.URL.Path)
		}
		gotAPIKey.Store(r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": [
				{
					"id": "m1",
					"name": "India vs Australia",
					"matchType": "t20",
					"status": "Match not started",
					"venue": "Wankhede Stadium",
					"dateTimeGMT": "2026-03-07T14:30:00",
					"teams": ["India", "Australia"],
					"series_id": "s1",
					"fantasyEnabled": true,
					"matchStarted": false,
					"matchEnded": false
				},
				{
					"id": "m2",
					"name": "England vs Pakistan",
					"matchStarted": true,
					"matchEnded": false,
					"score": [{"r": 187, "w": 4, "o": 18.3, "inning": "England Inning 1"}]
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})
	matches, err := client.CurrentMatches(context.Background())
	if err != nil {
		t.Fatalf("CurrentMatches: %v", err)
	}
	if gotAPIKey.Load() != "test-api-key" {
		t.Fatalf("apikey param = %v", gotAPIKey.Load())
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	first := matches[0]
	if first.ID != "m1" || !first.FantasyEnabled || first.Started {
		t.Fatalf("first match = %+v", first)
	}
	wantStart := time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)
	if !first.StartAt.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", first.StartAt, wantStart)
	}

	second := matches[1]
	if !second.Started || len(second.Scores) != 1 {
		t.Fatalf("second match = %+v", second)
	}
	if second.Scores[0].Runs != 187 || second.Scores[0].Overs != 18.3 {
		t.Fatalf("score = %+v", second.Scores[0])
	}
}

func TestClient_MatchInfo_Validation(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status": "success", "data": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})

	if _, err := client.MatchInfo(context.Background(), "  "); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("blank id error = %v, want ErrInvalidInput", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("blank id reached the server %d times", calls.Load())
	}

	if _, err := client.MatchInfo(context.Background(), "missing"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("empty payload error = %v, want ErrNotFound", err)
	}
}

func TestClient_ProviderFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "failure", "reason": "invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})
	_, err := client.CurrentMatches(context.Background())
	if err == nil {
		t.Fatal("expected error for failure envelope")
	}
	if got := err.Error(); !strings.Contains(got, "invalid api key") {
		t.Fatalf("error = %q, want provider reason surfaced", got)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status": "success", "data": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{MaxRetries: 1})
	if _, err := client.CurrentMatches(context.Background()); err != nil {
		t.Fatalf("CurrentMatches after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("requests = %d, want 2", calls.Load())
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{MaxRetries: 3})
	_, err := client.CurrentMatches(context.Background())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Fatalf("requests = %d, want 1", calls.Load())
	}
}

func TestClient_CircuitBreakerShedsLoad(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.CurrentMatches(context.Background()); err == nil {
			t.Fatalf("call %d succeeded against a failing provider", i)
		}
	}

	_, err := client.CurrentMatches(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("open breaker error = %v, want ErrDependencyUnavailable", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("requests = %d, want 2 before the breaker opened", calls.Load())
	}
}

func TestClient_MatchScorecardMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"id": "m1",
				"scorecard": [
					{
						"inning": "India Inning 1",
						"batting": [
							{"batsman": {"id": "p1", "name": "Opener"}, "dismissal-text": "b Starc", "r": 64, "b": 40, "4s": 6, "6s": 3},
							{"batsman": {"id": "p2", "name": "Anchor"}, "dismissal-text": "lbw b Starc", "r": 33, "b": 41, "4s": 3, "6s": 0},
							{"batsman": {"id": "p3", "name": "Finisher"}, "dismissal-text": "c Carey b Starc", "r": 18, "b": 9, "4s": 1, "6s": 1},
							{"batsman": {"id": "p4", "name": "Tail"}, "dismissal-text": "not out", "r": 5, "b": 4, "4s": 0, "6s": 0}
						],
						"bowling": [
							{"bowler": {"id": "p9", "name": "Starc"}, "o": 4, "m": 1, "r": 28, "w": 3}
						],
						"catching": [
							{"catcher": {"id": "p5"}},
							{"catcher": {"id": "p5"}, "runout": {"id": "p6"}},
							{"stumped": {"id": "p7"}}
						]
					}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})
	card, err := client.MatchScorecard(context.Background(), "m1")
	if err != nil {
		t.Fatalf("MatchScorecard: %v", err)
	}

	if len(card.Batting) != 4 {
		t.Fatalf("batting lines = %d, want 4", len(card.Batting))
	}
	if !card.Batting[0].Dismissed || !card.Batting[1].Dismissed || !card.Batting[2].Dismissed {
		t.Fatal("dismissed batsmen should be marked dismissed")
	}
	if card.Batting[3].Dismissed {
		t.Fatal("not-out batsman should not be dismissed")
	}

	if len(card.Bowling) != 1 || card.Bowling[0].Wickets != 3 || card.Bowling[0].Maidens != 1 {
		t.Fatalf("bowling = %+v", card.Bowling)
	}
	// Bowled plus LBW count toward the bonus, the catch does not.
	if card.Bowling[0].BowledOrLBW != 2 {
		t.Fatalf("bowled/lbw credit = %d, want 2", card.Bowling[0].BowledOrLBW)
	}

	byRef := map[string]int{}
	stumpings := map[string]int{}
	runOuts := map[string]int{}
	for _, f := range card.Fielding {
		byRef[f.PlayerRef] = f.Catches
		stumpings[f.PlayerRef] = f.Stumpings
		runOuts[f.PlayerRef] = f.RunOuts
	}
	if byRef["p5"] != 2 {
		t.Fatalf("p5 catches = %d, want 2", byRef["p5"])
	}
	if stumpings["p7"] != 1 {
		t.Fatalf("p7 stumpings = %d, want 1", stumpings["p7"])
	}
	if runOuts["p6"] != 1 {
		t.Fatalf("p6 run outs = %d, want 1", runOuts["p6"])
	}
}

func TestClient_MissingScorecardIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "data": {"id": "m1", "scorecard": []}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, ClientConfig{})
	if _, err := client.MatchScorecard(context.Background(), "m1"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRedactAPIKey(t *testing.T) {
	t.Parallel()

	in := `Get "https://api.example.com/v1/currentMatches?apikey=super-secret&offset=0": dial tcp: timeout`
	got := redactAPIKey(in)
	if strings.Contains(got, "super-secret") {
		t.Fatalf("redacted text still contains the key: %q", got)
	}
	if !strings.Contains(got, "apikey=***") {
		t.Fatalf("redacted text = %q", got)
	}
}

func TestBowlerCreditedForDismissal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text       string
		wantBowler string
		wantOK     bool
	}{
		{"b Starc", "starc", true},
		{"lbw b Starc", "starc", true},
		{" LBW b Cummins ", "cummins", true},
		{"c Carey b Cummins", "", false},
		{"st Carey b Lyon", "", false},
		{"run out", "", false},
		{"not out", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		bowler, ok := bowlerCreditedForDismissal(tc.text)
		if ok != tc.wantOK || bowler != tc.wantBowler {
			t.Errorf("bowlerCreditedForDismissal(%q) = (%q, %v), want (%q, %v)", tc.text, bowler, ok, tc.wantBowler, tc.wantOK)
		}
	}
}

func TestIsDismissed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want bool
	}{
		{"", false},
		{"not out", false},
		{"  Batting ", false},
		{"DNB", false},
		{"b Starc", true},
		{"c Carey b Cummins", true},
		{"run out", true},
	}
	for _, tc := range cases {
		if got := isDismissed(tc.text); got != tc.want {
			t.Errorf("isDismissed(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

