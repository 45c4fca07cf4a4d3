package cricketdata

import (
	"strings"
	"time"

	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/scoring"
)

type providerEnvelope struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type matchItem struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	MatchType      string      `json:"matchType"`
	Status         string      `json:"status"`
	Venue          string      `json:"venue"`
	Date           string      `json:"date"`
	DateTimeGMT    string      `json:"dateTimeGMT"`
	Teams          []string    `json:"teams"`
	Score          []scoreItem `json:"score"`
	SeriesID       string      `json:"series_id"`
	FantasyEnabled bool        `json:"fantasyEnabled"`
	MatchStarted   bool        `json:"matchStarted"`
	MatchEnded     bool        `json:"matchEnded"`
}

type scoreItem struct {
	Runs    int     `json:"r"`
	Wickets int     `json:"w"`
	Overs   float64 `json:"o"`
	Inning  string  `json:"inning"`
}

type seriesItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ODI       int    `json:"odi"`
	T20       int    `json:"t20"`
	Test      int    `json:"test"`
}

type squadItem struct {
	TeamName string       `json:"teamName"`
	Players  []playerItem `json:"players"`
}

type playerItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BattingStyle string `json:"battingStyle"`
	BowlingStyle string `json:"bowlingStyle"`
	Country      string `json:"country"`
	PlaceOfBirth string `json:"placeOfBirth"`
}

type inningsCard struct {
	Inning   string         `json:"inning"`
	Batting  []battingLine  `json:"batting"`
	Bowling  []bowlingLine  `json:"bowling"`
	Catching []catchingLine `json:"catching"`
}

type battingLine struct {
	Batsman       playerRef `json:"batsman"`
	DismissalText string    `json:"dismissal-text"`
	Runs          int       `json:"r"`
	Balls         int       `json:"b"`
	Fours         int       `json:"4s"`
	Sixes         int       `json:"6s"`
}

type bowlingLine struct {
	Bowler  playerRef `json:"bowler"`
	Overs   float64   `json:"o"`
	Maidens int       `json:"m"`
	Runs    int       `json:"r"`
	Wickets int       `json:"w"`
}

type catchingLine struct {
	Catcher playerRef `json:"catcher"`
	Stumped playerRef `json:"stumped"`
	RunOut  playerRef `json:"runout"`
}

type playerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (m matchItem) toDomain() match.Match {
	out := match.Match{
		ID:             m.ID,
		Name:           m.Name,
		MatchType:      m.MatchType,
		Status:         m.Status,
		Venue:          m.Venue,
		Teams:          m.Teams,
		SeriesID:       m.SeriesID,
		FantasyEnabled: m.FantasyEnabled,
		Started:        m.MatchStarted,
		Ended:          m.MatchEnded,
		StartAt:        parseProviderTime(m.DateTimeGMT, m.Date),
	}
	for _, s := range m.Score {
		out.Scores = append(out.Scores, match.InningsScore{
			Inning:  s.Inning,
			Runs:    s.Runs,
			Wickets: s.Wickets,
			Overs:   s.Overs,
		})
	}
	return out
}

func parseProviderTime(dateTimeGMT, date string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, strings.TrimSpace(dateTimeGMT)); err == nil {
			return t.UTC()
		}
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(date)); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func mapScorecard(cards []inningsCard) scoring.Scorecard {
	out := scoring.Scorecard{}
	fielding := make(map[string]*scoring.Fielding)

	credit := func(ref playerRef) *scoring.Fielding {
		if ref.ID == "" {
			return nil
		}
		f, ok := fielding[ref.ID]
		if !ok {
			f = &scoring.Fielding{PlayerRef: ref.ID}
			fielding[ref.ID] = f
		}
		return f
	}

	for _, card := range cards {
		bowledOrLBW := make(map[string]int)
		for _, line := range card.Batting {
			if line.Batsman.ID == "" {
				continue
			}
			if bowler, ok := bowlerCreditedForDismissal(line.DismissalText); ok {
				bowledOrLBW[bowler]++
			}
			out.Batting = append(out.Batting, scoring.BattingInnings{
				PlayerRef: line.Batsman.ID,
				Runs:      line.Runs,
				Balls:     line.Balls,
				Fours:     line.Fours,
				Sixes:     line.Sixes,
				Dismissed: isDismissed(line.DismissalText),
			})
		}
		for _, line := range card.Bowling {
			if line.Bowler.ID == "" {
				continue
			}
			out.Bowling = append(out.Bowling, scoring.BowlingInnings{
				PlayerRef:   line.Bowler.ID,
				Overs:       line.Overs,
				Maidens:     line.Maidens,
				Runs:        line.Runs,
				Wickets:     line.Wickets,
				BowledOrLBW: bowledOrLBW[normalizeBowlerName(line.Bowler.Name)],
			})
		}
		for _, line := range card.Catching {
			if f := credit(line.Catcher); f != nil {
				f.Catches++
			}
			if f := credit(line.Stumped); f != nil {
				f.Stumpings++
			}
			if f := credit(line.RunOut); f != nil {
				f.RunOuts++
			}
		}
	}

	for _, f := range fielding {
		out.Fielding = append(out.Fielding, *f)
	}

	return out
}

// bowlerCreditedForDismissal extracts the bowler named in a "b <bowler>" or
// "lbw b <bowler>" dismissal. Caught, stumped and run-out dismissals do not
// credit the bowled/LBW bonus.
func bowlerCreditedForDismissal(dismissalText string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(dismissalText))
	switch {
	case strings.HasPrefix(text, "lbw b "):
		return strings.TrimSpace(text[len("lbw b "):]), true
	case strings.HasPrefix(text, "b "):
		return strings.TrimSpace(text[len("b "):]), true
	default:
		return "", false
	}
}

func normalizeBowlerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isDismissed(dismissalText string) bool {
	text := strings.ToLower(strings.TrimSpace(dismissalText))
	switch text {
	case "", "not out", "batting", "did not bat", "dnb":
		return false
	default:
		return true
	}
}
