package scoring

// Rules is the fantasy point table applied to a match scorecard. Values follow
// common T20 conventions; multipliers for captain and vice-captain are applied
// by the caller per team, not here.
type Rules struct {
	Run             float64
	FourBonus       float64
	SixBonus        float64
	ThirtyBonus     float64
	FiftyBonus      float64
	HundredBonus    float64
	DuckPenalty     float64
	Wicket          float64
	BowledLBWBonus  float64
	ThreeWicketHaul float64
	FiveWicketHaul  float64
	Maiden          float64
	Catch           float64
	ThreeCatchBonus float64
	Stumping        float64
	RunOut          float64
}

func DefaultRules() Rules {
	return Rules{
		Run:             1,
		FourBonus:       1,
		SixBonus:        2,
		ThirtyBonus:     4,
		FiftyBonus:      8,
		HundredBonus:    16,
		DuckPenalty:     -2,
		Wicket:          25,
		BowledLBWBonus:  8,
		ThreeWicketHaul: 4,
		FiveWicketHaul:  8,
		Maiden:          12,
		Catch:           8,
		ThreeCatchBonus: 4,
		Stumping:        12,
		RunOut:          6,
	}
}

// BattingInnings is one batter's normalized scorecard line.
type BattingInnings struct {
	PlayerRef string
	Runs      int
	Balls     int
	Fours     int
	Sixes     int
	Dismissed bool
}

// BowlingInnings is one bowler's normalized scorecard line.
type BowlingInnings struct {
	PlayerRef     string
	Overs         float64
	Maidens       int
	Runs          int
	Wickets       int
	BowledOrLBW   int
}

// Fielding aggregates a player's fielding credits across the match.
type Fielding struct {
	PlayerRef string
	Catches   int
	Stumpings int
	RunOuts   int
}

func ScoreBatting(in BattingInnings, rules Rules) float64 {
	points := float64(in.Runs)*rules.Run +
		float64(in.Fours)*rules.FourBonus +
		float64(in.Sixes)*rules.SixBonus

	switch {
	case in.Runs >= 100:
		points += rules.HundredBonus
	case in.Runs >= 50:
		points += rules.FiftyBonus
	case in.Runs >= 30:
		points += rules.ThirtyBonus
	}

	if in.Dismissed && in.Runs == 0 && in.Balls > 0 {
		points += rules.DuckPenalty
	}

	return points
}

func ScoreBowling(in BowlingInnings, rules Rules) float64 {
	points := float64(in.Wickets)*rules.Wicket +
		float64(in.BowledOrLBW)*rules.BowledLBWBonus +
		float64(in.Maidens)*rules.Maiden

	switch {
	case in.Wickets >= 5:
		points += rules.FiveWicketHaul
	case in.Wickets >= 3:
		points += rules.ThreeWicketHaul
	}

	return points
}

func ScoreFielding(in Fielding, rules Rules) float64 {
	points := float64(in.Catches)*rules.Catch +
		float64(in.Stumpings)*rules.Stumping +
		float64(in.RunOuts)*rules.RunOut

	if in.Catches >= 3 {
		points += rules.ThreeCatchBonus
	}

	return points
}

// Scorecard collects a full match's normalized lines keyed by nothing; the
// aggregation to per-player totals happens in PlayerTotals.
type Scorecard struct {
	Batting  []BattingInnings
	Bowling  []BowlingInnings
	Fielding []Fielding
}

// PlayerTotals folds a scorecard into base fantasy points per player ref.
func PlayerTotals(card Scorecard, rules Rules) map[string]float64 {
	totals := make(map[string]float64)
	for _, in := range card.Batting {
		if in.PlayerRef == "" {
			continue
		}
		totals[in.PlayerRef] += ScoreBatting(in, rules)
	}
	for _, in := range card.Bowling {
		if in.PlayerRef == "" {
			continue
		}
		totals[in.PlayerRef] += ScoreBowling(in, rules)
	}
	for _, in := range card.Fielding {
		if in.PlayerRef == "" {
			continue
		}
		totals[in.PlayerRef] += ScoreFielding(in, rules)
	}
	return totals
}

// Captain and vice-captain multipliers applied to a team's players.
const (
	CaptainMultiplier     = 2.0
	ViceCaptainMultiplier = 1.5
)
