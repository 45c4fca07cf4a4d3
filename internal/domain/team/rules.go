package team

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTeamSize      = errors.New("invalid team data")
	ErrExceededCredits      = errors.New("credit budget exceeded")
	ErrExceededSideLimit    = errors.New("max players from one side exceeded")
	ErrDuplicatePlayer      = errors.New("duplicate player in team")
	ErrCaptainRequired      = errors.New("exactly one captain is required")
	ErrViceCaptainRequired  = errors.New("exactly one vice-captain is required")
	ErrCaptainIsViceCaptain = errors.New("captain and vice-captain must differ")
	ErrUnknownPlayerRole    = errors.New("unknown player role")
	ErrTeamLimitReached     = errors.New("team limit reached for this match")
)

// Rules stores line-up validation parameters.
type Rules struct {
	TeamSize          int
	CreditCap         float64
	MaxPlayersPerSide int
	MaxTeamsPerMatch  int
}

func DefaultRules() Rules {
	return Rules{
		TeamSize:          11,
		CreditCap:         100,
		MaxPlayersPerSide: 7,
		MaxTeamsPerMatch:  5,
	}
}

var knownRoles = map[string]struct{}{
	RoleBatsman:      {},
	RoleBowler:       {},
	RoleAllRounder:   {},
	RoleWicketKeeper: {},
}

// NormalizeRole maps provider role strings onto the canonical set.
func NormalizeRole(raw string) (string, bool) {
	role := strings.ToLower(strings.TrimSpace(raw))
	role = strings.ReplaceAll(role, "-", "")
	role = strings.ReplaceAll(role, " ", "")
	switch role {
	case "bat", "batter", RoleBatsman:
		return RoleBatsman, true
	case "bowl", RoleBowler:
		return RoleBowler, true
	case "all", "allrounder", "battingallrounder", "bowlingallrounder":
		return RoleAllRounder, true
	case "wk", "wkbatsman", "wicketkeeper", "keeper":
		return RoleWicketKeeper, true
	default:
		return "", false
	}
}

// ValidatePlayers checks a full line-up against the rules.
func ValidatePlayers(players []Player, rules Rules) error {
	if len(players) != rules.TeamSize {
		return fmt.Errorf("%w: expected %d players, got %d", ErrInvalidTeamSize, rules.TeamSize, len(players))
	}

	sideCounter := make(map[string]int)
	playerSet := make(map[string]struct{})
	captains := 0
	viceCaptains := 0
	var totalCost float64

	for _, p := range players {
		if p.PlayerRef == "" {
			return fmt.Errorf("%w: player ref is required", ErrInvalidTeamSize)
		}
		if _, exists := playerSet[p.PlayerRef]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.PlayerRef)
		}
		playerSet[p.PlayerRef] = struct{}{}

		if _, ok := knownRoles[p.Role]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPlayerRole, p.Role)
		}
		if p.CreditCost <= 0 {
			return fmt.Errorf("%w: player credit must be greater than zero: %s", ErrInvalidTeamSize, p.PlayerRef)
		}

		if p.IsCaptain {
			captains++
		}
		if p.IsViceCaptain {
			viceCaptains++
		}
		if p.IsCaptain && p.IsViceCaptain {
			return ErrCaptainIsViceCaptain
		}

		side := strings.TrimSpace(p.TeamName)
		if side != "" {
			sideCounter[side]++
			if sideCounter[side] > rules.MaxPlayersPerSide {
				return fmt.Errorf("%w: side=%s max=%d", ErrExceededSideLimit, side, rules.MaxPlayersPerSide)
			}
		}

		totalCost += p.CreditCost
	}

	if captains != 1 {
		return ErrCaptainRequired
	}
	if viceCaptains != 1 {
		return ErrViceCaptainRequired
	}
	if totalCost > rules.CreditCap {
		return fmt.Errorf("%w: cap=%.1f used=%.1f", ErrExceededCredits, rules.CreditCap, totalCost)
	}

	return nil
}
