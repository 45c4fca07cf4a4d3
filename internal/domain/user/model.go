package user

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEmailTaken  = errors.New("email already registered")
	ErrMobileTaken = errors.New("mobile number already registered")
	ErrNotFound    = errors.New("user not found")
)

var mobileRegex = regexp.MustCompile(`^[6-9]\d{9}$`)

// User is a registered account.
type User struct {
	ID           int64
	PublicID     string
	Email        string
	PasswordHash string
	FullName     string
	Mobile       string
	DateOfBirth  time.Time
	State        string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity carried through request contexts.
type Principal struct {
	UserID   string
	Email    string
	FullName string
	Mobile   string
}

// Stats holds per-user aggregate counters, lazily created on first read.
type Stats struct {
	UserID         int64
	TotalPoints    float64
	ContestsJoined int
	ContestsWon    int
	TeamsCreated   int
	Level          int
	XP             int
	UpdatedAt      time.Time
}

// StatsDelta is applied atomically to a user's counters.
type StatsDelta struct {
	Points         float64
	ContestsJoined int
	ContestsWon    int
	TeamsCreated   int
	XP             int
}

// LevelForXP maps accumulated experience to a level, starting at 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/1000 + 1
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidMobile(mobile string) bool {
	return mobileRegex.MatchString(strings.TrimSpace(mobile))
}
