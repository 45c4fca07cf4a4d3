package notification

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

const (
	TypeContestJoined = "contest_joined"
	TypeResultsReady  = "results_ready"
	TypeSystem        = "system"
)

// Notification is a per-user message with an optional deep link.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Body      string
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
