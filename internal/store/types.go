package store

import (
	"time"

	"github.com/offstage/offstage/internal/script"
)

// Trip is one running instance of a script.
type Trip struct {
	ID           string
	Title        string
	Timezone     string
	CurrentScene string
	Fields       map[string]any
	History      map[string]any
	Schedule     map[string]any
	CreatedAt    time.Time
}

// Player is one role's state within a trip.
type Player struct {
	ID       string
	TripID   string
	RoleName string
	Fields   map[string]any
}

// Message is one persisted message row.
type Message struct {
	ID          string
	TripID      string
	FromRole    string
	ToRole      string
	Medium      string
	Content     string
	ReplyNeeded bool
	CreatedAt   time.Time
}

// PendingAction is a persisted scheduled action awaiting replay.
type PendingAction struct {
	ID     string
	TripID string
	Action script.ScheduledAction
}
