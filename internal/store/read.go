package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/offstage/offstage/internal/script"
)

// GetTrip reads one trip row.
func (s *Store) GetTrip(ctx context.Context, tripID string) (*Trip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, timezone, current_scene_name, fields, history, schedule, created_at
		 FROM trips WHERE id = ?`, tripID)

	var t Trip
	var fieldsJSON, historyJSON, scheduleJSON, createdAt string
	err := row.Scan(&t.ID, &t.Title, &t.Timezone, &t.CurrentScene,
		&fieldsJSON, &historyJSON, &scheduleJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s not found", tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("read trip %s: %w", tripID, err)
	}

	if t.Fields, err = decodeMap(fieldsJSON); err != nil {
		return nil, err
	}
	if t.History, err = decodeMap(historyJSON); err != nil {
		return nil, err
	}
	if t.Schedule, err = decodeMap(scheduleJSON); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse trip created_at: %w", err)
	}
	return &t, nil
}

// ListTrips returns all trips, newest first.
func (s *Store) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, timezone, current_scene_name, created_at
		 FROM trips ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &t.Timezone, &t.CurrentScene, &createdAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse trip created_at: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// Players reads a trip's player rows in role order.
func (s *Store) Players(ctx context.Context, tripID string) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, role_name, fields FROM players
		 WHERE trip_id = ? ORDER BY role_name, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var fieldsJSON string
		if err := rows.Scan(&p.ID, &p.TripID, &p.RoleName, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if p.Fields, err = decodeMap(fieldsJSON); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Messages reads a trip's messages, oldest first.
func (s *Store) Messages(ctx context.Context, tripID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, from_role, to_role, medium, content, reply_needed, created_at
		 FROM messages WHERE trip_id = ? ORDER BY created_at, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var replyNeeded int
		var createdAt string
		err := rows.Scan(&m.ID, &m.TripID, &m.FromRole, &m.ToRole, &m.Medium,
			&m.Content, &replyNeeded, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ReplyNeeded = replyNeeded != 0
		if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse message created_at: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// EvalContext assembles the kernel's read-only snapshot for one trip:
// flattened fields, per-role player projections, history and schedule
// maps, and the current scene. The event slot stays nil; callers set it
// per stimulus.
func (s *Store) EvalContext(ctx context.Context, tripID string) (*script.EvalContext, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	players, err := s.Players(ctx, tripID)
	if err != nil {
		return nil, err
	}

	roles := map[string][]map[string]any{}
	for _, p := range players {
		roles[p.RoleName] = append(roles[p.RoleName], p.Fields)
	}
	return &script.EvalContext{
		Fields:       trip.Fields,
		Roles:        roles,
		History:      trip.History,
		Schedule:     trip.Schedule,
		CurrentScene: trip.CurrentScene,
	}, nil
}

// DueActions returns unapplied, unfailed scheduled actions whose
// schedule_at is at or before now, in (schedule_at, id) order, which is
// what makes replay deterministic.
func (s *Store) DueActions(ctx context.Context, now time.Time, limit int) ([]PendingAction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, name, params, trigger_name, event, schedule_at
		 FROM scheduled_actions
		 WHERE applied_at IS NULL AND failed_at IS NULL AND schedule_at <= ?
		 ORDER BY schedule_at, id LIMIT ?`,
		now.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("list due actions: %w", err)
	}
	defer rows.Close()

	var pending []PendingAction
	for rows.Next() {
		var p PendingAction
		var paramsJSON, scheduleAt string
		var eventJSON sql.NullString
		err := rows.Scan(&p.ID, &p.TripID, &p.Action.Name, &paramsJSON,
			&p.Action.TriggerName, &eventJSON, &scheduleAt)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled action: %w", err)
		}
		if p.Action.Params, err = decodeMap(paramsJSON); err != nil {
			return nil, err
		}
		if eventJSON.Valid {
			var ev map[string]any
			if err := json.Unmarshal([]byte(eventJSON.String), &ev); err != nil {
				return nil, fmt.Errorf("decode scheduled event: %w", err)
			}
			p.Action.Event = script.Event(ev)
		}
		if p.Action.ScheduleAt, err = time.Parse(time.RFC3339Nano, scheduleAt); err != nil {
			return nil, fmt.Errorf("parse schedule_at: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// PendingActions returns every unapplied, unfailed scheduled action
// regardless of due time, in (schedule_at, id) order. Used by tooling
// that inspects the queue; replay goes through DueActions.
func (s *Store) PendingActions(ctx context.Context, limit int) ([]PendingAction, error) {
	// A far-future horizon reuses the due-action scan and its ordering.
	horizon := time.Now().AddDate(100, 0, 0)
	return s.DueActions(ctx, horizon, limit)
}

// PendingCount reports how many scheduled actions remain unapplied.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM scheduled_actions
		 WHERE applied_at IS NULL AND failed_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}
