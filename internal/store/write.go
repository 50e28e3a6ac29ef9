package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/offstage/offstage/internal/script"
)

// CreateTrip inserts a trip plus one player row per declared role and
// returns the new trip id.
func (s *Store) CreateTrip(ctx context.Context, title, timezone, firstScene string, roles []string, now time.Time) (string, error) {
	tripID := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trips (id, title, timezone, current_scene_name, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			tripID, title, timezone, firstScene, now.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert trip: %w", err)
		}
		for _, role := range roles {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO players (id, trip_id, role_name) VALUES (?, ?, ?)`,
				uuid.NewString(), tripID, role)
			if err != nil {
				return fmt.Errorf("insert player %q: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return tripID, nil
}

// ApplyOps applies one kernel call's persistence ops transactionally, in
// declaration order. Later ops may depend on earlier ones having been
// applied, so order is preserved exactly.
//
// Only the persistence vocabulary is handled here; updateUi, initiateCall,
// twiml, event, and log ops are integration signals the caller routes.
func (s *Store) ApplyOps(ctx context.Context, tripID string, ops []script.ResultOp, now time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, op := range ops {
			switch op := op.(type) {
			case script.UpdateTripFields:
				if err := applyTripFields(ctx, tx, tripID, op.Fields); err != nil {
					return err
				}
			case script.UpdatePlayerFields:
				if err := applyPlayerFields(ctx, tx, tripID, op.Role, op.Fields); err != nil {
					return err
				}
			case script.CreateMessage:
				_, err := tx.ExecContext(ctx,
					`INSERT INTO messages (id, trip_id, from_role, to_role, medium, content, reply_needed, created_at)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					uuid.NewString(), tripID, op.FromRole, op.ToRole, op.Medium,
					op.Content, boolInt(op.ReplyNeeded), now.UTC().Format(time.RFC3339))
				if err != nil {
					return fmt.Errorf("insert message: %w", err)
				}
			}
		}
		return nil
	})
}

// applyTripFields merges a nested partial into the trip row. The
// current_scene_name, history, and schedule keys route to their own
// columns; everything else deep-merges into fields.
func applyTripFields(ctx context.Context, tx *sql.Tx, tripID string, fields map[string]any) error {
	var fieldsJSON, historyJSON, scheduleJSON string
	row := tx.QueryRowContext(ctx,
		`SELECT fields, history, schedule FROM trips WHERE id = ?`, tripID)
	if err := row.Scan(&fieldsJSON, &historyJSON, &scheduleJSON); err != nil {
		return fmt.Errorf("read trip %s: %w", tripID, err)
	}

	tripFields, err := decodeMap(fieldsJSON)
	if err != nil {
		return err
	}
	history, err := decodeMap(historyJSON)
	if err != nil {
		return err
	}
	schedule, err := decodeMap(scheduleJSON)
	if err != nil {
		return err
	}

	scene := ""
	for key, value := range fields {
		switch key {
		case "current_scene_name":
			scene, _ = value.(string)
		case "history":
			if m, ok := value.(map[string]any); ok {
				script.MergeFields(history, m)
			}
		case "schedule":
			if m, ok := value.(map[string]any); ok {
				script.MergeFields(schedule, m)
			}
		default:
			script.MergeFields(tripFields, map[string]any{key: value})
		}
	}

	query := `UPDATE trips SET fields = ?, history = ?, schedule = ?`
	args := []any{encodeMap(tripFields), encodeMap(history), encodeMap(schedule)}
	if scene != "" {
		query += `, current_scene_name = ?`
		args = append(args, scene)
	}
	query += ` WHERE id = ?`
	args = append(args, tripID)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update trip %s: %w", tripID, err)
	}
	return nil
}

func applyPlayerFields(ctx context.Context, tx *sql.Tx, tripID, role string, fields map[string]any) error {
	var fieldsJSON string
	row := tx.QueryRowContext(ctx,
		`SELECT fields FROM players WHERE trip_id = ? AND role_name = ?`, tripID, role)
	if err := row.Scan(&fieldsJSON); err != nil {
		return fmt.Errorf("read player %s/%s: %w", tripID, role, err)
	}
	playerFields, err := decodeMap(fieldsJSON)
	if err != nil {
		return err
	}
	script.MergeFields(playerFields, fields)
	_, err = tx.ExecContext(ctx,
		`UPDATE players SET fields = ? WHERE trip_id = ? AND role_name = ?`,
		encodeMap(playerFields), tripID, role)
	if err != nil {
		return fmt.Errorf("update player %s/%s: %w", tripID, role, err)
	}
	return nil
}

// ScheduleActions persists scheduled actions for later replay.
func (s *Store) ScheduleActions(ctx context.Context, tripID string, actions []script.ScheduledAction) error {
	if len(actions) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, action := range actions {
			var eventJSON any
			if action.Event != nil {
				data, err := json.Marshal(action.Event)
				if err != nil {
					return fmt.Errorf("marshal event: %w", err)
				}
				eventJSON = string(data)
			}
			params, err := json.Marshal(action.Params)
			if err != nil {
				return fmt.Errorf("marshal params: %w", err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO scheduled_actions (id, trip_id, name, params, trigger_name, event, schedule_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), tripID, action.Name, string(params),
				action.TriggerName, eventJSON,
				action.ScheduleAt.UTC().Format(time.RFC3339Nano))
			if err != nil {
				return fmt.Errorf("insert scheduled action: %w", err)
			}
		}
		return nil
	})
}

// MarkApplied records a scheduled action as successfully replayed.
func (s *Store) MarkApplied(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_actions SET applied_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark applied %s: %w", id, err)
	}
	return nil
}

// MarkFailed records a scheduled action as failed without blocking the
// rest of its batch.
func (s *Store) MarkFailed(ctx context.Context, id string, at time.Time, cause error) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_actions SET failed_at = ?, error = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), cause.Error(), id)
	if err != nil {
		return fmt.Errorf("mark failed %s: %w", id, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decodeMap(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("decode json fields: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func encodeMap(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		// Fields originate from JSON-decoded script values; marshal
		// cannot fail for them.
		return "{}"
	}
	return string(data)
}
