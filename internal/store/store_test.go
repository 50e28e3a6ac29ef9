package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTrip(t *testing.T, s *Store) string {
	t.Helper()
	tripID, err := s.CreateTrip(context.Background(),
		"Test Run", "UTC", "INTRO", []string{"Player", "Guide"}, testutil.BaseTime)
	require.NoError(t, err)
	return tripID
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestCreateTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	trip, err := s.GetTrip(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, "Test Run", trip.Title)
	assert.Equal(t, "UTC", trip.Timezone)
	assert.Equal(t, "INTRO", trip.CurrentScene)
	assert.Empty(t, trip.Fields)
	assert.Empty(t, trip.History)
	assert.Equal(t, testutil.BaseTime, trip.CreatedAt)

	players, err := s.Players(ctx, tripID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Guide", players[0].RoleName)
	assert.Equal(t, "Player", players[1].RoleName)

	_, err = s.GetTrip(ctx, "no-such-trip")
	require.Error(t, err)
}

func TestApplyOps_FieldRouting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	ops := []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"cabana":             map[string]any{"monkeys": 2.0},
			"current_scene_name": "MAIN",
			"history":            map[string]any{"on_alert": "2026-03-14T15:00:00Z"},
			"schedule":           map[string]any{"ARRIVAL": "2026-03-14T16:00:00Z"},
		}},
	}
	require.NoError(t, s.ApplyOps(ctx, tripID, ops, testutil.BaseTime))

	trip, err := s.GetTrip(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, "MAIN", trip.CurrentScene)
	assert.Equal(t, map[string]any{"cabana": map[string]any{"monkeys": 2.0}}, trip.Fields)
	assert.Equal(t, map[string]any{"on_alert": "2026-03-14T15:00:00Z"}, trip.History)
	assert.Equal(t, map[string]any{"ARRIVAL": "2026-03-14T16:00:00Z"}, trip.Schedule)
}

func TestApplyOps_DeepMergeAndDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{"is_playing": true, "paused_time": 12.5},
		}},
	}, testutil.BaseTime))

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"audio": map[string]any{"is_playing": false, "paused_time": nil},
		}},
	}, testutil.BaseTime))

	trip, err := s.GetTrip(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"audio": map[string]any{"is_playing": false},
	}, trip.Fields)
}

func TestApplyOps_PlayerFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.UpdatePlayerFields{Role: "Guide", Fields: map[string]any{"briefed": true}},
	}, testutil.BaseTime))

	players, err := s.Players(ctx, tripID)
	require.NoError(t, err)
	byRole := map[string]Player{}
	for _, p := range players {
		byRole[p.RoleName] = p
	}
	assert.Equal(t, map[string]any{"briefed": true}, byRole["Guide"].Fields)
	assert.Empty(t, byRole["Player"].Fields)
}

func TestApplyOps_CreateMessage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.CreateMessage{
			FromRole: "Guide", ToRole: "Player", Medium: "text",
			Content: "hello", ReplyNeeded: true,
		},
	}, testutil.BaseTime))

	messages, err := s.Messages(ctx, tripID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Guide", messages[0].FromRole)
	assert.Equal(t, "hello", messages[0].Content)
	assert.True(t, messages[0].ReplyNeeded)
	assert.Equal(t, testutil.BaseTime, messages[0].CreatedAt)
}

func TestApplyOps_SignalOpsIgnored(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.UpdateUI{Role: "Guide"},
		script.EventOp{Event: script.Event{"type": "cue_signaled", "cue": "GO"}},
		script.Log{Level: script.LogLevelInfo, Message: "noted"},
	}, testutil.BaseTime))

	trip, err := s.GetTrip(ctx, tripID)
	require.NoError(t, err)
	assert.Empty(t, trip.Fields)
}

func TestEvalContext_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ApplyOps(ctx, tripID, []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{
			"armed":              true,
			"current_scene_name": "MAIN",
			"history":            map[string]any{"on_alert": "2026-03-14T15:00:00Z"},
		}},
		script.UpdatePlayerFields{Role: "Guide", Fields: map[string]any{"briefed": true}},
	}, testutil.BaseTime))

	evalCtx, err := s.EvalContext(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, "MAIN", evalCtx.CurrentScene)
	assert.Equal(t, map[string]any{"armed": true}, evalCtx.Fields)
	assert.Equal(t, map[string]any{"on_alert": "2026-03-14T15:00:00Z"}, evalCtx.History)
	require.Len(t, evalCtx.Roles["Guide"], 1)
	assert.Equal(t, map[string]any{"briefed": true}, evalCtx.Roles["Guide"][0])
	assert.Nil(t, evalCtx.Event)
}

func TestScheduleActions_DueOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	later := testutil.BaseTime.Add(10 * time.Minute)
	sooner := testutil.BaseTime.Add(5 * time.Minute)
	require.NoError(t, s.ScheduleActions(ctx, tripID, []script.ScheduledAction{
		{Name: "second", ScheduleAt: later, TriggerName: "t"},
		{Name: "first", ScheduleAt: sooner, TriggerName: "t",
			Params: map[string]any{"value_ref": "x"},
			Event:  script.Event{"type": "cue_signaled", "cue": "GO"}},
	}))

	// Nothing due yet.
	due, err := s.DueActions(ctx, testutil.BaseTime, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = s.DueActions(ctx, sooner, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "first", due[0].Action.Name)
	assert.Equal(t, map[string]any{"value_ref": "x"}, due[0].Action.Params)
	assert.Equal(t, script.Event{"type": "cue_signaled", "cue": "GO"}, due[0].Action.Event)
	assert.True(t, due[0].Action.ScheduleAt.Equal(sooner))

	due, err = s.DueActions(ctx, later, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "first", due[0].Action.Name)
	assert.Equal(t, "second", due[1].Action.Name)

	// Limit respects the same ordering.
	due, err = s.DueActions(ctx, later, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "first", due[0].Action.Name)
}

func TestMarkAppliedAndFailed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	at := testutil.BaseTime.Add(time.Minute)
	require.NoError(t, s.ScheduleActions(ctx, tripID, []script.ScheduledAction{
		{Name: "a", ScheduleAt: at},
		{Name: "b", ScheduleAt: at},
	}))

	count, err := s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	due, err := s.DueActions(ctx, at, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)

	require.NoError(t, s.MarkApplied(ctx, due[0].ID, at))
	require.NoError(t, s.MarkFailed(ctx, due[1].ID, at, errors.New("boom")))

	due, err = s.DueActions(ctx, at, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	count, err = s.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPendingActions_IncludesFuture(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tripID := createTrip(t, s)

	require.NoError(t, s.ScheduleActions(ctx, tripID, []script.ScheduledAction{
		{Name: "far", ScheduleAt: time.Now().Add(24 * time.Hour)},
	}))

	pending, err := s.PendingActions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "far", pending[0].Action.Name)
}

func TestListTrips(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateTrip(ctx, "Older", "UTC", "A", nil, testutil.BaseTime)
	require.NoError(t, err)
	_, err = s.CreateTrip(ctx, "Newer", "UTC", "A", nil, testutil.BaseTime.Add(time.Hour))
	require.NoError(t, err)

	trips, err := s.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "Newer", trips[0].Title)
	assert.Equal(t, "Older", trips[1].Title)
}
