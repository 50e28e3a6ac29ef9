// Package runner drives trips forward in real time: it drains due
// scheduled actions from the store, runs them through the kernel, applies
// the resulting ops, and re-enters any emitted events.
//
// The runner owns the concurrency discipline the kernel requires: at most
// one evaluation in flight per trip, with fetch-evaluate-apply-persist
// running under that trip's lock. Cross-trip work is independent.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/offstage/offstage/internal/engine"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/store"
)

// Options configures a Runner.
type Options struct {
	// Interval between due-action polls. Zero defaults to one second.
	Interval time.Duration

	// BatchLimit caps how many due actions one tick drains. Zero
	// defaults to 100.
	BatchLimit int

	// SafeMode catches per-action failures, records them as failed, and
	// continues the batch. Without it the first failure stops the tick.
	SafeMode bool
}

// Runner replays scheduled actions and routes incoming events.
type Runner struct {
	store  *store.Store
	kernel *engine.Kernel
	logger *slog.Logger
	opts   Options

	mu      sync.RWMutex // guards content
	content *script.ScriptContent

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a runner over a store, kernel, and loaded script.
func New(st *store.Store, kernel *engine.Kernel, content *script.ScriptContent, logger *slog.Logger, opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 100
	}
	return &Runner{
		store:   st,
		kernel:  kernel,
		logger:  logger,
		opts:    opts,
		content: content,
		locks:   map[string]*sync.Mutex{},
	}
}

// SetContent swaps the loaded script, used by watch-mode reload. Ticks
// already in flight finish against the old content.
func (r *Runner) SetContent(content *script.ScriptContent) {
	r.mu.Lock()
	r.content = content
	r.mu.Unlock()
}

func (r *Runner) scriptContent() *script.ScriptContent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// tripLock returns the mutex serializing evaluations for one trip.
func (r *Runner) tripLock(tripID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.locks[tripID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[tripID] = lock
	}
	return lock
}

// Run polls for due actions until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx, time.Now()); err != nil {
				if !r.opts.SafeMode {
					return err
				}
				r.logger.Error("tick failed", "error", err)
			}
		}
	}
}

// Tick drains one batch of due actions in (scheduleAt, id) order. An
// overdue action is applied "as of now" rather than its original
// timestamp, which bounds staleness.
func (r *Runner) Tick(ctx context.Context, now time.Time) error {
	pending, err := r.store.DueActions(ctx, now, r.opts.BatchLimit)
	if err != nil {
		return err
	}
	for _, p := range pending {
		if err := r.applyPending(ctx, p, now); err != nil {
			if !r.opts.SafeMode {
				return fmt.Errorf("scheduled action %s: %w", p.ID, err)
			}
			r.logger.Error("scheduled action failed",
				"id", p.ID, "trip", p.TripID, "action", p.Action.Name, "error", err)
			if markErr := r.store.MarkFailed(ctx, p.ID, now, err); markErr != nil {
				return markErr
			}
			continue
		}
		if err := r.store.MarkApplied(ctx, p.ID, now); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) applyPending(ctx context.Context, p store.PendingAction, now time.Time) error {
	_, err := r.ApplyAction(ctx, p.TripID, script.Action{
		Name:   p.Action.Name,
		Params: p.Action.Params,
	}, now)
	return err
}

// ApplyAction runs one action for a trip under its lock and persists the
// results.
func (r *Runner) ApplyAction(ctx context.Context, tripID string, action script.Action, now time.Time) (*engine.Result, error) {
	lock := r.tripLock(tripID)
	lock.Lock()
	defer lock.Unlock()
	return r.evaluate(ctx, tripID, now, func(ac *script.ActionContext) (*engine.Result, error) {
		return r.kernel.ApplyAction(ac, action)
	})
}

// ApplyEvent runs one event for a trip under its lock and persists the
// results.
func (r *Runner) ApplyEvent(ctx context.Context, tripID string, event script.Event, now time.Time) (*engine.Result, error) {
	lock := r.tripLock(tripID)
	lock.Lock()
	defer lock.Unlock()
	return r.evaluate(ctx, tripID, now, func(ac *script.ActionContext) (*engine.Result, error) {
		return r.kernel.ApplyEvent(ac, event)
	})
}

// maxEventDepth bounds cue chains: an authored cycle (cue A fires cue B
// fires cue A) stops re-entering after this many hops and logs instead.
const maxEventDepth = 10

// evaluate is the locked fetch-evaluate-apply-persist cycle. Event ops
// emitted by one evaluation re-enter the kernel against freshly applied
// state, in FIFO order across hops, until the queue drains or the chain
// hits maxEventDepth.
func (r *Runner) evaluate(ctx context.Context, tripID string, now time.Time, call func(*script.ActionContext) (*engine.Result, error)) (*engine.Result, error) {
	content := r.scriptContent()

	total := &engine.Result{}
	depth := 0
	var pending []script.Event
	next := call
	for next != nil {
		ac, err := r.actionContext(ctx, content, tripID, now)
		if err != nil {
			return nil, err
		}
		res, err := next(ac)
		if err != nil {
			return nil, err
		}
		next = nil

		if err := r.store.ApplyOps(ctx, tripID, res.Ops, now); err != nil {
			return nil, err
		}
		if err := r.store.ScheduleActions(ctx, tripID, res.Scheduled); err != nil {
			return nil, err
		}
		r.routeSignals(tripID, res.Ops)

		total.Ops = append(total.Ops, res.Ops...)
		total.Scheduled = append(total.Scheduled, res.Scheduled...)

		for _, op := range res.Ops {
			if eventOp, ok := op.(script.EventOp); ok {
				pending = append(pending, eventOp.Event)
			}
		}

		// Re-enter queued events one hop at a time so each evaluation
		// sees the previous hop's state.
		if len(pending) > 0 {
			if depth++; depth > maxEventDepth {
				r.logger.Warn("event chain exceeded max depth",
					"trip", tripID, "event", pending[0].Type())
				break
			}
			event := pending[0]
			pending = pending[1:]
			next = func(ac *script.ActionContext) (*engine.Result, error) {
				return r.kernel.ApplyEvent(ac, event)
			}
		}
	}
	return total, nil
}

func (r *Runner) actionContext(ctx context.Context, content *script.ScriptContent, tripID string, now time.Time) (*script.ActionContext, error) {
	evalCtx, err := r.store.EvalContext(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip, err := r.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	tz, err := time.LoadLocation(trip.Timezone)
	if err != nil {
		return nil, fmt.Errorf("trip %s has invalid timezone %q: %w", tripID, trip.Timezone, err)
	}
	return &script.ActionContext{
		ScriptContent: content,
		EvalContext:   evalCtx,
		EvaluateAt:    now,
		Timezone:      tz,
	}, nil
}

// routeSignals forwards non-persistence ops to their integrations. The
// telephony and client-push integrations are external; here they surface
// as structured log lines.
func (r *Runner) routeSignals(tripID string, ops []script.ResultOp) {
	for _, op := range ops {
		switch op := op.(type) {
		case script.Log:
			r.logger.Log(context.Background(), slogLevel(op.Level),
				"script log", "trip", tripID, "message", op.Message)
		case script.UpdateUI:
			r.logger.Debug("interface refresh", "trip", tripID, "role", op.Role)
		case script.InitiateCall:
			r.logger.Info("initiate call",
				"trip", tripID, "from", op.FromRole, "to", op.ToRole,
				"detect_voicemail", op.DetectVoicemail)
		case script.Twiml:
			r.logger.Info("twiml clause",
				"trip", tripID, "clause", op.Clause, "path", op.Path)
		}
	}
}

func slogLevel(level script.LogLevel) slog.Level {
	switch level {
	case script.LogLevelDebug:
		return slog.LevelDebug
	case script.LogLevelWarn:
		return slog.LevelWarn
	case script.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
