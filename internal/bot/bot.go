// Package bot holds the session-scoped decision loop: who we control, how
// long we may think, and what to do with each snapshot.
package bot

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/perception"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/policy"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/render"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
)

var (
	// ErrNotInitialized is returned for snapshots that arrive before lobby data.
	ErrNotInitialized = errors.New("bot not initialized: no lobby data yet")
	// ErrStaleTick is returned for a snapshot not newer than the last one.
	ErrStaleTick = errors.New("stale tick")
)

// Decision is the outcome of one tick.
type Decision struct {
	Action  core.Action
	Me      perception.Result
	Elapsed time.Duration
	// Skip is set when Elapsed exceeded the response budget; the server
	// already moved on, so the response should be withheld.
	Skip bool
}

// Option configures a Bot.
type Option func(*Bot)

// WithBoard renders every snapshot to w before deciding.
func WithBoard(w io.Writer, r *render.Renderer) Option {
	return func(b *Bot) {
		b.boardOut = w
		b.renderer = r
	}
}

// WithClock replaces time.Now; tests use it to control elapsed time.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// Bot runs perception and a policy for each snapshot.
type Bot struct {
	policy policy.Policy
	logger *slog.Logger
	now    func() time.Time

	renderer *render.Renderer
	boardOut io.Writer

	mu       sync.Mutex
	lobby    *core.LobbyData
	budget   time.Duration
	lastTick int
	started  bool
}

func New(p policy.Policy, logger *slog.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{policy: p, logger: logger, now: time.Now, lastTick: -1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init stores the lobby data. The response budget is one millisecond short
// of the broadcast interval; a zero interval means no budget.
func (b *Bot) Init(l core.LobbyData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lobby = &l
	b.budget = 0
	if l.BroadcastInterval > time.Millisecond {
		b.budget = l.BroadcastInterval - time.Millisecond
	}
	b.lastTick = -1

	teams := make([]string, 0, len(l.Teams))
	for _, t := range l.Teams {
		teams = append(teams, fmt.Sprintf("%s(%d)", t.Name, len(t.Players)))
	}
	b.logger.Info("Bot initialized",
		"playerId", l.PlayerID,
		"team", l.TeamName,
		"gridDimension", l.GridDimension,
		"numberOfPlayers", l.NumberOfPlayers,
		"teams", teams,
		"budget", b.budget)
}

// Ready reports whether lobby data has been received.
func (b *Bot) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lobby != nil
}

// ControlledID is the player id from lobby data.
func (b *Bot) ControlledID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lobby == nil {
		return ""
	}
	return b.lobby.PlayerID
}

// Budget is the per-tick response budget; zero means unlimited.
func (b *Bot) Budget() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.budget
}

// NextMove decides the tick's action. received is when the snapshot frame
// arrived; the budget is measured from it.
func (b *Bot) NextMove(s core.Snapshot, received time.Time) (Decision, error) {
	b.mu.Lock()
	if b.lobby == nil {
		b.mu.Unlock()
		return Decision{}, ErrNotInitialized
	}
	if s.Tick <= b.lastTick {
		last := b.lastTick
		b.mu.Unlock()
		return Decision{}, fmt.Errorf("%w: got %d after %d", ErrStaleTick, s.Tick, last)
	}
	b.lastTick = s.Tick
	lobby := *b.lobby
	budget := b.budget
	b.mu.Unlock()

	if received.IsZero() {
		received = b.now()
	}

	if b.boardOut != nil && b.renderer != nil {
		fmt.Fprintf(b.boardOut, "Tick %d\n%s\n", s.Tick, b.renderer.Frame(s, lobby.PlayerID))
	}

	me := perception.Locate(s, lobby.PlayerID)
	if !me.Found {
		b.logger.Debug("Controlled tank not on the board", "tick", s.Tick)
	}

	action := b.policy.Decide(s, me)
	action = b.check(s, lobby, me, action)

	elapsed := b.now().Sub(received)
	d := Decision{Action: action, Me: me, Elapsed: elapsed}
	if budget > 0 && elapsed > budget {
		d.Skip = true
		b.logger.Warn("Decision exceeded response budget, skipping response",
			"tick", s.Tick, "elapsed", elapsed, "budget", budget)
	}

	b.logger.Debug("Decided action", "tick", s.Tick, "action", action.ActionKind(), "elapsed", elapsed)
	return d, nil
}

// check replaces actions the server would reject with Wait.
func (b *Bot) check(s core.Snapshot, lobby core.LobbyData, me perception.Result, a core.Action) core.Action {
	if a == nil {
		b.logger.Error("Policy returned no action, waiting", "tick", s.Tick)
		return core.Wait{}
	}

	kind, ok := lobby.ControlledTankKind()
	if me.Found {
		kind, ok = me.Tank.Type, true
	}
	var err error
	if ok {
		err = core.ValidateFor(kind, a)
	}
	if g, isGoTo := a.(core.GoTo); err == nil && isGoTo {
		err = g.Validate(s.Grid)
	}
	if err != nil {
		b.logger.Error("Policy produced an invalid action, waiting instead",
			"tick", s.Tick, "action", a.ActionKind(), "error", err)
		return core.Wait{}
	}
	return a
}

// OnWarning logs server feedback. Warnings never change state.
func (b *Bot) OnWarning(w core.Warning) {
	attrs := []any{"kind", w.Kind.String()}
	if w.Message != nil {
		attrs = append(attrs, "message", *w.Message)
	}
	b.logger.Warn("Warning received", attrs...)
}

// OnGameStarting marks the match as started.
func (b *Bot) OnGameStarting() {
	b.mu.Lock()
	b.started = true
	b.lastTick = -1
	b.mu.Unlock()
	b.logger.Info("Game is starting")
}

// OnGameEnded reports the final scores.
func (b *Bot) OnGameEnded(end core.GameEnd) {
	b.mu.Lock()
	b.started = false
	b.mu.Unlock()

	for _, team := range end.Teams {
		b.logger.Info("Final score", "team", team.Name, "score", team.Score)
		for _, p := range team.Players {
			b.logger.Info("Player result",
				"team", team.Name,
				"player", p.ID,
				"nickname", p.Nickname,
				"tankType", p.TankType.String(),
				"kills", p.Kills)
		}
	}
	if winner, ok := end.Winner(); ok {
		b.logger.Info("Game has ended", "winner", winner.Name)
	} else {
		b.logger.Info("Game has ended without a single winner")
	}
}

// Started reports whether a match is in progress.
func (b *Bot) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}
