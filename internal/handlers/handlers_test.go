package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/bot"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/dispatcher"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/match"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/parser"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/policy"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu       sync.Mutex
	started  *core.Match
	ended    *core.GameEnd
	ticks    []core.TickRecord
	warnings []core.WarningRecord
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == "" {
		m.ID = "match-1"
	}
	b.started = m
	return nil
}

func (b *mockBackend) EndMatch(end *core.GameEnd) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended = end
	return nil
}

func (b *mockBackend) RecordTick(r *core.TickRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = append(b.ticks, *r)
	return nil
}

func (b *mockBackend) RecordWarning(w *core.WarningRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warnings = append(b.warnings, *w)
	return nil
}

var _ storage.Backend = (*mockBackend)(nil)

type fakeSender struct {
	sent []packet.Envelope
	err  error
}

func (f *fakeSender) Send(e packet.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeSender) types() []packet.Type {
	out := make([]packet.Type, 0, len(f.sent))
	for _, e := range f.sent {
		out = append(out, e.Type)
	}
	return out
}

type fakeMetrics struct {
	ticks    int
	warnings int
	matchID  string
}

func (f *fakeMetrics) RecordTick(matchID, _ string, _ core.TickRecord) error {
	f.ticks++
	f.matchID = matchID
	return nil
}

func (f *fakeMetrics) RecordWarning(string, string, core.WarningRecord) error {
	f.warnings++
	return nil
}

type fixture struct {
	svc     *Service
	sender  *fakeSender
	backend *mockBackend
	metrics *fakeMetrics
}

func newFixture(t *testing.T, opts ...bot.Option) *fixture {
	t.Helper()
	logManager := logging.NewSlogManager()
	logManager.Setup(nil, "error", nil)

	f := &fixture{sender: &fakeSender{}, backend: &mockBackend{}, metrics: &fakeMetrics{}}
	f.svc = NewService(Dependencies{
		Bot:        bot.New(policy.Passive{}, logManager.Logger(), opts...),
		Parser:     parser.NewParser(logManager.Logger()),
		Sender:     f.sender,
		LogManager: logManager,
		Metrics:    f.metrics,
		Now:        func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) },
	}, match.NewContext())
	f.svc.SetBackend(f.backend)
	return f
}

func event(t packet.Type, payload string) dispatcher.Event {
	var raw json.RawMessage
	if payload != "" {
		raw = json.RawMessage(payload)
	}
	return dispatcher.Event{Type: t, Payload: raw, Received: time.Now()}
}

const lobbyPayload = `{
  "playerId": "me",
  "teamName": "red",
  "teams": [
    {"name": "red", "color": 1, "players": [{"id": "me", "nickname": "bot", "tankType": 0}]},
    {"name": "blue", "color": 2, "players": [{"id": "foe", "nickname": "them", "tankType": 1}]}
  ],
  "serverSettings": {
    "gridDimension": 2, "numberOfPlayers": 2, "seed": 7,
    "broadcastInterval": 100, "sandboxMode": false, "eagerBroadcast": false,
    "matchName": "scrim", "version": "2.5.0"
  }
}`

// gameStatePayload is a 2x1 board with the controlled tank on zone A.
func gameStatePayload(tick int) string {
	return fmt.Sprintf(`{
  "id": "gs-%d",
  "tick": %d,
  "playerId": "me",
  "teams": [{"name": "red", "color": 1, "players": [{"id": "me", "nickname": "bot"}]}],
  "map": {
    "tiles": [[
      {"objects": [], "isVisible": true},
      {"objects": [{"type": "tank", "payload": {
        "ownerId": "me", "type": 0, "direction": 0,
        "turret": {"direction": 0, "bulletCount": 3, "ticksToBullet": 0, "ticksToDoubleBullet": 0},
        "health": 80, "ticksToRadar": 0, "isUsingRadar": false,
        "visibility": ["11"]
      }}], "isVisible": true, "zoneName": "A"}
    ]],
    "zones": [{"x": 1, "y": 0, "width": 1, "height": 1, "name": "A", "status": {"type": "neutral"}}]
  }
}`, tick, tick)
}

const gameEndPayload = `{"teams": [
  {"name": "red", "color": 1, "score": 4, "players": [{"id": "me", "nickname": "bot", "kills": 2, "tankType": 0}]},
  {"name": "blue", "color": 2, "score": 1, "players": []}
]}`

func (f *fixture) lobby(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.HandleLobbyData(context.Background(), event(packet.TypeLobbyData, lobbyPayload)))
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Dependencies{}, nil)
	require.NotNil(t, svc.GetMatchContext())
	assert.Nil(t, svc.GetMatchContext().GetMatch())
	assert.NotNil(t, svc.deps.Now)
}

func TestHandlePing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandlePing(context.Background(), event(packet.TypePing, "")))
	assert.Equal(t, []packet.Type{packet.TypePong}, f.sender.types())
}

func TestHandleLobbyData_StartsMatch(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)

	require.NotNil(t, f.backend.started)
	assert.Equal(t, "scrim", f.backend.started.Name())
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), f.backend.started.StartedAt)
	assert.Same(t, f.backend.started, f.svc.GetMatchContext().GetMatch())
	assert.Equal(t, "me", f.svc.deps.Bot.ControlledID())
	assert.Equal(t, 99*time.Millisecond, f.svc.deps.Bot.Budget())

	first := f.backend.started
	f.lobby(t)
	assert.Same(t, first, f.svc.GetMatchContext().GetMatch(), "re-sent lobby data keeps the match")
}

func TestHandleLobbyData_Malformed(t *testing.T) {
	f := newFixture(t)
	err := f.svc.HandleLobbyData(context.Background(), event(packet.TypeLobbyData, `{"teams": 3}`))
	assert.Error(t, err)
	assert.Nil(t, f.backend.started)
}

func TestHandleGameStarting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandleGameStarting(context.Background(), event(packet.TypeGameStarting, "")))
	assert.True(t, f.svc.deps.Bot.Started())
	assert.Equal(t, []packet.Type{packet.TypeReadyToReceiveGameState}, f.sender.types())
}

func TestHandleGameState_SendsAndRecords(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)

	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(1))))

	require.Len(t, f.sender.sent, 1)
	sent := f.sender.sent[0]
	assert.Equal(t, packet.TypePass, sent.Type)
	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Payload, &body))
	assert.Equal(t, "gs-1", body["gameStateId"])

	require.Len(t, f.backend.ticks, 1)
	r := f.backend.ticks[0]
	assert.Equal(t, 1, r.Tick)
	assert.Equal(t, "gs-1", r.GameStateID)
	assert.True(t, r.TankFound)
	assert.Equal(t, 1, r.TankX)
	require.NotNil(t, r.Health)
	assert.Equal(t, 80, *r.Health)
	require.NotNil(t, r.Zone)
	assert.Equal(t, byte('A'), *r.Zone)
	assert.False(t, r.Skipped)

	assert.Equal(t, 1, f.metrics.ticks)
	assert.Equal(t, "match-1", f.metrics.matchID)
	assert.Equal(t, 1, f.svc.GetMatchContext().Tick())
}

func TestHandleGameState_StaleTickIgnored(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)

	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(3))))
	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(3))))

	assert.Len(t, f.sender.sent, 1)
	assert.Len(t, f.backend.ticks, 1)
}

func TestHandleGameState_BeforeLobbyRequestsIt(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(0))))
	assert.Equal(t, []packet.Type{packet.TypeLobbyDataRequest}, f.sender.types())
	assert.Empty(t, f.backend.ticks)
}

func TestHandleGameState_DecodeErrorSkipsTick(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)

	bad := `{"id": "gs", "tick": 1, "teams": [], "map": {"tiles": [[{"objects": [], "isVisible": true}], []], "zones": []}}`
	err := f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDecode))
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.backend.ticks)
}

func TestHandleGameState_OverBudgetWithholdsResponse(t *testing.T) {
	base := time.Now()
	f := newFixture(t, bot.WithClock(func() time.Time { return base.Add(time.Second) }))
	f.lobby(t)

	e := event(packet.TypeGameState, gameStatePayload(2))
	e.Received = base
	require.NoError(t, f.svc.HandleGameState(context.Background(), e))

	assert.Empty(t, f.sender.sent)
	require.Len(t, f.backend.ticks, 1)
	assert.True(t, f.backend.ticks[0].Skipped)
	assert.Equal(t, time.Second, f.backend.ticks[0].DecisionTime)

	stats := f.svc.Stats()
	assert.Equal(t, int64(1), stats.Ticks)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, time.Second, stats.LastDecision)
}

func TestHandleGameState_SendError(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)
	f.sender.err = errors.New("connection closed")

	err := f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(1)))
	assert.ErrorContains(t, err, "connection closed")
}

func TestHandleWarning_Records(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)
	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(5))))

	require.NoError(t, f.svc.HandleWarning(context.Background(), event(packet.TypeCustomWarning, `{"message": "hello"}`)))
	require.NoError(t, f.svc.HandleWarning(context.Background(), event(packet.TypeSlowResponseWarning, "")))

	require.Len(t, f.backend.warnings, 2)
	assert.Equal(t, 5, f.backend.warnings[0].Tick)
	require.NotNil(t, f.backend.warnings[0].Warning.Message)
	assert.Equal(t, "hello", *f.backend.warnings[0].Warning.Message)
	assert.Equal(t, core.SlowResponseWarning, f.backend.warnings[1].Warning.Kind)
	assert.Equal(t, 2, f.metrics.warnings)
	assert.Equal(t, int64(2), f.svc.Stats().Warnings)
}

func TestHandleWarning_WithoutMatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.HandleWarning(context.Background(), event(packet.TypePlayerAlreadyMadeActionWarning, "")))
	assert.Empty(t, f.backend.warnings)
}

func TestHandleGameEnded_ClosesMatch(t *testing.T) {
	f := newFixture(t)
	f.lobby(t)
	require.NoError(t, f.svc.HandleGameStarting(context.Background(), event(packet.TypeGameStarting, "")))

	require.NoError(t, f.svc.HandleGameEnded(context.Background(), event(packet.TypeGameEnded, gameEndPayload)))

	require.NotNil(t, f.backend.ended)
	winner, ok := f.backend.ended.Winner()
	require.True(t, ok)
	assert.Equal(t, "red", winner.Name)
	assert.Nil(t, f.svc.GetMatchContext().GetMatch())
	assert.False(t, f.svc.deps.Bot.Started())

	f.backend.ended = nil
	require.NoError(t, f.svc.HandleGameEnded(context.Background(), event(packet.TypeGameEnded, gameEndPayload)))
	assert.Nil(t, f.backend.ended, "no match left to close")
}

func TestNilBackend(t *testing.T) {
	f := newFixture(t)
	f.svc.SetBackend(nil)

	f.lobby(t)
	require.NoError(t, f.svc.HandleGameState(context.Background(), event(packet.TypeGameState, gameStatePayload(1))))
	require.NoError(t, f.svc.HandleWarning(context.Background(), event(packet.TypeSlowResponseWarning, "")))
	require.NoError(t, f.svc.HandleGameEnded(context.Background(), event(packet.TypeGameEnded, gameEndPayload)))
	assert.Len(t, f.sender.sent, 1)
}

func TestRegisterHandlers(t *testing.T) {
	f := newFixture(t)
	d, err := dispatcher.New(logging.NewDispatcherLogger(slog.Default()))
	require.NoError(t, err)
	defer d.Close()

	f.svc.RegisterHandlers(d)

	for _, typ := range []packet.Type{
		packet.TypePing, packet.TypeConnectionAccepted, packet.TypeConnectionRejected,
		packet.TypeLobbyData, packet.TypeGameNotStarted, packet.TypeGameStarting,
		packet.TypeGameStarted, packet.TypeGameState, packet.TypeGameEnded,
		packet.TypeCustomWarning, packet.TypePlayerAlreadyMadeActionWarning,
		packet.TypeActionIgnoredDueToDeadWarning, packet.TypeSlowResponseWarning,
		packet.TypeInvalidPacketTypeError, packet.TypeInvalidPacketUsageError,
		packet.TypeInvalidPayloadError,
	} {
		assert.True(t, d.HasHandler(typ), "missing handler for %s", typ)
	}

	require.NoError(t, d.Dispatch(context.Background(), event(packet.TypePing, "")))
	assert.Equal(t, []packet.Type{packet.TypePong}, f.sender.types())

	assert.NoError(t, d.Dispatch(context.Background(), event("somethingNew", "")))
	assert.NoError(t, d.Dispatch(context.Background(), event(packet.TypeInvalidPayloadError, `{"message": "bad"}`)))
}
