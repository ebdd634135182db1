// Package handlers binds inbound packet types to the parser, the bot, the
// recorders and the outbound connection.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/bot"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/dispatcher"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/match"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/parser"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/storage"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
)

// Sender queues outbound envelopes. *session.Session satisfies it.
type Sender interface {
	Send(e packet.Envelope) error
}

// Metrics receives per-tick measurements. *influx.Manager satisfies it.
type Metrics interface {
	RecordTick(matchID, playerID string, r core.TickRecord) error
	RecordWarning(matchID, playerID string, w core.WarningRecord) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Bot        *bot.Bot
	Parser     *parser.Parser
	Sender     Sender
	LogManager *logging.SlogManager
	Metrics    Metrics // optional
	Now        func() time.Time
}

// Stats counts what the session has processed so far.
type Stats struct {
	Ticks        int64
	Skipped      int64
	Warnings     int64
	LastDecision time.Duration
}

// Service provides handler methods for processing server packets
type Service struct {
	deps         Dependencies
	ctx          *match.Context
	writeLogFunc func(functionName, data, level string)
	backend      storage.Backend

	ticks          atomic.Int64
	skipped        atomic.Int64
	warnings       atomic.Int64
	lastDecisionNs atomic.Int64
}

// NewService creates a new handler service
func NewService(deps Dependencies, ctx *match.Context) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if ctx == nil {
		ctx = match.NewContext()
	}
	s := &Service{
		deps: deps,
		ctx:  ctx,
	}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

// GetMatchContext returns the match context
func (s *Service) GetMatchContext() *match.Context {
	return s.ctx
}

// SetBackend sets the storage backend. A nil backend disables recording.
func (s *Service) SetBackend(b storage.Backend) {
	s.backend = b
}

// Stats returns the session counters.
func (s *Service) Stats() Stats {
	return Stats{
		Ticks:        s.ticks.Load(),
		Skipped:      s.skipped.Load(),
		Warnings:     s.warnings.Load(),
		LastDecision: time.Duration(s.lastDecisionNs.Load()),
	}
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// RegisterHandlers binds every server packet type on d.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(packet.TypePing, s.HandlePing)
	d.Register(packet.TypeConnectionAccepted, s.HandleConnectionAccepted)
	d.Register(packet.TypeConnectionRejected, s.HandleConnectionRejected)
	d.Register(packet.TypeLobbyData, s.HandleLobbyData, dispatcher.Logged())
	d.Register(packet.TypeGameNotStarted, s.HandleGameNotStarted)
	d.Register(packet.TypeGameStarting, s.HandleGameStarting, dispatcher.Logged())
	d.Register(packet.TypeGameStarted, s.HandleGameStarted)
	d.Register(packet.TypeGameState, s.HandleGameState, dispatcher.Logged())
	d.Register(packet.TypeGameEnded, s.HandleGameEnded, dispatcher.Logged())

	for _, t := range []packet.Type{
		packet.TypeCustomWarning,
		packet.TypePlayerAlreadyMadeActionWarning,
		packet.TypeActionIgnoredDueToDeadWarning,
		packet.TypeSlowResponseWarning,
	} {
		d.Register(t, s.HandleWarning)
	}
	for _, t := range []packet.Type{
		packet.TypeInvalidPacketTypeError,
		packet.TypeInvalidPacketUsageError,
		packet.TypeInvalidPayloadError,
	} {
		d.Register(t, s.HandleServerError)
	}

	d.Fallback(func(_ context.Context, e dispatcher.Event) error {
		s.writeLog("fallback", fmt.Sprintf("Ignoring unknown packet type %q", e.Type), "WARN")
		return nil
	})
}

// HandlePing answers with pong.
func (s *Service) HandlePing(_ context.Context, _ dispatcher.Event) error {
	return s.deps.Sender.Send(packet.Pong())
}

func (s *Service) HandleConnectionAccepted(_ context.Context, _ dispatcher.Event) error {
	s.writeLog(string(packet.TypeConnectionAccepted), "Connection accepted", "INFO")
	return nil
}

// HandleConnectionRejected logs the reason; the server closes the socket.
func (s *Service) HandleConnectionRejected(_ context.Context, e dispatcher.Event) error {
	s.writeLog(string(packet.TypeConnectionRejected), fmt.Sprintf("Connection rejected: %s", e.Payload), "ERROR")
	return nil
}

// HandleLobbyData initializes the bot and opens a match record. Lobby data
// re-sent during a match only refreshes the bot.
func (s *Service) HandleLobbyData(_ context.Context, e dispatcher.Event) error {
	functionName := string(packet.TypeLobbyData)

	raw, err := packet.DecodePayload[packet.LobbyDataPayload](packet.Envelope{Type: e.Type, Payload: e.Payload})
	if err != nil {
		return err
	}
	lobby, err := s.deps.Parser.ParseLobbyData(raw)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error parsing lobby data: %v", err), "ERROR")
		return err
	}
	s.deps.Bot.Init(lobby)

	if s.ctx.GetMatch() != nil {
		return nil
	}

	m := &core.Match{StartedAt: s.deps.Now().UTC(), Lobby: lobby}
	if s.backend != nil {
		if err := s.backend.StartMatch(m); err != nil {
			s.writeLog(functionName, fmt.Sprintf("Error starting match record: %v", err), "ERROR")
		}
	}
	s.ctx.SetMatch(m)
	s.writeLog(functionName, fmt.Sprintf("Match %q ready, playing as %s", m.Name(), lobby.PlayerID), "INFO")
	return nil
}

func (s *Service) HandleGameNotStarted(_ context.Context, _ dispatcher.Event) error {
	s.writeLog(string(packet.TypeGameNotStarted), "Waiting for the game to start", "INFO")
	return nil
}

// HandleGameStarting tells the server we are ready for game states.
func (s *Service) HandleGameStarting(_ context.Context, _ dispatcher.Event) error {
	s.deps.Bot.OnGameStarting()
	return s.deps.Sender.Send(packet.ReadyToReceiveGameState())
}

func (s *Service) HandleGameStarted(_ context.Context, _ dispatcher.Event) error {
	s.writeLog(string(packet.TypeGameStarted), "Game started", "INFO")
	return nil
}

// HandleGameState decides and answers one tick. A snapshot that fails to
// decode is dropped whole; no response is sent for it.
func (s *Service) HandleGameState(_ context.Context, e dispatcher.Event) error {
	functionName := string(packet.TypeGameState)

	raw, err := packet.DecodePayload[packet.GameStatePayload](packet.Envelope{Type: e.Type, Payload: e.Payload})
	if err != nil {
		return err
	}
	snapshot, err := s.deps.Parser.ParseGameState(raw)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Skipping tick %d: %v", raw.Tick, err), "ERROR")
		return err
	}

	decision, err := s.deps.Bot.NextMove(snapshot, e.Received)
	switch {
	case errors.Is(err, bot.ErrNotInitialized):
		s.writeLog(functionName, "Game state before lobby data, requesting it", "WARN")
		return s.deps.Sender.Send(packet.LobbyDataRequest())
	case errors.Is(err, bot.ErrStaleTick):
		s.writeLog(functionName, err.Error(), "DEBUG")
		return nil
	case err != nil:
		return err
	}
	s.ctx.SetTick(snapshot.Tick)
	s.ticks.Add(1)
	s.lastDecisionNs.Store(int64(decision.Elapsed))

	if decision.Skip {
		s.skipped.Add(1)
	} else {
		env, err := packet.EncodeAction(snapshot.ID, decision.Action)
		if err != nil {
			return fmt.Errorf("encode action: %w", err)
		}
		if err := s.deps.Sender.Send(env); err != nil {
			return err
		}
	}

	s.recordTick(newTickRecord(snapshot, decision, e.Received))
	return nil
}

func newTickRecord(s core.Snapshot, d bot.Decision, received time.Time) core.TickRecord {
	r := core.TickRecord{
		Time:         received,
		Tick:         s.Tick,
		GameStateID:  s.ID,
		Action:       d.Action,
		TankFound:    d.Me.Found,
		DecisionTime: d.Elapsed,
		Skipped:      d.Skip,
	}
	if !d.Me.Found {
		return r
	}
	r.TankX, r.TankY = d.Me.X, d.Me.Y
	if own, ok := d.Me.Tank.Own(); ok {
		hp := own.Health
		r.Health = &hp
	}
	if tile, ok := s.Grid.At(d.Me.X, d.Me.Y); ok && tile.InZone() {
		zone := tile.Zone
		r.Zone = &zone
	}
	return r
}

func (s *Service) recordTick(r core.TickRecord) {
	m := s.ctx.GetMatch()
	if m == nil {
		return
	}
	if s.backend != nil {
		if err := s.backend.RecordTick(&r); err != nil {
			s.writeLog("recordTick", fmt.Sprintf("Error recording tick %d: %v", r.Tick, err), "ERROR")
		}
	}
	if s.deps.Metrics != nil {
		if err := s.deps.Metrics.RecordTick(m.ID, m.Lobby.PlayerID, r); err != nil {
			s.writeLog("recordTick", fmt.Sprintf("Error writing tick metrics: %v", err), "ERROR")
		}
	}
}

// HandleGameEnded reports the result and closes the match record.
func (s *Service) HandleGameEnded(_ context.Context, e dispatcher.Event) error {
	functionName := string(packet.TypeGameEnded)

	raw, err := packet.DecodePayload[packet.GameEndPayload](packet.Envelope{Type: e.Type, Payload: e.Payload})
	if err != nil {
		return err
	}
	end, err := s.deps.Parser.ParseGameEnd(raw)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf("Error parsing game end: %v", err), "ERROR")
		return err
	}
	s.deps.Bot.OnGameEnded(end)

	if s.ctx.GetMatch() == nil {
		return nil
	}
	if s.backend != nil {
		if err := s.backend.EndMatch(&end); err != nil {
			s.writeLog(functionName, fmt.Sprintf("Error closing match record: %v", err), "ERROR")
		} else if exp, ok := s.backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
			s.writeLog(functionName, fmt.Sprintf("Match saved to %s", exp.ExportedFilePath()), "INFO")
		}
	}
	s.ctx.SetMatch(nil)
	return nil
}

// HandleWarning logs and records server feedback.
func (s *Service) HandleWarning(_ context.Context, e dispatcher.Event) error {
	w, err := s.deps.Parser.ParseWarning(e.Type, e.Payload)
	if err != nil {
		return err
	}
	s.deps.Bot.OnWarning(w)
	s.warnings.Add(1)

	m := s.ctx.GetMatch()
	if m == nil {
		return nil
	}
	r := core.WarningRecord{Time: e.Received, Tick: s.ctx.Tick(), Warning: w}
	if s.backend != nil {
		if err := s.backend.RecordWarning(&r); err != nil {
			s.writeLog("recordWarning", fmt.Sprintf("Error recording warning: %v", err), "ERROR")
		}
	}
	if s.deps.Metrics != nil {
		if err := s.deps.Metrics.RecordWarning(m.ID, m.Lobby.PlayerID, r); err != nil {
			s.writeLog("recordWarning", fmt.Sprintf("Error writing warning metrics: %v", err), "ERROR")
		}
	}
	return nil
}

// HandleServerError logs the invalid*Error packets the server answers with
// when it could not use something we sent.
func (s *Service) HandleServerError(_ context.Context, e dispatcher.Event) error {
	msg := string(e.Payload)
	if p, err := packet.DecodePayload[packet.ErrorPayload](packet.Envelope{Type: e.Type, Payload: e.Payload}); err == nil {
		msg = p.Message
	}
	s.writeLog(string(e.Type), fmt.Sprintf("Server rejected a packet: %s", msg), "ERROR")
	return nil
}
