package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("graylog unreachable")
}

func textSink(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestMultiHandler_FansOut(t *testing.T) {
	var file, console bytes.Buffer
	logger := slog.New(NewMultiHandler(textSink(&file, slog.LevelInfo), nil, textSink(&console, slog.LevelInfo)))
	logger.Info("move sent", "tick", 3)

	assert.Contains(t, file.String(), "tick=3")
	assert.Contains(t, console.String(), "tick=3")
}

func TestNewMultiHandler_DropsNil(t *testing.T) {
	h := NewMultiHandler(nil, textSink(&bytes.Buffer{}, slog.LevelInfo), nil)
	require.Len(t, h.handlers, 1)
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandler_EnabledByAnySink(t *testing.T) {
	info := textSink(&bytes.Buffer{}, slog.LevelInfo)
	debug := textSink(&bytes.Buffer{}, slog.LevelDebug)
	ctx := context.Background()

	assert.False(t, NewMultiHandler(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewMultiHandler(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestMultiHandler_OnlyEnabledSinksReceive(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	logger := slog.New(NewMultiHandler(textSink(&infoBuf, slog.LevelInfo), textSink(&debugBuf, slog.LevelDebug)))
	logger.Debug("stale tick")

	assert.Empty(t, infoBuf.String())
	assert.Contains(t, debugBuf.String(), "stale tick")
}

func TestMultiHandler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, textSink(&buf, slog.LevelInfo))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "game ended", 0))
	assert.EqualError(t, err, "graylog unreachable")
	assert.Contains(t, buf.String(), "game ended")
}

func TestMultiHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(textSink(&buf, slog.LevelInfo))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("player", "me")})).Info("ready")
	slog.New(h.WithGroup("zone")).Info("captured", "name", "A")

	assert.Contains(t, buf.String(), "player=me")
	assert.Contains(t, buf.String(), "zone.name=A")
	assert.Same(t, h, h.WithGroup(""))
}
