// pkg/core/record.go
package core

import (
	"fmt"
	"strings"
	"time"
)

// TickRecord is what recorders persist for each processed snapshot.
type TickRecord struct {
	Time         time.Time
	Tick         int
	GameStateID  string
	Action       Action
	TankFound    bool
	TankX        int
	TankY        int
	Health       *int
	Zone         *byte
	DecisionTime time.Duration
	Skipped      bool // response withheld because DecisionTime exceeded the budget
}

// WarningRecord is a warning received during a tick.
type WarningRecord struct {
	Time    time.Time
	Tick    int
	Warning Warning
}

// Match describes one recorded session. Recorders fill ID when it is empty.
type Match struct {
	ID        string
	StartedAt time.Time
	Lobby     LobbyData
}

// Name is the match name from lobby data, or "match" when the server sent none.
func (m Match) Name() string {
	if m.Lobby.MatchName != nil && *m.Lobby.MatchName != "" {
		return *m.Lobby.MatchName
	}
	return "match"
}

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

// FileStem is <name>_<UTC start>_<first 8 chars of ID>, safe to use as a file name.
func (m Match) FileStem() string {
	id := m.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s", fileNameReplacer.Replace(m.Name()), m.StartedAt.UTC().Format("20060102_150405"), id)
}
