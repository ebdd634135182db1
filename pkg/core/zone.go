// pkg/core/zone.go
package core

// Zone is a capturable axis-aligned rectangle.
type Zone struct {
	X      int
	Y      int
	Width  int
	Height int
	Name   byte
	Status ZoneStatus
}

// Contains reports whether cell (x, y) lies inside the zone.
func (z Zone) Contains(x, y int) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// Center returns the zone cell closest to its geometric center.
func (z Zone) Center() (x, y int) {
	return z.X + z.Width/2, z.Y + z.Height/2
}

// Holder returns the player currently holding the zone, if any.
func (z Zone) Holder() (string, bool) {
	switch s := z.Status.(type) {
	case Captured:
		return s.PlayerID, true
	case BeingContested:
		if s.HolderID != nil {
			return *s.HolderID, true
		}
	case BeingRetaken:
		return s.HolderID, true
	}
	return "", false
}

// ZoneStatusKind is the wire discriminant of a zone status.
type ZoneStatusKind string

const (
	StatusNeutral        ZoneStatusKind = "neutral"
	StatusBeingCaptured  ZoneStatusKind = "beingCaptured"
	StatusCaptured       ZoneStatusKind = "captured"
	StatusBeingContested ZoneStatusKind = "beingContested"
	StatusBeingRetaken   ZoneStatusKind = "beingRetaken"
)

// ZoneStatus is observed from the server and never advanced locally.
type ZoneStatus interface {
	StatusKind() ZoneStatusKind
	zoneStatus()
}

// Neutral nobody holds or is capturing the zone.
type Neutral struct{}

// BeingCaptured a single player is capturing a neutral zone.
type BeingCaptured struct {
	RemainingTicks int
	PlayerID       string
}

// Captured the zone is held.
type Captured struct {
	PlayerID string
}

// BeingContested players of several teams stand in the zone. HolderID is the
// current holder and is nil when the zone was neutral.
type BeingContested struct {
	HolderID *string
}

// BeingRetaken a challenger is taking a held zone.
type BeingRetaken struct {
	RemainingTicks int
	HolderID       string
	ChallengerID   string
}

func (Neutral) StatusKind() ZoneStatusKind        { return StatusNeutral }
func (BeingCaptured) StatusKind() ZoneStatusKind  { return StatusBeingCaptured }
func (Captured) StatusKind() ZoneStatusKind       { return StatusCaptured }
func (BeingContested) StatusKind() ZoneStatusKind { return StatusBeingContested }
func (BeingRetaken) StatusKind() ZoneStatusKind   { return StatusBeingRetaken }

func (Neutral) zoneStatus()        {}
func (BeingCaptured) zoneStatus()  {}
func (Captured) zoneStatus()       {}
func (BeingContested) zoneStatus() {}
func (BeingRetaken) zoneStatus()   {}

// StatusFields is the union of every field a status kind may carry, as it
// arrives on the wire. nil means absent.
type StatusFields struct {
	RemainingTicks *int
	PlayerID       *string
	CapturedByID   *string
	RetakenByID    *string
}

// NewZoneStatus builds the status for kind, requiring the fields that kind
// mandates. Unknown kinds are a decode error, never Neutral.
func NewZoneStatus(kind string, f StatusFields) (ZoneStatus, error) {
	switch ZoneStatusKind(kind) {
	case StatusNeutral:
		return Neutral{}, nil
	case StatusBeingCaptured:
		if f.RemainingTicks == nil {
			return nil, missingField(kind, "remainingTicks")
		}
		if f.PlayerID == nil {
			return nil, missingField(kind, "playerId")
		}
		return BeingCaptured{RemainingTicks: *f.RemainingTicks, PlayerID: *f.PlayerID}, nil
	case StatusCaptured:
		if f.PlayerID == nil {
			return nil, missingField(kind, "playerId")
		}
		return Captured{PlayerID: *f.PlayerID}, nil
	case StatusBeingContested:
		return BeingContested{HolderID: f.CapturedByID}, nil
	case StatusBeingRetaken:
		if f.RemainingTicks == nil {
			return nil, missingField(kind, "remainingTicks")
		}
		if f.CapturedByID == nil {
			return nil, missingField(kind, "capturedById")
		}
		if f.RetakenByID == nil {
			return nil, missingField(kind, "retakenById")
		}
		return BeingRetaken{
			RemainingTicks: *f.RemainingTicks,
			HolderID:       *f.CapturedByID,
			ChallengerID:   *f.RetakenByID,
		}, nil
	default:
		return nil, decodeErrorf("status.type", "unknown zone status %q", kind)
	}
}

func missingField(kind, field string) *DecodeError {
	return decodeErrorf("status."+field, "required for %s", kind)
}
