// Package packet defines the JSON wire format spoken with the game server.
package packet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type is the envelope discriminant.
type Type string

// Inbound packet types.
const (
	TypePing                           Type = "ping"
	TypeConnectionAccepted             Type = "connectionAccepted"
	TypeConnectionRejected             Type = "connectionRejected"
	TypeLobbyData                      Type = "lobbyData"
	TypeGameNotStarted                 Type = "gameNotStarted"
	TypeGameStarting                   Type = "gameStarting"
	TypeGameStarted                    Type = "gameStarted"
	TypeGameState                      Type = "gameState"
	TypeGameEnded                      Type = "gameEnded"
	TypeCustomWarning                  Type = "customWarning"
	TypePlayerAlreadyMadeActionWarning Type = "playerAlreadyMadeActionWarning"
	TypeActionIgnoredDueToDeadWarning  Type = "actionIgnoredDueToDeadWarning"
	TypeSlowResponseWarning            Type = "slowResponseWarning"
	TypeInvalidPacketTypeError         Type = "invalidPacketTypeError"
	TypeInvalidPacketUsageError        Type = "invalidPacketUsageError"
	TypeInvalidPayloadError            Type = "invalidPayloadError"
)

// Outbound packet types.
const (
	TypePong                    Type = "pong"
	TypeReadyToReceiveGameState Type = "readyToReceiveGameState"
	TypeGameStatusRequest       Type = "gameStatusRequest"
	TypeLobbyDataRequest        Type = "lobbyDataRequest"
	TypeRotation                Type = "rotation"
	TypeMovement                Type = "movement"
	TypeAbilityUse              Type = "abilityUse"
	TypeCaptureZone             Type = "captureZone"
	TypePass                    Type = "pass"
	TypeGoTo                    Type = "goTo"
)

// IsWarning reports whether t is one of the advisory warning packets.
func (t Type) IsWarning() bool {
	switch t {
	case TypeCustomWarning, TypePlayerAlreadyMadeActionWarning,
		TypeActionIgnoredDueToDeadWarning, TypeSlowResponseWarning:
		return true
	}
	return false
}

// IsError reports whether t is a server-side rejection of something we sent.
func (t Type) IsError() bool {
	switch t {
	case TypeInvalidPacketTypeError, TypeInvalidPacketUsageError, TypeInvalidPayloadError:
		return true
	}
	return false
}

// Envelope wraps every message in both directions.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrEmptyPayload is returned by DecodePayload for envelopes without a payload.
var ErrEmptyPayload = errors.New("empty payload")

// New marshals payload into an envelope of type t. A nil payload yields an
// envelope with no payload field.
func New(t Type, payload any) (Envelope, error) {
	if t == "" {
		return Envelope{}, errors.New("envelope type is empty")
	}
	if payload == nil {
		return Envelope{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Envelope{Type: t, Payload: raw}, nil
}

// Marshal encodes the envelope as a single JSON text frame.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes a frame into an envelope.
func Unmarshal(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("empty frame")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if e.Type == "" {
		return Envelope{}, errors.New("envelope has no type")
	}
	return e, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](e Envelope) (T, error) {
	var out T
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return out, fmt.Errorf("%s: %w", e.Type, ErrEmptyPayload)
	}
	if err := json.Unmarshal(e.Payload, &out); err != nil {
		return out, fmt.Errorf("%s payload: %w", e.Type, err)
	}
	return out, nil
}
