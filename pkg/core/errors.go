// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("decode error")
	// ErrContractViolation matches every *ContractViolation via errors.Is.
	ErrContractViolation = errors.New("contract violation")
)

// DecodeError reports a snapshot or action that violates a model invariant.
// Path locates the offending element, e.g. "map.tiles[3][4].objects[1]".
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode: %s", e.Reason)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func decodeErrorf(path, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ContractViolation reports an ability the tank kind cannot use.
type ContractViolation struct {
	Kind    TankKind
	Ability AbilityType
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("ability %s is not available to %s tanks", e.Ability, e.Kind)
}

func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}
