package entities

import (
	"errors"
	"fmt"
)

// LotteryStatus represents the lifecycle state of a lottery
type LotteryStatus string

// All lottery statuses. Values match the persisted column.
const (
	LotteryStatusOpen               LotteryStatus = "EN_COUR"
	LotteryStatusPendingValidation  LotteryStatus = "EN_VALIDATION"
	LotteryStatusFinished           LotteryStatus = "TERMINE"
	LotteryStatusSimulation         LotteryStatus = "SIMULATION"
	LotteryStatusSimulationFinished LotteryStatus = "SIMULATION_TERMINE"
)

var (
	// ErrInvalidStatusTransition is returned when a lottery cannot move to the requested status
	ErrInvalidStatusTransition = errors.New("invalid lottery status transition")
	// ErrUnknownLotteryStatus is returned when parsing an unrecognised status value
	ErrUnknownLotteryStatus = errors.New("unknown lottery status")
)

// ParseLotteryStatus converts a stored value into a LotteryStatus
func ParseLotteryStatus(s string) (LotteryStatus, error) {
	status := LotteryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLotteryStatus, s)
	}
	return status, nil
}

// String returns the string representation of the status
func (s LotteryStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known values
func (s LotteryStatus) IsValid() bool {
	switch s {
	case LotteryStatusOpen,
		LotteryStatusPendingValidation,
		LotteryStatusFinished,
		LotteryStatusSimulation,
		LotteryStatusSimulationFinished:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the one-way progression allows moving to next.
// EN_COUR -> EN_VALIDATION -> TERMINE and SIMULATION -> SIMULATION_TERMINE.
func (s LotteryStatus) CanTransitionTo(next LotteryStatus) bool {
	switch s {
	case LotteryStatusOpen:
		return next == LotteryStatusPendingValidation
	case LotteryStatusPendingValidation:
		return next == LotteryStatusFinished
	case LotteryStatusSimulation:
		return next == LotteryStatusSimulationFinished
	case LotteryStatusFinished, LotteryStatusSimulationFinished:
		return false
	default:
		return false
	}
}

// IsFinished returns true for terminal statuses
func (s LotteryStatus) IsFinished() bool {
	switch s {
	case LotteryStatusFinished, LotteryStatusSimulationFinished:
		return true
	case LotteryStatusOpen, LotteryStatusPendingValidation, LotteryStatusSimulation:
		return false
	default:
		return false
	}
}

// IsSimulation returns true for both simulation statuses
func (s LotteryStatus) IsSimulation() bool {
	switch s {
	case LotteryStatusSimulation, LotteryStatusSimulationFinished:
		return true
	case LotteryStatusOpen, LotteryStatusPendingValidation, LotteryStatusFinished:
		return false
	default:
		return false
	}
}

// AcceptsEntries returns true if participants may still register
func (s LotteryStatus) AcceptsEntries() bool {
	switch s {
	case LotteryStatusOpen, LotteryStatusSimulation:
		return true
	case LotteryStatusPendingValidation, LotteryStatusFinished, LotteryStatusSimulationFinished:
		return false
	default:
		return false
	}
}

// FinalStatus returns the status a lottery reaches once its draw is validated
func (s LotteryStatus) FinalStatus() (LotteryStatus, error) {
	switch s {
	case LotteryStatusPendingValidation:
		return LotteryStatusFinished, nil
	case LotteryStatusSimulation:
		return LotteryStatusSimulationFinished, nil
	case LotteryStatusOpen, LotteryStatusFinished, LotteryStatusSimulationFinished:
		return "", fmt.Errorf("%w: %s cannot be finalized", ErrInvalidStatusTransition, s)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLotteryStatus, string(s))
	}
}
