package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNoAvailableDevices: every unit of the requested model is either
	// administratively unavailable or on an active loan. Distinct from a
	// generic failure so callers can offer waitlist signup.
	ErrNoAvailableDevices = errors.New("no available devices for this model")

	ErrNotFound = errors.New("not found")

	ErrInvalidDuration = errors.New("loan duration days must be positive")
)

// InvalidStatusError reports a state-machine precondition violation and
// carries the status the loan actually had so the caller can decide.
type InvalidStatusError struct {
	Current string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid loan status: %s", e.Current)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
