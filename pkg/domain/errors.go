package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValueConflict is returned when a leaf is given a second, different _value.
	ErrValueConflict = errors.New("value schema conflict")

	// ErrVariantConflict is returned when leaf metadata is applied to a node
	// that already has children, or children to a configured leaf.
	ErrVariantConflict = errors.New("node variant conflict")

	// ErrTopology is returned when a process port has no topology entry.
	ErrTopology = errors.New("topology conflict")

	// ErrNotDivisible is returned when division reaches a leaf without a divider.
	ErrNotDivisible = errors.New("node is not divisible")

	// ErrStructural is returned for malformed structural directives.
	ErrStructural = errors.New("structural directive error")

	// ErrSchedulingInvariant signals a bug in interval arithmetic.
	ErrSchedulingInvariant = errors.New("scheduling invariant violated")

	// ErrUnknownUpdater is returned when an updater name is not registered.
	ErrUnknownUpdater = errors.New("unknown updater")

	// ErrUnknownDivider is returned when a divider name is not registered.
	ErrUnknownDivider = errors.New("unknown divider")

	// ErrUnknownReducer is returned when a reducer name is not registered.
	ErrUnknownReducer = errors.New("unknown reducer")

	// ErrUnknownProcess is returned when a process factory name is not registered.
	ErrUnknownProcess = errors.New("unknown process")

	// ErrInvalidTimestep is returned for non-positive process or tick intervals.
	ErrInvalidTimestep = errors.New("invalid timestep")

	// ErrNoConfiguration is returned when reading back an emitter that has
	// not received a configuration envelope.
	ErrNoConfiguration = errors.New("no configuration emitted")
)

// ConfigConflictError reports a leaf whose _value was supplied twice.
type ConfigConflictError struct {
	Path     Path
	Existing any
	Incoming any
}

func (e *ConfigConflictError) Error() string {
	return fmt.Sprintf("_value schema conflict at %q: %v and %v", e.Path.String(), e.Incoming, e.Existing)
}

func (e *ConfigConflictError) Unwrap() error { return ErrValueConflict }

// TopologyError names the process and port missing from the topology.
type TopologyError struct {
	Process Path
	Port    string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("topology conflict: %s process does not have %s port", e.Process.String(), e.Port)
}

func (e *TopologyError) Unwrap() error { return ErrTopology }

// DivisionError reports a failed division at Path.
type DivisionError struct {
	Path   Path
	Reason string
	Err    error
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("cannot divide %q: %s", e.Path.String(), e.Reason)
}

func (e *DivisionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotDivisible
}

// UpdateError reports an updater failure at a leaf.
type UpdateError struct {
	Path Path
	Err  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update at %q: %v", e.Path.String(), e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// SchedulingError reports a process that left a tick with stale bookkeeping.
type SchedulingError struct {
	Process   Path
	FrontTime float64
	Timestep  float64
	Pending   bool
}

func (e *SchedulingError) Error() string {
	if e.Pending {
		return fmt.Sprintf("process %s finished the tick with a pending update", e.Process.String())
	}
	return fmt.Sprintf("process %s front at %v, expected %v", e.Process.String(), e.FrontTime, e.Timestep)
}

func (e *SchedulingError) Unwrap() error { return ErrSchedulingInvariant }
