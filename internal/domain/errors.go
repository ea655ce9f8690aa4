package domain

import "errors"

var (
	// ErrMalformedField is returned when field input cannot produce a valid Field.
	ErrMalformedField = errors.New("malformed field")

	// ErrUnbalancedField is returned when chain construction runs out of
	// terrain in the middle of a chain. It means the zero-sum invariant
	// of the field was broken by the caller.
	ErrUnbalancedField = errors.New("unbalanced field")

	// ErrInfeasibleRepair is returned when no detour satisfies the turn and
	// segment constraints.
	ErrInfeasibleRepair = errors.New("unable to fix path")

	ErrInvalidTruck = errors.New("invalid truck")

	// ErrRouteInfeasible is returned by Truck.Validate.
	ErrRouteInfeasible = errors.New("route infeasible")
)
