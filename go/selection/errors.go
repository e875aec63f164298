package selection

import "errors"

// Sentinel errors of the selection core. Callers detect them with
// errors.Is; storage and service layers wrap them with context.
var (
	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrPeriodNotOpen is returned when a preference write is attempted
	// while the period's status is not OPEN at the commit instant.
	ErrPeriodNotOpen = errors.New("selection period is not open")

	// ErrInvalidTransition is returned for a period state-machine action
	// which is not permitted in the current state.
	ErrInvalidTransition = errors.New("invalid period transition")

	// ErrRouteNotInCatalog is returned when a preference names a route
	// outside the period's route catalog.
	ErrRouteNotInCatalog = errors.New("route is not in the period catalog")

	// ErrDuplicateChoice is returned when preference choices are not
	// pairwise distinct.
	ErrDuplicateChoice = errors.New("duplicate route choice")

	// ErrUnmetRequiredCount is returned when fewer choices are submitted
	// than the period requires.
	ErrUnmetRequiredCount = errors.New("fewer choices than the period requires")

	// ErrQualificationViolation is returned when a manual assignment
	// would place an unqualified employee on a route.
	ErrQualificationViolation = errors.New("employee is not qualified for route")

	// ErrRouteAlreadyAssigned is returned when a manual assignment
	// targets a route already held for the period.
	ErrRouteAlreadyAssigned = errors.New("route is already assigned")

	// ErrValidationFailed is returned when the engine's pre-commit
	// validation rejects a proposed assignment set. The period reverts
	// to CLOSED and the condition requires operator investigation.
	ErrValidationFailed = errors.New("assignment validation failed")

	// ErrForbidden is returned when the principal's role does not permit
	// the requested operation.
	ErrForbidden = errors.New("operation not permitted for role")
)
