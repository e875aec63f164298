package engine

import (
	"fmt"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

// validate re-verifies a proposed assignment set before commit: routes
// are pairwise distinct, every placement satisfies the qualification
// predicate, and every eligible employee appears exactly once. A
// failure here indicates a data anomaly and must never silently
// succeed.
func validate(snap *store.PeriodSnapshot, set []selection.Assignment) error {
	var eligible = make(map[string]*selection.Employee, len(snap.Employees))
	for i := range snap.Employees {
		eligible[snap.Employees[i].ID] = &snap.Employees[i]
	}

	var seenEmployees = make(map[string]struct{}, len(set))
	var seenRoutes = make(map[string]struct{}, len(set))

	for i := range set {
		var a = &set[i]

		var employee, ok = eligible[a.EmployeeID]
		if !ok {
			return fmt.Errorf("%w: assignment names ineligible employee %s",
				selection.ErrValidationFailed, a.EmployeeID)
		}
		if _, dup := seenEmployees[a.EmployeeID]; dup {
			return fmt.Errorf("%w: employee %s assigned twice",
				selection.ErrValidationFailed, employee.EmployeeID)
		}
		seenEmployees[a.EmployeeID] = struct{}{}

		if a.FloatPool() {
			continue
		}
		if _, dup := seenRoutes[a.RouteID]; dup {
			return fmt.Errorf("%w: route %s assigned twice",
				selection.ErrValidationFailed, a.RouteID)
		}
		seenRoutes[a.RouteID] = struct{}{}

		var route, known = snap.Routes[a.RouteID]
		if !known {
			return fmt.Errorf("%w: route %s is not in the period catalog",
				selection.ErrValidationFailed, a.RouteID)
		}
		if !selection.Qualifies(employee, &route) {
			return fmt.Errorf("%w: employee %s does not qualify for route %s",
				selection.ErrValidationFailed, employee.EmployeeID, route.RunNumber)
		}
	}

	if len(seenEmployees) != len(snap.Employees) {
		return fmt.Errorf("%w: %d assignments for %d eligible employees",
			selection.ErrValidationFailed, len(seenEmployees), len(snap.Employees))
	}
	return nil
}
