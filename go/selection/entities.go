// Package selection holds the domain model of the route-selection process:
// terminals, employees, routes, selection periods, preferences, assignments,
// and the rules which relate them. It has no persistence concerns.
package selection

import (
	"fmt"
	"time"
)

// RouteType enumerates the trailer configuration of a route.
type RouteType string

const (
	RouteSingles RouteType = "SINGLES"
	RouteDoubles RouteType = "DOUBLES"
)

// RateType enumerates how a route is paid.
type RateType string

const (
	RateHourly  RateType = "HOURLY"
	RateMileage RateType = "MILEAGE"
	RateFlat    RateType = "FLAT_RATE"
)

// Terminal is a physical terminal which owns employees, routes, and
// selection periods.
type Terminal struct {
	ID     string
	Code   string
	Name   string
	Active bool
}

// Employee is a driver (or other employee) eligible to participate in
// route selection. HireDate is the seniority key: smaller is more senior.
type Employee struct {
	ID                 string
	EmployeeID         string // Payroll identifier, unique within the system.
	FirstName          string
	LastName           string
	Email              string
	HireDate           time.Time
	DoublesEndorsement bool
	ChainExperience    bool
	Eligible           bool
	TerminalID         string // Empty if not attached to a terminal.
}

// FullName is the display name used in notifications.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Route is a run which may be selected during a period.
type Route struct {
	ID              string
	TerminalID      string
	RunNumber       string // Unique within the terminal.
	Origin          string
	Destination     string
	Type            RouteType
	Days            string // E.x. "Mon-Fri".
	StartTime       string // Wall-clock "15:04".
	EndTime         string
	DistanceMiles   float64
	WorkTimeMinutes int
	RateType        RateType

	RequiresDoublesEndorsement bool
	RequiresChainExperience    bool
	Active                     bool
}

// Validate checks internal consistency of the Route. A DOUBLES route
// must require the doubles endorsement.
func (r *Route) Validate() error {
	switch r.Type {
	case RouteSingles, RouteDoubles:
	default:
		return fmt.Errorf("route %s: unknown type %q", r.RunNumber, r.Type)
	}
	switch r.RateType {
	case RateHourly, RateMileage, RateFlat:
	default:
		return fmt.Errorf("route %s: unknown rate type %q", r.RunNumber, r.RateType)
	}
	if r.Type == RouteDoubles && !r.RequiresDoublesEndorsement {
		return fmt.Errorf("route %s: DOUBLES route must require the doubles endorsement", r.RunNumber)
	}
	return nil
}

// Qualifies returns whether the employee may hold the route, given the
// route's endorsement and experience requirements. It is used identically
// by the manual-assignment path and the engine; submissions may name
// routes the driver does not (yet) qualify for.
func Qualifies(e *Employee, r *Route) bool {
	if r.RequiresDoublesEndorsement && !e.DoublesEndorsement {
		return false
	}
	if r.RequiresChainExperience && !e.ChainExperience {
		return false
	}
	return true
}
