package selection

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a SelectionPeriod.
type Status string

const (
	StatusUpcoming   Status = "UPCOMING"
	StatusOpen       Status = "OPEN"
	StatusClosed     Status = "CLOSED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
)

// transitions is the explicit table of permitted status transitions.
// Anything not listed is rejected at the boundary.
var transitions = map[Status][]Status{
	StatusUpcoming:   {StatusOpen},
	StatusOpen:       {StatusClosed},
	StatusClosed:     {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusClosed},
	StatusCompleted:  {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the state machine permits moving from
// s to next.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// SelectionPeriod is one bi-annual selection window. Routes lists the
// period's catalog: a route not in the catalog is unselectable in this
// period.
type SelectionPeriod struct {
	ID                 string
	TerminalID         string // Empty for a system-wide period.
	Name               string
	Description        string
	StartDate          time.Time
	EndDate            time.Time
	Status             Status
	RequiredSelections int // In {1, 2, 3}.
	RouteIDs           []string
}

// Validate checks the creation invariants of a period.
func (p *SelectionPeriod) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("period name is required")
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("period %q: end date %s precedes start date %s",
			p.Name, p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if p.RequiredSelections < 1 || p.RequiredSelections > MaxChoices {
		return fmt.Errorf("period %q: required selections %d is outside [1, %d]",
			p.Name, p.RequiredSelections, MaxChoices)
	}
	if len(p.RouteIDs) == 0 {
		return fmt.Errorf("period %q: route catalog is empty", p.Name)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("period %q: unknown status %q", p.Name, p.Status)
	}
	return nil
}

// InCatalog reports whether the route participates in this period.
func (p *SelectionPeriod) InCatalog(routeID string) bool {
	for _, id := range p.RouteIDs {
		if id == routeID {
			return true
		}
	}
	return false
}
