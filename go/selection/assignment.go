package selection

import "time"

// Assignment is the engine's (or an admin's) placement of one employee
// for one period. An empty RouteID means the float pool. ChoiceReceived
// is 1..3 when the employee received one of their ranked choices, and 0
// for float-pool or manual placements.
type Assignment struct {
	ID             string
	EmployeeID     string
	PeriodID       string
	RouteID        string
	ChoiceReceived int
	Manual         bool
	EffectiveDate  time.Time
}

// FloatPool reports whether this assignment is a float-pool placement.
func (a Assignment) FloatPool() bool { return a.RouteID == "" }

// Summary aggregates an assignment set for operator display.
type Summary struct {
	FirstChoice  int
	SecondChoice int
	ThirdChoice  int
	Manual       int
	FloatPool    int
}

// Total is the number of employees covered by the summary.
func (s Summary) Total() int {
	return s.FirstChoice + s.SecondChoice + s.ThirdChoice + s.Manual + s.FloatPool
}

// Summarize tallies an assignment set.
func Summarize(assignments []Assignment) Summary {
	var out Summary
	for i := range assignments {
		var a = &assignments[i]
		switch {
		case a.FloatPool():
			out.FloatPool++
		case a.Manual:
			out.Manual++
		case a.ChoiceReceived == 1:
			out.FirstChoice++
		case a.ChoiceReceived == 2:
			out.SecondChoice++
		case a.ChoiceReceived == 3:
			out.ThirdChoice++
		default:
			out.Manual++
		}
	}
	return out
}
