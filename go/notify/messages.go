package notify

import (
	"fmt"
	"strings"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// PeriodOpened builds one message per employee announcing that the
// period is accepting submissions. Employees without an email address
// are skipped.
func PeriodOpened(period *selection.SelectionPeriod, employees []selection.Employee) []Message {
	var out []Message
	for i := range employees {
		var e = &employees[i]
		if e.Email == "" {
			continue
		}
		out = append(out, Message{
			Recipient: e.Email,
			Subject:   fmt.Sprintf("Route selection open: %s", period.Name),
			Body: fmt.Sprintf(
				"%s,\n\n"+
					"The %s route selection is now open. Submit your ranked run choices\n"+
					"before %s. You may update your submission any time while the window\n"+
					"is open; each submission returns a confirmation number.\n",
				e.FullName(), period.Name, period.EndDate.Format("January 2, 2006")),
		})
	}
	return out
}

// AssignmentResults builds one message per assignment describing the
// awarded run or float-pool placement. routes indexes the period's
// catalog by route ID.
func AssignmentResults(period *selection.SelectionPeriod, employees map[string]selection.Employee,
	routes map[string]selection.Route, assignments []selection.Assignment) []Message {

	var out []Message
	for i := range assignments {
		var a = &assignments[i]
		var e, ok = employees[a.EmployeeID]
		if !ok || e.Email == "" {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s,\n\n", e.FullName())
		if a.FloatPool() {
			fmt.Fprintf(&b,
				"You have been placed in the float pool for %s. Daily dispatch\n"+
					"will assign your runs for the duration of the period.\n", period.Name)
		} else {
			var route = routes[a.RouteID]
			fmt.Fprintf(&b, "Your awarded run for %s:\n\n", period.Name)
			fmt.Fprintf(&b, "  Run %s: %s to %s (%s %s-%s)\n",
				route.RunNumber, route.Origin, route.Destination,
				route.Days, route.StartTime, route.EndTime)
			switch {
			case a.Manual:
				b.WriteString("\nThis run was assigned by your terminal manager.\n")
			case a.ChoiceReceived > 0:
				fmt.Fprintf(&b, "\nThis was your choice #%d.\n", a.ChoiceReceived)
			}
		}
		fmt.Fprintf(&b, "\nEffective date: %s\n", a.EffectiveDate.Format("January 2, 2006"))

		out = append(out, Message{
			Recipient: e.Email,
			Subject:   fmt.Sprintf("Route selection results: %s", period.Name),
			Body:      b.String(),
		})
	}
	return out
}
