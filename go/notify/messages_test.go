package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

func TestPeriodOpenedSkipsMissingEmail(t *testing.T) {
	var period = selection.SelectionPeriod{
		Name:    "Fall 2026",
		EndDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	var employees = []selection.Employee{
		{FirstName: "Alice", LastName: "Archer", Email: "alice@example.com"},
		{FirstName: "No", LastName: "Email"},
	}

	var batch = PeriodOpened(&period, employees)
	require.Len(t, batch, 1)
	require.Equal(t, "alice@example.com", batch[0].Recipient)
	require.Contains(t, batch[0].Subject, "Fall 2026")
	require.Contains(t, batch[0].Body, "September 15, 2026")
}

func TestAssignmentResultsWording(t *testing.T) {
	var period = selection.SelectionPeriod{Name: "Fall 2026"}
	var employees = map[string]selection.Employee{
		"e1": {ID: "e1", FirstName: "Alice", LastName: "Archer", Email: "alice@example.com"},
		"e2": {ID: "e2", FirstName: "Bob", LastName: "Barnes", Email: "bob@example.com"},
	}
	var routes = map[string]selection.Route{
		"r1": {ID: "r1", RunNumber: "101", Origin: "Denver", Destination: "Reno",
			Days: "Mon-Fri", StartTime: "08:00", EndTime: "17:00"},
	}
	var effective = time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	var assignments = []selection.Assignment{
		{EmployeeID: "e1", RouteID: "r1", ChoiceReceived: 2, EffectiveDate: effective},
		{EmployeeID: "e2", EffectiveDate: effective},
	}

	var batch = AssignmentResults(&period, employees, routes, assignments)
	require.Len(t, batch, 2)

	require.Contains(t, batch[0].Body, "Run 101")
	require.Contains(t, batch[0].Body, "choice #2")
	require.Contains(t, batch[1].Body, "float pool")
	require.Contains(t, batch[1].Body, "September 16, 2026")
}
