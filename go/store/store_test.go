package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

func newTestStore(t *testing.T) *store.Store {
	var s, err = store.Open(filepath.Join(t.TempDir(), "selection.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fixture seeds two routes and two employees and returns an OPEN period
// over both routes.
type fixture struct {
	store    *store.Store
	senior   selection.Employee
	junior   selection.Employee
	routeOne selection.Route
	routeTwo selection.Route
	period   selection.SelectionPeriod
}

func newFixture(t *testing.T) *fixture {
	var ctx = context.Background()
	var f = fixture{store: newTestStore(t)}

	f.senior = selection.Employee{
		EmployeeID: "E100",
		FirstName:  "Alice",
		LastName:   "Archer",
		Email:      "alice@example.com",
		HireDate:   time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		Eligible:   true,
	}
	f.junior = selection.Employee{
		EmployeeID: "E200",
		FirstName:  "Bob",
		LastName:   "Barnes",
		Email:      "bob@example.com",
		HireDate:   time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		Eligible:   true,
	}
	require.NoError(t, f.store.PutEmployee(ctx, &f.senior))
	require.NoError(t, f.store.PutEmployee(ctx, &f.junior))

	f.routeOne = selection.Route{
		RunNumber: "101", Origin: "Denver", Destination: "Salt Lake City",
		Type: selection.RouteSingles, RateType: selection.RateMileage, Active: true,
	}
	f.routeTwo = selection.Route{
		RunNumber: "102", Origin: "Denver", Destination: "Cheyenne",
		Type: selection.RouteSingles, RateType: selection.RateHourly, Active: true,
	}
	require.NoError(t, f.store.PutRoute(ctx, &f.routeOne))
	require.NoError(t, f.store.PutRoute(ctx, &f.routeTwo))

	f.period = selection.SelectionPeriod{
		Name:               "Fall 2026",
		StartDate:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		RequiredSelections: 1,
		RouteIDs:           []string{f.routeOne.ID, f.routeTwo.ID},
	}
	require.NoError(t, f.store.CreatePeriod(ctx, "admin", &f.period))
	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusOpen, selection.ActionPeriodOpened))
	return &f
}

func TestPreferenceRoundTrip(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	confirmation, err := f.store.UpsertPreference(ctx, "alice",
		f.senior.ID, f.period.ID, []string{f.routeOne.ID, f.routeTwo.ID})
	require.NoError(t, err)
	require.NotEmpty(t, confirmation)

	pref, err := f.store.GetPreference(ctx, f.senior.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.routeOne.ID, f.routeTwo.ID}, pref.Choices)
	require.Equal(t, confirmation, pref.ConfirmationNumber)
	require.False(t, pref.SubmittedAt.IsZero())
}

func TestPreferenceReplacement(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	first, err := f.store.UpsertPreference(ctx, "alice",
		f.senior.ID, f.period.ID, []string{f.routeOne.ID})
	require.NoError(t, err)

	// Identical input: persisted choices are unchanged but a new
	// confirmation number is issued.
	second, err := f.store.UpsertPreference(ctx, "alice",
		f.senior.ID, f.period.ID, []string{f.routeOne.ID})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	pref, err := f.store.GetPreference(ctx, f.senior.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.routeOne.ID}, pref.Choices)
	require.Equal(t, second, pref.ConfirmationNumber)

	// Replacement with different choices overwrites.
	_, err = f.store.UpsertPreference(ctx, "alice",
		f.senior.ID, f.period.ID, []string{f.routeTwo.ID, f.routeOne.ID})
	require.NoError(t, err)
	pref, err = f.store.GetPreference(ctx, f.senior.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.routeTwo.ID, f.routeOne.ID}, pref.Choices)
}

func TestPreferenceValidation(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	var cases = []struct {
		name    string
		choices []string
		want    error
	}{
		{"empty", nil, selection.ErrUnmetRequiredCount},
		{"duplicate", []string{f.routeOne.ID, f.routeOne.ID}, selection.ErrDuplicateChoice},
		{"outside catalog", []string{"no-such-route"}, selection.ErrRouteNotInCatalog},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var _, err = f.store.UpsertPreference(ctx, "alice", f.senior.ID, f.period.ID, tc.choices)
			require.ErrorIs(t, err, tc.want)
		})
	}

	var _, err = f.store.UpsertPreference(ctx, "alice", "no-such-employee", f.period.ID,
		[]string{f.routeOne.ID})
	require.ErrorIs(t, err, selection.ErrNotFound)
}

func TestRequiredSelectionsFloor(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// Raise the floor to two choices.
	var p = f.period
	p.ID = ""
	p.Name = "Spring 2027"
	p.RequiredSelections = 2
	require.NoError(t, f.store.CreatePeriod(ctx, "admin", &p))
	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", p.ID,
		selection.StatusOpen, selection.ActionPeriodOpened))

	var _, err = f.store.UpsertPreference(ctx, "alice", f.senior.ID, p.ID,
		[]string{f.routeOne.ID})
	require.ErrorIs(t, err, selection.ErrUnmetRequiredCount)

	_, err = f.store.UpsertPreference(ctx, "alice", f.senior.ID, p.ID,
		[]string{f.routeOne.ID, f.routeTwo.ID})
	require.NoError(t, err)
}

func TestClosedWindowRejection(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// The administrator closes the period; a submission arriving after
	// the close commits must observe the CLOSED status and fail.
	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusClosed, selection.ActionPeriodClosed))

	var _, err = f.store.UpsertPreference(ctx, "bob",
		f.junior.ID, f.period.ID, []string{f.routeOne.ID})
	require.ErrorIs(t, err, selection.ErrPeriodNotOpen)

	// No preference row was written.
	_, err = f.store.GetPreference(ctx, f.junior.ID, f.period.ID)
	require.ErrorIs(t, err, selection.ErrNotFound)
}

func TestTransitionTableEnforced(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// Period is OPEN; it cannot jump to COMPLETED or back to UPCOMING.
	var err = f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusCompleted, selection.ActionPeriodCompleted)
	require.ErrorIs(t, err, selection.ErrInvalidTransition)

	err = f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusUpcoming, selection.ActionPeriodEdited)
	require.ErrorIs(t, err, selection.ErrInvalidTransition)
}

func TestPeriodDeletionRules(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// OPEN periods are not deletable.
	require.ErrorIs(t, f.store.DeletePeriod(ctx, "admin", f.period.ID),
		selection.ErrInvalidTransition)

	// CLOSED without assignments is deletable.
	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusClosed, selection.ActionPeriodClosed))
	require.NoError(t, f.store.DeletePeriod(ctx, "admin", f.period.ID))

	var _, err = f.store.GetPeriod(ctx, f.period.ID)
	require.ErrorIs(t, err, selection.ErrNotFound)
}

func TestManualAssignment(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// Manual assignment requires a CLOSED period.
	var err = f.store.SetManualAssignment(ctx, "admin", f.period.ID, f.senior.ID, f.routeOne.ID)
	require.ErrorIs(t, err, selection.ErrInvalidTransition)

	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusClosed, selection.ActionPeriodClosed))
	require.NoError(t, f.store.SetManualAssignment(ctx, "admin", f.period.ID, f.senior.ID, f.routeOne.ID))

	a, err := f.store.GetAssignment(ctx, f.senior.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, f.routeOne.ID, a.RouteID)
	require.True(t, a.Manual)
	require.Zero(t, a.ChoiceReceived)

	// The taken route is refused for another employee.
	err = f.store.SetManualAssignment(ctx, "admin", f.period.ID, f.junior.ID, f.routeOne.ID)
	require.ErrorIs(t, err, selection.ErrRouteAlreadyAssigned)

	// A route outside the period's catalog is refused.
	var doubles = selection.Route{
		RunNumber: "900", Type: selection.RouteDoubles, RateType: selection.RateFlat,
		RequiresDoublesEndorsement: true, Active: true,
	}
	require.NoError(t, f.store.PutRoute(ctx, &doubles))
	err = f.store.SetManualAssignment(ctx, "admin", f.period.ID, f.junior.ID, doubles.ID)
	require.ErrorIs(t, err, selection.ErrRouteNotInCatalog)

	// Once cataloged, an unqualified employee is refused.
	require.NoError(t, f.store.SetPeriodRoutes(ctx, "admin", f.period.ID,
		[]string{f.routeOne.ID, f.routeTwo.ID, doubles.ID}))
	err = f.store.SetManualAssignment(ctx, "admin", f.period.ID, f.junior.ID, doubles.ID)
	require.ErrorIs(t, err, selection.ErrQualificationViolation)

	// A period holding assignments is no longer deletable.
	require.ErrorIs(t, f.store.DeletePeriod(ctx, "admin", f.period.ID),
		selection.ErrInvalidTransition)
}

func TestCommitAbortLeavesPeriodClosed(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	require.NoError(t, f.store.TransitionPeriod(ctx, "admin", f.period.ID,
		selection.StatusClosed, selection.ActionPeriodClosed))

	// A failing compute rolls the whole commit back: the PROCESSING
	// transition is undone and nothing is persisted.
	var _, err = f.store.CommitAssignments(ctx, "admin", f.period.ID,
		func(*store.PeriodSnapshot) ([]selection.Assignment, error) {
			return nil, fmt.Errorf("%w: route r1 assigned twice", selection.ErrValidationFailed)
		})
	require.ErrorIs(t, err, selection.ErrValidationFailed)

	p, err := f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, selection.StatusClosed, p.Status)

	assignments, err := f.store.ListAssignments(ctx, f.period.ID)
	require.NoError(t, err)
	require.Empty(t, assignments)

	// The period is still committable once the anomaly is resolved.
	set, err := f.store.CommitAssignments(ctx, "admin", f.period.ID,
		func(snap *store.PeriodSnapshot) ([]selection.Assignment, error) {
			var out []selection.Assignment
			for _, e := range snap.Employees {
				out = append(out, selection.Assignment{EmployeeID: e.ID})
			}
			return out, nil
		})
	require.NoError(t, err)
	require.Len(t, set, 2)

	p, err = f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, selection.StatusCompleted, p.Status)
}

func TestGetPeriodCatalogIsolation(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	// Prime the catalog cache, then mutate the returned slice.
	p, err := f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.Len(t, p.RouteIDs, 2)
	p.RouteIDs[0] = "mangled"

	// Later readers see the stored catalog, not the mutation.
	p, err = f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{f.routeOne.ID, f.routeTwo.ID}, p.RouteIDs)
}

func TestAuditTrail(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	var _, err = f.store.UpsertPreference(ctx, "alice",
		f.senior.ID, f.period.ID, []string{f.routeOne.ID})
	require.NoError(t, err)

	events, err := f.store.AuditEvents(ctx, store.AuditQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	// Most recent first: the preference save precedes the open and
	// create events in the scan.
	require.Equal(t, selection.ActionPreferenceSaved, events[0].Action)

	var actions []selection.AuditAction
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	require.Contains(t, actions, selection.ActionPeriodCreated)
	require.Contains(t, actions, selection.ActionPeriodOpened)

	// User filter.
	events, err = f.store.AuditEvents(ctx, store.AuditQuery{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Limit.
	events, err = f.store.AuditEvents(ctx, store.AuditQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
}

func TestPeriodMetaEdit(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	require.NoError(t, f.store.UpdatePeriodMeta(ctx, "admin", f.period.ID,
		"Fall 2026 (revised)", "second posting"))

	p, err := f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, "Fall 2026 (revised)", p.Name)
	require.Equal(t, "second posting", p.Description)
}

func TestSetPeriodRoutes(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	require.Error(t, f.store.SetPeriodRoutes(ctx, "admin", f.period.ID, nil))

	require.NoError(t, f.store.SetPeriodRoutes(ctx, "admin", f.period.ID,
		[]string{f.routeTwo.ID}))

	p, err := f.store.GetPeriod(ctx, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.routeTwo.ID}, p.RouteIDs)

	// A choice outside the shrunken catalog is now rejected.
	_, err = f.store.UpsertPreference(ctx, "alice", f.senior.ID, f.period.ID,
		[]string{f.routeOne.ID})
	require.ErrorIs(t, err, selection.ErrRouteNotInCatalog)
}
