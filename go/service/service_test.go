package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kjohn5218/route-selection-sub000/go/auth"
	"github.com/kjohn5218/route-selection-sub000/go/notify"
	"github.com/kjohn5218/route-selection-sub000/go/selection"
	"github.com/kjohn5218/route-selection-sub000/go/service"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

var (
	admin   = auth.Principal{UserID: "root", Role: auth.RoleAdmin}
	manager = auth.Principal{UserID: "mgr", Role: auth.RoleManager, EmployeeID: "unused"}
)

type fixture struct {
	svc    *service.Service
	period selection.SelectionPeriod
	alice  selection.Employee // Senior.
	bob    selection.Employee // Junior.
	routes []selection.Route
}

func (f *fixture) driver(e *selection.Employee) auth.Principal {
	return auth.Principal{UserID: e.EmployeeID, Role: auth.RoleDriver, EmployeeID: e.ID}
}

func newFixture(t *testing.T) *fixture {
	var ctx = context.Background()
	var s, err = store.Open(filepath.Join(t.TempDir(), "selection.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var f = fixture{svc: service.New(s, notify.LogSender{}, 2)}

	f.alice = selection.Employee{
		EmployeeID: "E100", FirstName: "Alice", LastName: "Archer",
		Email:    "alice@example.com",
		HireDate: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), Eligible: true,
	}
	f.bob = selection.Employee{
		EmployeeID: "E200", FirstName: "Bob", LastName: "Barnes",
		Email:    "bob@example.com",
		HireDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), Eligible: true,
	}
	require.NoError(t, s.PutEmployee(ctx, &f.alice))
	require.NoError(t, s.PutEmployee(ctx, &f.bob))

	f.routes = []selection.Route{
		{RunNumber: "101", Type: selection.RouteSingles, RateType: selection.RateMileage, Active: true},
		{RunNumber: "102", Type: selection.RouteSingles, RateType: selection.RateHourly, Active: true},
	}
	for i := range f.routes {
		require.NoError(t, s.PutRoute(ctx, &f.routes[i]))
	}

	f.period = selection.SelectionPeriod{
		Name:               "Fall 2026",
		StartDate:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		RequiredSelections: 1,
		RouteIDs:           []string{f.routes[0].ID, f.routes[1].ID},
	}
	require.NoError(t, f.svc.CreatePeriod(ctx, admin, &f.period))
	require.NoError(t, f.svc.OpenPeriod(ctx, admin, f.period.ID))
	return &f
}

func TestDriverSelfService(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)
	var alice = f.driver(&f.alice)

	confirmation, err := f.svc.UpsertPreference(ctx, alice, f.alice.ID, f.period.ID,
		[]string{f.routes[0].ID})
	require.NoError(t, err)
	require.NotEmpty(t, confirmation)

	pref, err := f.svc.GetPreference(ctx, alice, f.alice.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, confirmation, pref.ConfirmationNumber)

	// Reading the assignment before processing is a canonical
	// not-found, not a failure mode.
	var _, getErr = f.svc.GetAssignment(ctx, alice, f.alice.ID, f.period.ID)
	require.ErrorIs(t, getErr, selection.ErrNotFound)
}

func TestDriverCannotTouchOthers(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)
	var bob = f.driver(&f.bob)

	var _, err = f.svc.UpsertPreference(ctx, bob, f.alice.ID, f.period.ID,
		[]string{f.routes[0].ID})
	require.ErrorIs(t, err, selection.ErrForbidden)

	_, err = f.svc.GetPreference(ctx, bob, f.alice.ID, f.period.ID)
	require.ErrorIs(t, err, selection.ErrForbidden)

	_, err = f.svc.ListPreferences(ctx, bob, f.period.ID)
	require.ErrorIs(t, err, selection.ErrForbidden)

	_, err = f.svc.ListAssignments(ctx, bob, f.period.ID)
	require.ErrorIs(t, err, selection.ErrForbidden)
}

func TestManagerReadsAll(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	var _, err = f.svc.UpsertPreference(ctx, f.driver(&f.alice), f.alice.ID, f.period.ID,
		[]string{f.routes[0].ID})
	require.NoError(t, err)

	prefs, err := f.svc.ListPreferences(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)

	pref, err := f.svc.GetPreference(ctx, manager, f.alice.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, f.alice.ID, pref.EmployeeID)
}

func TestAdminOnlyOperations(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	require.ErrorIs(t, f.svc.DeletePeriod(ctx, manager, f.period.ID), selection.ErrForbidden)

	var _, err = f.svc.Commit(ctx, manager, f.period.ID)
	require.ErrorIs(t, err, selection.ErrForbidden)

	require.ErrorIs(t,
		f.svc.ManualAssign(ctx, manager, f.period.ID, f.alice.ID, f.routes[0].ID),
		selection.ErrForbidden)

	require.ErrorIs(t,
		f.svc.OpenPeriod(ctx, f.driver(&f.alice), f.period.ID),
		selection.ErrForbidden)
}

func TestEndToEndSelection(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	var _, err = f.svc.UpsertPreference(ctx, f.driver(&f.alice), f.alice.ID, f.period.ID,
		[]string{f.routes[0].ID, f.routes[1].ID})
	require.NoError(t, err)
	_, err = f.svc.UpsertPreference(ctx, f.driver(&f.bob), f.bob.ID, f.period.ID,
		[]string{f.routes[0].ID, f.routes[1].ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.ClosePeriod(ctx, manager, f.period.ID))

	preview, err := f.svc.Preview(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, 1, preview.Summary.FirstChoice)
	require.Equal(t, 1, preview.Summary.SecondChoice)

	result, err := f.svc.Commit(ctx, admin, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, preview.Summary, result.Summary)

	a, err := f.svc.GetAssignment(ctx, f.driver(&f.alice), f.alice.ID, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, f.routes[0].ID, a.RouteID)

	// Results go out only after completion.
	sent, err := f.svc.NotifyAssignments(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, 2, sent.Sent)
	require.Zero(t, sent.Failed)
}

func TestNotifyPeriodOpenedStatusGate(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	result, err := f.svc.NotifyPeriodOpened(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Sent)

	require.NoError(t, f.svc.ClosePeriod(ctx, manager, f.period.ID))
	var _, notifyErr = f.svc.NotifyPeriodOpened(ctx, manager, f.period.ID)
	require.ErrorIs(t, notifyErr, selection.ErrInvalidTransition)

	// Assignment notifications require a COMPLETED period.
	_, notifyErr = f.svc.NotifyAssignments(ctx, manager, f.period.ID)
	require.ErrorIs(t, notifyErr, selection.ErrInvalidTransition)
}

func TestEditPeriodMergePatch(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	require.ErrorIs(t,
		f.svc.EditPeriod(ctx, f.driver(&f.alice), f.period.ID, []byte(`{"name":"x"}`)),
		selection.ErrForbidden)

	// Patch the description alone; the name is untouched.
	require.NoError(t, f.svc.EditPeriod(ctx, manager, f.period.ID,
		[]byte(`{"description":"posted to the board"}`)))

	p, err := f.svc.GetPeriod(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, "Fall 2026", p.Name)
	require.Equal(t, "posted to the board", p.Description)

	require.NoError(t, f.svc.EditPeriod(ctx, manager, f.period.ID,
		[]byte(`{"name":"Fall 2026 (final)"}`)))
	p, err = f.svc.GetPeriod(ctx, manager, f.period.ID)
	require.NoError(t, err)
	require.Equal(t, "Fall 2026 (final)", p.Name)
	require.Equal(t, "posted to the board", p.Description)
}

func TestSurfacedErrorsAreAudited(t *testing.T) {
	var ctx = context.Background()
	var f = newFixture(t)

	var _, err = f.svc.UpsertPreference(ctx, f.driver(&f.bob), f.alice.ID, f.period.ID,
		[]string{f.routes[0].ID})
	require.ErrorIs(t, err, selection.ErrForbidden)

	events, err := f.svc.AuditEvents(ctx, admin, store.AuditQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, selection.ActionErrorSurfaced, events[0].Action)
}
