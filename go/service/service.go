// Package service is the authorization-enforcing surface of the
// selection core. Every entry point receives the authenticated
// principal established by the host HTTP layer and applies the role
// rules before delegating to the store, engine, or dispatcher.
package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/auth"
	"github.com/kjohn5218/route-selection-sub000/go/engine"
	"github.com/kjohn5218/route-selection-sub000/go/notify"
	"github.com/kjohn5218/route-selection-sub000/go/selection"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

// Service wires the selection core together.
type Service struct {
	store      *store.Store
	engine     *engine.Engine
	dispatcher *notify.Dispatcher
}

// New builds a Service over the store and notification sender.
func New(s *store.Store, sender notify.Sender, fanOut int) *Service {
	return &Service{
		store:      s,
		engine:     engine.New(s),
		dispatcher: notify.NewDispatcher(sender, s.AppendAudit, fanOut),
	}
}

// Store exposes the underlying store for administrative tooling.
func (s *Service) Store() *store.Store { return s.store }

// fail records a surfaced error at its originating boundary and
// returns it. The audit write is best-effort: the error itself is the
// caller's signal.
func (s *Service) fail(ctx context.Context, pr *auth.Principal, resource string, err error) error {
	if auditErr := s.store.AppendAudit(ctx, selection.AuditEvent{
		UserID:   pr.UserID,
		Action:   selection.ActionErrorSurfaced,
		Resource: resource,
		Details:  err.Error(),
	}); auditErr != nil {
		log.WithFields(log.Fields{"resource": resource, "err": auditErr}).
			Error("failed to record surfaced error")
	}
	return err
}

func forbidden(pr *auth.Principal, op string) error {
	return fmt.Errorf("%w: %s as %s", selection.ErrForbidden, op, pr.Role)
}

// UpsertPreference stores the ranked choices of one driver for one OPEN
// period and returns the confirmation number. Drivers write only their
// own preference; admins may write any.
func (s *Service) UpsertPreference(ctx context.Context, pr auth.Principal, employeeID, periodID string, choices []string) (string, error) {
	if !pr.CanActFor(employeeID) {
		return "", s.fail(ctx, &pr, periodID, forbidden(&pr, "upsert preference"))
	}
	confirmation, err := s.store.UpsertPreference(ctx, pr.UserID, employeeID, periodID, choices)
	if err != nil {
		return "", s.fail(ctx, &pr, periodID, err)
	}
	return confirmation, nil
}

// GetPreference reads one preference. Drivers read their own; managers
// and admins read any.
func (s *Service) GetPreference(ctx context.Context, pr auth.Principal, employeeID, periodID string) (*selection.Preference, error) {
	if !pr.CanActFor(employeeID) && !pr.CanReadAll() {
		return nil, forbidden(&pr, "read preference")
	}
	return s.store.GetPreference(ctx, employeeID, periodID)
}

// ListPreferences returns every preference of the period, for managers
// and admins.
func (s *Service) ListPreferences(ctx context.Context, pr auth.Principal, periodID string) ([]selection.Preference, error) {
	if !pr.CanReadAll() {
		return nil, forbidden(&pr, "list preferences")
	}
	return s.store.ListPreferences(ctx, periodID)
}

// GetAssignment reads one assignment. Absence returns ErrNotFound: the
// common case while a period is closed but not yet processed.
func (s *Service) GetAssignment(ctx context.Context, pr auth.Principal, employeeID, periodID string) (*selection.Assignment, error) {
	if !pr.CanActFor(employeeID) && !pr.CanReadAll() {
		return nil, forbidden(&pr, "read assignment")
	}
	return s.store.GetAssignment(ctx, employeeID, periodID)
}

// ListAssignments returns every assignment of the period, for managers
// and admins.
func (s *Service) ListAssignments(ctx context.Context, pr auth.Principal, periodID string) ([]selection.Assignment, error) {
	if !pr.CanReadAll() {
		return nil, forbidden(&pr, "list assignments")
	}
	return s.store.ListAssignments(ctx, periodID)
}

// CreatePeriod creates a period in UPCOMING.
func (s *Service) CreatePeriod(ctx context.Context, pr auth.Principal, p *selection.SelectionPeriod) error {
	if !pr.IsManager() {
		return forbidden(&pr, "create period")
	}
	if err := s.store.CreatePeriod(ctx, pr.UserID, p); err != nil {
		return s.fail(ctx, &pr, p.ID, err)
	}
	return nil
}

// GetPeriod returns a period with its catalog.
func (s *Service) GetPeriod(ctx context.Context, pr auth.Principal, periodID string) (*selection.SelectionPeriod, error) {
	return s.store.GetPeriod(ctx, periodID)
}

// ListPeriods returns all periods.
func (s *Service) ListPeriods(ctx context.Context, pr auth.Principal) ([]selection.SelectionPeriod, error) {
	return s.store.ListPeriods(ctx)
}

// OpenPeriod transitions UPCOMING -> OPEN.
func (s *Service) OpenPeriod(ctx context.Context, pr auth.Principal, periodID string) error {
	if !pr.IsManager() {
		return forbidden(&pr, "open period")
	}
	if err := s.store.TransitionPeriod(ctx, pr.UserID, periodID,
		selection.StatusOpen, selection.ActionPeriodOpened); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}

// ClosePeriod transitions OPEN -> CLOSED, ending submissions.
func (s *Service) ClosePeriod(ctx context.Context, pr auth.Principal, periodID string) error {
	if !pr.IsManager() {
		return forbidden(&pr, "close period")
	}
	if err := s.store.TransitionPeriod(ctx, pr.UserID, periodID,
		selection.StatusClosed, selection.ActionPeriodClosed); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}

// DeletePeriod removes a period which would not orphan assignments.
func (s *Service) DeletePeriod(ctx context.Context, pr auth.Principal, periodID string) error {
	if !pr.IsAdmin() {
		return forbidden(&pr, "delete period")
	}
	if err := s.store.DeletePeriod(ctx, pr.UserID, periodID); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}

// SetPeriodRoutes adjusts the period's route catalog.
func (s *Service) SetPeriodRoutes(ctx context.Context, pr auth.Principal, periodID string, routeIDs []string) error {
	if !pr.IsManager() {
		return forbidden(&pr, "edit period catalog")
	}
	if err := s.store.SetPeriodRoutes(ctx, pr.UserID, periodID, routeIDs); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}

// Preview runs the engine read-only and returns the assignment set and
// summary without persisting or transitioning anything.
func (s *Service) Preview(ctx context.Context, pr auth.Principal, periodID string) (*engine.Result, error) {
	if !pr.IsManager() {
		return nil, forbidden(&pr, "preview assignments")
	}
	result, err := s.engine.Preview(ctx, periodID)
	if err != nil {
		return nil, s.fail(ctx, &pr, periodID, err)
	}
	return result, nil
}

// Commit runs the engine and persists its output, completing the
// period.
func (s *Service) Commit(ctx context.Context, pr auth.Principal, periodID string) (*engine.Result, error) {
	if !pr.IsAdmin() {
		return nil, forbidden(&pr, "commit assignments")
	}
	result, err := s.engine.Commit(ctx, pr.UserID, periodID)
	if err != nil {
		if errors.Is(err, selection.ErrValidationFailed) {
			// Commit already recorded the abort; don't double-audit.
			return nil, err
		}
		return nil, s.fail(ctx, &pr, periodID, err)
	}
	return result, nil
}

// ManualAssign writes an administrative assignment outside the engine
// while the period is CLOSED.
func (s *Service) ManualAssign(ctx context.Context, pr auth.Principal, periodID, employeeID, routeID string) error {
	if !pr.IsAdmin() {
		return forbidden(&pr, "manual assignment")
	}
	if err := s.store.SetManualAssignment(ctx, pr.UserID, periodID, employeeID, routeID); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}

// AuditEvents returns the audit log, most recent first.
func (s *Service) AuditEvents(ctx context.Context, pr auth.Principal, query store.AuditQuery) ([]selection.AuditEvent, error) {
	if !pr.IsManager() {
		return nil, forbidden(&pr, "read audit log")
	}
	return s.store.AuditEvents(ctx, query)
}
