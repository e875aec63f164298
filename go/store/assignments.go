package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// PeriodSnapshot is a consistent view of everything the assignment
// engine reads for one period: the period itself, the eligible roster in
// seniority order, the active catalog routes, and submitted preferences
// keyed by employee.
type PeriodSnapshot struct {
	Period      selection.SelectionPeriod
	Employees   []selection.Employee
	Routes      map[string]selection.Route
	Preferences map[string]selection.Preference
}

// LoadSnapshot reads a snapshot outside any write transaction, for the
// engine's preview mode.
func (s *Store) LoadSnapshot(ctx context.Context, periodID string) (*PeriodSnapshot, error) {
	return loadSnapshot(ctx, s.db, periodID)
}

func loadSnapshot(ctx context.Context, q querier, periodID string) (*PeriodSnapshot, error) {
	var p, err = getPeriod(ctx, q, periodID)
	if err != nil {
		return nil, err
	}
	if p.RouteIDs, err = periodRouteIDs(ctx, q, periodID); err != nil {
		return nil, err
	}

	var snap = PeriodSnapshot{Period: *p}
	if snap.Employees, err = eligibleEmployees(ctx, q, p.TerminalID); err != nil {
		return nil, err
	}
	if snap.Routes, err = catalogRoutes(ctx, q, periodID); err != nil {
		return nil, err
	}

	prefs, err := listPreferences(ctx, q, periodID)
	if err != nil {
		return nil, err
	}
	snap.Preferences = make(map[string]selection.Preference, len(prefs))
	for _, pref := range prefs {
		snap.Preferences[pref.EmployeeID] = pref
	}
	return &snap, nil
}

// ComputeFunc produces the assignment set for a snapshot, or an error
// (typically ErrValidationFailed) which aborts the commit.
type ComputeFunc func(*PeriodSnapshot) ([]selection.Assignment, error)

// CommitAssignments runs the engine's commit inside one transaction: the
// period transitions CLOSED -> PROCESSING, compute produces the
// assignment set from a snapshot taken under the transaction, the set
// replaces any pre-existing manual assignments, and the period
// transitions PROCESSING -> COMPLETED. Any failure rolls the whole
// transaction back, leaving the period CLOSED and no assignments
// persisted.
func (s *Store) CommitAssignments(ctx context.Context, actor, periodID string, compute ComputeFunc) ([]selection.Assignment, error) {
	var out []selection.Assignment

	var err = s.withTx(ctx, func(tx *sql.Tx) error {
		// CLOSED -> PROCESSING marks the start of the commit. Both
		// transitions below are rolled back together on failure, so an
		// aborted commit leaves the period CLOSED.
		if err := setStatus(ctx, tx, periodID, selection.StatusProcessing); err != nil {
			return err
		}

		snap, err := loadSnapshot(ctx, tx, periodID)
		if err != nil {
			return err
		}

		out, err = compute(snap)
		if err != nil {
			return err
		}

		// Manual assignments written while the period was CLOSED are
		// replaced by the engine's output.
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM assignments WHERE period_id = ?`, periodID); err != nil {
			return fmt.Errorf("clearing prior assignments: %w", err)
		}

		var effective = effectiveDate(&snap.Period)
		for i := range out {
			var a = &out[i]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			a.PeriodID = periodID
			a.EffectiveDate = effective
			if err = insertAssignment(ctx, tx, a); err != nil {
				return err
			}
		}

		if err = setStatus(ctx, tx, periodID, selection.StatusCompleted); err != nil {
			return err
		}

		var summary = selection.Summarize(out)
		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPeriodCompleted,
			Resource: periodID,
			Details: fmt.Sprintf("first=%d second=%d third=%d manual=%d float=%d",
				summary.FirstChoice, summary.SecondChoice, summary.ThirdChoice,
				summary.Manual, summary.FloatPool),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// setStatus advances the period's status after re-checking the
// transition table against the row's current value.
func setStatus(ctx context.Context, tx *sql.Tx, periodID string, next selection.Status) error {
	var p, err = getPeriod(ctx, tx, periodID)
	if err != nil {
		return err
	}
	if !p.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s for period %s",
			selection.ErrInvalidTransition, p.Status, next, periodID)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE selection_periods SET status = ? WHERE id = ?`, string(next), periodID); err != nil {
		return fmt.Errorf("updating period status: %w", err)
	}
	return nil
}

func insertAssignment(ctx context.Context, q querier, a *selection.Assignment) error {
	var choice interface{}
	if a.ChoiceReceived >= 1 && a.ChoiceReceived <= selection.MaxChoices {
		choice = a.ChoiceReceived
	}
	var _, err = q.ExecContext(ctx,
		`INSERT INTO assignments
			(id, employee_id, period_id, route_id, choice_received, manual, effective_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.PeriodID, nullable(a.RouteID), choice, a.Manual,
		a.EffectiveDate.UTC())
	if err != nil {
		return fmt.Errorf("inserting assignment for employee %s: %w", a.EmployeeID, err)
	}
	return nil
}

// SetManualAssignment writes an administrative assignment outside the
// engine while the period is CLOSED. The route must be in the period's
// catalog, as for preferences. The assignment is replaced by engine
// output if the period is later processed.
func (s *Store) SetManualAssignment(ctx context.Context, actor, periodID, employeeID, routeID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var p, err = getPeriod(ctx, tx, periodID)
		if err != nil {
			return err
		}
		if p.Status != selection.StatusClosed {
			return fmt.Errorf("%w: manual assignment requires a CLOSED period, period %s is %s",
				selection.ErrInvalidTransition, periodID, p.Status)
		}
		if p.RouteIDs, err = periodRouteIDs(ctx, tx, periodID); err != nil {
			return err
		}
		if !p.InCatalog(routeID) {
			return fmt.Errorf("%w: route %s in period %s",
				selection.ErrRouteNotInCatalog, routeID, periodID)
		}

		employee, err := getEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}
		route, err := getRoute(ctx, tx, routeID)
		if err != nil {
			return err
		}
		if !selection.Qualifies(employee, route) {
			return fmt.Errorf("%w: employee %s on route %s",
				selection.ErrQualificationViolation, employee.EmployeeID, route.RunNumber)
		}

		var holder string
		err = tx.QueryRowContext(ctx,
			`SELECT employee_id FROM assignments WHERE period_id = ? AND route_id = ?`,
			periodID, routeID).Scan(&holder)
		if err == nil && holder != employeeID {
			return fmt.Errorf("%w: route %s is held by employee %s",
				selection.ErrRouteAlreadyAssigned, route.RunNumber, holder)
		} else if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("checking route holder: %w", err)
		}

		var a = selection.Assignment{
			ID:            uuid.NewString(),
			EmployeeID:    employeeID,
			PeriodID:      periodID,
			RouteID:       routeID,
			Manual:        true,
			EffectiveDate: effectiveDate(p),
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM assignments WHERE period_id = ? AND employee_id = ?`,
			periodID, employeeID); err != nil {
			return fmt.Errorf("clearing prior assignment: %w", err)
		}
		if err = insertAssignment(ctx, tx, &a); err != nil {
			return err
		}

		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionManualAssignment,
			Resource: periodID,
			Details:  fmt.Sprintf("employee=%s route=%s", employeeID, routeID),
		})
	})
}

// GetAssignment returns the employee's assignment for the period, or
// ErrNotFound. Absence is the common case while a period is CLOSED but
// not yet processed; callers surface it as a canonical not-found rather
// than a failure.
func (s *Store) GetAssignment(ctx context.Context, employeeID, periodID string) (*selection.Assignment, error) {
	var row = s.db.QueryRowContext(ctx, assignmentColumns+
		` WHERE employee_id = ? AND period_id = ?`, employeeID, periodID)
	var a, err = scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment of employee %s in period %s: %w",
			employeeID, periodID, selection.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns the period's assignments ordered by employee.
func (s *Store) ListAssignments(ctx context.Context, periodID string) ([]selection.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, assignmentColumns+
		` WHERE period_id = ? ORDER BY employee_id`, periodID)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []selection.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

const assignmentColumns = `SELECT id, employee_id, period_id, route_id, choice_received,
	manual, effective_date FROM assignments`

func scanAssignment(row rowScanner) (*selection.Assignment, error) {
	var a selection.Assignment
	var routeID sql.NullString
	var choice sql.NullInt64
	var err = row.Scan(&a.ID, &a.EmployeeID, &a.PeriodID, &routeID, &choice,
		&a.Manual, &a.EffectiveDate)
	if err != nil {
		return nil, err
	}
	a.RouteID = routeID.String
	a.ChoiceReceived = int(choice.Int64)
	return &a, nil
}
