// Package engine turns ranked preferences into an exclusive
// route-to-driver mapping using strict seniority-greedy dispatch. The
// traversal is O(|employees| * 3) and deterministic given the total
// seniority order: a driver never loses a higher choice to a junior
// driver.
package engine

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

// Engine computes and commits assignment sets for closed periods.
type Engine struct {
	store *store.Store
}

// New returns an Engine over the store.
func New(s *store.Store) *Engine { return &Engine{store: s} }

// Result is the outcome of a preview or commit run.
type Result struct {
	Assignments []selection.Assignment
	Summary     selection.Summary
}

// Preview computes the assignment set for a CLOSED period without
// persisting anything or transitioning state. The returned set and
// summary equal what Commit would produce from the same data.
func (e *Engine) Preview(ctx context.Context, periodID string) (*Result, error) {
	var snap, err = e.store.LoadSnapshot(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if snap.Period.Status != selection.StatusClosed {
		return nil, fmt.Errorf("%w: preview requires a CLOSED period, period %s is %s",
			selection.ErrInvalidTransition, periodID, snap.Period.Status)
	}

	var assignments = assign(snap)
	if err = validate(snap, assignments); err != nil {
		return nil, err
	}
	previewsCounter.Inc()

	return &Result{Assignments: assignments, Summary: selection.Summarize(assignments)}, nil
}

// Commit computes, validates, and persists the assignment set, moving
// the period CLOSED -> PROCESSING -> COMPLETED within one transaction.
// A validation failure rolls everything back, leaves the period CLOSED,
// and surfaces ErrValidationFailed for operator investigation.
func (e *Engine) Commit(ctx context.Context, actor, periodID string) (*Result, error) {
	var assignments, err = e.store.CommitAssignments(ctx, actor, periodID,
		func(snap *store.PeriodSnapshot) ([]selection.Assignment, error) {
			var set = assign(snap)
			if err := validate(snap, set); err != nil {
				return nil, err
			}
			return set, nil
		})

	if err != nil {
		if errors.Is(err, selection.ErrValidationFailed) {
			commitsCounter.WithLabelValues("aborted").Inc()
			// The business transaction rolled back; the abort itself is
			// still recorded.
			if auditErr := e.store.AppendAudit(ctx, selection.AuditEvent{
				UserID:   actor,
				Action:   selection.ActionCommitAborted,
				Resource: periodID,
				Details:  err.Error(),
			}); auditErr != nil {
				log.WithFields(log.Fields{"period": periodID, "err": auditErr}).
					Error("failed to record commit abort")
			}
		} else {
			commitsCounter.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	var summary = selection.Summarize(assignments)
	commitsCounter.WithLabelValues("completed").Inc()
	assignmentsCommittedCounter.WithLabelValues("first").Add(float64(summary.FirstChoice))
	assignmentsCommittedCounter.WithLabelValues("second").Add(float64(summary.SecondChoice))
	assignmentsCommittedCounter.WithLabelValues("third").Add(float64(summary.ThirdChoice))
	assignmentsCommittedCounter.WithLabelValues("float").Add(float64(summary.FloatPool))

	log.WithFields(log.Fields{
		"period": periodID,
		"first":  summary.FirstChoice,
		"second": summary.SecondChoice,
		"third":  summary.ThirdChoice,
		"float":  summary.FloatPool,
	}).Info("committed assignments")

	return &Result{Assignments: assignments, Summary: summary}, nil
}

// assign runs the seniority-greedy traversal. Each employee receives
// their highest-ranked choice which is still unclaimed and for which
// they qualify, else a float-pool placement. An unqualified or
// unavailable choice is silently skipped: qualifications may have
// changed between submission and processing.
func assign(snap *store.PeriodSnapshot) []selection.Assignment {
	// The roster arrives in seniority order; re-sort so the result is
	// independent of storage layout.
	selection.SortBySeniority(snap.Employees)

	var remaining = make(map[string]struct{}, len(snap.Routes))
	for id := range snap.Routes {
		remaining[id] = struct{}{}
	}

	var out = make([]selection.Assignment, 0, len(snap.Employees))
	for i := range snap.Employees {
		var employee = &snap.Employees[i]
		var placed bool

		if pref, ok := snap.Preferences[employee.ID]; ok {
			for k := 1; k <= selection.MaxChoices && !placed; k++ {
				var choice = pref.Choice(k)
				if choice == "" {
					continue
				}
				if _, open := remaining[choice]; !open {
					continue
				}
				var route = snap.Routes[choice]
				if !selection.Qualifies(employee, &route) {
					continue
				}

				delete(remaining, choice)
				out = append(out, selection.Assignment{
					EmployeeID:     employee.ID,
					PeriodID:       snap.Period.ID,
					RouteID:        choice,
					ChoiceReceived: k,
				})
				placed = true
			}
		}

		if !placed {
			out = append(out, selection.Assignment{
				EmployeeID: employee.ID,
				PeriodID:   snap.Period.ID,
			})
		}
	}
	return out
}
