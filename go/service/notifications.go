package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/auth"
	"github.com/kjohn5218/route-selection-sub000/go/notify"
	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// NotifyPeriodOpened emails submission instructions to every eligible
// employee. Permitted while the period is UPCOMING or OPEN. A non-zero
// failed count in the result is not an error.
func (s *Service) NotifyPeriodOpened(ctx context.Context, pr auth.Principal, periodID string) (notify.Result, error) {
	if !pr.IsManager() {
		return notify.Result{}, forbidden(&pr, "send period notifications")
	}

	var snap, err = s.store.LoadSnapshot(ctx, periodID)
	if err != nil {
		return notify.Result{}, s.fail(ctx, &pr, periodID, err)
	}
	switch snap.Period.Status {
	case selection.StatusUpcoming, selection.StatusOpen:
	default:
		return notify.Result{}, s.fail(ctx, &pr, periodID,
			fmt.Errorf("%w: period notifications require UPCOMING or OPEN, period %s is %s",
				selection.ErrInvalidTransition, periodID, snap.Period.Status))
	}

	var batch = notify.PeriodOpened(&snap.Period, snap.Employees)
	var result = s.dispatcher.Dispatch(ctx, pr.UserID, batch)
	log.WithFields(log.Fields{
		"period": periodID,
		"sent":   result.Sent,
		"failed": result.Failed,
	}).Info("sent period-opened notifications")
	return result, nil
}

// NotifyAssignments emails each employee their result or float-pool
// placement for a COMPLETED period. May be repeated to resend.
func (s *Service) NotifyAssignments(ctx context.Context, pr auth.Principal, periodID string) (notify.Result, error) {
	if !pr.IsManager() {
		return notify.Result{}, forbidden(&pr, "send assignment notifications")
	}

	var snap, err = s.store.LoadSnapshot(ctx, periodID)
	if err != nil {
		return notify.Result{}, s.fail(ctx, &pr, periodID, err)
	}
	if snap.Period.Status != selection.StatusCompleted {
		return notify.Result{}, s.fail(ctx, &pr, periodID,
			fmt.Errorf("%w: assignment notifications require COMPLETED, period %s is %s",
				selection.ErrInvalidTransition, periodID, snap.Period.Status))
	}

	assignments, err := s.store.ListAssignments(ctx, periodID)
	if err != nil {
		return notify.Result{}, s.fail(ctx, &pr, periodID, err)
	}

	var employees = make(map[string]selection.Employee, len(snap.Employees))
	for _, e := range snap.Employees {
		employees[e.ID] = e
	}

	var batch = notify.AssignmentResults(&snap.Period, employees, snap.Routes, assignments)
	var result = s.dispatcher.Dispatch(ctx, pr.UserID, batch)
	log.WithFields(log.Fields{
		"period": periodID,
		"sent":   result.Sent,
		"failed": result.Failed,
	}).Info("sent assignment notifications")
	return result, nil
}
