package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// UpsertPreference stores or replaces the employee's ranked choices for
// the period, returning the new confirmation number. The period's
// status is re-read inside the write transaction: a submission racing an
// administrator's close either commits while the period is still OPEN,
// or fails with ErrPeriodNotOpen.
func (s *Store) UpsertPreference(ctx context.Context, actor, employeeID, periodID string, choices []string) (string, error) {
	var now = time.Now().UTC()
	var confirmation = s.nextConfirmation(now)

	var err = s.withTx(ctx, func(tx *sql.Tx) error {
		var p, err = getPeriod(ctx, tx, periodID)
		if err != nil {
			return err
		}
		if p.Status != selection.StatusOpen {
			return fmt.Errorf("%w: period %s is %s", selection.ErrPeriodNotOpen, periodID, p.Status)
		}
		if p.RouteIDs, err = periodRouteIDs(ctx, tx, periodID); err != nil {
			return err
		}
		if _, err = getEmployee(ctx, tx, employeeID); err != nil {
			return err
		}
		if err = selection.ValidateChoices(p, choices); err != nil {
			return err
		}

		var c1, c2, c3 interface{}
		c1 = choices[0]
		if len(choices) > 1 {
			c2 = choices[1]
		}
		if len(choices) > 2 {
			c3 = choices[2]
		}

		// Replacement keeps the row's identity but reissues the
		// confirmation number and submission time.
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO preferences
				(id, employee_id, period_id, choice1, choice2, choice3, confirmation_number, submitted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (employee_id, period_id) DO UPDATE SET
				choice1 = excluded.choice1,
				choice2 = excluded.choice2,
				choice3 = excluded.choice3,
				confirmation_number = excluded.confirmation_number,
				submitted_at = excluded.submitted_at`,
			uuid.NewString(), employeeID, periodID, c1, c2, c3, confirmation, now); err != nil {
			return fmt.Errorf("upserting preference: %w", err)
		}

		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPreferenceSaved,
			Resource: periodID,
			Details: fmt.Sprintf("employee=%s confirmation=%s choices=%s",
				employeeID, confirmation, strings.Join(choices, ",")),
		})
	})
	if err != nil {
		return "", err
	}
	return confirmation, nil
}

// GetPreference returns the employee's preference for the period, or
// ErrNotFound if none was submitted.
func (s *Store) GetPreference(ctx context.Context, employeeID, periodID string) (*selection.Preference, error) {
	var row = s.db.QueryRowContext(ctx, preferenceColumns+
		` WHERE employee_id = ? AND period_id = ?`, employeeID, periodID)
	var p, err = scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("preference of employee %s in period %s: %w",
			employeeID, periodID, selection.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading preference: %w", err)
	}
	return p, nil
}

// ListPreferences returns all preferences of the period, keyed for the
// engine's scan.
func (s *Store) ListPreferences(ctx context.Context, periodID string) ([]selection.Preference, error) {
	return listPreferences(ctx, s.db, periodID)
}

const preferenceColumns = `SELECT id, employee_id, period_id, choice1, choice2, choice3,
	confirmation_number, submitted_at FROM preferences`

func scanPreference(row rowScanner) (*selection.Preference, error) {
	var p selection.Preference
	var c1, c2, c3 sql.NullString
	var err = row.Scan(&p.ID, &p.EmployeeID, &p.PeriodID, &c1, &c2, &c3,
		&p.ConfirmationNumber, &p.SubmittedAt)
	if err != nil {
		return nil, err
	}
	for _, c := range []sql.NullString{c1, c2, c3} {
		if c.Valid && c.String != "" {
			p.Choices = append(p.Choices, c.String)
		}
	}
	return &p, nil
}

func listPreferences(ctx context.Context, q querier, periodID string) ([]selection.Preference, error) {
	rows, err := q.QueryContext(ctx, preferenceColumns+
		` WHERE period_id = ? ORDER BY employee_id`, periodID)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	defer rows.Close()

	var out []selection.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
