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

// CreatePeriod persists a new selection period in UPCOMING together with
// its route catalog. The catalog must be non-empty and every route must
// exist.
func (s *Store) CreatePeriod(ctx context.Context, actor string, p *selection.SelectionPeriod) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = selection.StatusUpcoming
	}
	if err := p.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, routeID := range p.RouteIDs {
			if _, err := getRoute(ctx, tx, routeID); err != nil {
				return err
			}
		}

		var _, err = tx.ExecContext(ctx,
			`INSERT INTO selection_periods
				(id, terminal_id, name, description, start_date, end_date, status, required_selections)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, nullable(p.TerminalID), p.Name, p.Description,
			p.StartDate.UTC(), p.EndDate.UTC(), string(p.Status), p.RequiredSelections)
		if err != nil {
			return fmt.Errorf("inserting period %q: %w", p.Name, err)
		}

		for _, routeID := range p.RouteIDs {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO period_routes (period_id, route_id) VALUES (?, ?)`,
				p.ID, routeID); err != nil {
				return fmt.Errorf("inserting period route %s: %w", routeID, err)
			}
		}

		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPeriodCreated,
			Resource: p.ID,
			Details:  fmt.Sprintf("name=%q routes=%d", p.Name, len(p.RouteIDs)),
		})
	})
}

// GetPeriod returns the period with its route catalog.
func (s *Store) GetPeriod(ctx context.Context, id string) (*selection.SelectionPeriod, error) {
	var p, err = getPeriod(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	// The catalog cache serves read-only paths; transactional writers
	// re-read period_routes inside their transaction. Entries are copied
	// both ways so a caller mutating RouteIDs cannot corrupt the cache.
	if cached, ok := s.catalogs.Get(id); ok {
		p.RouteIDs = append([]string(nil), cached...)
		return p, nil
	}
	if p.RouteIDs, err = periodRouteIDs(ctx, s.db, id); err != nil {
		return nil, err
	}
	s.catalogs.Add(id, append([]string(nil), p.RouteIDs...))
	return p, nil
}

// ListPeriods returns all periods, most recent start date first, without
// their catalogs.
func (s *Store) ListPeriods(ctx context.Context) ([]selection.SelectionPeriod, error) {
	rows, err := s.db.QueryContext(ctx, periodColumns+` ORDER BY start_date DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("querying periods: %w", err)
	}
	defer rows.Close()

	var out []selection.SelectionPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning period: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const periodColumns = `SELECT id, terminal_id, name, description, start_date, end_date,
	status, required_selections FROM selection_periods`

func scanPeriod(row rowScanner) (*selection.SelectionPeriod, error) {
	var p selection.SelectionPeriod
	var terminal sql.NullString
	var status string
	var err = row.Scan(&p.ID, &terminal, &p.Name, &p.Description,
		&p.StartDate, &p.EndDate, &status, &p.RequiredSelections)
	if err != nil {
		return nil, err
	}
	p.TerminalID = terminal.String
	p.Status = selection.Status(status)
	return &p, nil
}

func getPeriod(ctx context.Context, q querier, id string) (*selection.SelectionPeriod, error) {
	var row = q.QueryRowContext(ctx, periodColumns+` WHERE id = ?`, id)
	var p, err = scanPeriod(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("period %s: %w", id, selection.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading period %s: %w", id, err)
	}
	return p, nil
}

func periodRouteIDs(ctx context.Context, q querier, id string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT route_id FROM period_routes WHERE period_id = ? ORDER BY route_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying period routes: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var routeID string
		if err = rows.Scan(&routeID); err != nil {
			return nil, fmt.Errorf("scanning period route: %w", err)
		}
		out = append(out, routeID)
	}
	return out, rows.Err()
}

// TransitionPeriod moves the period to the next status if the state
// machine permits it, recording the audit action within the same
// transaction. Disallowed transitions fail with ErrInvalidTransition.
func (s *Store) TransitionPeriod(ctx context.Context, actor, id string, next selection.Status, action selection.AuditAction) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return transitionPeriod(ctx, tx, actor, id, next, action)
	})
}

func transitionPeriod(ctx context.Context, tx *sql.Tx, actor, id string, next selection.Status, action selection.AuditAction) error {
	var p, err = getPeriod(ctx, tx, id)
	if err != nil {
		return err
	}
	if !p.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s for period %s",
			selection.ErrInvalidTransition, p.Status, next, id)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE selection_periods SET status = ? WHERE id = ?`, string(next), id); err != nil {
		return fmt.Errorf("updating period status: %w", err)
	}
	return appendAudit(ctx, tx, selection.AuditEvent{
		UserID:   actor,
		Action:   action,
		Resource: id,
		Details:  fmt.Sprintf("%s -> %s", p.Status, next),
	})
}

// UpdatePeriodMeta replaces the period's name and description. Edits
// are blocked once the period is COMPLETED.
func (s *Store) UpdatePeriodMeta(ctx context.Context, actor, id, name, description string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var p, err = getPeriod(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Status == selection.StatusCompleted {
			return fmt.Errorf("%w: period %s is completed and frozen",
				selection.ErrInvalidTransition, id)
		}
		if name == "" {
			return fmt.Errorf("period name is required")
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE selection_periods SET name = ?, description = ? WHERE id = ?`,
			name, description, id); err != nil {
			return fmt.Errorf("updating period: %w", err)
		}
		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPeriodEdited,
			Resource: id,
			Details:  fmt.Sprintf("name=%q", name),
		})
	})
}

// SetPeriodRoutes replaces the period's route catalog. The catalog must
// stay non-empty and may not change once the period is COMPLETED.
func (s *Store) SetPeriodRoutes(ctx context.Context, actor, id string, routeIDs []string) error {
	if len(routeIDs) == 0 {
		return fmt.Errorf("period %s: route catalog may not be emptied", id)
	}
	var err = s.withTx(ctx, func(tx *sql.Tx) error {
		var p, err = getPeriod(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.Status == selection.StatusCompleted {
			return fmt.Errorf("%w: period %s is completed and frozen",
				selection.ErrInvalidTransition, id)
		}
		for _, routeID := range routeIDs {
			if _, err = getRoute(ctx, tx, routeID); err != nil {
				return err
			}
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM period_routes WHERE period_id = ?`, id); err != nil {
			return fmt.Errorf("clearing period routes: %w", err)
		}
		for _, routeID := range routeIDs {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO period_routes (period_id, route_id) VALUES (?, ?)`,
				id, routeID); err != nil {
				return fmt.Errorf("inserting period route %s: %w", routeID, err)
			}
		}
		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPeriodEdited,
			Resource: id,
			Details:  fmt.Sprintf("catalog=%s", strings.Join(routeIDs, ",")),
		})
	})
	if err == nil {
		s.catalogs.Remove(id)
	}
	return err
}

// DeletePeriod removes a period. Deletion is permitted only while the
// period is UPCOMING, or CLOSED without assignments; anything else would
// orphan assignment history and is rejected.
func (s *Store) DeletePeriod(ctx context.Context, actor, id string) error {
	var err = s.withTx(ctx, func(tx *sql.Tx) error {
		var p, err = getPeriod(ctx, tx, id)
		if err != nil {
			return err
		}
		switch p.Status {
		case selection.StatusUpcoming:
			// Always deletable.
		case selection.StatusClosed:
			var n int
			if err = tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM assignments WHERE period_id = ?`, id).Scan(&n); err != nil {
				return fmt.Errorf("counting assignments: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("%w: period %s has %d assignments",
					selection.ErrInvalidTransition, id, n)
			}
		default:
			return fmt.Errorf("%w: cannot delete period %s in status %s",
				selection.ErrInvalidTransition, id, p.Status)
		}

		if _, err = tx.ExecContext(ctx,
			`DELETE FROM selection_periods WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting period: %w", err)
		}
		return appendAudit(ctx, tx, selection.AuditEvent{
			UserID:   actor,
			Action:   selection.ActionPeriodDeleted,
			Resource: id,
			Details:  fmt.Sprintf("name=%q status=%s", p.Name, p.Status),
		})
	})
	if err == nil {
		s.catalogs.Remove(id)
	}
	return err
}

// effectiveDate is the assignment effective date for a period: the day
// after the submission window ends.
func effectiveDate(p *selection.SelectionPeriod) time.Time {
	return p.EndDate.UTC().AddDate(0, 0, 1)
}
