package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

// Roster operations cover the long-lived entities the engine reads:
// terminals, employees, and routes. They are written by administrative
// tooling (seeding, imports) rather than by drivers.

// PutTerminal inserts or replaces a terminal, assigning an ID if absent.
func (s *Store) PutTerminal(ctx context.Context, t *selection.Terminal) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var _, err = s.db.ExecContext(ctx,
		`INSERT INTO terminals (id, code, name, active) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET code = excluded.code, name = excluded.name, active = excluded.active`,
		t.ID, t.Code, t.Name, t.Active)
	if err != nil {
		return fmt.Errorf("storing terminal %s: %w", t.Code, err)
	}
	return nil
}

// PutEmployee inserts or replaces an employee, assigning an ID if absent.
func (s *Store) PutEmployee(ctx context.Context, e *selection.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var _, err = s.db.ExecContext(ctx,
		`INSERT INTO employees
			(id, employee_id, first_name, last_name, email, hire_date,
			 doubles_endorsement, chain_experience, eligible, terminal_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			employee_id = excluded.employee_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			hire_date = excluded.hire_date,
			doubles_endorsement = excluded.doubles_endorsement,
			chain_experience = excluded.chain_experience,
			eligible = excluded.eligible,
			terminal_id = excluded.terminal_id`,
		e.ID, e.EmployeeID, e.FirstName, e.LastName, e.Email, e.HireDate.UTC(),
		e.DoublesEndorsement, e.ChainExperience, e.Eligible, nullable(e.TerminalID))
	if err != nil {
		return fmt.Errorf("storing employee %s: %w", e.EmployeeID, err)
	}
	return nil
}

// PutRoute inserts or replaces a route after validating its internal
// consistency.
func (s *Store) PutRoute(ctx context.Context, r *selection.Route) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	var _, err = s.db.ExecContext(ctx,
		`INSERT INTO routes
			(id, terminal_id, run_number, origin, destination, type, days,
			 start_time, end_time, distance_miles, work_time_minutes, rate_type,
			 requires_doubles_endorsement, requires_chain_experience, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			terminal_id = excluded.terminal_id,
			run_number = excluded.run_number,
			origin = excluded.origin,
			destination = excluded.destination,
			type = excluded.type,
			days = excluded.days,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			distance_miles = excluded.distance_miles,
			work_time_minutes = excluded.work_time_minutes,
			rate_type = excluded.rate_type,
			requires_doubles_endorsement = excluded.requires_doubles_endorsement,
			requires_chain_experience = excluded.requires_chain_experience,
			active = excluded.active`,
		r.ID, nullable(r.TerminalID), r.RunNumber, r.Origin, r.Destination,
		string(r.Type), r.Days, r.StartTime, r.EndTime, r.DistanceMiles,
		r.WorkTimeMinutes, string(r.RateType),
		r.RequiresDoublesEndorsement, r.RequiresChainExperience, r.Active)
	if err != nil {
		return fmt.Errorf("storing route %s: %w", r.RunNumber, err)
	}
	return nil
}

// GetEmployee returns the employee with the given surrogate ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*selection.Employee, error) {
	return getEmployee(ctx, s.db, id)
}

func getEmployee(ctx context.Context, q querier, id string) (*selection.Employee, error) {
	var row = q.QueryRowContext(ctx, employeeColumns+` WHERE id = ?`, id)
	var e, err = scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %s: %w", id, selection.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading employee %s: %w", id, err)
	}
	return e, nil
}

const employeeColumns = `SELECT id, employee_id, first_name, last_name, email, hire_date,
	doubles_endorsement, chain_experience, eligible, terminal_id FROM employees`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanEmployee(row rowScanner) (*selection.Employee, error) {
	var e selection.Employee
	var terminal sql.NullString
	var err = row.Scan(&e.ID, &e.EmployeeID, &e.FirstName, &e.LastName, &e.Email,
		&e.HireDate, &e.DoublesEndorsement, &e.ChainExperience, &e.Eligible, &terminal)
	if err != nil {
		return nil, err
	}
	e.TerminalID = terminal.String
	return &e, nil
}

// eligibleEmployees returns employees eligible for the period in strict
// seniority order. A period bound to a terminal sees only that
// terminal's roster.
func eligibleEmployees(ctx context.Context, q querier, terminalID string) ([]selection.Employee, error) {
	var sqlText = employeeColumns + ` WHERE eligible = 1`
	var args []interface{}
	if terminalID != "" {
		sqlText += ` AND terminal_id = ?`
		args = append(args, terminalID)
	}
	sqlText += ` ORDER BY hire_date, last_name, employee_id`

	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("querying eligible employees: %w", err)
	}
	defer rows.Close()

	var out []selection.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetRoute returns the route with the given surrogate ID.
func (s *Store) GetRoute(ctx context.Context, id string) (*selection.Route, error) {
	return getRoute(ctx, s.db, id)
}

const routeColumns = `SELECT id, terminal_id, run_number, origin, destination, type, days,
	start_time, end_time, distance_miles, work_time_minutes, rate_type,
	requires_doubles_endorsement, requires_chain_experience, active FROM routes`

func getRoute(ctx context.Context, q querier, id string) (*selection.Route, error) {
	var row = q.QueryRowContext(ctx, routeColumns+` WHERE id = ?`, id)
	var r, err = scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("route %s: %w", id, selection.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading route %s: %w", id, err)
	}
	return r, nil
}

func scanRoute(row rowScanner) (*selection.Route, error) {
	var r selection.Route
	var terminal sql.NullString
	var typ, rate string
	var err = row.Scan(&r.ID, &terminal, &r.RunNumber, &r.Origin, &r.Destination,
		&typ, &r.Days, &r.StartTime, &r.EndTime, &r.DistanceMiles,
		&r.WorkTimeMinutes, &rate, &r.RequiresDoublesEndorsement,
		&r.RequiresChainExperience, &r.Active)
	if err != nil {
		return nil, err
	}
	r.TerminalID = terminal.String
	r.Type = selection.RouteType(typ)
	r.RateType = selection.RateType(rate)
	return &r, nil
}

// catalogRoutes returns the period's active catalog routes keyed by ID.
func catalogRoutes(ctx context.Context, q querier, periodID string) (map[string]selection.Route, error) {
	rows, err := q.QueryContext(ctx, routeColumns+`
		WHERE active = 1 AND id IN (SELECT route_id FROM period_routes WHERE period_id = ?)`,
		periodID)
	if err != nil {
		return nil, fmt.Errorf("querying catalog routes: %w", err)
	}
	defer rows.Close()

	var out = make(map[string]selection.Route)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		out[r.ID] = *r
	}
	return out, rows.Err()
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
