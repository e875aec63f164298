package store

// schema bootstraps the SQLite database. Statements are idempotent so
// that Open may be called over an existing database.
const schema = `
CREATE TABLE IF NOT EXISTS terminals (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS employees (
    id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    hire_date TIMESTAMP NOT NULL,
    doubles_endorsement INTEGER NOT NULL DEFAULT 0,
    chain_experience INTEGER NOT NULL DEFAULT 0,
    eligible INTEGER NOT NULL DEFAULT 1,
    terminal_id TEXT REFERENCES terminals(id)
);

-- Seniority scan order: most senior first with deterministic tiebreaks.
CREATE INDEX IF NOT EXISTS idx_employees_seniority
    ON employees(hire_date, last_name, employee_id);

CREATE TABLE IF NOT EXISTS routes (
    id TEXT PRIMARY KEY,
    terminal_id TEXT REFERENCES terminals(id),
    run_number TEXT NOT NULL,
    origin TEXT NOT NULL DEFAULT '',
    destination TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL CHECK (type IN ('SINGLES', 'DOUBLES')),
    days TEXT NOT NULL DEFAULT '',
    start_time TEXT NOT NULL DEFAULT '',
    end_time TEXT NOT NULL DEFAULT '',
    distance_miles REAL NOT NULL DEFAULT 0,
    work_time_minutes INTEGER NOT NULL DEFAULT 0,
    rate_type TEXT NOT NULL CHECK (rate_type IN ('HOURLY', 'MILEAGE', 'FLAT_RATE')),
    requires_doubles_endorsement INTEGER NOT NULL DEFAULT 0,
    requires_chain_experience INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1,
    UNIQUE (terminal_id, run_number)
);

CREATE TABLE IF NOT EXISTS selection_periods (
    id TEXT PRIMARY KEY,
    terminal_id TEXT REFERENCES terminals(id),
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('UPCOMING', 'OPEN', 'CLOSED', 'PROCESSING', 'COMPLETED')),
    required_selections INTEGER NOT NULL CHECK (required_selections BETWEEN 1 AND 3)
);

-- The period's route catalog. A route absent here is unselectable in
-- that period.
CREATE TABLE IF NOT EXISTS period_routes (
    period_id TEXT NOT NULL REFERENCES selection_periods(id) ON DELETE CASCADE,
    route_id TEXT NOT NULL REFERENCES routes(id),
    PRIMARY KEY (period_id, route_id)
);

CREATE TABLE IF NOT EXISTS preferences (
    id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL REFERENCES employees(id),
    period_id TEXT NOT NULL REFERENCES selection_periods(id) ON DELETE CASCADE,
    choice1 TEXT,
    choice2 TEXT,
    choice3 TEXT,
    confirmation_number TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    UNIQUE (employee_id, period_id)
);

CREATE INDEX IF NOT EXISTS idx_preferences_period ON preferences(period_id);

CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    employee_id TEXT NOT NULL REFERENCES employees(id),
    period_id TEXT NOT NULL REFERENCES selection_periods(id),
    route_id TEXT REFERENCES routes(id),
    choice_received INTEGER CHECK (choice_received BETWEEN 1 AND 3),
    manual INTEGER NOT NULL DEFAULT 0,
    effective_date TIMESTAMP NOT NULL,
    UNIQUE (employee_id, period_id)
);

-- Backstop for route exclusivity within a period. The engine validates
-- before writing; this index makes a violation impossible to persist.
CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_period_route
    ON assignments(period_id, route_id) WHERE route_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS audit_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts TIMESTAMP NOT NULL,
    user_id TEXT NOT NULL,
    action TEXT NOT NULL,
    resource TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_audit_events_user ON audit_events(user_id);
`
