package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hr_portal/internal/security"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables the portal reads. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS employees (
	emp_id          TEXT PRIMARY KEY,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	work_email      TEXT NOT NULL UNIQUE,
	username        TEXT NOT NULL UNIQUE,
	department      TEXT NOT NULL DEFAULT '',
	designation     TEXT NOT NULL DEFAULT '',
	date_of_joining DATE,
	role            TEXT NOT NULL DEFAULT 'employee',
	phone_number    TEXT NOT NULL DEFAULT '',
	password_hash   TEXT NOT NULL DEFAULT '',
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS announcements (
	id        BIGSERIAL PRIMARY KEY,
	title     TEXT NOT NULL,
	body      TEXT NOT NULL DEFAULT '',
	posted_on DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE TABLE IF NOT EXISTS holidays (
	id       BIGSERIAL PRIMARY KEY,
	name     TEXT NOT NULL,
	holiday  DATE NOT NULL
);
`

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDirectory stores accounts in the employees table.
type PostgresDirectory struct {
	pool   *pgxpool.Pool // nil when bound to a transaction
	db     querier
	hasher *security.PasswordHasher
	logger *slog.Logger
}

func NewPostgresDirectory(pool *pgxpool.Pool, hasher *security.PasswordHasher, logger *slog.Logger) *PostgresDirectory {
	if hasher == nil {
		hasher = security.DefaultPasswordHasher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDirectory{pool: pool, db: pool, hasher: hasher, logger: logger}
}

// InTx runs fn against a directory bound to one transaction, committed when
// fn returns nil and rolled back otherwise. Inside a transaction it joins the
// open one.
func (d *PostgresDirectory) InTx(ctx context.Context, fn func(Directory) error) error {
	if d.pool == nil {
		return fn(d)
	}
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		return fn(&PostgresDirectory{db: tx, hasher: d.hasher, logger: d.logger})
	})
}

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) Create(ctx context.Context, e Employee) error {
	joined := pgtype.Date{Time: e.DateOfJoining, Valid: !e.DateOfJoining.IsZero()}

	sql := `INSERT INTO employees (emp_id, first_name, last_name, work_email, username,
			department, designation, date_of_joining, role, phone_number, password_hash, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT DO NOTHING`
	tag, err := d.db.Exec(ctx, sql,
		e.EmpID, e.FirstName, e.LastName, NormalizeEmail(e.WorkEmail), e.Username,
		e.Department, e.Designation, joined, string(e.Role), e.PhoneNumber,
		e.PasswordHash, e.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w", e.EmpID, ErrEmployeeExists)
		}
		return fmt.Errorf("failed to insert employee %s: %w", e.EmpID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", e.EmpID, ErrEmployeeExists)
	}
	return nil
}

func (d *PostgresDirectory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := d.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM employees WHERE work_email = $1)`,
		NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

func (d *PostgresDirectory) Authenticate(ctx context.Context, login, password string) (Employee, error) {
	sql := `SELECT emp_id, first_name, last_name, work_email, username, department,
			designation, date_of_joining, role, phone_number, password_hash, is_active
			FROM employees
			WHERE work_email = lower($1) OR lower(username) = lower($1)
			LIMIT 1`

	var (
		e      Employee
		role   string
		joined pgtype.Date
	)
	err := d.db.QueryRow(ctx, sql, login).Scan(
		&e.EmpID, &e.FirstName, &e.LastName, &e.WorkEmail, &e.Username, &e.Department,
		&e.Designation, &joined, &role, &e.PhoneNumber, &e.PasswordHash, &e.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrInvalidCredentials
	}
	if err != nil {
		d.logger.Error("employee lookup failed", "error", err)
		return Employee{}, fmt.Errorf("failed to look up employee: %w", err)
	}
	e.Role = Role(role)
	if joined.Valid {
		e.DateOfJoining = joined.Time
	}
	return verify(d.hasher, e, password)
}
