package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hr_portal/internal/widgets"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardSource supplies the content of the dashboard page.
type DashboardSource interface {
	Dashboard(ctx context.Context) (widgets.DashboardData, error)
}

// SampleDashboard serves the built-in demo content.
type SampleDashboard struct {
	Now func() time.Time
}

func (s SampleDashboard) Dashboard(ctx context.Context) (widgets.DashboardData, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return widgets.SampleDashboard(now()), nil
}

// PostgresDashboard reads announcements and holidays from the database and
// fills the remaining panels from the sample content.
type PostgresDashboard struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	limit  int
	now    func() time.Time
}

func NewPostgresDashboard(pool *pgxpool.Pool, logger *slog.Logger) *PostgresDashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDashboard{pool: pool, logger: logger, limit: 5, now: time.Now}
}

func (p *PostgresDashboard) Dashboard(ctx context.Context) (widgets.DashboardData, error) {
	now := p.now()
	data := widgets.SampleDashboard(now)

	announcements, err := p.announcements(ctx)
	if err != nil {
		return widgets.DashboardData{}, err
	}
	holidays, err := p.holidays(ctx, now)
	if err != nil {
		return widgets.DashboardData{}, err
	}

	data.Announcements = announcements
	data.Holidays = holidays
	return data, nil
}

func (p *PostgresDashboard) announcements(ctx context.Context) ([]widgets.Announcement, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT title, body, posted_on FROM announcements ORDER BY posted_on DESC, id DESC LIMIT $1`,
		p.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (widgets.Announcement, error) {
		var a widgets.Announcement
		err := row.Scan(&a.Title, &a.Body, &a.PostedOn)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read announcements: %w", err)
	}
	return items, nil
}

func (p *PostgresDashboard) holidays(ctx context.Context, now time.Time) ([]widgets.Holiday, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT name, holiday FROM holidays WHERE holiday >= $1 ORDER BY holiday LIMIT $2`,
		now.Truncate(24*time.Hour), p.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (widgets.Holiday, error) {
		var h widgets.Holiday
		err := row.Scan(&h.Name, &h.Date)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays: %w", err)
	}
	return items, nil
}
