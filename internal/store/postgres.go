package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS procurements (
	id          TEXT PRIMARY KEY,
	department  TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	budget      NUMERIC(14, 2) NOT NULL DEFAULT 0,
	location    TEXT NOT NULL DEFAULT '',
	deadline    TEXT NOT NULL DEFAULT '',
	posted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS proposals (
	id             TEXT PRIMARY KEY,
	procurement_id TEXT NOT NULL,
	business_name  TEXT NOT NULL,
	business_email TEXT NOT NULL,
	price          NUMERIC(14, 2) NOT NULL,
	timeline       TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	experience     TEXT NOT NULL DEFAULT '',
	submitted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS proposals_procurement_id_idx ON proposals (procurement_id, submitted_at);
`

// Postgres is a Store backed by a PostgreSQL connection pool. Proposals are
// not tied to procurements by a foreign key because the portal bids on the
// demo procurement before anything has been posted.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it and creates the tables if needed.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (db *Postgres) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *Postgres) CreateProcurement(ctx context.Context, p civic.Procurement) (civic.Procurement, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.PostedDate.IsZero() {
		p.PostedDate = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO procurements (id, department, title, description, category, budget, location, deadline, posted_at)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)`,
		p.ID, p.Department, p.Title, p.Description, p.Category, p.Budget.String(), p.Location, p.Deadline, p.PostedDate,
	)
	if err != nil {
		return civic.Procurement{}, fmt.Errorf("failed to create procurement: %w", err)
	}
	return p, nil
}

func (db *Postgres) GetProcurement(ctx context.Context, id string) (civic.Procurement, error) {
	var (
		p      civic.Procurement
		budget string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, department, title, description, category, budget::text, location, deadline, posted_at
		 FROM procurements WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Department, &p.Title, &p.Description, &p.Category, &budget, &p.Location, &p.Deadline, &p.PostedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return civic.Procurement{}, fmt.Errorf("procurement %s: %w", id, ErrNotFound)
		}
		return civic.Procurement{}, fmt.Errorf("failed to get procurement: %w", err)
	}

	if p.Budget, err = decimal.NewFromString(budget); err != nil {
		return civic.Procurement{}, fmt.Errorf("failed to parse budget %q: %w", budget, err)
	}
	return p, nil
}

func (db *Postgres) CreateProposal(ctx context.Context, p civic.Proposal) (civic.Proposal, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.SubmittedDate.IsZero() {
		p.SubmittedDate = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO proposals (id, procurement_id, business_name, business_email, price, timeline, description, experience, submitted_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)`,
		p.ID, p.ProcurementID, p.BusinessInfo.Name, p.BusinessInfo.Email, p.Price.String(),
		p.Timeline, p.Description, p.Experience, p.SubmittedDate,
	)
	if err != nil {
		return civic.Proposal{}, fmt.Errorf("failed to create proposal: %w", err)
	}
	return p, nil
}

func (db *Postgres) ListProposals(ctx context.Context, procurementID string) ([]civic.Proposal, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, procurement_id, business_name, business_email, price::text, timeline, description, experience, submitted_at
		 FROM proposals WHERE procurement_id = $1 ORDER BY submitted_at, id`,
		procurementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	proposals := []civic.Proposal{}
	for rows.Next() {
		var (
			p     civic.Proposal
			price string
		)
		if err := rows.Scan(&p.ID, &p.ProcurementID, &p.BusinessInfo.Name, &p.BusinessInfo.Email, &price,
			&p.Timeline, &p.Description, &p.Experience, &p.SubmittedDate); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", price, err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate proposals: %w", err)
	}
	return proposals, nil
}
