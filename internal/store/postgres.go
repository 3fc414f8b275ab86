package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/jmoiron/sqlx"
)

type PostgresStore struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS mgnrega_records (
	id                  BIGSERIAL PRIMARY KEY,
	district            TEXT NOT NULL,
	month               SMALLINT NOT NULL,
	year                INTEGER NOT NULL,
	person_days         BIGINT NOT NULL DEFAULT 0,
	households          BIGINT NOT NULL DEFAULT 0,
	funds_spent         DOUBLE PRECISION NOT NULL DEFAULT 0,
	works_completed     BIGINT NOT NULL DEFAULT 0,
	average_wage        DOUBLE PRECISION NOT NULL DEFAULT 0,
	women_participation DOUBLE PRECISION NOT NULL DEFAULT 0,
	raw                 JSONB,
	fetched_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (district, month, year)
)`

const selectColumns = `
	district,
	month,
	year,
	person_days,
	households,
	funds_spent,
	works_completed,
	average_wage,
	women_participation,
	raw,
	fetched_at,
	created_at,
	updated_at`

// EnsureSchema creates the records table when missing.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := ps.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", types.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (ps *PostgresStore) Upsert(ctx context.Context, record *types.Record) error {
	query := `INSERT INTO mgnrega_records (
		district,
		month,
		year,
		person_days,
		households,
		funds_spent,
		works_completed,
		average_wage,
		women_participation,
		raw,
		fetched_at,
		created_at,
		updated_at
	) VALUES (
		:district,
		:month,
		:year,
		:person_days,
		:households,
		:funds_spent,
		:works_completed,
		:average_wage,
		:women_participation,
		:raw,
		:fetched_at,
		:created_at,
		:updated_at
	)
	ON CONFLICT (district, month, year) DO UPDATE SET
		person_days = EXCLUDED.person_days,
		households = EXCLUDED.households,
		funds_spent = EXCLUDED.funds_spent,
		works_completed = EXCLUDED.works_completed,
		average_wage = EXCLUDED.average_wage,
		women_participation = EXCLUDED.women_participation,
		raw = EXCLUDED.raw,
		fetched_at = EXCLUDED.fetched_at,
		updated_at = EXCLUDED.updated_at`

	now := time.Now()
	row := *record
	row.CreatedAt = now
	row.UpdatedAt = now
	if row.FetchedAt.IsZero() {
		row.FetchedAt = now
	}

	if _, err := ps.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("%w: upsert %s %d/%d: %v", types.ErrPersistenceUnavailable, record.District, record.Month, record.Year, err)
	}
	record.UpdatedAt = now
	return nil
}

func (ps *PostgresStore) QueryAll(ctx context.Context, limit int) ([]types.Record, error) {
	if limit <= 0 || limit > MaxQueryAll {
		limit = MaxQueryAll
	}
	query := `SELECT ` + selectColumns + `
	FROM mgnrega_records
	ORDER BY year DESC, month DESC, district ASC
	LIMIT $1`

	var records []types.Record
	if err := ps.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("%w: query all: %v", types.ErrPersistenceUnavailable, err)
	}
	return records, nil
}

func (ps *PostgresStore) QueryByDistrict(ctx context.Context, district string) ([]types.Record, error) {
	query := `SELECT ` + selectColumns + `
	FROM mgnrega_records
	WHERE district ILIKE '%' || $1 || '%'
	ORDER BY year DESC, month DESC, district ASC`

	var records []types.Record
	if err := ps.db.SelectContext(ctx, &records, query, escapeLike(district)); err != nil {
		return nil, fmt.Errorf("%w: query district %q: %v", types.ErrPersistenceUnavailable, district, err)
	}
	return records, nil
}

func (ps *PostgresStore) DistinctDistricts(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT district FROM mgnrega_records ORDER BY district`

	var names []string
	if err := ps.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("%w: distinct districts: %v", types.ErrPersistenceUnavailable, err)
	}
	return CleanDistricts(names), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
