package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/customer360/api/internal/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// RecordsRepository stores enriched persons and companies.
type RecordsRepository interface {
	SavePersons(ctx context.Context, persons []entity.Person) error
	SaveCompanies(ctx context.Context, companies []entity.Company) error
	ListPersons(ctx context.Context, limit int) ([]entity.Person, error)
	ListCompanies(ctx context.Context, limit int) ([]entity.Company, error)
}

// PGXRecordsRepository implements RecordsRepository with pgx. Each record is
// kept whole as JSONB next to a few indexed columns.
type PGXRecordsRepository struct {
	pool pgxPool
}

// NewPGXRecordsRepository instantiates a records repository.
func NewPGXRecordsRepository(pool pgxPool) *PGXRecordsRepository {
	return &PGXRecordsRepository{pool: pool}
}

// SavePersons upserts persons in a single transaction.
func (r *PGXRecordsRepository) SavePersons(ctx context.Context, persons []entity.Person) error {
	if len(persons) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, p := range persons {
			payload, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode person %s: %w", p.ID, err)
			}
			if _, err := tx.Exec(ctx, `
                INSERT INTO enriched_persons (id, full_name, primary_email, company, source, payload, enriched_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7)
                ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, enriched_at = EXCLUDED.enriched_at
            `, p.ID, p.FullName, primaryEmail(p), p.Company, p.Source, payload, p.EnrichedAt); err != nil {
				return fmt.Errorf("insert person: %w", err)
			}
		}
		return nil
	})
}

// SaveCompanies upserts companies in a single transaction.
func (r *PGXRecordsRepository) SaveCompanies(ctx context.Context, companies []entity.Company) error {
	if len(companies) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, c := range companies {
			payload, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode company %s: %w", c.ID, err)
			}
			if _, err := tx.Exec(ctx, `
                INSERT INTO enriched_companies (id, name, domain, payload, last_updated)
                VALUES ($1, $2, $3, $4, $5)
                ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, last_updated = EXCLUDED.last_updated
            `, c.ID, c.Name, strings.ToLower(c.Domain), payload, c.LastUpdated); err != nil {
				return fmt.Errorf("insert company: %w", err)
			}
		}
		return nil
	})
}

// ListPersons returns the most recently enriched persons.
func (r *PGXRecordsRepository) ListPersons(ctx context.Context, limit int) ([]entity.Person, error) {
	rows, err := r.pool.Query(ctx, `SELECT payload FROM enriched_persons ORDER BY enriched_at DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	persons := make([]entity.Person, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan person row: %w", err)
		}
		var p entity.Person
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode person row: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}

// ListCompanies returns the most recently enriched companies.
func (r *PGXRecordsRepository) ListCompanies(ctx context.Context, limit int) ([]entity.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT payload FROM enriched_companies ORDER BY last_updated DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]entity.Company, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		var c entity.Company
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("decode company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func (r *PGXRecordsRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func primaryEmail(p entity.Person) string {
	if p.WorkEmail != "" {
		return p.WorkEmail
	}
	if len(p.Email) > 0 {
		return p.Email[0]
	}
	return ""
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
