package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/platform/obs"
)

// SQLite-backed implementation of the ClaimRepository port.
// Timestamps are stored as unix milliseconds.
type SqliteClaimRepository struct{ DB *sql.DB }

func NewSqliteClaimRepository(db *sql.DB) *SqliteClaimRepository {
	return &SqliteClaimRepository{DB: db}
}

const claimColumns = `
	id,
	user_id,
	drop_id,
	vendor_id,
	drop_title,
	code,
	claimed_at,
	expires_at,
	status,
	expired_at
`

// Return every claim the user has made, oldest first.
func (s *SqliteClaimRepository) ListByUser(ctx context.Context, userID string) (_ []domain.Claim, err error) {
	defer obs.Time(ctx, "claims.sqlite.ListByUser")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite claim repository: DB is nil")
	}

	query := `SELECT` + claimColumns + `
	FROM claims
	WHERE user_id = ?
	ORDER BY claimed_at, id;
	`
	return s.query(ctx, "list claims by user", query, userID)
}

// Return all claims still marked active.
func (s *SqliteClaimRepository) ListActive(ctx context.Context) (_ []domain.Claim, err error) {
	defer obs.Time(ctx, "claims.sqlite.ListActive")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite claim repository: DB is nil")
	}

	query := `SELECT` + claimColumns + `
	FROM claims
	WHERE status = ?
	ORDER BY claimed_at, id;
	`
	return s.query(ctx, "list active claims", query, string(domain.ClaimActive))
}

func (s *SqliteClaimRepository) Save(ctx context.Context, c domain.Claim) (err error) {
	defer obs.Time(ctx, "claims.sqlite.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite claim repository: DB is nil")
	}

	query := `
	INSERT INTO claims (` + claimColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.DropID,
		c.VendorID,
		c.DropTitle,
		c.Code,
		c.ClaimedAt.UnixMilli(),
		c.ExpiresAt.UnixMilli(),
		string(c.Status),
		nullableMillis(c.ExpiredAt),
	)
	if err != nil {
		return fmt.Errorf("save claim %s: %w", c.ID, err)
	}

	return nil
}

// Expiring an already expired claim leaves its expired_at unchanged.
func (s *SqliteClaimRepository) MarkExpired(ctx context.Context, claimID string, at time.Time) (err error) {
	defer obs.Time(ctx, "claims.sqlite.MarkExpired")(&err)

	if s.DB == nil {
		return errors.New("sqlite claim repository: DB is nil")
	}

	query := `
	UPDATE claims
	SET status = ?, expired_at = ?
	WHERE id = ? AND status = ?;
	`
	_, err = s.DB.ExecContext(ctx, query,
		string(domain.ClaimExpired),
		at.UnixMilli(),
		claimID,
		string(domain.ClaimActive),
	)
	if err != nil {
		return fmt.Errorf("mark claim %s expired: %w", claimID, err)
	}

	return nil
}

func (s *SqliteClaimRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.Claim, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query claims table: %w", op, err)
	}
	defer rows.Close()

	claims := make([]domain.Claim, 0, 16)
	for rows.Next() {
		var c domain.Claim
		var status string
		var claimedAt, expiresAt int64
		var expiredAt sql.NullInt64
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.DropID,
			&c.VendorID,
			&c.DropTitle,
			&c.Code,
			&claimedAt,
			&expiresAt,
			&status,
			&expiredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}

		c.Status = domain.ClaimStatus(status)
		c.ClaimedAt = time.UnixMilli(claimedAt)
		c.ExpiresAt = time.UnixMilli(expiresAt)
		if expiredAt.Valid {
			ts := time.UnixMilli(expiredAt.Int64)
			c.ExpiredAt = &ts
		}
		claims = append(claims, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return claims, nil
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
