package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/platform/obs"
	"truck-presence-service/internal/ports"
)

// Postgres-backed drop store shared by every instance of the service.
// claimed_by is a TEXT[] column; it is read back through array_to_json so
// the database/sql driver only sees text.
type SQLDropRepository struct{ DB *sql.DB }

func NewSQLDropRepository(db *sql.DB) *SQLDropRepository {
	return &SQLDropRepository{DB: db}
}

func (s *SQLDropRepository) GetDrop(ctx context.Context, dropID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.sql.GetDrop")(&err)

	if s.DB == nil {
		return nil, errors.New("sql drop repository: DB is nil")
	}

	query := `
	SELECT
		id,
		vendor_id,
		title,
		quantity,
		array_to_json(claimed_by)::text,
		expires_at
	FROM drops
	WHERE id = $1;
	`
	d, err := scanSQLDrop(s.DB.QueryRowContext(ctx, query, dropID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get drop %q: %w", dropID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get drop %q: %w", dropID, err)
	}

	return d, nil
}

// ClaimUnit relies on the row lock taken by UPDATE: concurrent claims on the
// same drop are serialized and each re-evaluates the WHERE clause.
func (s *SQLDropRepository) ClaimUnit(ctx context.Context, dropID, userID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.sql.ClaimUnit")(&err)

	if s.DB == nil {
		return nil, errors.New("sql drop repository: DB is nil")
	}

	query := `
	UPDATE drops
	SET claimed_by = array_append(claimed_by, $2)
	WHERE id = $1
		AND cardinality(claimed_by) < quantity
		AND NOT ($2 = ANY(claimed_by))
	RETURNING
		id,
		vendor_id,
		title,
		quantity,
		array_to_json(claimed_by)::text,
		expires_at;
	`
	d, err := scanSQLDrop(s.DB.QueryRowContext(ctx, query, dropID, userID))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, err)
	}

	cur, err := s.GetDrop(ctx, dropID)
	if err != nil {
		return nil, fmt.Errorf("claim unit: %w", err)
	}
	if cur.HasClaimed(userID) {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrAlreadyClaimed)
	}
	return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrFullyClaimed)
}

func (s *SQLDropRepository) PutDrop(ctx context.Context, d *domain.Drop) (err error) {
	defer obs.Time(ctx, "drops.sql.PutDrop")(&err)

	if s.DB == nil {
		return errors.New("sql drop repository: DB is nil")
	}
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return errors.New("put drop: id must not be empty")
	}

	claimedBy, err := encodeClaimedBy(d.ClaimedBy)
	if err != nil {
		return fmt.Errorf("put drop %q: %w", d.ID, err)
	}

	query := `
	INSERT INTO drops (id, vendor_id, title, quantity, claimed_by, expires_at)
	VALUES ($1, $2, $3, $4, ARRAY(SELECT json_array_elements_text($5::json)), $6)
	ON CONFLICT (id) DO UPDATE
	SET vendor_id = EXCLUDED.vendor_id,
		title = EXCLUDED.title,
		quantity = EXCLUDED.quantity,
		claimed_by = EXCLUDED.claimed_by,
		expires_at = EXCLUDED.expires_at;
	`
	if _, err := s.DB.ExecContext(ctx, query, d.ID, d.VendorID, d.Title, d.Quantity, claimedBy, d.ExpiresAt); err != nil {
		return fmt.Errorf("put drop %q: %w", d.ID, err)
	}

	return nil
}

func (s *SQLDropRepository) DeleteDrop(ctx context.Context, dropID string) (err error) {
	defer obs.Time(ctx, "drops.sql.DeleteDrop")(&err)

	if s.DB == nil {
		return errors.New("sql drop repository: DB is nil")
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM drops WHERE id = $1;`, dropID); err != nil {
		return fmt.Errorf("delete drop %q: %w", dropID, err)
	}

	return nil
}

func scanSQLDrop(row *sql.Row) (*domain.Drop, error) {
	var d domain.Drop
	var claimedBy string
	if err := row.Scan(&d.ID, &d.VendorID, &d.Title, &d.Quantity, &claimedBy, &d.ExpiresAt); err != nil {
		return nil, err
	}

	users, err := decodeClaimedBy(claimedBy)
	if err != nil {
		return nil, err
	}
	d.ClaimedBy = users
	return &d, nil
}
