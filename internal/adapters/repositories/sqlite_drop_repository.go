package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/platform/obs"
	"truck-presence-service/internal/ports"
)

// SQLite-backed drop store for single-node deployments. claimed_by is kept
// as a JSON array of user ids.
type SqliteDropRepository struct{ DB *sql.DB }

func NewSqliteDropRepository(db *sql.DB) *SqliteDropRepository {
	return &SqliteDropRepository{DB: db}
}

func (s *SqliteDropRepository) GetDrop(ctx context.Context, dropID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.sqlite.GetDrop")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite drop repository: DB is nil")
	}

	query := `
	SELECT
		id,
		vendor_id,
		title,
		quantity,
		claimed_by,
		expires_at
	FROM drops
	WHERE id = ?;
	`
	d, err := scanSqliteDrop(s.DB.QueryRowContext(ctx, query, dropID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get drop %q: %w", dropID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get drop %q: %w", dropID, err)
	}

	return d, nil
}

// ClaimUnit appends userID in one conditional UPDATE, so uniqueness and the
// quantity bound hold under concurrent writers.
func (s *SqliteDropRepository) ClaimUnit(ctx context.Context, dropID, userID string) (_ *domain.Drop, err error) {
	defer obs.Time(ctx, "drops.sqlite.ClaimUnit")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite drop repository: DB is nil")
	}

	query := `
	UPDATE drops
	SET claimed_by = json_insert(claimed_by, '$[#]', ?)
	WHERE id = ?
		AND json_array_length(claimed_by) < quantity
		AND NOT EXISTS (
			SELECT 1 FROM json_each(drops.claimed_by) WHERE json_each.value = ?
		)
	RETURNING
		id,
		vendor_id,
		title,
		quantity,
		claimed_by,
		expires_at;
	`
	d, err := scanSqliteDrop(s.DB.QueryRowContext(ctx, query, userID, dropID, userID))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, err)
	}

	// No row updated: read the current record to report why.
	cur, err := s.GetDrop(ctx, dropID)
	if err != nil {
		return nil, fmt.Errorf("claim unit: %w", err)
	}
	if cur.HasClaimed(userID) {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrAlreadyClaimed)
	}
	return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrFullyClaimed)
}

func (s *SqliteDropRepository) PutDrop(ctx context.Context, d *domain.Drop) (err error) {
	defer obs.Time(ctx, "drops.sqlite.PutDrop")(&err)

	if s.DB == nil {
		return errors.New("sqlite drop repository: DB is nil")
	}
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return errors.New("put drop: id must not be empty")
	}

	claimedBy, err := encodeClaimedBy(d.ClaimedBy)
	if err != nil {
		return fmt.Errorf("put drop %q: %w", d.ID, err)
	}

	query := `
	INSERT OR REPLACE INTO drops (
		id,
		vendor_id,
		title,
		quantity,
		claimed_by,
		expires_at
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, d.ID, d.VendorID, d.Title, d.Quantity, claimedBy, d.ExpiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("put drop %q: %w", d.ID, err)
	}

	return nil
}

func (s *SqliteDropRepository) DeleteDrop(ctx context.Context, dropID string) (err error) {
	defer obs.Time(ctx, "drops.sqlite.DeleteDrop")(&err)

	if s.DB == nil {
		return errors.New("sqlite drop repository: DB is nil")
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM drops WHERE id = ?;`, dropID); err != nil {
		return fmt.Errorf("delete drop %q: %w", dropID, err)
	}

	return nil
}

func scanSqliteDrop(row *sql.Row) (*domain.Drop, error) {
	var d domain.Drop
	var claimedBy string
	var expiresAt int64
	if err := row.Scan(&d.ID, &d.VendorID, &d.Title, &d.Quantity, &claimedBy, &expiresAt); err != nil {
		return nil, err
	}

	users, err := decodeClaimedBy(claimedBy)
	if err != nil {
		return nil, err
	}
	d.ClaimedBy = users
	d.ExpiresAt = time.UnixMilli(expiresAt)
	return &d, nil
}

func encodeClaimedBy(users []string) (string, error) {
	if users == nil {
		users = []string{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return "", fmt.Errorf("encode claimed_by: %w", err)
	}
	return string(b), nil
}

func decodeClaimedBy(raw string) ([]string, error) {
	var users []string
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode claimed_by: %w", err)
	}
	return users, nil
}
