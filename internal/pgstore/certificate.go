package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/roach88/waypoint/internal/model"
)

const certificateColumns = `id, user_id, track_id, verification_code, issued_at`

func scanCertificate(row pgx.Row) (model.Certificate, error) {
	var c model.Certificate
	if err := row.Scan(&c.ID, &c.UserID, &c.TrackID, &c.Code, &c.IssuedAt); err != nil {
		return model.Certificate{}, err
	}
	c.IssuedAt = c.IssuedAt.UTC()
	return c, nil
}

func (s *Store) findCertificate(ctx context.Context, op, where string, args ...any) (*model.Certificate, error) {
	c, err := scanCertificate(s.pool.QueryRow(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE `+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// FindCertificate returns the user's certificate for a track or nil.
func (s *Store) FindCertificate(ctx context.Context, userID, trackID string) (*model.Certificate, error) {
	return s.findCertificate(ctx, "find certificate", `user_id = $1 AND track_id = $2`, userID, trackID)
}

// FindCertificateByCode returns the certificate with the code or nil.
func (s *Store) FindCertificateByCode(ctx context.Context, code string) (*model.Certificate, error) {
	return s.findCertificate(ctx, "find certificate by code", `verification_code = $1`, code)
}

// InsertCertificateUnique inserts a certificate, reporting model.ErrConflict
// on a duplicate (user, track) or code.
func (s *Store) InsertCertificateUnique(ctx context.Context, c model.Certificate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO certificates (id, user_id, track_id, verification_code, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.UserID, c.TrackID, c.Code, c.IssuedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("insert certificate: %w", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// ListCertificates returns the user's certificates, newest first.
func (s *Store) ListCertificates(ctx context.Context, userID string) ([]model.Certificate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+certificateColumns+` FROM certificates
		WHERE user_id = $1
		ORDER BY issued_at DESC, id COLLATE "C" DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	out := []model.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("list certificates: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificates: iterate: %w", err)
	}
	return out, nil
}

// CountCertificates returns how many certificates the user holds.
func (s *Store) CountCertificates(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM certificates WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return n, nil
}
