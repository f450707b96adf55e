package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/waypoint/internal/model"
)

// FindCertificate returns the user's certificate for a track, or nil if
// none has been issued.
func (s *Store) FindCertificate(ctx context.Context, userID, trackID string) (*model.Certificate, error) {
	c, err := scanCertificate(s.db.QueryRowContext(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE user_id = ? AND track_id = ?
	`, userID, trackID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return &c, nil
}

// InsertCertificateUnique inserts a certificate. Returns model.ErrConflict
// if the user already holds a certificate for the track or the verification
// code is taken.
func (s *Store) InsertCertificateUnique(ctx context.Context, c model.Certificate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates (id, user_id, track_id, verification_code, issued_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.TrackID, c.Code, formatTime(c.IssuedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("insert certificate: %w", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// FindCertificateByCode returns the certificate with the given verification
// code, or nil if no such certificate exists.
func (s *Store) FindCertificateByCode(ctx context.Context, code string) (*model.Certificate, error) {
	c, err := scanCertificate(s.db.QueryRowContext(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE verification_code = ?
	`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate by code: %w", err)
	}
	return &c, nil
}

// ListCertificates returns the user's certificates, newest first.
func (s *Store) ListCertificates(ctx context.Context, userID string) ([]model.Certificate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+certificateColumns+`
		FROM certificates
		WHERE user_id = ?
		ORDER BY issued_at DESC, id COLLATE BINARY DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := []model.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("list certificates: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certificates: iterate: %w", err)
	}
	return certs, nil
}

// CountCertificates returns how many certificates the user holds.
func (s *Store) CountCertificates(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return n, nil
}
