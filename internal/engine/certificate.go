package engine

import (
	"context"
	"errors"

	"github.com/roach88/waypoint/internal/model"
)

// maxCodeAttempts bounds retries after a verification code collision.
const maxCodeAttempts = 3

// IsTrackComplete reports whether every module of the track has a Completed
// record for the user. It is recomputed from the store on every call.
func (e *Engine) IsTrackComplete(ctx context.Context, userID string, track model.Track) (bool, error) {
	if len(track.ModuleIDs) == 0 {
		return false, nil
	}
	records, err := e.store.ListProgress(ctx, userID, track.ModuleIDs)
	if err != nil {
		return false, persistence("list progress", err)
	}
	return countCompleted(records, track.ModuleIDs) == len(track.ModuleIDs), nil
}

func countCompleted(records []model.ModuleProgress, moduleIDs []string) int {
	want := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		want[id] = true
	}
	n := 0
	for _, r := range records {
		if r.IsCompleted() && want[r.ModuleID] {
			n++
		}
	}
	return n
}

// IssueCertificateIfEligible returns the user's certificate for a track,
// issuing it if the track is complete and none exists yet. It returns nil
// when the track is not complete.
//
// Concurrent callers issue exactly one certificate: the losing insert
// reports a conflict and the winning row is read back and returned.
func (e *Engine) IssueCertificateIfEligible(ctx context.Context, userID string, track model.Track) (*model.Certificate, error) {
	existing, err := e.store.FindCertificate(ctx, userID, track.ID)
	if err != nil {
		return nil, persistence("find certificate", err)
	}
	if existing != nil {
		return existing, nil
	}

	complete, err := e.IsTrackComplete(ctx, userID, track)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, nil
	}

	for attempt := 1; ; attempt++ {
		now := e.now()
		cert := model.Certificate{
			ID:       e.ids.Generate(),
			UserID:   userID,
			TrackID:  track.ID,
			Code:     e.codes.Code(now),
			IssuedAt: now,
		}
		err = e.store.InsertCertificateUnique(ctx, cert)
		if err == nil {
			e.logger.Info("certificate issued", "user", userID, "track", track.ID, "code", cert.Code)
			return &cert, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, persistence("issue certificate", err)
		}

		winner, ferr := e.store.FindCertificate(ctx, userID, track.ID)
		if ferr != nil {
			return nil, persistence("find certificate", ferr)
		}
		if winner != nil {
			e.logger.Debug("certificate conflict absorbed", "user", userID, "track", track.ID, "code", winner.Code)
			return winner, nil
		}
		// The conflict was on the verification code, not the pair.
		if attempt == maxCodeAttempts {
			return nil, persistence("issue certificate", err)
		}
		e.logger.Warn("verification code collision", "user", userID, "track", track.ID, "code", cert.Code)
	}
}

// IssueCertificate is IssueCertificateIfEligible addressed by track ID.
// An unknown track is NOT_FOUND.
func (e *Engine) IssueCertificate(ctx context.Context, userID, trackID string) (*model.Certificate, error) {
	track, err := e.catalog.TrackByID(trackID)
	if err != nil {
		return nil, notFound(err)
	}
	return e.IssueCertificateIfEligible(ctx, userID, track)
}

// VerifyCertificate looks a certificate up by verification code. An unknown
// code is reported as not valid, not as an error.
//
// Certificates are never modified once issued, so valid lookups are served
// from an in-memory LRU after the first hit. Misses are not cached.
func (e *Engine) VerifyCertificate(ctx context.Context, code string) (*model.Certificate, bool, error) {
	if e.verified != nil {
		if v, ok := e.verified.Get(code); ok {
			cert := v.(model.Certificate)
			return &cert, true, nil
		}
	}
	cert, err := e.store.FindCertificateByCode(ctx, code)
	if err != nil {
		return nil, false, persistence("verify certificate", err)
	}
	if cert == nil {
		return nil, false, nil
	}
	if e.verified != nil {
		e.verified.Add(code, *cert)
	}
	return cert, true, nil
}

// Certificates returns the user's certificates, newest first.
func (e *Engine) Certificates(ctx context.Context, userID string) ([]model.Certificate, error) {
	certs, err := e.store.ListCertificates(ctx, userID)
	if err != nil {
		return nil, persistence("list certificates", err)
	}
	return certs, nil
}
