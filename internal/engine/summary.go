package engine

import (
	"context"

	"github.com/roach88/waypoint/internal/model"
)

// TrackSummary is a user's progress through one track.
type TrackSummary struct {
	Track          model.Track            `json:"track"`
	Modules        []model.Module         `json:"modules"`
	Progress       []model.ModuleProgress `json:"progress"` // Existing records only
	CompletedCount int                    `json:"completed_count"`
	TotalCount     int                    `json:"total_count"`
	Percentage     int                    `json:"percentage"`
	Certificate    *model.Certificate     `json:"certificate,omitempty"`
}

// TrackProgress summarizes the user's progress through the track with the
// given slug. It reads but never creates progress records.
func (e *Engine) TrackProgress(ctx context.Context, userID, slug string) (TrackSummary, error) {
	track, err := e.catalog.TrackBySlug(slug)
	if err != nil {
		return TrackSummary{}, notFound(err)
	}
	return e.summarize(ctx, userID, track)
}

// AllTrackProgress summarizes every track in catalog order.
func (e *Engine) AllTrackProgress(ctx context.Context, userID string) ([]TrackSummary, error) {
	tracks := e.catalog.Tracks()
	out := make([]TrackSummary, 0, len(tracks))
	for _, t := range tracks {
		s, err := e.summarize(ctx, userID, t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (e *Engine) summarize(ctx context.Context, userID string, track model.Track) (TrackSummary, error) {
	modules, err := e.catalog.ModulesByTrack(track.Slug)
	if err != nil {
		return TrackSummary{}, notFound(err)
	}
	records, err := e.store.ListProgress(ctx, userID, track.ModuleIDs)
	if err != nil {
		return TrackSummary{}, persistence("list progress", err)
	}
	cert, err := e.store.FindCertificate(ctx, userID, track.ID)
	if err != nil {
		return TrackSummary{}, persistence("find certificate", err)
	}

	s := TrackSummary{
		Track:          track,
		Modules:        modules,
		Progress:       records,
		CompletedCount: countCompleted(records, track.ModuleIDs),
		TotalCount:     len(track.ModuleIDs),
		Certificate:    cert,
	}
	if s.TotalCount > 0 {
		s.Percentage = s.CompletedCount * 100 / s.TotalCount
	}
	return s, nil
}
