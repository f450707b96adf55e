package model

import "time"

// Certificate attests that a user completed every module of a track.
// At most one exists per (user, track), and Code is globally unique.
type Certificate struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	TrackID  string    `json:"track_id"`
	Code     string    `json:"verification_code"`
	IssuedAt time.Time `json:"issued_at"`
}
