package domain

import "time"

// Review is a post-ride rating left by a room member.
type Review struct {
	ID         string
	RoomID     string
	ReviewerID string
	Rating     int // 1-5
	Comment    string
	CreatedAt  time.Time
}

// Report flags another seat in the room for moderation. The reported seat
// number is recorded instead of a user ID because seats are released once
// the room settles.
type Report struct {
	ID                 string
	RoomID             string
	ReporterID         string
	ReportedSeatNumber int
	Message            string
	CreatedAt          time.Time
}
