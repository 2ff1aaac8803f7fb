package crewlog

import (
	"math"
	"time"
)

// Status is the review state of a crew log
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusPendingReview Status = "pending_review"
)

// CrewMember is one worker's hours on the logged day, split into pay buckets
type CrewMember struct {
	Name       string  `json:"name"`
	StHours    float64 `json:"st_hours"`
	OtHours    float64 `json:"ot_hours"`
	DtHours    float64 `json:"dt_hours"`
	PotHours   float64 `json:"pot_hours"`
	TotalHours float64 `json:"total_hours"`
}

// BucketSum adds the four hour buckets.
func (m CrewMember) BucketSum() float64 {
	return m.StHours + m.OtHours + m.DtHours + m.PotHours
}

// TotalMismatch reports whether TotalHours disagrees with the bucket sum.
func (m CrewMember) TotalMismatch() bool {
	return math.Abs(m.TotalHours-m.BucketSum()) > 0.001
}

// CrewLog records who worked on a project on one calendar day
type CrewLog struct {
	ID              string       `json:"id"`
	ProjectID       string       `json:"project_id"`
	Date            string       `json:"date"`
	CrewMembers     []CrewMember `json:"crew_members"`
	WorkDescription string       `json:"work_description,omitempty"`
	Status          Status       `json:"status"`
	SyncedToTM      bool         `json:"synced_to_tm"`
	SyncedFromTM    bool         `json:"synced_from_tm"`
	TMTagID         *string      `json:"tm_tag_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
